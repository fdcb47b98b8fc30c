package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/zatekoja/workshopbooking/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/workshopbooking/pkg/errors"
)

// BannerTone picks the banner colour
type BannerTone string

const (
	ToneError   BannerTone = "error"
	ToneWarning BannerTone = "warning"
	ToneSuccess BannerTone = "success"
)

// Banner is the message strip shown above a view
type Banner struct {
	Kind        string     `json:"kind"`
	Message     string     `json:"message"`
	Dismissible bool       `json:"dismissible"`
	Tone        BannerTone `json:"tone"`
}

type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
	Banner Banner            `json:"banner"`
}

func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, errorResponse{
		Error:  message,
		Banner: Banner{Kind: "validation", Message: message, Dismissible: true, Tone: ToneError},
	})
}

// successBanner is attached to write responses
func successBanner(message string) Banner {
	return Banner{Kind: "success", Message: message, Dismissible: true, Tone: ToneSuccess}
}

// statusFor maps an error kind to its HTTP status
func statusFor(errType apperrors.ErrorType, hasFields bool) int {
	switch errType {
	case apperrors.ErrorTypeValidation:
		if hasFields {
			return http.StatusUnprocessableEntity
		}
		return http.StatusBadRequest
	case apperrors.ErrorTypeUnauthenticated:
		return http.StatusUnauthorized
	case apperrors.ErrorTypeAuthorization:
		return http.StatusForbidden
	case apperrors.ErrorTypeNotFound:
		return http.StatusNotFound
	case apperrors.ErrorTypeConflict:
		return http.StatusConflict
	case apperrors.ErrorTypeNetwork:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func respondWithAppError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := errorBody(r, err)
	respondWithJSON(w, status, body)
}

// errorBody logs err and builds the status and body presenting it
func errorBody(r *http.Request, err error) (int, errorResponse) {
	appErr, ok := apperrors.As(err)
	if !ok {
		appErr = apperrors.NewInternalError("internal server error", err)
	}

	status := statusFor(appErr.Type, len(appErr.Fields) > 0)
	message := apperrors.MessageOf(appErr)
	if appErr.Type == apperrors.ErrorTypeInternal {
		message = "Something went wrong. Please try again."
	}

	logger := observability.LoggerFromContext(r.Context())
	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).Str("kind", string(appErr.Type)).Msg("request failed")
	} else {
		logger.Debug().Err(err).Str("kind", string(appErr.Type)).Msg("request rejected")
	}

	tone := ToneError
	if appErr.Type == apperrors.ErrorTypeConflict {
		tone = ToneWarning
	}

	return status, errorResponse{
		Error:  message,
		Fields: appErr.Fields,
		Banner: Banner{
			Kind:        bannerKind(appErr.Type),
			Message:     message,
			Dismissible: true,
			Tone:        tone,
		},
	}
}

func bannerKind(t apperrors.ErrorType) string {
	switch t {
	case apperrors.ErrorTypeValidation:
		return "validation"
	case apperrors.ErrorTypeNetwork:
		return "network"
	case apperrors.ErrorTypeAuthorization, apperrors.ErrorTypeUnauthenticated:
		return "authorization"
	case apperrors.ErrorTypeNotFound:
		return "not_found"
	case apperrors.ErrorTypeConflict:
		return "conflict"
	default:
		return "internal"
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(dst); err != nil {
		return apperrors.NewValidationError("invalid request payload")
	}
	return nil
}
