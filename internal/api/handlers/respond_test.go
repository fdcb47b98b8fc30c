package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/zatekoja/workshopbooking/pkg/errors"
)

func TestErrorBody_StatusAndBannerFollowKind(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantKind   string
		wantTone   BannerTone
	}{
		{name: "validation", err: apperrors.NewValidationError("bad"), wantStatus: http.StatusBadRequest, wantKind: "validation", wantTone: ToneError},
		{name: "field validation", err: apperrors.NewFieldValidationError("bad", map[string]string{"email": "Email is required"}), wantStatus: http.StatusUnprocessableEntity, wantKind: "validation", wantTone: ToneError},
		{name: "unauthenticated", err: apperrors.NewUnauthenticatedError("sign in"), wantStatus: http.StatusUnauthorized, wantKind: "authorization", wantTone: ToneError},
		{name: "authorization", err: apperrors.NewAuthorizationError("no"), wantStatus: http.StatusForbidden, wantKind: "authorization", wantTone: ToneError},
		{name: "not found", err: apperrors.NewNotFoundError("gone"), wantStatus: http.StatusNotFound, wantKind: "not_found", wantTone: ToneError},
		{name: "conflict", err: apperrors.NewConflictError("taken"), wantStatus: http.StatusConflict, wantKind: "conflict", wantTone: ToneWarning},
		{name: "network", err: apperrors.NewNetworkError("Failed to load", errors.New("timeout")), wantStatus: http.StatusBadGateway, wantKind: "network", wantTone: ToneError},
		{name: "plain error", err: errors.New("boom"), wantStatus: http.StatusInternalServerError, wantKind: "internal", wantTone: ToneError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := errorBody(httptest.NewRequest(http.MethodGet, "/", nil), tt.err)

			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantKind, body.Banner.Kind)
			assert.Equal(t, tt.wantTone, body.Banner.Tone)
			assert.True(t, body.Banner.Dismissible)
			assert.Equal(t, body.Error, body.Banner.Message)
		})
	}
}

func TestErrorBody_NetworkMessageCarriesCause(t *testing.T) {
	_, body := errorBody(httptest.NewRequest(http.MethodGet, "/", nil),
		apperrors.NewNetworkError("Failed to save dates", errors.New("connection refused")))

	assert.Equal(t, "Failed to save dates: connection refused", body.Error)
}

func TestErrorBody_InternalDetailsAreHidden(t *testing.T) {
	_, body := errorBody(httptest.NewRequest(http.MethodGet, "/", nil),
		apperrors.NewInternalError("failed to build query", errors.New("syntax error near SELECT")))

	assert.NotContains(t, body.Error, "SELECT")
}
