package services

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/zatekoja/workshopbooking/internal/domain/entities"
	apperrors "github.com/zatekoja/workshopbooking/pkg/errors"
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// credentialMessages holds the form wording per field and failed tag
var credentialMessages = map[string]map[string]string{
	"email": {
		"required": "Email is required",
		"email":    "Please enter a valid email",
	},
	"password": {
		"required": "Password is required",
		"min":      "Password must be at least 6 characters",
	},
}

// validateCredentials checks a sign-in or, when confirm is set, a sign-up form
func validateCredentials(v *validator.Validate, creds *entities.Credentials, confirm bool) error {
	creds.Email = strings.TrimSpace(creds.Email)
	fields := map[string]string{}

	if err := v.Struct(creds); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return apperrors.NewInternalError("failed to validate credentials", err)
		}
		for _, fe := range verrs {
			if _, seen := fields[fe.Field()]; seen {
				continue
			}
			if msg, ok := credentialMessages[fe.Field()][fe.Tag()]; ok {
				fields[fe.Field()] = msg
			} else {
				fields[fe.Field()] = fe.Error()
			}
		}
	}

	if confirm && creds.ConfirmPassword != creds.Password {
		fields["confirmPassword"] = "Passwords do not match"
	}

	if len(fields) > 0 {
		return apperrors.NewFieldValidationError("Please correct the highlighted fields", fields)
	}
	return nil
}
