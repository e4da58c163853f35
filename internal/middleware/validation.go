package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"reflect"

	"zia/internal/models"
	"zia/internal/utils"
)

type contextKey string

const validatedRequestKey contextKey = "validated_request"

// MaxBodyBytes caps request bodies. Code snippets are small; anything larger is abuse.
const MaxBodyBytes = 64 << 10

// request models implement this interface
type Validator interface {
	Validate() error
}

// ValidateRequest decodes the JSON body into a fresh T, runs its Validate
// method and stores the result in the request context. Handlers behind it
// read the request with GetValidatedRequest.
func ValidateRequest[T Validator]() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			req := newRequest[T]()

			body := http.MaxBytesReader(w, r.Body, MaxBodyBytes)
			if err := json.NewDecoder(body).Decode(req); err != nil {
				var tooLarge *http.MaxBytesError
				if errors.As(err, &tooLarge) {
					utils.JSON(w, http.StatusRequestEntityTooLarge, models.ErrorResponse{
						Code:    "body_too_large",
						Message: "Request body is too large",
					})
					return
				}
				utils.JSON(w, http.StatusBadRequest, models.ErrorResponse{
					Code:    "invalid_json",
					Message: "Invalid JSON in request body",
				})
				return
			}

			if err := req.Validate(); err != nil {
				utils.JSON(w, http.StatusBadRequest, toErrorResponse(err))
				return
			}

			ctx := context.WithValue(r.Context(), validatedRequestKey, req)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// newRequest allocates the value a pointer type parameter points to
func newRequest[T Validator]() T {
	var req T
	reqType := reflect.TypeOf(req)
	if reqType.Kind() == reflect.Ptr {
		return reflect.New(reqType.Elem()).Interface().(T)
	}
	return reflect.New(reqType).Interface().(T)
}

func toErrorResponse(err error) models.ErrorResponse {
	var errResp *models.ErrorResponse
	if errors.As(err, &errResp) {
		return *errResp
	}
	return models.ErrorResponse{
		Code:    "validation_error",
		Message: err.Error(),
	}
}

// GetValidatedRequest retrieves the validated request from context
func GetValidatedRequest[T any](r *http.Request) T {
	return r.Context().Value(validatedRequestKey).(T)
}
