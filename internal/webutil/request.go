package webutil

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go_phrase_texter/internal/model"

	"github.com/go-playground/validator/v10"
)

const maxBodyBytes = 1 << 20

// DecodeJSONBody decodes the request body into dst and validates it.
// Unknown fields are rejected.
func DecodeJSONBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	if r.Body == nil {
		return model.NewAppError("INVALID_REQUEST_BODY", "A request body is required.", "", model.ErrInvalidInput)
	}
	defer r.Body.Close()

	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return model.NewAppError("INVALID_REQUEST_BODY", "A request body is required.", "", model.ErrInvalidInput)
		}
		return model.NewAppError("INVALID_REQUEST_BODY", "The request body is not valid JSON.", "", errors.Join(model.ErrInvalidInput, err))
	}

	if err := Validator.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return NewValidationErrorResponse(verrs)
		}
		return model.NewAppError("VALIDATION_ERROR", err.Error(), "", model.ErrInvalidInput)
	}
	return nil
}
