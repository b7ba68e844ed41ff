package helpers

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"

	"eventcalendar/internal/domain"
)

// maxJSONBody caps JSON request bodies.
const maxJSONBody = 1 << 20

// DecodeJSON decodes the request body into dest. On failure it writes a 400
// response and returns false; callers should return immediately.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dest any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err := dec.Decode(dest); err != nil {
		msg := "Request body must be valid JSON"
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			msg = "Request body too large"
		} else if errors.Is(err, io.EOF) {
			msg = "Request body is required"
		}
		WriteJSONError(w, http.StatusBadRequest, msg)
		return false
	}
	return true
}

// Validator is implemented by request DTOs that check themselves.
type Validator interface {
	Validate() []domain.FieldError
}

// DecodeAndValidate decodes the body into dest and, if dest implements
// Validator, runs it. Field problems are written as a validation envelope.
func DecodeAndValidate(w http.ResponseWriter, r *http.Request, dest any) bool {
	if !DecodeJSON(w, r, dest) {
		return false
	}
	if v, ok := dest.(Validator); ok {
		if errs := v.Validate(); len(errs) > 0 {
			WriteValidationError(w, errs)
			return false
		}
	}
	return true
}

// IsMultipart reports whether the request body is multipart/form-data.
func IsMultipart(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "multipart/form-data"
}
