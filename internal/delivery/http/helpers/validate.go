package helpers

import (
	"encoding/json"
	"net/http"
	"strings"
)

// Validator is implemented by request DTOs that support validation.
// Validate returns a slice of error messages; nil or empty means valid.
type Validator interface {
	Validate() []string
}

// DecodeAndValidate decodes the request body into dest (with
// DisallowUnknownFields) and, if dest implements Validator, runs Validate().
// On decode or validation failure it writes a 400 envelope and returns
// false; callers should return immediately in that case.
func DecodeAndValidate(w http.ResponseWriter, r *http.Request, dest any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dest); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return false
	}
	if v, ok := dest.(Validator); ok {
		if errs := v.Validate(); len(errs) > 0 {
			WriteError(w, http.StatusBadRequest, strings.Join(errs, "; "))
			return false
		}
	}
	return true
}
