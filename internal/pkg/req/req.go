/*
Package req provides helper functions for HTTP request parsing and data binding.

It encapsulates the logic for decoding small JSON bodies and maps decoding failures to
coded errors from the errs package.
*/
package req

import (
	"encoding/json"
	"net/http"
	"strings"

	"relaychat/internal/pkg/errs"
)

// MaxJSONBodySize caps the size of a JSON request body.
const MaxJSONBodySize int64 = 4 << 10 // 4 KB

// BindJSON attempts to bind the JSON data from the HTTP request body to the destination struct dst.
// The body is limited to MaxJSONBodySize and unknown fields are rejected.
func BindJSON(w http.ResponseWriter, r *http.Request, dst any) *errs.CustomError {
	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "application/json") {
		return errs.NewError(errs.ErrUnsupportedMediaType)
	}

	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxJSONBodySize))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		return errs.NewError(errs.ErrInvalidJSONFormat)
	}

	if decoder.More() {
		return errs.NewError(errs.ErrExtraContentInBody)
	}

	return nil
}
