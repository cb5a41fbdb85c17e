// Package validator decodes and sanity-checks request input before it reaches a use case.
// Field rules live in the domain; this layer only rejects what cannot be parsed.
package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	domainerr "github.com/fixora/complaintdesk/domain/error"
)

const maxBodyBytes = 64 << 10

// DecodeJSON reads a single JSON object from the body into dst.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)

	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return domainerr.ErrValidation("Request body is required", err)
		case errors.As(err, &maxErr):
			return domainerr.ErrValidation("Request body too large", err)
		default:
			return domainerr.ErrValidation("Invalid request body", err)
		}
	}
	if dec.More() {
		return domainerr.ErrValidation("Request body must contain a single JSON object", nil)
	}
	return nil
}

// QueryInt parses an optional positive integer parameter; absent yields 0.
func QueryInt(q url.Values, name string) (int, error) {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, domainerr.ErrValidation(fmt.Sprintf("%s must be a positive integer", name), err)
	}
	return n, nil
}
