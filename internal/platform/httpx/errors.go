package httpx

import (
	"errors"
	"net/http"
)

// Sentinel errors mapped onto HTTP statuses.
var (
	ErrNotFound = errors.New("resource not found")
	ErrUpstream = errors.New("lead service unavailable")
)

// RespondError maps errors to HTTP responses using RFC7807.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrUpstream):
		Problem(w, http.StatusBadGateway, "Bad Gateway", ErrUpstream.Error())
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
