// AngelaMos | 2026
// params.go

package core

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
)

// URLParam returns a decoded path parameter. chi matches on RawPath when
// the request carries one, so only then is the value still escaped.
func URLParam(r *http.Request, key string) (string, error) {
	value := chi.URLParam(r, key)
	if r.URL.RawPath == "" {
		return value, nil
	}
	return url.PathUnescape(value)
}
