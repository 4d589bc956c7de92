package validators

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	pkgerrors "github.com/pcforge/storefront/pkg/errors"
)

// PathID parses a positive integer route parameter.
func PathID(r *http.Request, key string) (int64, error) {
	raw := strings.TrimSpace(chi.URLParam(r, key))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "invalid id").WithDetails(map[string]any{"field": key})
	}
	return id, nil
}

// OptionalPathID is PathID for routes shared by create and update: an
// absent parameter yields zero.
func OptionalPathID(r *http.Request, key string) (int64, error) {
	if strings.TrimSpace(chi.URLParam(r, key)) == "" {
		return 0, nil
	}
	return PathID(r, key)
}
