package validators

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	pkgerrors "github.com/emporium-dev/emporium/pkg/errors"
	"github.com/emporium-dev/emporium/pkg/pagination"
)

func ParseQueryInt(r *http.Request, key string, defaultVal, min, max int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return defaultVal, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "query parameter must be numeric").WithDetails(map[string]any{"field": key})
	}
	if value < min || value > max {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "query parameter out of range").WithDetails(map[string]any{"field": key, "min": min, "max": max})
	}
	return value, nil
}

// ParseIDParam reads a positive numeric route parameter.
func ParseIDParam(r *http.Request, name string) (uint, error) {
	return parseID(chi.URLParam(r, name), name)
}

// ParseQueryID reads a required positive numeric query parameter.
func ParseQueryID(r *http.Request, key string) (uint, error) {
	return parseID(r.URL.Query().Get(key), key)
}

func parseID(raw, field string) (uint, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, pkgerrors.Validation("missing identifier", map[string]string{field: "is required"})
	}
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || value == 0 {
		return 0, pkgerrors.Validation("invalid identifier", map[string]string{field: "must be a positive integer"})
	}
	return uint(value), nil
}

// ParseQueryIDs collects repeated ids for a facet. Both `color` and the
// bracketed `color[]` spellings are accepted.
func ParseQueryIDs(r *http.Request, key string) ([]uint, error) {
	query := r.URL.Query()
	raw := append(append([]string{}, query[key]...), query[key+"[]"]...)
	ids := make([]uint, 0, len(raw))
	for _, item := range raw {
		for _, part := range strings.Split(item, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			id, err := parseID(part, key)
			if err != nil {
				return nil, err
			}
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// ParsePagination reads the `limit` and `cursor` query parameters.
func ParsePagination(r *http.Request) (pagination.Params, error) {
	limit, err := ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return pagination.Params{}, err
	}
	return pagination.Params{Limit: limit, Cursor: strings.TrimSpace(r.URL.Query().Get("cursor"))}, nil
}
