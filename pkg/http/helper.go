package http

import (
	"net/http"
	"strconv"

	"vntrips/pkg/config"
	apperrors "vntrips/pkg/errors"
)

// ExtractPageLimit reads 1-based page and limit query parameters, clamping
// limit to [1,100] and page to >= 1.
func ExtractPageLimit(r *http.Request) (int, int, error) {
	query := r.URL.Query()

	page := 1
	if s := query.Get("page"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid page parameter: " + s)
		}
		page = v
	}

	limit := 0
	if s := query.Get("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid limit parameter: " + s)
		}
		limit = v
	}

	page = config.NormalizePage(page)
	limit = config.NormalizePaginationLimit(limit)

	return page, limit, nil
}

// ExtractBoolParam parses an optional boolean query parameter, returning nil
// when absent.
func ExtractBoolParam(r *http.Request, name string) (*bool, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return nil, apperrors.InvalidInput("invalid " + name + " parameter: " + s)
	}
	return &v, nil
}

// ExtractFloatParam parses an optional float query parameter, returning nil
// when absent.
func ExtractFloatParam(r *http.Request, name string) (*float64, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, apperrors.InvalidInput("invalid " + name + " parameter: " + s)
	}
	return &v, nil
}
