package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/aakash-sharma-github/dollop-music-backend/internal/apperr"
	"github.com/aakash-sharma-github/dollop-music-backend/internal/query"
)

const (
	defaultPage  = 1
	defaultLimit = 20
)

// reservedParams are query keys consumed by the listing contract itself;
// everything else is passed through as a field filter and unrecognized keys
// are ignored downstream.
var reservedParams = map[string]struct{}{
	"search":    {},
	"tags":      {},
	"page":      {},
	"limit":     {},
	"sortBy":    {},
	"sortOrder": {},
}

// listParams extracts the shared listing parameters from the URL query.
// Absent page and limit fall back to defaults; present ones must parse as
// integers, with positivity enforced by the query layer.
func listParams(r *http.Request) (query.Params, error) {
	values := r.URL.Query()
	p := query.Params{
		Search:    values.Get("search"),
		Page:      defaultPage,
		Limit:     defaultLimit,
		SortField: values.Get("sortBy"),
		SortOrder: values.Get("sortOrder"),
	}

	if raw := values.Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return query.Params{}, apperr.New(apperr.KindValidation, "page must be a positive integer")
		}
		p.Page = n
	}
	if raw := values.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return query.Params{}, apperr.New(apperr.KindValidation, "limit must be a positive integer")
		}
		p.Limit = n
	}

	if raw := values.Get("tags"); raw != "" {
		for _, tag := range strings.Split(raw, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				p.Tags = append(p.Tags, tag)
			}
		}
	}

	for key, vals := range values {
		if _, reserved := reservedParams[key]; reserved || len(vals) == 0 {
			continue
		}
		if p.Filters == nil {
			p.Filters = make(map[string]string)
		}
		p.Filters[key] = vals[0]
	}
	return p, nil
}
