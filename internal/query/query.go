// Package query implements the filter, search, sort and pagination contract
// shared by the track and playlist listings. Callers describe an entity's
// queryable surface with a Definition; Params carry the client's request; the
// Builder turns both into a WHERE clause with positional placeholders so the
// repositories stay free of ad-hoc string assembly.
package query

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lib/pq"

	"github.com/aakash-sharma-github/dollop-music-backend/internal/apperr"
)

// Params carries the client-supplied listing parameters.
type Params struct {
	// Search is a free-text query tokenized on whitespace. Every token must
	// match at least one searchable column.
	Search string
	// Filters maps filter keys to exact values. Unrecognized keys are ignored.
	Filters map[string]string
	// Tags restricts results to rows carrying all listed tags.
	Tags []string
	// Page is the 1-based page number. Must be positive.
	Page int
	// Limit is the page size. Must be positive.
	Limit int
	// SortField selects the sort column by its API name. Empty means the
	// entity default (descending creation time).
	SortField string
	// SortOrder is "asc" or "desc". Empty means "desc".
	SortOrder string
}

// PageInfo describes the page actually produced, computed from the same
// filtered candidate set as the page contents.
type PageInfo struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalItems int `json:"totalItems"`
	TotalPages int `json:"totalPages"`
}

// NewPageInfo computes pagination metadata for the given total.
func NewPageInfo(page, limit, total int) PageInfo {
	pages := 0
	if total > 0 {
		pages = (total + limit - 1) / limit
	}
	return PageInfo{Page: page, Limit: limit, TotalItems: total, TotalPages: pages}
}

// Definition describes the queryable surface of one entity.
type Definition struct {
	// SearchColumns are column expressions ORed together per search token.
	SearchColumns []string
	// FilterColumns maps API filter keys to columns. Keys not present here
	// are ignored, not rejected.
	FilterColumns map[string]string
	// SortColumns maps API sort field names to columns.
	SortColumns map[string]string
	// TagsColumn names the text-array column used for all-tags filtering,
	// empty when the entity has no tags.
	TagsColumn string
}

// Validate checks Params against the definition. Page and limit must be
// positive; they are never silently clamped.
func (p Params) Validate(def Definition) error {
	if p.Page < 1 {
		return apperr.New(apperr.KindValidation, "page must be a positive integer")
	}
	if p.Limit < 1 {
		return apperr.New(apperr.KindValidation, "limit must be a positive integer")
	}
	if p.SortField != "" {
		if _, ok := def.SortColumns[p.SortField]; !ok {
			return apperr.Newf(apperr.KindValidation, "unsupported sort field %q", p.SortField)
		}
	}
	switch strings.ToLower(p.SortOrder) {
	case "", "asc", "desc":
	default:
		return apperr.Newf(apperr.KindValidation, "unsupported sort order %q", p.SortOrder)
	}
	return nil
}

// Builder accumulates WHERE conditions with ?-style placeholders and rewrites
// them to PostgreSQL positional placeholders in insertion order.
type Builder struct {
	conds []string
	args  []any
	n     int
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// And appends a condition. expr uses ? for each argument.
func (b *Builder) And(expr string, args ...any) {
	var sb strings.Builder
	for _, r := range expr {
		if r == '?' {
			b.n++
			fmt.Fprintf(&sb, "$%d", b.n)
			continue
		}
		sb.WriteRune(r)
	}
	b.conds = append(b.conds, sb.String())
	b.args = append(b.args, args...)
}

// Apply adds the search, filter and tag conditions from p per the definition.
// Params must already be validated.
func (b *Builder) Apply(def Definition, p Params) {
	for _, token := range strings.Fields(strings.ToLower(p.Search)) {
		pattern := "%" + escapeLike(token) + "%"
		parts := make([]string, 0, len(def.SearchColumns))
		args := make([]any, 0, len(def.SearchColumns))
		for _, col := range def.SearchColumns {
			parts = append(parts, col+" ILIKE ?")
			args = append(args, pattern)
		}
		b.And("("+strings.Join(parts, " OR ")+")", args...)
	}

	// Stable key order keeps the generated SQL deterministic.
	keys := make([]string, 0, len(p.Filters))
	for key := range p.Filters {
		if _, ok := def.FilterColumns[key]; ok {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	for _, key := range keys {
		b.And(def.FilterColumns[key]+" = ?", p.Filters[key])
	}

	if def.TagsColumn != "" && len(p.Tags) > 0 {
		b.And(def.TagsColumn+" @> ?", pq.Array(p.Tags))
	}
}

// Where returns the assembled WHERE clause, or an empty string when no
// conditions were added.
func (b *Builder) Where() string {
	if len(b.conds) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(b.conds, " AND ")
}

// Args returns the accumulated arguments in placeholder order.
func (b *Builder) Args() []any {
	return b.args
}

// OrderBy returns the ORDER BY clause for p per the definition. The entity ID
// breaks ties so pagination stays stable.
func (b *Builder) OrderBy(def Definition, p Params) string {
	col := "created_at"
	if p.SortField != "" {
		col = def.SortColumns[p.SortField]
	}
	dir := "DESC"
	if strings.EqualFold(p.SortOrder, "asc") {
		dir = "ASC"
	}
	return fmt.Sprintf("ORDER BY %s %s, id %s", col, dir, dir)
}

// Paginate returns the LIMIT/OFFSET clause and the full argument list with
// limit and offset appended.
func (b *Builder) Paginate(p Params) (string, []any) {
	clause := fmt.Sprintf("LIMIT $%d OFFSET $%d", b.n+1, b.n+2)
	args := append(append([]any{}, b.args...), p.Limit, (p.Page-1)*p.Limit)
	return clause, args
}

// escapeLike escapes LIKE wildcards so search tokens match literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
