// Package query parses list parameters (page, per_page, sort, search) from
// HTTP requests and turns them into safe SQL fragments.
package query

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

const (
	DefaultPerPage = 15
	MaxPerPage     = 100
)

// Params holds parsed list parameters.
type Params struct {
	Page      int
	PerPage   int
	SortBy    string
	SortOrder string
	Search    string
}

// Config defines entity-specific list behavior.
type Config struct {
	AllowedSortFields []string
	// FieldAliases maps public sort names to column names.
	FieldAliases map[string]string
	DefaultSort  string
	DefaultOrder string
}

// ParseFromRequest extracts list params. Out-of-range or malformed values
// fall back to defaults rather than failing the request; unknown sort fields
// fall back to the default sort.
func ParseFromRequest(r *http.Request, cfg Config) Params {
	q := r.URL.Query()

	p := Params{
		Page:      intOrDefault(q.Get("page"), 1),
		PerPage:   clamp(intOrDefault(q.Get("per_page"), DefaultPerPage), 1, MaxPerPage),
		SortBy:    cfg.DefaultSort,
		SortOrder: normalizeSortOrder(cfg.DefaultOrder),
		Search:    strings.TrimSpace(q.Get("search")),
	}

	if sort := q.Get("sort"); sort != "" {
		order := "asc"
		if strings.HasPrefix(sort, "-") {
			sort, order = sort[1:], "desc"
		}
		if isFieldAllowed(sort, cfg.AllowedSortFields) {
			p.SortBy, p.SortOrder = sort, order
		}
	}
	return p
}

// Offset is the number of rows skipped before the current page.
func (p Params) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// OrderBy returns an ORDER BY clause body, or "" when no sort applies. Only
// allowed fields reach the clause.
func (p Params) OrderBy(cfg Config) string {
	if p.SortBy == "" {
		return ""
	}
	column := p.SortBy
	if alias, ok := cfg.FieldAliases[column]; ok {
		column = alias
	}
	return fmt.Sprintf("%s %s", column, strings.ToUpper(p.SortOrder))
}

// TotalPages computes the page count for total rows.
func (p Params) TotalPages(total int) int {
	if p.PerPage <= 0 {
		return 0
	}
	return (total + p.PerPage - 1) / p.PerPage
}

func isFieldAllowed(field string, allowed []string) bool {
	for _, f := range allowed {
		if f == field {
			return true
		}
	}
	return false
}

func intOrDefault(s string, def int) int {
	if v, err := strconv.Atoi(s); err == nil && v > 0 {
		return v
	}
	return def
}

func clamp(v, lower, upper int) int {
	if v < lower {
		return lower
	}
	if v > upper {
		return upper
	}
	return v
}

func normalizeSortOrder(s string) string {
	if strings.EqualFold(s, "desc") {
		return "desc"
	}
	return "asc"
}
