// Package pagination provides page-number pagination utilities for the
// dashboard's table views.
package pagination

import "strconv"

const (
	// DefaultPerPage is the page size when the caller does not supply one.
	DefaultPerPage = 50
	// MaxPerPage caps a single page regardless of what the caller asks for.
	MaxPerPage = 500
)

// Params is a normalized page request: Page is always >= 1 and PerPage is
// within (0, MaxPerPage].
type Params struct {
	Page    int
	PerPage int
}

// FromQuery builds Params from raw query values. Anything empty,
// unparseable, or non-positive falls back to the defaults.
func FromQuery(page, perPage string) Params {
	p := Params{
		Page:    parsePositive(page, 1),
		PerPage: parsePositive(perPage, DefaultPerPage),
	}
	if p.PerPage > MaxPerPage {
		p.PerPage = MaxPerPage
	}
	return p
}

// Bounds returns the half-open [start, end) range of page p over n items.
func (p Params) Bounds(n int) (start, end int) {
	perPage := normalizePerPage(p.PerPage)
	page := p.Page
	if page < 1 {
		page = 1
	}

	start = (page - 1) * perPage
	end = start + perPage
	if start > n {
		start = n
	}
	if end > n {
		end = n
	}
	return start, end
}

// TotalPages reports the page count the dashboard pager expects. The count
// deliberately includes one trailing empty page when total divides evenly by
// the page size; the pager's "next" arrow relies on it.
func TotalPages(total, perPage int) int {
	return total/normalizePerPage(perPage) + 1
}

func normalizePerPage(perPage int) int {
	if perPage <= 0 {
		return DefaultPerPage
	}
	return perPage
}

func parsePositive(s string, def int) int {
	v, err := strconv.Atoi(s)
	if err != nil || v <= 0 {
		return def
	}
	return v
}
