package pagination

import (
	"net/http"
	"strconv"
)

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

// Params holds pagination parameters parsed from a request query string.
type Params struct {
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
}

// Default returns the default pagination parameters.
func Default() Params {
	return Params{Page: 1, PerPage: defaultPerPage}
}

// FromRequest extracts page/per_page from r, clamping to sane bounds.
func FromRequest(r *http.Request) Params {
	p := Default()

	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			p.Page = n
		}
	}
	if v := r.URL.Query().Get("per_page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= maxPerPage {
			p.PerPage = n
		}
	}

	return p
}

// Offset returns the row offset for the current page.
func (p Params) Offset() int {
	if p.Page <= 1 {
		return 0
	}
	return (p.Page - 1) * p.PerPage
}
