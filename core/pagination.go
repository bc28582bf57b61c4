package core

// pagination bounds; every listing page clamps its query params to these.
const (
	DefaultPerPage = 20
	MaxPerPage     = 50
)

// Pagination carries the clamped page window of a listing request.
type Pagination struct {
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
	Total   int `json:"total"`
}

// NewPagination clamps page to [1,∞) and perPage to [1,max]; max <= 0 falls back
// to MaxPerPage, perPage <= 0 to DefaultPerPage.
func NewPagination(page, perPage int, max ...int) Pagination {
	limit := MaxPerPage
	if len(max) > 0 && max[0] > 0 {
		limit = max[0]
	}
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if perPage > limit {
		perPage = limit
	}
	return Pagination{Page: page, PerPage: perPage}
}

func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PerPage
}

func (p Pagination) Limit() int {
	return p.PerPage
}

// TotalPages derives the page count from Total; at least 1.
func (p Pagination) TotalPages() int {
	if p.PerPage < 1 || p.Total < 1 {
		return 1
	}
	pages := p.Total / p.PerPage
	if p.Total%p.PerPage != 0 {
		pages++
	}
	return pages
}

func (p Pagination) HasPrev() bool { return p.Page > 1 }
func (p Pagination) HasNext() bool { return p.Page < p.TotalPages() }
func (p Pagination) PrevPage() int { return p.Page - 1 }
func (p Pagination) NextPage() int { return p.Page + 1 }
