package boox

import "github.com/poiesic/boox/result"

// DefaultPerPage is the page size used when none is given.
const DefaultPerPage = 10

type targetKind int

const (
	targetNumber targetKind = iota
	targetFirst
	targetLast
	targetPrev
	targetNext
)

// Target selects a page relative to the current one.
type Target struct {
	kind targetKind
	page int
}

var (
	// First selects page 1.
	First = Target{kind: targetFirst}
	// Last selects the final page.
	Last = Target{kind: targetLast}
	// Prev selects the previous page, stopping at page 1.
	Prev = Target{kind: targetPrev}
	// Next selects the following page, stopping at the final page.
	Next = Target{kind: targetNext}
)

// PageNumber selects a page by number.
func PageNumber(n int) Target {
	return Target{kind: targetNumber, page: n}
}

// Page is one slice of a ranking plus what is needed to move to another.
type Page struct {
	Results      []*result.SearchResult `json:"results"`
	TotalResults int                    `json:"totalResults"`
	TotalPages   int                    `json:"totalPages"`
	CurrentPage  int                    `json:"currentPage"`

	all     []*result.SearchResult
	perPage int
}

// Paginate slices results into pages of perPage and returns page number page.
// page < 1 means 1 and perPage < 1 means DefaultPerPage. Pages past the end
// are empty.
func Paginate(results []*result.SearchResult, page, perPage int) Page {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	total := len(results)
	totalPages := (total + perPage - 1) / perPage

	start := min((page-1)*perPage, total)
	end := min(start+perPage, total)

	return Page{
		Results:      results[start:end:end],
		TotalResults: total,
		TotalPages:   totalPages,
		CurrentPage:  page,
		all:          results,
		perPage:      perPage,
	}
}

// GoTo re-paginates the same ranking at another page. The destination is
// clamped to [1, max(1, TotalPages)].
func (p Page) GoTo(t Target) Page {
	last := max(1, p.TotalPages)
	page := p.CurrentPage
	switch t.kind {
	case targetFirst:
		page = 1
	case targetLast:
		page = last
	case targetPrev:
		page--
	case targetNext:
		page++
	default:
		page = t.page
	}
	page = min(max(page, 1), last)
	return Paginate(p.all, page, p.perPage)
}
