// Package feed slices an already scoped, already ordered post collection
// into fixed-size pages. Scope filtering lives in models; the paginator
// only cuts and clamps.
package feed

import (
	"strconv"

	"github.com/Olga07122007/yatube-project/models"
)

// PageSize is the number of posts on every page except the last.
const PageSize = 10

// Page is one bounded window over a post collection plus the metadata
// templates need to draw the pager.
type Page struct {
	Posts      []models.Post
	Number     int
	TotalPages int
	TotalCount int
}

// HasPrev reports whether an earlier page exists.
func (p Page) HasPrev() bool { return p.Number > 1 }

// HasNext reports whether a later page exists.
func (p Page) HasNext() bool { return p.Number < p.TotalPages }

// PrevNumber returns the previous page number for pager links.
func (p Page) PrevNumber() int { return p.Number - 1 }

// NextNumber returns the next page number for pager links.
func (p Page) NextNumber() int { return p.Number + 1 }

// ParsePage turns the raw "page" query value into a 1-based page number.
// Anything absent, malformed, or non-positive falls back to page 1.
func ParsePage(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// Paginate returns the requested page of posts. Page numbers past the end
// clamp to the last page rather than failing; an empty collection yields
// an empty page 1. Pure function of its inputs.
func Paginate(posts []models.Post, page int) Page {
	total := len(posts)
	totalPages := (total + PageSize - 1) / PageSize
	if totalPages == 0 {
		totalPages = 1
	}

	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * PageSize
	end := start + PageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	return Page{
		Posts:      posts[start:end],
		Number:     page,
		TotalPages: totalPages,
		TotalCount: total,
	}
}
