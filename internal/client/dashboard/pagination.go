package dashboard

import "github.com/dmitrijs2005/valetkey/internal/client/models"

// Pagination tracks the file listing position. Totals always come from the
// server; the client never counts items itself.
type Pagination struct {
	CurrentPage int
	PageSize    int
	TotalItems  int64
	TotalPages  int
}

// Apply copies the totals of a page the server returned.
func (p *Pagination) Apply(page models.FilePage) {
	p.TotalItems = page.TotalItems
	if p.PageSize > 0 {
		p.TotalPages = int((page.TotalItems + int64(p.PageSize) - 1) / int64(p.PageSize))
		return
	}
	p.TotalPages = page.TotalPages
}

func (p Pagination) HasNext() bool { return p.CurrentPage < p.TotalPages-1 }

func (p Pagination) HasPrevious() bool { return p.CurrentPage > 0 }

// InRange reports whether page can be requested.
func (p Pagination) InRange(page int) bool {
	if page < 0 {
		return false
	}
	return page == 0 || page < p.TotalPages
}
