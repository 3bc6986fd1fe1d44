package domain

// PageRequest carries the common paging and keyword filter parameters.
// Zero values are normalized by Normalize before use.
type PageRequest struct {
	PageNum  int
	PageSize int
	Keyword  string
}

const (
	defaultPageSize = 10
	maxPageSize     = 200
)

// Normalize clamps the page parameters to sane bounds.
func (p *PageRequest) Normalize() {
	if p.PageNum < 1 {
		p.PageNum = 1
	}
	if p.PageSize < 1 {
		p.PageSize = defaultPageSize
	}
	if p.PageSize > maxPageSize {
		p.PageSize = maxPageSize
	}
}

// Offset returns the row offset for the normalized page.
func (p PageRequest) Offset() int {
	return (p.PageNum - 1) * p.PageSize
}

// Page is one page of results together with the untruncated total.
type Page[T any] struct {
	List     []T   `json:"list"`
	Total    int64 `json:"total"`
	PageNum  int   `json:"pageNum"`
	PageSize int   `json:"pageSize"`
}

// NewPage builds a page envelope, guaranteeing a non-nil list.
func NewPage[T any](items []T, total int64, req PageRequest) *Page[T] {
	if items == nil {
		items = []T{}
	}
	return &Page[T]{List: items, Total: total, PageNum: req.PageNum, PageSize: req.PageSize}
}
