package viewmodel

import "sync"

// DefaultPageSize is the number of rows shown per page.
const DefaultPageSize = 20

// Page is one slice of a paginated list. Number is 1-based.
type Page[T any] struct {
	Items  []T `json:"items"`
	Number int `json:"page"`
	Pages  int `json:"pages"`
	Total  int `json:"total"`
}

// Paginate returns page number of items, clamping number to the valid range.
func Paginate[T any](items []T, number, size int) Page[T] {
	if size <= 0 {
		size = DefaultPageSize
	}
	pages := (len(items) + size - 1) / size
	if pages == 0 {
		pages = 1
	}
	if number < 1 {
		number = 1
	}
	if number > pages {
		number = pages
	}
	start := (number - 1) * size
	end := start + size
	if end > len(items) {
		end = len(items)
	}
	return Page[T]{
		Items:  append([]T(nil), items[start:end]...),
		Number: number,
		Pages:  pages,
		Total:  len(items),
	}
}

// Pager remembers the current page of each view independently.
type Pager struct {
	Size int

	mu    sync.Mutex
	pages map[string]int
}

func NewPager(size int) *Pager {
	if size <= 0 {
		size = DefaultPageSize
	}
	return &Pager{Size: size, pages: make(map[string]int)}
}

// Current returns the page of view, 1 when unset.
func (p *Pager) Current(view string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if n, ok := p.pages[view]; ok {
		return n
	}
	return 1
}

// Set moves view to page n.
func (p *Pager) Set(view string, n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pages[view] = n
}


// PageOf paginates items for view and stores the clamped page number.
func PageOf[T any](p *Pager, view string, items []T) Page[T] {
	page := Paginate(items, p.Current(view), p.Size)
	p.Set(view, page.Number)
	return page
}
