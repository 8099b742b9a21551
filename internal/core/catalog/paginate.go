package catalog

type Page[T any] struct {
	Items      []T `json:"results"`
	Page       int `json:"page"`
	TotalPages int `json:"total_pages"`
	TotalItems int `json:"count"`
}

// Paginate slices items into 1-based pages of size. Pages past the end are
// empty; a page below 1 is treated as the first.
func Paginate[T any](items []T, page, size int) Page[T] {
	if size < 1 {
		size = 1
	}
	if page < 1 {
		page = 1
	}

	total := len(items)
	pages := total / size
	if total%size != 0 {
		pages++
	}
	p := Page[T]{
		Page:       page,
		TotalPages: pages,
		TotalItems: total,
	}

	// page <= pages keeps (page-1)*size below total.
	if page > pages {
		p.Items = []T{}
		return p
	}
	start := (page - 1) * size
	end := start + min(size, total-start)
	p.Items = items[start:end]
	return p
}

// Browser keeps a filter term and a current page over a fetched collection.
// Changing the term always returns to page 1.
type Browser[T any] struct {
	items    []T
	match    func(T, string) bool
	pageSize int
	term     string
	page     int
}

func NewBrowser[T any](pageSize int, match func(T, string) bool) *Browser[T] {
	return &Browser[T]{match: match, pageSize: pageSize, page: 1}
}

func (b *Browser[T]) SetItems(items []T) {
	b.items = items
	if b.page > b.Current().TotalPages {
		b.page = 1
	}
}

func (b *Browser[T]) SetTerm(term string) {
	if term != b.term {
		b.term = term
		b.page = 1
	}
}

func (b *Browser[T]) Term() string {
	return b.term
}

func (b *Browser[T]) SetPage(page int) {
	b.page = max(1, page)
}

func (b *Browser[T]) Filtered() []T {
	out := make([]T, 0, len(b.items))
	for _, it := range b.items {
		if b.match == nil || b.match(it, b.term) {
			out = append(out, it)
		}
	}
	return out
}

func (b *Browser[T]) Current() Page[T] {
	return Paginate(b.Filtered(), b.page, b.pageSize)
}
