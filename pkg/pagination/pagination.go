package pagination

// The sale list contract is page/size with server-side totals; filtering and
// sorting downstream of the repository never changes the requested page.

const (
	// DefaultSize is the standard page size when one is not provided.
	DefaultSize = 20
	// MaxSize caps how many rows any page query can request.
	MaxSize = 100
)

// Params holds page pagination inputs from controllers or services.
// Page is zero-based.
type Params struct {
	Page int
	Size int
}

// Normalize enforces the configured defaults and bounds.
func (p Params) Normalize() Params {
	if p.Page < 0 {
		p.Page = 0
	}
	if p.Size <= 0 {
		p.Size = DefaultSize
	}
	if p.Size > MaxSize {
		p.Size = MaxSize
	}
	return p
}

// Offset returns the row offset for the normalized page.
func (p Params) Offset() int {
	n := p.Normalize()
	return n.Page * n.Size
}

// TotalPages derives the page count for the given element total.
func TotalPages(totalElements int64, size int) int {
	if size <= 0 {
		size = DefaultSize
	}
	if totalElements <= 0 {
		return 0
	}
	pages := totalElements / int64(size)
	if totalElements%int64(size) != 0 {
		pages++
	}
	return int(pages)
}
