package pagination

const (
	// DefaultPageSize is applied when the caller omits or zeroes the page size.
	DefaultPageSize = 25
	// MaxPageSize caps a single page to keep report queries bounded.
	MaxPageSize = 250
)

// Normalize clamps page (1-based) and pageSize into valid ranges and returns
// the SQL-style limit and offset for the page.
func Normalize(page, pageSize int) (limit, offset int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return pageSize, (page - 1) * pageSize
}

// Slice returns the [start, end) index window of a page over a slice of length n.
// An out-of-range page yields an empty window.
func Slice(n, page, pageSize int) (start, end int) {
	limit, offset := Normalize(page, pageSize)
	if offset >= n {
		return n, n
	}
	start = offset
	end = offset + limit
	if end > n {
		end = n
	}
	return start, end
}
