package mentorlist

// Paginate returns the page-th slice of size pageSize. Pages are 1-based;
// page < 1 is treated as 1. Out-of-range pages and pageSize < 1 yield an
// empty, non-nil slice.
func Paginate[T any](items []T, page, pageSize int) []T {
	if pageSize < 1 {
		return []T{}
	}
	if page < 1 {
		page = 1
	}

	start := (page - 1) * pageSize
	if start >= len(items) || start < 0 {
		return []T{}
	}
	end := start + pageSize
	if end > len(items) || end < start {
		end = len(items)
	}

	return items[start:end]
}
