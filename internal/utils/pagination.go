// Package utils holds small parsing and paging helpers shared by the HTTP
// handlers. Nothing here knows about chains.
package utils

import "strconv"

// AtoiDefault parses s as an int, returning def when s is empty or invalid.
// No trimming is done: " 42" is invalid.
func AtoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}

// ClampPage parses raw page and page-size values. page is at least 1; size
// falls back to defSize and is kept within [1, maxSize].
func ClampPage(rawPage, rawSize string, defSize, maxSize int) (page, size int) {
	page = AtoiDefault(rawPage, 1)
	if page < 1 {
		page = 1
	}
	size = AtoiDefault(rawSize, defSize)
	if size < 1 {
		size = 1
	}
	if maxSize > 0 && size > maxSize {
		size = maxSize
	}
	return page, size
}

// PageBounds returns the half-open [from, to) window of a 1-based page over
// total items, and the number of pages. Pages past the end are empty.
func PageBounds(total, page, size int) (from, to, pages int) {
	if size < 1 {
		size = 1
	}
	if page < 1 {
		page = 1
	}
	pages = (total + size - 1) / size
	from = (page - 1) * size
	if from > total {
		from = total
	}
	to = from + size
	if to > total {
		to = total
	}
	return from, to, pages
}
