package utils

import (
	"strconv"
	"strings"
)

// Page describes one page of a result set. Numbers are 1-based.
type Page struct {
	Number   int
	NumPages int
	PerPage  int
	Count    int64
}

// GetPage resolves a raw page parameter against count items. A missing or
// non-integer value yields page 1; a value past either end yields the last
// page. An empty result still has a single, empty first page.
func GetPage(count int64, perPage int, raw string) Page {
	if perPage < 1 {
		perPage = 1
	}
	p := Page{PerPage: perPage, Count: count, NumPages: numPages(count, perPage)}

	n, err := strconv.Atoi(strings.TrimSpace(raw))
	switch {
	case err != nil:
		p.Number = 1
	case n < 1 || n > p.NumPages:
		p.Number = p.NumPages
	default:
		p.Number = n
	}
	return p
}

func numPages(count int64, perPage int) int {
	if count <= 0 {
		return 1
	}
	return int((count + int64(perPage) - 1) / int64(perPage))
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.PerPage
}

func (p Page) Limit() int {
	return p.PerPage
}

func (p Page) HasPrevious() bool { return p.Number > 1 }
func (p Page) HasNext() bool     { return p.Number < p.NumPages }
func (p Page) HasOtherPages() bool {
	return p.HasPrevious() || p.HasNext()
}

func (p Page) PreviousNumber() int { return p.Number - 1 }
func (p Page) NextNumber() int     { return p.Number + 1 }

// StartIndex is the 1-based index of the first item on the page, 0 when empty.
func (p Page) StartIndex() int64 {
	if p.Count == 0 {
		return 0
	}
	return int64(p.Offset()) + 1
}

func (p Page) EndIndex() int64 {
	end := int64(p.Number * p.PerPage)
	if end > p.Count {
		return p.Count
	}
	return end
}

// Numbers lists every page number, for pagination links.
func (p Page) Numbers() []int {
	out := make([]int, p.NumPages)
	for i := range out {
		out[i] = i + 1
	}
	return out
}
