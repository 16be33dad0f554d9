package dto

import (
	"math"
	"net/url"
	"strconv"
)

const MaxPageSize = 100

// MaxOffset bounds (page-1)*page_size so offsets and page links never overflow.
const MaxOffset = math.MaxInt32

// PageRequest is a 1-based page number and a page size.
type PageRequest struct {
	Page     int
	PageSize int
}

// InRange reports whether the page's offset stays within MaxOffset.
func (r PageRequest) InRange() bool {
	if r.Page < 1 || r.PageSize < 1 {
		return false
	}
	return r.Page-1 <= MaxOffset/r.PageSize
}

// Page is the envelope for every list endpoint.
type Page[T any] struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// NewPage builds the envelope. base is the absolute URL of the current
// request; next and previous keep its query and only swap the page number.
func NewPage[T any](results []T, total int64, req PageRequest, base *url.URL) Page[T] {
	if results == nil {
		results = []T{}
	}
	p := Page[T]{Count: total, Results: results}
	if base == nil {
		return p
	}
	if int64(req.Page)*int64(req.PageSize) < total {
		p.Next = pageLink(base, req.Page+1)
	}
	if req.Page > 1 {
		p.Previous = pageLink(base, req.Page-1)
	}
	return p
}

func pageLink(base *url.URL, page int) *string {
	u := *base
	q := u.Query()
	if page <= 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(page))
	}
	u.RawQuery = q.Encode()
	s := u.String()
	return &s
}

// MapSlice converts models to response DTOs.
func MapSlice[M any, R any](items []M, fn func(*M) R) []R {
	out := make([]R, 0, len(items))
	for i := range items {
		out = append(out, fn(&items[i]))
	}
	return out
}
