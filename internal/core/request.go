// AngelaMos | 2026
// request.go

package core

import (
	"net/http"
	"strconv"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// QueryInt reads an integer query parameter, returning def when it is
// absent or malformed.
func QueryInt(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

// QueryBool reads an optional boolean filter. Malformed values count as
// absent.
func QueryBool(r *http.Request, key string) *bool {
	b, err := strconv.ParseBool(r.URL.Query().Get(key))
	if err != nil {
		return nil
	}
	return &b
}

type Pagination struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

func PaginationFrom(r *http.Request) Pagination {
	p := Pagination{
		Page:     QueryInt(r, "page", 1),
		PageSize: QueryInt(r, "page_size", DefaultPageSize),
	}
	p.Normalize()
	return p
}

func (p *Pagination) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
}

func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PageSize
}
