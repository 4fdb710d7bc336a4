package pagination

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

const (
	// DefaultPageSize is the standard page size when one is not provided.
	DefaultPageSize = 20
	// MaxPageSize caps how many rows any list query can request.
	MaxPageSize = 100

	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// Params holds the pagination inputs parsed from a list request. A non-empty
// Cursor selects cursor mode and Page is ignored; the two are never combined.
type Params struct {
	Page     int
	PageSize int
	Sort     string
	Order    string
	Cursor   string
}

// CursorMode reports whether the request selected cursor traversal.
func (p Params) CursorMode() bool {
	return strings.TrimSpace(p.Cursor) != ""
}

// NormalizePage clamps the requested page to >= 1.
func NormalizePage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

// NormalizePageSize enforces the configured default and maximum page sizes.
func NormalizePageSize(size int) int {
	if size <= 0 {
		return DefaultPageSize
	}
	if size > MaxPageSize {
		return MaxPageSize
	}
	return size
}

// NormalizeOrder folds arbitrary input to asc/desc, defaulting to desc.
func NormalizeOrder(order string) string {
	if strings.EqualFold(strings.TrimSpace(order), OrderAsc) {
		return OrderAsc
	}
	return OrderDesc
}

// Offset converts a normalized page/pageSize pair into a row offset.
func Offset(page, pageSize int) int {
	return (NormalizePage(page) - 1) * NormalizePageSize(pageSize)
}

// Pages returns ceil(total/pageSize) for the offset-mode page count.
func Pages(total int64, pageSize int) int {
	size := int64(NormalizePageSize(pageSize))
	if total <= 0 {
		return 0
	}
	return int((total + size - 1) / size)
}

// LimitWithBuffer returns the normalized page size plus one row, used in
// cursor mode to detect whether a next page exists.
func LimitWithBuffer(size int) int {
	return NormalizePageSize(size) + 1
}

// ParseCursorID decodes the opaque cursor, which is the unique id of the
// last-seen row.
func ParseCursorID(value string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(value))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid cursor: %w", err)
	}
	return id, nil
}

// Links carries the navigation URLs for a list response.
type Links struct {
	Self string
	Next string
	Prev string
}

// LinkBuilder rebuilds list URLs from the request path and its active query
// parameters, so filters survive page navigation.
type LinkBuilder struct {
	path  string
	query url.Values
}

// NewLinkBuilder captures the request path and query for link construction.
func NewLinkBuilder(path string, query url.Values) LinkBuilder {
	cloned := url.Values{}
	for key, values := range query {
		for _, v := range values {
			cloned.Add(key, v)
		}
	}
	return LinkBuilder{path: path, query: cloned}
}

func (b LinkBuilder) render(q url.Values) string {
	if len(q) == 0 {
		return b.path
	}
	return b.path + "?" + q.Encode()
}

func (b LinkBuilder) withPage(page int) string {
	q := cloneValues(b.query)
	q.Del("cursor")
	q.Set("page", strconv.Itoa(page))
	return b.render(q)
}

// OffsetLinks builds self/next/prev links for offset mode. Next is empty when
// page >= pages; prev is empty when page <= 1. A page past the end links back
// to the last real page, never to another empty one.
func (b LinkBuilder) OffsetLinks(page, pages int) Links {
	links := Links{Self: b.withPage(page)}
	if page < pages {
		links.Next = b.withPage(page + 1)
	}
	if prev := min(page-1, pages); prev >= 1 {
		links.Prev = b.withPage(prev)
	}
	return links
}

// CursorLinks builds self/next links for cursor mode. No reverse cursor is
// exposed, so prev is always empty.
func (b LinkBuilder) CursorLinks(nextCursor string) Links {
	q := cloneValues(b.query)
	q.Del("page")
	links := Links{Self: b.render(q)}
	if nextCursor != "" {
		nq := cloneValues(q)
		nq.Set("cursor", nextCursor)
		links.Next = b.render(nq)
	}
	return links
}

func cloneValues(src url.Values) url.Values {
	dst := url.Values{}
	for key, values := range src {
		for _, v := range values {
			dst.Add(key, v)
		}
	}
	return dst
}
