package domain

import "fmt"

// Post is a single record of the remote collection.
type Post struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Body  string `json:"body"`
}

// SortKey names the Post field the visible list is ordered by.
// The zero value keeps the server order.
type SortKey string

const (
	SortNone  SortKey = ""
	SortTitle SortKey = "title"
	SortBody  SortKey = "body"
)

// SortKeys lists the keys a renderer may offer, in display order.
var SortKeys = []SortKey{SortNone, SortTitle, SortBody}

func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(s); k {
	case SortNone, SortTitle, SortBody:
		return k, nil
	default:
		return SortNone, fmt.Errorf("%w: %q", ErrInvalidSortKey, s)
	}
}

// Field returns the value of the field named by k.
func (k SortKey) Field(p Post) string {
	switch k {
	case SortTitle:
		return p.Title
	case SortBody:
		return p.Body
	default:
		return ""
	}
}

// Label is the human readable name of the sort option.
func (k SortKey) Label() string {
	switch k {
	case SortTitle:
		return "by title"
	case SortBody:
		return "by description"
	default:
		return "server order"
	}
}

// PageResult is one page of the remote collection together with the
// collection size reported out of band by the server.
type PageResult struct {
	Posts      []Post
	TotalCount int
}
