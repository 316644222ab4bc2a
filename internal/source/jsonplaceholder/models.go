package jsonplaceholder

// APIPost is one element of the posts collection response.
type APIPost struct {
	UserID int64  `json:"userId"`
	ID     int64  `json:"id"`
	Title  string `json:"title"`
	Body   string `json:"body"`
}

// TotalCountHeader carries the collection size; the body is a bare array.
const TotalCountHeader = "X-Total-Count"
