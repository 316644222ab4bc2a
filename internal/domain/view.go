package domain

import "time"

// Status describes the outcome of the most recent page fetch.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusFailed  Status = "failed"
)

// EmptyReason tells a renderer why the visible list is empty.
type EmptyReason string

const (
	EmptyNone      EmptyReason = ""
	EmptyNoPosts   EmptyReason = "no_posts"
	EmptyNoMatches EmptyReason = "no_matches"
	EmptyFailed    EmptyReason = "fetch_failed"
)

// ViewState is the complete local state behind the current screen.
// It has a single owner; readers get a Snapshot.
type ViewState struct {
	Page        []Post
	PageNumber  int
	Limit       int
	TotalCount  int
	TotalKnown  bool
	SortKey     SortKey
	SearchQuery string
	Status      Status
	LastErr     error
}

func NewViewState(limit int) *ViewState {
	return &ViewState{
		PageNumber: 1,
		Limit:      limit,
		Status:     StatusIdle,
	}
}

// TotalPages is ceil(TotalCount / Limit).
func (v *ViewState) TotalPages() int {
	if v.Limit <= 0 || v.TotalCount <= 0 {
		return 0
	}
	return (v.TotalCount + v.Limit - 1) / v.Limit
}

// Clamp bounds a requested page number to [1, TotalPages]. Before the first
// successful fetch only the lower bound applies.
func (v *ViewState) Clamp(n int) int {
	if v.TotalKnown {
		if last := v.TotalPages(); n > last {
			n = last
		}
	}
	if n < 1 {
		n = 1
	}
	return n
}

func (v *ViewState) IndexOf(id int64) int {
	for i, p := range v.Page {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// Snapshot is the read-only view handed to renderers. Version increases by
// one with every change, so consumers can order snapshots.
type Snapshot struct {
	Version     uint64      `json:"version"`
	Visible     []Post      `json:"visible"`
	PageSize    int         `json:"page_size"`
	PageNumber  int         `json:"page_number"`
	TotalPages  int         `json:"total_pages"`
	TotalCount  int         `json:"total_count"`
	Loaded      int         `json:"loaded"`
	SortKey     SortKey     `json:"sort_key"`
	SearchQuery string      `json:"search_query"`
	Status      Status      `json:"status"`
	Err         error       `json:"-"`
	Empty       EmptyReason `json:"empty,omitempty"`
}

func (s Snapshot) HasPrev() bool {
	return s.PageNumber > 1
}

func (s Snapshot) HasNext() bool {
	return s.PageNumber < s.TotalPages
}

// EventKind identifies which intent produced a ViewEvent.
type EventKind string

const (
	EventPageLoaded    EventKind = "page_loaded"
	EventFetchFailed   EventKind = "fetch_failed"
	EventPostCreated   EventKind = "post_created"
	EventPostRemoved   EventKind = "post_removed"
	EventSortChanged   EventKind = "sort_changed"
	EventSearchChanged EventKind = "search_changed"
)

type ViewEvent struct {
	Kind       EventKind `json:"kind"`
	Snapshot   Snapshot  `json:"snapshot"`
	OccurredAt time.Time `json:"occurred_at"`
}
