package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"post_browser/internal/deriver"
	"post_browser/internal/domain"
)

// Observer receives a fresh Snapshot after every change of the view state.
type Observer func(domain.Snapshot)

type subscription struct {
	id int
	fn Observer
}

// Controller owns a ViewState and is its only writer. Page fetches run
// without holding the lock; only the result of the most recent request is
// applied.
//
// Every change is committed while holding emitMu, so observers and the
// publisher see snapshots in the order their versions were assigned.
type Controller struct {
	source    RecordSource
	deriver   *deriver.Deriver
	publisher Publisher
	logger    *slog.Logger
	now       func() time.Time

	emitMu sync.Mutex

	mu        sync.Mutex
	state     *domain.ViewState
	gen       uint64
	version   uint64
	observers []subscription
	nextSub   int
}

func NewController(
	source RecordSource,
	state *domain.ViewState,
	d *deriver.Deriver,
	publisher Publisher,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		source:    source,
		state:     state,
		deriver:   d,
		publisher: publisher,
		logger:    logger.With("source", source.ID()),
		now:       time.Now,
	}
}

// Subscribe registers fn for state changes. The returned func removes it.
// Observers must not call back into mutating Controller methods.
func (c *Controller) Subscribe(fn Observer) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextSub++
	id := c.nextSub
	c.observers = append(c.observers, subscription{id: id, fn: fn})

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.observers = slices.DeleteFunc(c.observers, func(s subscription) bool {
			return s.id == id
		})
	}
}

func (c *Controller) Snapshot() domain.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// commit runs mutate under the state lock. When mutate reports a change the
// new snapshot is delivered before commit returns.
func (c *Controller) commit(ctx context.Context, kind domain.EventKind, mutate func() bool) (domain.Snapshot, bool) {
	c.emitMu.Lock()
	defer c.emitMu.Unlock()

	c.mu.Lock()
	if !mutate() {
		snap := c.snapshotLocked()
		c.mu.Unlock()
		return snap, false
	}
	c.version++
	snap := c.snapshotLocked()
	observers := slices.Clone(c.observers)
	c.mu.Unlock()

	c.deliver(ctx, kind, snap, observers)
	return snap, true
}

// LoadPage fetches page n and replaces the loaded page with the result.
// n is clamped to the last page, both against the total known before the
// fetch and against the total the fetch reports; a page found to be past
// the end is replaced by a fetch of the last page.
// A failed fetch empties the page, keeps the known total and returns a
// *domain.FetchError. If another LoadPage starts before this one returns,
// the result is dropped and domain.ErrSuperseded returned.
func (c *Controller) LoadPage(ctx context.Context, n int) error {
	if n < 1 {
		return fmt.Errorf("load page %d: %w", n, domain.ErrInvalidPage)
	}

	var (
		gen   uint64
		limit int
	)
	c.commit(ctx, "", func() bool {
		n = c.state.Clamp(n)
		c.gen++
		gen = c.gen
		c.state.PageNumber = n
		c.state.Status = domain.StatusLoading
		limit = c.state.Limit
		return true
	})

	for {
		res, err := c.source.FetchPage(ctx, limit, n)

		var (
			superseded bool
			reloadLast int
			result     error
		)
		kind := domain.EventPageLoaded
		if err != nil {
			kind = domain.EventFetchFailed
		}

		snap, applied := c.commit(ctx, kind, func() bool {
			if gen != c.gen {
				superseded = true
				return false
			}

			if err != nil {
				result = &domain.FetchError{Page: n, Err: err}
				c.state.Page = nil
				c.state.Status = domain.StatusFailed
				c.state.LastErr = result
				return true
			}

			c.state.TotalCount = res.TotalCount
			c.state.TotalKnown = true
			if last := c.state.TotalPages(); last > 0 && n > last {
				reloadLast = last
				c.gen++
				gen = c.gen
				return false
			}

			c.state.PageNumber = c.state.Clamp(n)
			c.state.Page = res.Posts
			c.state.Status = domain.StatusReady
			c.state.LastErr = nil
			return true
		})

		switch {
		case superseded:
			c.logger.Debug("discarding stale page", "page", n)
			return domain.ErrSuperseded
		case reloadLast > 0:
			c.logger.Info("page past the end of the collection, loading last page",
				"page", n,
				"last_page", reloadLast,
				"total_count", res.TotalCount,
			)
			n = reloadLast
			continue
		case result != nil:
			c.logger.Error("failed to load page", "page", n, "error", err)
			return result
		case applied:
			c.logger.Info("page loaded",
				"page", snap.PageNumber,
				"posts", len(res.Posts),
				"total_count", res.TotalCount,
				"total_pages", snap.TotalPages,
			)
		}
		return nil
	}
}

// GoToPage moves the cursor by delta pages, never leaving [1, totalPages].
func (c *Controller) GoToPage(ctx context.Context, delta int) error {
	c.mu.Lock()
	target := c.state.PageNumber + delta
	c.mu.Unlock()

	return c.SetPage(ctx, target)
}

// SetPage moves the cursor to page n, clamped to the known bounds. Moving to
// the page already shown does not fetch.
func (c *Controller) SetPage(ctx context.Context, n int) error {
	c.mu.Lock()
	target := c.state.Clamp(n)
	unchanged := target == c.state.PageNumber && c.state.Status != domain.StatusIdle
	c.mu.Unlock()

	if unchanged {
		return nil
	}
	return c.LoadPage(ctx, target)
}

// Refresh fetches the current page again.
func (c *Controller) Refresh(ctx context.Context) error {
	c.mu.Lock()
	n := c.state.PageNumber
	c.mu.Unlock()

	return c.LoadPage(ctx, n)
}

func (c *Controller) SetSort(key domain.SortKey) error {
	if _, err := domain.ParseSortKey(string(key)); err != nil {
		return err
	}

	c.commit(context.Background(), domain.EventSortChanged, func() bool {
		if c.state.SortKey == key {
			return false
		}
		c.state.SortKey = key
		return true
	})
	return nil
}

func (c *Controller) SetSearch(query string) {
	c.commit(context.Background(), domain.EventSearchChanged, func() bool {
		if c.state.SearchQuery == query {
			return false
		}
		c.state.SearchQuery = query
		return true
	})
}

// Create appends an already persisted post to the loaded page. The total
// count is left alone until the next fetch.
func (c *Controller) Create(post domain.Post) error {
	var err error
	c.commit(context.Background(), domain.EventPostCreated, func() bool {
		if c.state.IndexOf(post.ID) >= 0 {
			err = &domain.DuplicateError{ID: post.ID}
			return false
		}
		c.state.Page = append(slices.Clip(c.state.Page), post)
		return true
	})
	if err != nil {
		return err
	}

	c.logger.Debug("post created", "id", post.ID)
	return nil
}

// Remove drops a post from the loaded page. The total count is left alone
// until the next fetch.
func (c *Controller) Remove(id int64) error {
	var err error
	c.commit(context.Background(), domain.EventPostRemoved, func() bool {
		i := c.state.IndexOf(id)
		if i < 0 {
			err = &domain.NotFoundError{ID: id}
			return false
		}
		c.state.Page = slices.Delete(slices.Clone(c.state.Page), i, i+1)
		return true
	})
	if err != nil {
		return err
	}

	c.logger.Debug("post removed", "id", id)
	return nil
}

// NextID allocates an identifier for a locally composed post: the current
// time in milliseconds, bumped past any ID already on the page.
func (c *Controller) NextID() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.now().UnixMilli()
	for c.state.IndexOf(id) >= 0 {
		id++
	}
	return id
}

func (c *Controller) snapshotLocked() domain.Snapshot {
	s := c.state
	visible := slices.Collect(c.deriver.Derive(s.Page, s.SortKey, s.SearchQuery))

	snap := domain.Snapshot{
		Version:     c.version,
		Visible:     visible,
		PageSize:    s.Limit,
		PageNumber:  s.PageNumber,
		TotalPages:  s.TotalPages(),
		TotalCount:  s.TotalCount,
		Loaded:      len(s.Page),
		SortKey:     s.SortKey,
		SearchQuery: s.SearchQuery,
		Status:      s.Status,
		Err:         s.LastErr,
	}

	if len(visible) == 0 {
		switch {
		case s.Status == domain.StatusFailed:
			snap.Empty = domain.EmptyFailed
		case len(s.Page) == 0:
			snap.Empty = domain.EmptyNoPosts
		default:
			snap.Empty = domain.EmptyNoMatches
		}
	}

	return snap
}

func (c *Controller) deliver(ctx context.Context, kind domain.EventKind, snap domain.Snapshot, observers []subscription) {
	for _, o := range observers {
		o.fn(snap)
	}

	if kind == "" || c.publisher == nil {
		return
	}

	event := &domain.ViewEvent{
		Kind:       kind,
		Snapshot:   snap,
		OccurredAt: c.now().UTC(),
	}
	if err := c.publisher.Publish(ctx, event); err != nil {
		c.logger.Warn("failed to publish view event", "kind", kind, "error", err)
	}
}
