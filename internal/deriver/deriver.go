// Package deriver computes the visible post list from the loaded page.
package deriver

import (
	"iter"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"post_browser/internal/domain"
)

const DefaultLocale = "en"

// Deriver sorts and filters a page. It holds no state besides the collation
// locale and is safe to share.
type Deriver struct {
	locale language.Tag
}

// New returns a Deriver collating in the given BCP 47 locale. An unparsable
// locale falls back to DefaultLocale.
func New(locale string) *Deriver {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.MustParse(DefaultLocale)
	}
	return &Deriver{locale: tag}
}

func (d *Deriver) Locale() language.Tag {
	return d.locale
}

// Derive sorts page by key and then keeps the posts whose title contains
// query, ignoring case. The returned sequence is lazy and may be ranged over
// any number of times; page is copied and never modified.
func (d *Deriver) Derive(page []domain.Post, key domain.SortKey, query string) iter.Seq[domain.Post] {
	snapshot := slices.Clone(page)
	return func(yield func(domain.Post) bool) {
		for p := range Filter(d.Sort(snapshot, key), query) {
			if !yield(p) {
				return
			}
		}
	}
}

// Sort returns posts ordered by the field named by key. Equal keys keep their
// relative order. With no key the input order is kept.
func (d *Deriver) Sort(posts []domain.Post, key domain.SortKey) iter.Seq[domain.Post] {
	if key == domain.SortNone {
		return slices.Values(posts)
	}

	return func(yield func(domain.Post) bool) {
		// collate.Collator keeps scratch buffers, one per pass.
		c := collate.New(d.locale)
		sorted := slices.Clone(posts)
		slices.SortStableFunc(sorted, func(a, b domain.Post) int {
			return c.CompareString(key.Field(a), key.Field(b))
		})
		for _, p := range sorted {
			if !yield(p) {
				return
			}
		}
	}
}

// Filter keeps the posts whose title contains query under Unicode case
// folding. An empty query keeps everything.
func Filter(posts iter.Seq[domain.Post], query string) iter.Seq[domain.Post] {
	if query == "" {
		return posts
	}

	needle := cases.Fold().String(query)
	return func(yield func(domain.Post) bool) {
		fold := cases.Fold()
		for p := range posts {
			if !strings.Contains(fold.String(p.Title), needle) {
				continue
			}
			if !yield(p) {
				return
			}
		}
	}
}
