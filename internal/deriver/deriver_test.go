package deriver

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"post_browser/internal/domain"
)

func titles(posts []domain.Post) []string {
	out := make([]string, len(posts))
	for i, p := range posts {
		out[i] = p.Title
	}
	return out
}

func ids(posts []domain.Post) []int64 {
	out := make([]int64, len(posts))
	for i, p := range posts {
		out[i] = p.ID
	}
	return out
}

func samplePage() []domain.Post {
	return []domain.Post{
		{ID: 1, Title: "Cherry tart", Body: "b"},
		{ID: 2, Title: "banana bread", Body: "c"},
		{ID: 3, Title: "Apple pie", Body: "a"},
	}
}

func TestDerive_SortsByTitleWithCollation(t *testing.T) {
	d := New("en")

	got := slices.Collect(d.Derive(samplePage(), domain.SortTitle, ""))

	assert.Equal(t, []string{"Apple pie", "banana bread", "Cherry tart"}, titles(got))
}

func TestDerive_SortThenSearch(t *testing.T) {
	d := New("en")

	// "tart" contains an "a", so every title matches.
	got := slices.Collect(d.Derive(samplePage(), domain.SortTitle, "a"))
	assert.Equal(t, []string{"Apple pie", "banana bread", "Cherry tart"}, titles(got))

	got = slices.Collect(d.Derive(samplePage(), domain.SortTitle, "AN"))
	assert.Equal(t, []string{"banana bread"}, titles(got))

	got = slices.Collect(d.Derive(samplePage(), domain.SortTitle, "p"))
	assert.Equal(t, []string{"Apple pie"}, titles(got))
}

func TestDerive_SortByBody(t *testing.T) {
	d := New("en")

	got := slices.Collect(d.Derive(samplePage(), domain.SortBody, ""))

	assert.Equal(t, []int64{3, 1, 2}, ids(got))
}

func TestDerive_UnsetSortEqualsFilterOnPage(t *testing.T) {
	d := New("en")
	page := samplePage()

	for _, q := range []string{"", "a", "tart", "zzz", "E"} {
		derived := slices.Collect(d.Derive(page, domain.SortNone, q))
		direct := slices.Collect(Filter(slices.Values(page), q))
		assert.Equal(t, direct, derived, "query %q", q)
	}
}

func TestSort_IsStable(t *testing.T) {
	d := New("en")
	page := []domain.Post{
		{ID: 1, Title: "same"},
		{ID: 2, Title: "alpha"},
		{ID: 3, Title: "same"},
		{ID: 4, Title: "same"},
		{ID: 5, Title: "alpha"},
	}

	got := slices.Collect(d.Sort(page, domain.SortTitle))

	assert.Equal(t, []int64{2, 5, 1, 3, 4}, ids(got))
}

func TestFilter_IsIdempotent(t *testing.T) {
	page := []domain.Post{
		{ID: 1, Title: "Straße"},
		{ID: 2, Title: "STRASSE"},
		{ID: 3, Title: "road"},
		{ID: 4, Title: "Main Street"},
	}

	for _, q := range []string{"", "str", "strasse", "o"} {
		once := slices.Collect(Filter(slices.Values(page), q))
		twice := slices.Collect(Filter(slices.Values(once), q))
		assert.Equal(t, once, twice, "query %q", q)
	}
}

func TestFilter_CaseInsensitive(t *testing.T) {
	page := []domain.Post{
		{ID: 1, Title: "Hello World"},
		{ID: 2, Title: "goodbye"},
	}

	got := slices.Collect(Filter(slices.Values(page), "WORLD"))

	require.Len(t, got, 1)
	assert.Equal(t, int64(1), got[0].ID)
}

func TestFilter_MatchesTitleOnly(t *testing.T) {
	page := []domain.Post{{ID: 1, Title: "nothing", Body: "needle"}}

	got := slices.Collect(Filter(slices.Values(page), "needle"))

	assert.Empty(t, got)
}

func TestDerive_DoesNotMutateInput(t *testing.T) {
	d := New("en")
	page := samplePage()
	before := slices.Clone(page)

	_ = slices.Collect(d.Derive(page, domain.SortTitle, "a"))

	assert.Equal(t, before, page)
}

func TestDerive_IsRestartable(t *testing.T) {
	d := New("en")
	seq := d.Derive(samplePage(), domain.SortTitle, "")

	first := slices.Collect(seq)
	second := slices.Collect(seq)

	assert.Equal(t, first, second)
	assert.Len(t, first, 3)
}

func TestDerive_StopsEarly(t *testing.T) {
	d := New("en")

	var seen []string
	for p := range d.Derive(samplePage(), domain.SortTitle, "") {
		seen = append(seen, p.Title)
		if len(seen) == 2 {
			break
		}
	}

	assert.Equal(t, []string{"Apple pie", "banana bread"}, seen)
}

func TestNew_InvalidLocaleFallsBack(t *testing.T) {
	d := New("!!")

	assert.Equal(t, DefaultLocale, d.Locale().String())
}
