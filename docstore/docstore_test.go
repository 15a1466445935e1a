package docstore

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kvindex/docdb/changelog"
	"github.com/kvindex/docdb/query"
	"github.com/kvindex/docdb/storage"
	"github.com/kvindex/docdb/tagged"
)

func openTest(t *testing.T) *DocStore {
	t.Helper()
	s, err := storage.OpenBadger("", storage.WithInMemory())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return New(s)
}

func TestSetThenGetRoundTrips(t *testing.T) {
	d := openTest(t)
	body := map[string]any{"name": "alice", "age": float64(30)}

	require.NoError(t, d.Set("doc1", body))

	got, err := d.Get("doc1")
	require.NoError(t, err)
	assert.Equal(t, body, got)
}

func TestGetMissingDocReturnsErrNotFound(t *testing.T) {
	d := openTest(t)
	_, err := d.Get("nope")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestDeleteRemovesDocAndIndexEntries(t *testing.T) {
	d := openTest(t)
	require.NoError(t, d.Set("doc1", map[string]any{"age": float64(30)}))

	p, err := query.PathOf("age")
	require.NoError(t, err)

	result, err := d.Search(query.E(p, tagged.MustNumber(30)))
	require.NoError(t, err)
	require.Equal(t, []string{"doc1"}, result.IDs)

	require.NoError(t, d.Delete("doc1"))

	_, err = d.Get("doc1")
	assert.True(t, errors.Is(err, ErrNotFound))

	result, err = d.Search(query.E(p, tagged.MustNumber(30)))
	require.NoError(t, err)
	assert.Empty(t, result.IDs)
}

func TestDeleteMissingDocReturnsErrNotFound(t *testing.T) {
	d := openTest(t)
	err := d.Delete("nope")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestSetOverwriteReplacesIndexEntries(t *testing.T) {
	d := openTest(t)
	p, err := query.PathOf("city")
	require.NoError(t, err)

	require.NoError(t, d.Set("doc1", map[string]any{"city": "nyc"}))
	require.NoError(t, d.Set("doc1", map[string]any{"city": "sf"}))

	nycResult, err := d.Search(query.E(p, tagged.MustString("nyc")))
	require.NoError(t, err)
	assert.Empty(t, nycResult.IDs)

	sfResult, err := d.Search(query.E(p, tagged.MustString("sf")))
	require.NoError(t, err)
	assert.Equal(t, []string{"doc1"}, sfResult.IDs)
}

func TestSearchWithConjunctionOfDistinctPaths(t *testing.T) {
	d := openTest(t)
	agePath, err := query.PathOf("age")
	require.NoError(t, err)
	cityPath, err := query.PathOf("city")
	require.NoError(t, err)

	require.NoError(t, d.Set("doc1", map[string]any{"age": float64(30), "city": "nyc"}))
	require.NoError(t, d.Set("doc2", map[string]any{"age": float64(30), "city": "sf"}))
	require.NoError(t, d.Set("doc3", map[string]any{"age": float64(45), "city": "nyc"}))

	result, err := d.Search(
		query.E(agePath, tagged.MustNumber(30)),
		query.E(cityPath, tagged.MustString("nyc")),
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"doc1"}, result.IDs)
}

func TestSearchArrayIndexedPaths(t *testing.T) {
	d := openTest(t)
	require.NoError(t, d.Set("doc1", map[string]any{
		"arrs": []any{map[string]any{"animals": []any{"cat", "dog"}}},
	}))
	require.NoError(t, d.Set("doc2", map[string]any{
		"arrs": []any{map[string]any{"animals": []any{"fish"}}},
	}))

	p, err := query.PathOf("arrs", 0, "animals", 0)
	require.NoError(t, err)

	result, err := d.Search(query.E(p, tagged.MustString("cat")))
	require.NoError(t, err)
	assert.Equal(t, []string{"doc1"}, result.IDs)
}

type recordingPublisher struct {
	events []changelog.Event
}

func (r *recordingPublisher) Publish(e changelog.Event) { r.events = append(r.events, e) }

func TestSetAndDeletePublishChangelogEvents(t *testing.T) {
	s, err := storage.OpenBadger("", storage.WithInMemory())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	rec := &recordingPublisher{}
	d := New(s, WithPublisher(rec))

	require.NoError(t, d.Set("doc1", map[string]any{"x": float64(1)}))
	require.NoError(t, d.Delete("doc1"))

	require.Len(t, rec.events, 2)
	assert.Equal(t, changelog.OpSet, rec.events[0].Op)
	assert.Equal(t, changelog.OpDelete, rec.events[1].Op)
}
