package storage

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTest(t *testing.T) *BadgerStore {
	t.Helper()
	s, err := OpenBadger("", WithInMemory())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestGetMissingKeyReturnsErrNotFound(t *testing.T) {
	s := openTest(t)
	_, err := s.Get([]byte("missing"))
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestPutThenGet(t *testing.T) {
	s := openTest(t)
	b := s.NewBatch()
	b.Put([]byte("k1"), []byte("v1"))
	require.NoError(t, b.Commit())

	got, err := s.Get([]byte("k1"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), got)
}

func TestBatchIsAtomic(t *testing.T) {
	s := openTest(t)
	b := s.NewBatch()
	b.Put([]byte("a"), []byte("1"))
	b.Put([]byte("b"), []byte("2"))
	require.NoError(t, b.Commit())

	got, err := s.Get([]byte("a"))
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), got)
	got, err = s.Get([]byte("b"))
	require.NoError(t, err)
	assert.Equal(t, []byte("2"), got)
}

func TestDeleteRemovesKey(t *testing.T) {
	s := openTest(t)
	b := s.NewBatch()
	b.Put([]byte("k"), []byte("v"))
	require.NoError(t, b.Commit())

	b = s.NewBatch()
	b.Delete([]byte("k"))
	require.NoError(t, b.Commit())

	_, err := s.Get([]byte("k"))
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestRangeScanIsHalfOpenAndOrdered(t *testing.T) {
	s := openTest(t)
	b := s.NewBatch()
	for _, k := range []string{"a", "b", "c", "d"} {
		b.Put([]byte(k), []byte(k))
	}
	require.NoError(t, b.Commit())

	var got []string
	err := s.Range([]byte("b"), []byte("d"), func(kv KeyValue) error {
		got = append(got, string(kv.Key))
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c"}, got)
}

func TestRangeScanStopsOnCallbackError(t *testing.T) {
	s := openTest(t)
	b := s.NewBatch()
	b.Put([]byte("a"), []byte("1"))
	b.Put([]byte("b"), []byte("2"))
	require.NoError(t, b.Commit())

	sentinel := errors.New("stop")
	err := s.Range([]byte("a"), []byte("z"), func(kv KeyValue) error {
		return sentinel
	})
	assert.True(t, errors.Is(err, sentinel))
}

func TestStringerReportsBadger(t *testing.T) {
	s := openTest(t)
	assert.Contains(t, s.String(), "badger")
}
