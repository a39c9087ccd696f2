package kv

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemStore(t *testing.T) {
	type snapshot struct {
		Fingerprint string
		Sounds      int
	}
	s := NewMemStore()

	_, err := s.Get(t.Context(), "catalog")
	require.ErrorIs(t, err, ErrNotFound)

	rev, err := Put(t.Context(), s, "catalog", snapshot{Fingerprint: "abc", Sounds: 3})
	require.NoError(t, err)
	require.Equal(t, uint64(1), rev)

	rev, err = Put(t.Context(), s, "catalog", snapshot{Fingerprint: "def", Sounds: 4})
	require.NoError(t, err)
	require.Equal(t, uint64(2), rev)

	v, err := Get[snapshot](t.Context(), s, "catalog")
	require.NoError(t, err)
	require.Equal(t, snapshot{Fingerprint: "def", Sounds: 4}, v)

	require.NoError(t, s.Delete(t.Context(), "catalog"))
	_, err = Get[snapshot](t.Context(), s, "catalog")
	require.ErrorIs(t, err, ErrNotFound)
}
