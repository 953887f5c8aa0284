package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryAppendAndList(t *testing.T) {
	h, err := NewHistory(filepath.Join(t.TempDir(), "data"))
	require.NoError(t, err)

	records, err := h.List(0)
	require.NoError(t, err)
	assert.Empty(t, records)

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	first, err := h.Append(Record{Time: base, Pool: "cUSDCv3", Kind: "supply", Asset: "WETH", Amount: "1.5", Outcome: OutcomeSuccess})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, first.ID)

	second, err := h.Append(Record{Time: base.Add(time.Hour), Kind: "base-borrow", Asset: "USDC", Amount: "100", Outcome: OutcomeFailed, Error: "rejected"})
	require.NoError(t, err)

	records, err = h.List(0)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, second.ID, records[0].ID)
	assert.Equal(t, first.ID, records[1].ID)
	assert.Equal(t, "rejected", records[0].Error)

	records, err = h.List(1)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestHistoryAssignsTime(t *testing.T) {
	h, err := NewHistory(t.TempDir())
	require.NoError(t, err)

	rec, err := h.Append(Record{Asset: "USDC"})
	require.NoError(t, err)
	assert.False(t, rec.Time.IsZero())
}

func TestHistoryCorruptFile(t *testing.T) {
	dir := t.TempDir()
	h, err := NewHistory(dir)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(h.Path(), []byte("{not json"), 0600))

	_, err = h.List(0)
	assert.Error(t, err)
	_, err = h.Append(Record{})
	assert.Error(t, err)
}
