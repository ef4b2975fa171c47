// Copyright 2025 The NLP Odyssey Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package memory

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLiteArchive(t *testing.T) *SQLiteArchive {
	t.Helper()
	archive, err := NewSQLiteArchive(t.Context(), SQLiteArchiveParams{
		DBDataSourceName: filepath.Join(t.TempDir(), "test.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, archive.Close(t.Context())) })
	return archive
}

func testEntries() []Entry {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	entries := []Entry{
		NewEntry("solar panels", "Solar Panel Efficiency", `{"topic":"Solar Panel Efficiency"}`, "raw 1"),
		NewEntry("wind turbines", "Wind Power", `{"topic":"Wind Power"}`, "raw 2"),
		NewEntry("tidal energy", "Tidal Energy", `{"topic":"Tidal Energy"}`, "raw 3"),
	}
	for i := range entries {
		entries[i].CreatedAt = base.Add(time.Duration(i) * time.Minute)
	}
	return entries
}

func TestSQLiteArchive_Recent(t *testing.T) {
	ctx := t.Context()

	t.Run("empty", func(t *testing.T) {
		archive := newTestSQLiteArchive(t)
		entries, err := archive.Recent(ctx, 0)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("no limit", func(t *testing.T) {
		archive := newTestSQLiteArchive(t)
		entries := testEntries()
		for _, e := range entries {
			require.NoError(t, archive.Record(ctx, e))
		}

		got, err := archive.Recent(ctx, 0)
		require.NoError(t, err)
		assert.Equal(t, []Entry{entries[2], entries[1], entries[0]}, got)
	})

	t.Run("with limit", func(t *testing.T) {
		archive := newTestSQLiteArchive(t)
		entries := testEntries()
		for _, e := range entries {
			require.NoError(t, archive.Record(ctx, e))
		}

		got, err := archive.Recent(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, []Entry{entries[2], entries[1]}, got)
	})

	t.Run("same timestamp keeps insertion order", func(t *testing.T) {
		archive := newTestSQLiteArchive(t)
		entries := testEntries()
		for i := range entries {
			entries[i].CreatedAt = entries[0].CreatedAt
			require.NoError(t, archive.Record(ctx, entries[i]))
		}

		got, err := archive.Recent(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, []Entry{entries[2]}, got)
	})
}

func TestSQLiteArchive_RecordDuplicateID(t *testing.T) {
	archive := newTestSQLiteArchive(t)
	entry := testEntries()[0]

	require.NoError(t, archive.Record(t.Context(), entry))
	assert.Error(t, archive.Record(t.Context(), entry))
}

func TestSQLiteArchive_Persistence(t *testing.T) {
	ctx := t.Context()
	path := filepath.Join(t.TempDir(), "history.db")
	entry := testEntries()[0]

	archive, err := NewSQLiteArchive(ctx, SQLiteArchiveParams{DBDataSourceName: path, Table: "custom"})
	require.NoError(t, err)
	require.NoError(t, archive.Record(ctx, entry))
	require.NoError(t, archive.Close(ctx))

	archive, err = NewSQLiteArchive(ctx, SQLiteArchiveParams{DBDataSourceName: path, Table: "custom"})
	require.NoError(t, err)
	defer func() { assert.NoError(t, archive.Close(ctx)) }()

	got, err := archive.Recent(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, []Entry{entry}, got)
}

func TestSQLiteArchive_Concurrency(t *testing.T) {
	archive := newTestSQLiteArchive(t)
	ctx := t.Context()

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, archive.Record(ctx, NewEntry("q", "t", "{}", "raw")))
		}()
	}
	wg.Wait()

	got, err := archive.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, got, 10)
}
