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
	"cmp"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// SQLiteArchive is a SQLite-based implementation of Archive.
//
// By default, uses an in-memory database that is lost when the process ends.
// For persistent storage, provide a file path.
type SQLiteArchive struct {
	dbDSN string
	table string
	db    *sql.DB
	mu    sync.Mutex
}

type SQLiteArchiveParams struct {
	// Optional database data source name.
	// Defaults to "file::memory:?cache=shared".
	DBDataSourceName string

	// Optional name of the table to store entries.
	// Defaults to DefaultTable.
	Table string
}

// NewSQLiteArchive opens the database and creates the table if missing.
func NewSQLiteArchive(ctx context.Context, params SQLiteArchiveParams) (_ *SQLiteArchive, err error) {
	a := &SQLiteArchive{
		dbDSN: cmp.Or(params.DBDataSourceName, "file::memory:?cache=shared"),
		table: cmp.Or(params.Table, DefaultTable),
	}

	a.db, err = sql.Open("sqlite3", a.dbDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite3 database: %w", err)
	}

	defer func() {
		if err != nil {
			if e := a.db.Close(); e != nil {
				err = errors.Join(err, e)
			}
		}
	}()

	_, err = a.db.ExecContext(ctx, `PRAGMA journal_mode=WAL`)
	if err != nil {
		return nil, fmt.Errorf("failed to set journal mode: %w", err)
	}

	if err = a.initDB(ctx); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *SQLiteArchive) Record(ctx context.Context, entry Entry) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	_, err := a.db.ExecContext(
		ctx,
		fmt.Sprintf(`
			INSERT INTO "%s" (id, query, topic, response_json, raw_output, created_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`, a.table),
		entry.ID.String(), entry.Query, entry.Topic, entry.ResponseJSON, entry.RawOutput,
		entry.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("error inserting archive entry: %w", err)
	}
	return nil
}

func (a *SQLiteArchive) Recent(ctx context.Context, limit int) (_ []Entry, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if limit <= 0 {
		limit = -1 // no limit
	}
	rows, err := a.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT id, query, topic, response_json, raw_output, created_at FROM "%s"
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`, a.table), limit)
	if err != nil {
		return nil, fmt.Errorf("error querying archive entries: %w", err)
	}
	defer func() {
		if e := rows.Close(); e != nil {
			err = errors.Join(err, fmt.Errorf("error closing sql.Rows: %w", e))
		}
	}()

	var entries []Entry
	for rows.Next() {
		var (
			entry     Entry
			id        string
			createdAt int64
		)
		err = rows.Scan(&id, &entry.Query, &entry.Topic, &entry.ResponseJSON, &entry.RawOutput, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("sql rows scan error: %w", err)
		}
		if entry.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("invalid archive entry ID %q: %w", id, err)
		}
		entry.CreatedAt = time.Unix(0, createdAt).UTC()
		entries = append(entries, entry)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("sql rows scan error: %w", err)
	}
	return entries, nil
}

// Initialize the database schema.
func (a *SQLiteArchive) initDB(ctx context.Context) error {
	_, err := a.db.ExecContext(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS "%s" (
			id TEXT PRIMARY KEY,
			query TEXT NOT NULL,
			topic TEXT NOT NULL,
			response_json TEXT NOT NULL,
			raw_output TEXT NOT NULL,
			created_at INTEGER NOT NULL
		)
	`, a.table))
	if err != nil {
		return fmt.Errorf("error creating archive table: %w", err)
	}

	_, err = a.db.ExecContext(ctx, fmt.Sprintf(
		`CREATE INDEX IF NOT EXISTS "idx_%s_created_at" ON "%s" (created_at)`,
		a.table, a.table))
	if err != nil {
		return fmt.Errorf("error creating index: %w", err)
	}

	return nil
}

// Close the database connection.
func (a *SQLiteArchive) Close(context.Context) error {
	return a.db.Close()
}
