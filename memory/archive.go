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

// Package memory keeps a history of research results in SQLite or
// PostgreSQL.
package memory

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// An Entry is one archived research result.
type Entry struct {
	ID    uuid.UUID
	Query string
	Topic string

	// The parsed response, as JSON.
	ResponseJSON string

	// The final model output, verbatim.
	RawOutput string

	CreatedAt time.Time
}

// NewEntry returns an Entry with a fresh ID, created now.
func NewEntry(query, topic, responseJSON, rawOutput string) Entry {
	return Entry{
		ID:           uuid.New(),
		Query:        query,
		Topic:        topic,
		ResponseJSON: responseJSON,
		RawOutput:    rawOutput,
		CreatedAt:    time.Now().UTC(),
	}
}

// An Archive stores research results.
type Archive interface {
	// Record stores a new entry.
	Record(ctx context.Context, entry Entry) error

	// Recent returns the latest entries, newest first.
	// If limit <= 0, all entries are returned.
	Recent(ctx context.Context, limit int) ([]Entry, error)

	// Close releases the underlying connection.
	Close(ctx context.Context) error
}

// DefaultTable is the archive table name unless configured otherwise.
const DefaultTable = "research_history"

var ErrEmptyDSN = errors.New("empty archive DSN")

// Open returns the archive for dsn: a "postgres://" or "postgresql://" URL
// selects PostgreSQL; anything else is a SQLite database path, optionally
// prefixed with "sqlite:".
func Open(ctx context.Context, dsn string) (Archive, error) {
	dsn = strings.TrimSpace(dsn)
	switch {
	case dsn == "":
		return nil, ErrEmptyDSN
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return NewPgArchive(ctx, PgArchiveParams{ConnectionString: dsn})
	default:
		return NewSQLiteArchive(ctx, SQLiteArchiveParams{
			DBDataSourceName: strings.TrimPrefix(dsn, "sqlite:"),
		})
	}
}
