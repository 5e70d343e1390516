// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package resolver

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/AleutianAI/symgraph/crossref"
)

// sqliteSchema holds one crossref record per symbol. The record column is
// the raw JSON document as produced by the indexer.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS crossref (
	sym    TEXT PRIMARY KEY,
	record BLOB NOT NULL
);
`

// SQLiteStore is a crossref store backed by a single-file SQLite database.
// Convenient for index snapshots shipped as one artifact.
//
// Thread Safety: safe for concurrent use; sqlx pools connections.
type SQLiteStore struct {
	db *sqlx.DB
}

// OpenSQLite opens (or creates) a SQLite-backed crossref store at path.
// Use ":memory:" for an ephemeral store in tests.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite store %s: %w", path, err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init sqlite schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Lookup implements Store.
func (s *SQLiteStore) Lookup(ctx context.Context, sym crossref.Symbol) (*crossref.Record, error) {
	var raw []byte
	err := s.db.GetContext(ctx, &raw, `SELECT record FROM crossref WHERE sym = ?`, string(sym))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, sym)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite lookup %s: %w", sym, err)
	}
	return crossref.Decode(raw)
}

// Put implements Store.
func (s *SQLiteStore) Put(ctx context.Context, sym crossref.Symbol, record json.RawMessage) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO crossref (sym, record) VALUES (?, ?)
		 ON CONFLICT(sym) DO UPDATE SET record = excluded.record`,
		string(sym), []byte(record))
	if err != nil {
		return fmt.Errorf("sqlite put %s: %w", sym, err)
	}
	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
