// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package resolver provides crossref record stores: the backing layer that
// resolves a symbol to its precomputed crossref record.
//
// Two store implementations are provided:
//   - BadgerStore: embedded KV store (BadgerDB), the default for local
//     index snapshots with low-latency access.
//   - SQLiteStore: single-file SQLite database, convenient for snapshots
//     shipped as one artifact.
//
// Both satisfy Store and therefore graph.RecordSource. Stores are safe for
// concurrent use; transient backing failures are surfaced as-is and are the
// caller's concern.
package resolver

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/AleutianAI/symgraph/crossref"
)

// Sentinel errors for store operations.
var (
	// ErrNotFound indicates the symbol has no record in the store.
	ErrNotFound = errors.New("symbol not found in crossref store")

	// ErrStoreClosed is returned for operations on a closed store.
	ErrStoreClosed = errors.New("crossref store is closed")
)

// Store resolves symbols to crossref records and accepts records during
// index loading.
type Store interface {
	// Lookup returns the decoded record for sym, or ErrNotFound.
	Lookup(ctx context.Context, sym crossref.Symbol) (*crossref.Record, error)

	// Put stores the raw record document for sym, replacing any previous one.
	Put(ctx context.Context, sym crossref.Symbol, record json.RawMessage) error

	// Close releases store resources.
	Close() error
}

// jsonlEntry is one line of a crossref JSONL dump.
type jsonlEntry struct {
	Sym    crossref.Symbol `json:"sym"`
	Record json.RawMessage `json:"record"`
}

// LoadJSONL bulk-loads a crossref dump into the store. The input is one JSON
// object per line of the form {"sym": "...", "record": {...}}. Blank lines
// are skipped. Returns the number of records stored.
func LoadJSONL(ctx context.Context, store Store, r io.Reader) (int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	count := 0
	line := 0
	for scanner.Scan() {
		line++
		data := scanner.Bytes()
		if len(data) == 0 {
			continue
		}
		var entry jsonlEntry
		if err := json.Unmarshal(data, &entry); err != nil {
			return count, fmt.Errorf("load line %d: %w", line, err)
		}
		if entry.Sym == "" || len(entry.Record) == 0 {
			return count, fmt.Errorf("load line %d: entry needs sym and record", line)
		}
		if err := store.Put(ctx, entry.Sym, entry.Record); err != nil {
			return count, fmt.Errorf("load line %d: %w", line, err)
		}
		count++
	}
	if err := scanner.Err(); err != nil {
		return count, fmt.Errorf("load crossref dump: %w", err)
	}
	return count, nil
}
