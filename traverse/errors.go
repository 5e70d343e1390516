// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package traverse

import "errors"

// Configuration errors, reported before any traversal work begins. All
// traversal errors are fatal to the call; no partial graph is returned.
var (
	// ErrNoSeeds indicates the seed list was empty.
	ErrNoSeeds = errors.New("traverse requires at least one seed symbol")

	// ErrNilSource indicates the Traverser was constructed without a
	// record source.
	ErrNilSource = errors.New("traverse requires a record source")

	// ErrEmptySeedSymbol indicates a seed with an empty symbol.
	ErrEmptySeedSymbol = errors.New("seed symbol must not be empty")
)
