// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package crossref

import "fmt"

// DataError reports a crossref entry that is present but lacks its required
// "sym" string. It names the symbol whose record carried the entry and the
// field or edge the entry was found under. Data errors are fatal to the
// traversal that hits them.
type DataError struct {
	// Sym is the symbol whose record contained the malformed entry.
	Sym Symbol

	// Field names where the entry was found, e.g. "meta overrides" or
	// "edge callees".
	Field string
}

// Error implements the error interface.
func (e *DataError) Error() string {
	return fmt.Sprintf("bad edge info in sym %s on %s", e.Sym, e.Field)
}
