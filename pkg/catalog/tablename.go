package catalog

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	// DefaultTable receives rows from scans with no prefix and no explicit
	// collection.
	DefaultTable = "videos"

	// tableSuffix is appended to prefix-derived table names.
	tableSuffix = "_video"
)

// tableIdent is the allow-list for table names. Table identifiers cannot be
// parameterized like values, so anything interpolated into DDL must match.
var tableIdent = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// ResolveTableName maps an explicit collection name and a scan prefix to the
// destination table. The explicit name wins when present; otherwise the
// prefix is stripped of its trailing separator, remaining separators become
// underscores, and tableSuffix is appended ("converted/" -> "converted_video").
// An empty prefix resolves to DefaultTable. Names that fail the identifier
// allow-list are rejected with ErrInvalidTableName.
func ResolveTableName(collection, prefix string) (string, error) {
	name := strings.ToLower(strings.TrimSpace(collection))
	if name == "" {
		p := strings.TrimSuffix(strings.ToLower(strings.TrimSpace(prefix)), "/")
		if p == "" {
			name = DefaultTable
		} else {
			name = strings.ReplaceAll(p, "/", "_") + tableSuffix
		}
	}
	if !IsValidTableName(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidTableName, name)
	}
	return name, nil
}

// IsValidTableName reports whether name is safe to interpolate into a schema
// statement. Repositories re-check this before building DDL.
func IsValidTableName(name string) bool {
	return tableIdent.MatchString(name)
}
