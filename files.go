package auth

import (
	"embed"
	"fmt"
	"io/fs"
)

//go:embed data/sql/migrations
var migrationsFS embed.FS

// DialectMigrationsFS returns the migrations of one dialect,
// "sqlite" or "postgres", rooted at the dialect directory
func DialectMigrationsFS(dialect string) (fs.FS, error) {
	dir := "data/sql/migrations/" + dialect
	if _, err := fs.Stat(migrationsFS, dir); err != nil {
		return nil, fmt.Errorf("no migrations for dialect %q: %w", dialect, err)
	}
	return fs.Sub(migrationsFS, dir)
}
