package database

import (
	"database/sql"
	"strconv"
	"strings"
)

// Dialect abstracts the differences between the supported databases.
// Repositories write queries once, with ? placeholders and BoolValue for
// boolean literals, and the dialect adapts them per driver.
type Dialect interface {
	// DriverName returns the driver name for sql.Open
	DriverName() string

	// DSN builds the data source name for the connection
	DSN(config DialectConfig) string

	// RewriteQuery converts placeholder syntax where needed (? to $1 for postgres)
	RewriteQuery(query string) string

	// SupportsLastInsertId reports whether the driver implements LastInsertId()
	SupportsLastInsertId() bool

	// ConfigureConnection applies driver-specific connection settings
	ConfigureConnection(db *sql.DB) error

	// MigrationsSubdir returns the per-dialect migrations directory name
	MigrationsSubdir() string

	// CreateMigrationsTableQuery returns the SQL for the migrations tracking table
	CreateMigrationsTableQuery() string

	// BoolValue renders a boolean as a SQL literal
	BoolValue(b bool) string
}

// DialectConfig holds connection parameters. Path serves SQLite, URL serves
// PostgreSQL and MySQL.
type DialectConfig struct {
	Path string
	URL  string
}

// rewritePlaceholdersToNumbered converts ? placeholders to $1, $2, ...
// Question marks inside single-quoted string literals are left alone.
func rewritePlaceholdersToNumbered(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)

	n := 0
	inString := false
	for _, r := range query {
		switch {
		case r == '\'':
			inString = !inString
			b.WriteRune(r)
		case r == '?' && !inString:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
