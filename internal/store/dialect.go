package store

import (
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx"
	_ "modernc.org/sqlite"             // registers "sqlite"
)

type dialect struct {
	driver    Driver
	sqlDriver string
	pragmas   []string
	// numbered placeholders ($1, $2, ...) instead of ?
	numbered bool
}

func dialectFor(d Driver) dialect {
	if d == DriverPostgres {
		return dialect{driver: DriverPostgres, sqlDriver: "pgx", numbered: true}
	}
	return dialect{
		driver:    DriverSQLite,
		sqlDriver: "sqlite",
		// WAL enables one writer + many readers; busy_timeout avoids "database is locked"
		// when the CLI and TUI run side by side.
		pragmas: []string{
			"PRAGMA journal_mode=WAL;",
			"PRAGMA synchronous=NORMAL;",
			"PRAGMA foreign_keys=ON;",
			"PRAGMA busy_timeout=5000;",
		},
	}
}

// rebind rewrites ? placeholders to $n for Postgres. Question marks inside single-quoted
// literals are left alone.
func (d dialect) rebind(q string) string {
	if !d.numbered || !strings.Contains(q, "?") {
		return q
	}
	var b strings.Builder
	b.Grow(len(q) + 8)
	n := 0
	inQuote := false
	for i := 0; i < len(q); i++ {
		c := q[i]
		switch {
		case c == '\'':
			inQuote = !inQuote
			b.WriteByte(c)
		case c == '?' && !inQuote:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
