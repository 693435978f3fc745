package store

import (
	"strconv"
	"strings"
)

// fragmentColumns is the insert order used by SaveRun.
var fragmentColumns = []string{
	"id", "run_id", "repo", "file", "line", "url",
	"category", "type", "title", "description", "example",
	"confidence", "stack", "tags",
}

type dialect struct {
	name           string
	numbered       bool // $1, $2 placeholders instead of ?
	schema         []string
	upsertFragment string
}

// rebind rewrites ? placeholders for dialects that number them.
func (d dialect) rebind(query string) string {
	if !d.numbered {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func insertFragment() string {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(fragmentColumns)), ", ")
	return "INSERT INTO fragments (" + strings.Join(fragmentColumns, ", ") + ") VALUES (" + placeholders + ")"
}

// updateAssignments renders "col = <format>" with {col} substituted, for every column but id.
func updateAssignments(format string) string {
	parts := make([]string, 0, len(fragmentColumns)-1)
	for _, col := range fragmentColumns[1:] {
		parts = append(parts, col+" = "+strings.ReplaceAll(format, "{col}", col))
	}
	return strings.Join(parts, ", ")
}

var sqliteDialect = dialect{
	name: "sqlite",
	schema: []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			repo TEXT NOT NULL,
			started_at DATETIME NOT NULL,
			fragment_count INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS fragments (
			id TEXT PRIMARY KEY,
			run_id TEXT NOT NULL,
			repo TEXT NOT NULL,
			file TEXT NOT NULL,
			line INTEGER NOT NULL,
			url TEXT NOT NULL,
			category TEXT NOT NULL,
			type TEXT NOT NULL,
			title TEXT NOT NULL,
			description TEXT NOT NULL,
			example TEXT NOT NULL,
			confidence TEXT NOT NULL,
			stack TEXT NOT NULL,
			tags TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_fragments_repo ON fragments (repo, file, line)`,
	},
	upsertFragment: insertFragment() + " ON CONFLICT (id) DO UPDATE SET " + updateAssignments("excluded.{col}"),
}

var postgresDialect = dialect{
	name:     "postgres",
	numbered: true,
	schema: []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			repo TEXT NOT NULL,
			started_at TIMESTAMPTZ NOT NULL,
			fragment_count INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS fragments (
			id TEXT PRIMARY KEY,
			run_id TEXT NOT NULL REFERENCES runs (id),
			repo TEXT NOT NULL,
			file TEXT NOT NULL,
			line INTEGER NOT NULL,
			url TEXT NOT NULL,
			category TEXT NOT NULL,
			type TEXT NOT NULL,
			title TEXT NOT NULL,
			description TEXT NOT NULL,
			example TEXT NOT NULL,
			confidence TEXT NOT NULL,
			stack TEXT NOT NULL,
			tags TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_fragments_repo ON fragments (repo, file, line)`,
	},
	upsertFragment: insertFragment() + " ON CONFLICT (id) DO UPDATE SET " + updateAssignments("EXCLUDED.{col}"),
}

// MySQL cannot index unbounded TEXT, so keys and sort columns are VARCHAR.
var mysqlDialect = dialect{
	name: "mysql",
	schema: []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id VARCHAR(36) PRIMARY KEY,
			repo VARCHAR(255) NOT NULL,
			started_at DATETIME(6) NOT NULL,
			fragment_count INT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS fragments (
			id VARCHAR(64) PRIMARY KEY,
			run_id VARCHAR(36) NOT NULL,
			repo VARCHAR(255) NOT NULL,
			file VARCHAR(512) NOT NULL,
			line INT NOT NULL,
			url TEXT NOT NULL,
			category VARCHAR(32) NOT NULL,
			type VARCHAR(32) NOT NULL,
			title TEXT NOT NULL,
			description TEXT NOT NULL,
			example TEXT NOT NULL,
			confidence VARCHAR(16) NOT NULL,
			stack TEXT NOT NULL,
			tags TEXT NOT NULL,
			INDEX idx_fragments_repo (repo, file(191), line)
		)`,
	},
	upsertFragment: insertFragment() + " ON DUPLICATE KEY UPDATE " + updateAssignments("VALUES({col})"),
}
