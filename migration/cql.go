package migration

import (
	"fmt"

	"github.com/scylladb/gocqlx/v2"
)

var cqlStatements = []string{
	`CREATE TABLE IF NOT EXISTS room_logs (
		room_id text,
		bucket bigint,
		id bigint,
		author text,
		content text,
		created_at timestamp,
		PRIMARY KEY ((room_id, bucket), id)
	) WITH CLUSTERING ORDER BY (id DESC)`,
}

// MigrateCQL creates the scylla tables used when the room log store is
// backed by scylla.
func MigrateCQL(session gocqlx.Session) error {
	for _, stmt := range cqlStatements {
		if err := session.ExecStmt(stmt); err != nil {
			return fmt.Errorf("cannot exec cql statement: %w", err)
		}
	}

	return nil
}
