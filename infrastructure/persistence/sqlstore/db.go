package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"
)

// Supported drivers.
const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

// Open opens a database connection for driver, configures it and checks
// that the server is reachable.
func Open(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	inMemory := driver == DriverSQLite && isMemoryDSN(dsn)
	if driver == DriverSQLite {
		dsn = SQLiteDSN(dsn)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// each connection to ":memory:" is a separate database
	if inMemory {
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	return db, nil
}

// SQLiteDSN appends the connection pragmas as _pragma parameters. The
// driver runs them on every new pooled connection. Pragmas already present
// in dsn are kept and not repeated.
func SQLiteDSN(dsn string) string {
	pragmas := []string{"busy_timeout(5000)", "synchronous(NORMAL)"}
	if !isMemoryDSN(dsn) {
		pragmas = append(pragmas, "journal_mode(WAL)")
	}

	var params []string
	for _, p := range pragmas {
		name := p[:strings.IndexByte(p, '(')]
		if strings.Contains(dsn, "_pragma="+name) {
			continue
		}
		params = append(params, "_pragma="+p)
	}
	if len(params) == 0 {
		return dsn
	}

	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + strings.Join(params, "&")
}

func isMemoryDSN(dsn string) bool {
	return strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")
}
