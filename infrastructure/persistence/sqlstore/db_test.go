package sqlstore

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteDSN(t *testing.T) {
	tests := []struct {
		name string
		dsn  string
		want string
	}{
		{"memory", ":memory:", ":memory:?_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"},
		{"file", "clothing.db", "clothing.db?_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_pragma=journal_mode(WAL)"},
		{"existing query", "file:clothing.db?cache=shared", "file:clothing.db?cache=shared&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_pragma=journal_mode(WAL)"},
		{"caller pragma kept", "clothing.db?_pragma=busy_timeout(100)", "clothing.db?_pragma=busy_timeout(100)&_pragma=synchronous(NORMAL)&_pragma=journal_mode(WAL)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SQLiteDSN(tt.dsn))
		})
	}
}

func TestOpen_PragmasApplyToEveryPooledConnection(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, DriverSQLite, filepath.Join(t.TempDir(), "clothing.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	// holding the connections open forces the pool to dial new ones
	for i := 0; i < 3; i++ {
		conn, err := db.Conn(ctx)
		require.NoError(t, err)
		defer conn.Close()

		var timeout int
		require.NoError(t, conn.QueryRowContext(ctx, "PRAGMA busy_timeout").Scan(&timeout))
		assert.Equal(t, 5000, timeout)

		var mode string
		require.NoError(t, conn.QueryRowContext(ctx, "PRAGMA journal_mode").Scan(&mode))
		assert.Equal(t, "wal", strings.ToLower(mode))
	}
}
