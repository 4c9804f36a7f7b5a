package source

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/ZanzyTHEbar/retail-tableview/tview/engine"

	"github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"
)

var ErrUnsupportedDriver = errors.New("unsupported database type")

// driverNames maps config database types to registered database/sql
// drivers. The libsql driver is registered by the binary.
var driverNames = map[string]string{
	"sqlite": "sqlite",
	"mysql":  "mysql",
	"libsql": "libsql",
}

// Open connects and pings the database, closing it again when the ping
// fails.
func Open(ctx context.Context, dbType, dsn string) (*sql.DB, error) {
	driver, ok := driverNames[dbType]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, dbType)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dbType, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", dbType, err)
	}
	return db, nil
}

// MySQLDSN builds a TCP DSN with parseTime enabled so DATETIME columns
// scan as time.Time.
func MySQLDSN(user, password, host string, port int, name string) string {
	cfg := mysql.NewConfig()
	cfg.User = user
	cfg.Passwd = password
	cfg.Net = "tcp"
	cfg.Addr = host + ":" + strconv.Itoa(port)
	cfg.DBName = name
	cfg.ParseTime = true
	return cfg.FormatDSN()
}

// SQLSource runs Query and turns every result row into a row keyed by
// column name.
type SQLSource struct {
	DB    *sql.DB
	Query string
	Args  []any
}

func (s *SQLSource) Load(ctx context.Context) ([]engine.Row, error) {
	rs, err := s.DB.QueryContext(ctx, s.Query, s.Args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rs.Close()
	return ScanRows(rs)
}

// ScanRows drains rs. []byte cells become strings; NULL becomes nil.
func ScanRows(rs *sql.Rows) ([]engine.Row, error) {
	cols, err := rs.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns: %w", err)
	}

	var rows []engine.Row
	for rs.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rs.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		row := make(engine.Row, len(cols))
		for i, name := range cols {
			if b, ok := values[i].([]byte); ok {
				row[name] = string(b)
				continue
			}
			row[name] = values[i]
		}
		rows = append(rows, row)
	}
	if err := rs.Err(); err != nil {
		return nil, fmt.Errorf("iterate: %w", err)
	}
	if rows == nil {
		rows = []engine.Row{}
	}
	return rows, nil
}
