package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"net"
	"net/url"
	"strconv"
	"sync"

	sq "github.com/Masterminds/squirrel"
	"github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/varoOP/moviedb/internal/domain"
	_ "modernc.org/sqlite"
)

// DB wraps the single connection used for a run
type DB struct {
	handler  *sql.DB
	log      zerolog.Logger
	lock     sync.Mutex
	squirrel sq.StatementBuilderType
	driver   domain.Driver
}

// runner is satisfied by both *sql.DB and *sql.Tx
type runner interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// NewDB opens the configured database and ensures the schema exists
func NewDB(ctx context.Context, cfg domain.DatabaseConfig, log zerolog.Logger) (*DB, error) {
	dsn, err := DSN(cfg)
	if err != nil {
		return nil, err
	}

	db := &DB{
		log:      log.With().Str("module", "database").Logger(),
		squirrel: sq.StatementBuilder.PlaceholderFormat(placeholderFormat(cfg.Driver)),
		driver:   cfg.Driver,
	}

	db.handler, err = sql.Open(string(cfg.Driver), dsn)
	if err != nil {
		return nil, errors.Wrap(err, "unable to connect to database")
	}

	// one connection, one writer
	db.handler.SetMaxOpenConns(1)
	db.handler.SetMaxIdleConns(1)

	if err := db.handler.PingContext(ctx); err != nil {
		db.handler.Close()
		return nil, errors.Wrap(err, "unable to reach database")
	}

	if cfg.Driver == domain.DriverSQLite {
		if _, err = db.handler.ExecContext(ctx, `PRAGMA journal_mode = wal;`); err != nil {
			db.handler.Close()
			return nil, errors.Wrap(err, "unable to enable WAL mode")
		}
	}

	if err := db.EnsureSchema(ctx); err != nil {
		db.handler.Close()
		return nil, errors.Wrap(err, "failed to ensure schema")
	}

	db.log.Debug().Str("driver", string(cfg.Driver)).Msg("Database ready")

	return db, nil
}

// DSN builds the driver specific connection string
func DSN(cfg domain.DatabaseConfig) (string, error) {
	switch cfg.Driver {
	case domain.DriverSQLite:
		return cfg.Path + "?_pragma=busy_timeout%3d1000&_pragma=foreign_keys(1)", nil

	case domain.DriverMySQL:
		port := cfg.Port
		if port == 0 {
			port = 3306
		}

		mc := mysql.NewConfig()
		mc.Net = "tcp"
		mc.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(port))
		mc.User = cfg.User
		mc.Passwd = cfg.Password
		mc.DBName = cfg.Name
		mc.ParseTime = true
		return mc.FormatDSN(), nil

	case domain.DriverPostgres:
		port := cfg.Port
		if port == 0 {
			port = 5432
		}

		sslmode := cfg.SSLMode
		if sslmode == "" {
			sslmode = "disable"
		}

		u := &url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(cfg.User, cfg.Password),
			Host:     net.JoinHostPort(cfg.Host, strconv.Itoa(port)),
			Path:     cfg.Name,
			RawQuery: url.Values{"sslmode": []string{sslmode}}.Encode(),
		}
		return u.String(), nil
	}

	return "", errors.Errorf("unsupported database driver %q", cfg.Driver)
}

func placeholderFormat(d domain.Driver) sq.PlaceholderFormat {
	if d == domain.DriverMySQL {
		return sq.Question
	}

	return sq.Dollar
}

// EnsureSchema creates the movie tables when they are missing. Existing
// tables are left untouched, so it is safe to call on every start.
func (db *DB) EnsureSchema(ctx context.Context) error {
	db.lock.Lock()
	defer db.lock.Unlock()

	statements, ok := schemas[db.driver]
	if !ok {
		return errors.Errorf("no schema for database driver %q", db.driver)
	}

	tx, err := db.handler.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return errors.Wrapf(err, "failed to execute schema statement #%v", i)
		}
	}

	return tx.Commit()
}

// Counts returns the number of rows in each movie table
func (db *DB) Counts(ctx context.Context) (domain.TableCounts, error) {
	var counts domain.TableCounts

	targets := []struct {
		table string
		dest  *int
	}{
		{"movies", &counts.Movies},
		{"genres", &counts.Genres},
		{"movie_genres", &counts.MovieGenres},
	}

	for _, t := range targets {
		query, args, err := db.squirrel.Select("COUNT(*)").From(t.table).ToSql()
		if err != nil {
			return counts, errors.Wrap(err, "error building query")
		}

		if err := db.handler.QueryRowContext(ctx, query, args...).Scan(t.dest); err != nil {
			return counts, errors.Wrapf(err, "error counting %s", t.table)
		}
	}

	return counts, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	if db.driver == domain.DriverSQLite {
		if _, err := db.handler.Exec(`PRAGMA optimize;`); err != nil {
			db.handler.Close()
			return errors.Wrap(err, "query planner optimization")
		}
	}

	return db.handler.Close()
}

// BeginTx starts a new transaction
func (db *DB) BeginTx(ctx context.Context, opts *sql.TxOptions) (*Tx, error) {
	tx, err := db.handler.BeginTx(ctx, opts)
	if err != nil {
		return nil, errors.Wrap(err, "failed to begin transaction")
	}

	return &Tx{Tx: tx}, nil
}

func (db *DB) runner(tx *sql.Tx) runner {
	if tx != nil {
		return tx
	}

	return db.handler
}

// Tx represents a database transaction
type Tx struct {
	*sql.Tx
}

// IsConnectionError reports whether err means the connection itself is gone.
// These are the only errors that stop an import run.
func IsConnectionError(err error) bool {
	return errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, mysql.ErrInvalidConn)
}
