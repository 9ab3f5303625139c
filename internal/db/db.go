package db

import (
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"

	"github.com/gratefultolord/hr_requests_bot/internal/config"
)

var (
	ErrTeamNotFound    = errors.New("team not found")
	ErrVolunteerExists = errors.New("volunteer already registered")
	ErrRequestNotFound = errors.New("request not found")
	ErrAlreadyDecided  = errors.New("request already decided")
)

type DB struct {
	Conn   *sqlx.DB
	Driver string
}

func New(cfg *config.Config) (*DB, error) {
	switch cfg.DBDriver {
	case config.DriverPostgres:
		dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName)

		dbConn, err := sqlx.Connect("postgres", dsn)
		if err != nil {
			return nil, fmt.Errorf("db.New: cannot connect to database: %w", err)
		}

		dbConn.SetMaxOpenConns(20)
		dbConn.SetMaxIdleConns(5)
		dbConn.SetConnMaxLifetime(60 * time.Minute)

		return &DB{Conn: dbConn, Driver: config.DriverPostgres}, nil

	case config.DriverSQLite, "":
		return OpenSQLite(cfg.DBPath)

	default:
		return nil, fmt.Errorf("db.New: unsupported driver %q", cfg.DBDriver)
	}
}

// OpenSQLite opens the single-file store. ":memory:" gives a private
// in-memory database. One connection is kept open for the lifetime of the
// process, which serializes writes and keeps in-memory databases alive.
func OpenSQLite(path string) (*DB, error) {
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", path)

	dbConn, err := sqlx.Connect("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("db.OpenSQLite: cannot open database: %w", err)
	}

	dbConn.SetMaxOpenConns(1)
	dbConn.SetMaxIdleConns(1)
	dbConn.SetConnMaxLifetime(0)

	return &DB{Conn: dbConn, Driver: config.DriverSQLite}, nil
}

func (db *DB) Close() error {
	return db.Conn.Close()
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}

	return false
}
