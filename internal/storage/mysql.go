package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog"

	"tcat/internal/catalog"
	"tcat/internal/config"
	"tcat/internal/logging"
)

const defaultSyncTimeout = 30 * time.Second

// Tables written by MySQLStorage
const (
	SuitesTable = "tcat_suites"
	CasesTable  = "tcat_cases"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS ` + SuitesTable + ` (
	suite_key VARCHAR(255) NOT NULL PRIMARY KEY,
	name VARCHAR(255) NOT NULL,
	area VARCHAR(255) NOT NULL DEFAULT '',
	category VARCHAR(255) NOT NULL DEFAULT '',
	description TEXT NOT NULL,
	tags JSON NOT NULL,
	sync_id BIGINT NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS ` + CasesTable + ` (
	qualified_name VARCHAR(512) NOT NULL PRIMARY KEY,
	suite_key VARCHAR(255) NULL,
	case_key VARCHAR(255) NOT NULL,
	name VARCHAR(255) NOT NULL,
	description TEXT NOT NULL,
	priority INT NULL,
	sync_id BIGINT NOT NULL,
	INDEX idx_tcat_cases_suite (suite_key)
)`,
}

const upsertSuite = `INSERT INTO ` + SuitesTable + ` (suite_key, name, area, category, description, tags, sync_id)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE name = VALUES(name), area = VALUES(area), category = VALUES(category),
	description = VALUES(description), tags = VALUES(tags), sync_id = VALUES(sync_id)`

const upsertCase = `INSERT INTO ` + CasesTable + ` (qualified_name, suite_key, case_key, name, description, priority, sync_id)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE suite_key = VALUES(suite_key), case_key = VALUES(case_key), name = VALUES(name),
	description = VALUES(description), priority = VALUES(priority), sync_id = VALUES(sync_id)`

// execer is the part of *sql.Tx used while syncing
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// SyncResult reports what a sync wrote
type SyncResult struct {
	Database        string
	CreatedDatabase bool
	Suites          int
	Cases           int
	Removed         int64
}

// MySQLStorage mirrors catalog snapshots into MySQL tables
type MySQLStorage struct {
	cfg     config.Database
	timeout time.Duration
	log     zerolog.Logger
}

// NewMySQLStorage creates a MySQLStorage for the configured database
func NewMySQLStorage(cfg config.Database) *MySQLStorage {
	return &MySQLStorage{
		cfg:     cfg,
		timeout: defaultSyncTimeout,
		log:     logging.GetLogger("storage"),
	}
}

// DSN returns the connection string for dbName; an empty name connects to the server only.
func (m *MySQLStorage) DSN(dbName string) string {
	mc := mysql.NewConfig()
	mc.User = m.cfg.User
	mc.Passwd = m.cfg.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(m.cfg.Host, m.cfg.Port)
	mc.DBName = dbName
	mc.ParseTime = true
	mc.MultiStatements = false
	return mc.FormatDSN()
}

// Sync makes sure the catalog database and tables exist and replaces their
// contents with the snapshot in a single transaction. Rows from earlier syncs
// that are no longer in the snapshot are removed.
func (m *MySQLStorage) Sync(ctx context.Context, snapshot *catalog.Snapshot) (*SyncResult, error) {
	if snapshot == nil {
		return nil, fmt.Errorf("snapshot is required")
	}
	dbName := m.cfg.Name
	if !isValidDatabaseName(dbName) {
		return nil, fmt.Errorf("invalid database name: %s", dbName)
	}

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	created, err := m.ensureDatabase(ctx, dbName)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("mysql", m.DSN(dbName))
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", dbName, err)
	}
	defer db.Close()

	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return nil, fmt.Errorf("failed to create catalog tables: %w", err)
		}
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	result, err := writeSnapshot(ctx, tx, snapshot, time.Now().UnixNano())
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit catalog: %w", err)
	}

	result.Database = dbName
	result.CreatedDatabase = created
	m.log.Info().
		Str("database", dbName).
		Int("suites", result.Suites).
		Int("cases", result.Cases).
		Int64("removed", result.Removed).
		Msg("catalog synced")
	return result, nil
}

// ensureDatabase creates dbName when missing and reports whether it did
func (m *MySQLStorage) ensureDatabase(ctx context.Context, dbName string) (bool, error) {
	// Connect to MySQL server (without specifying database)
	db, err := sql.Open("mysql", m.DSN(""))
	if err != nil {
		return false, fmt.Errorf("failed to connect to database server: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return false, fmt.Errorf("failed to ping database server: %w", err)
	}

	var exists bool
	query := "SELECT EXISTS(SELECT SCHEMA_NAME FROM INFORMATION_SCHEMA.SCHEMATA WHERE SCHEMA_NAME = ?)"
	if err := db.QueryRowContext(ctx, query, dbName).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check database %s: %w", dbName, err)
	}
	if exists {
		return false, nil
	}

	if _, err := db.ExecContext(ctx, fmt.Sprintf("CREATE DATABASE IF NOT EXISTS `%s`", dbName)); err != nil {
		return false, fmt.Errorf("failed to create database %s: %w", dbName, err)
	}
	m.log.Debug().Str("database", dbName).Msg("created catalog database")
	return true, nil
}

// encodeTags renders tags as a JSON array; no tags is "[]"
func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// writeSnapshot upserts every suite and case tagged with syncID, then drops
// rows left over from other syncs.
func writeSnapshot(ctx context.Context, tx execer, snapshot *catalog.Snapshot, syncID int64) (*SyncResult, error) {
	result := &SyncResult{}
	for _, suite := range snapshot.Suites {
		tags, err := encodeTags(suite.Tags)
		if err != nil {
			return nil, fmt.Errorf("failed to encode tags of suite %s: %w", suite.Key, err)
		}
		_, err = tx.ExecContext(ctx, upsertSuite,
			suite.Key, suite.Name, suite.Area, suite.Category, suite.Description,
			tags, syncID)
		if err != nil {
			return nil, fmt.Errorf("failed to write suite %s: %w", suite.Key, err)
		}
		result.Suites++

		for _, c := range suite.Cases {
			if err := writeCase(ctx, tx, suite.Key, c, syncID); err != nil {
				return nil, err
			}
			result.Cases++
		}
	}
	for _, c := range snapshot.Pending {
		if err := writeCase(ctx, tx, "", c, syncID); err != nil {
			return nil, err
		}
		result.Cases++
	}

	for _, table := range []string{CasesTable, SuitesTable} {
		res, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE sync_id <> ?", syncID)
		if err != nil {
			return nil, fmt.Errorf("failed to prune %s: %w", table, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			result.Removed += n
		}
	}
	return result, nil
}

func writeCase(ctx context.Context, tx execer, suiteKey string, c catalog.CaseEntry, syncID int64) error {
	var suite, priority any
	if suiteKey != "" {
		suite = suiteKey
	}
	if c.Priority != nil {
		priority = *c.Priority
	}
	_, err := tx.ExecContext(ctx, upsertCase,
		c.QualifiedName, suite, c.Key, c.Name, c.Description, priority, syncID)
	if err != nil {
		return fmt.Errorf("failed to write case %s: %w", c.QualifiedName, err)
	}
	return nil
}

// isValidDatabaseName validates database name (basic check)
func isValidDatabaseName(name string) bool {
	if len(name) == 0 || len(name) > 64 {
		return false
	}
	// Check for SQL injection patterns
	invalidChars := []string{"'", "\"", "`", ";", "--", "/*", "*/", "DROP", "DELETE", "TRUNCATE"}
	upperName := strings.ToUpper(name)
	for _, char := range invalidChars {
		if strings.Contains(upperName, char) {
			return false
		}
	}
	return true
}
