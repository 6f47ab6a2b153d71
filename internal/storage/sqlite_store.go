package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alpn-software/portfolio-client/internal/domain"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const (
	sqliteCreateTable = `CREATE TABLE IF NOT EXISTS submissions (
	id           TEXT PRIMARY KEY,
	email        TEXT NOT NULL DEFAULT '',
	name         TEXT NOT NULL DEFAULT '',
	message      TEXT NOT NULL DEFAULT '',
	status_code  INTEGER NOT NULL DEFAULT 0,
	request_id   TEXT NOT NULL DEFAULT '',
	error        TEXT NOT NULL DEFAULT '',
	submitted_at INTEGER NOT NULL,
	expires_at   INTEGER NOT NULL
)`
	sqliteCreateIndex = `CREATE INDEX IF NOT EXISTS submissions_expires_at ON submissions (expires_at)`

	sqliteUpsert = `INSERT OR REPLACE INTO submissions
	(id, email, name, message, status_code, request_id, error, submitted_at, expires_at)
	VALUES (:id, :email, :name, :message, :status_code, :request_id, :error, :submitted_at, :expires_at)`
	sqliteSelectLive = `SELECT id, email, name, message, status_code, request_id, error, submitted_at, expires_at
	FROM submissions WHERE expires_at > ? ORDER BY submitted_at DESC`
	sqliteDeleteExpired = `DELETE FROM submissions WHERE expires_at <= ?`
)

// submissionRow is the sqlite representation of a submission. Times are unix nanoseconds.
type submissionRow struct {
	ID          string `db:"id"`
	Email       string `db:"email"`
	Name        string `db:"name"`
	Message     string `db:"message"`
	StatusCode  int    `db:"status_code"`
	RequestID   string `db:"request_id"`
	Error       string `db:"error"`
	SubmittedAt int64  `db:"submitted_at"`
	ExpiresAt   int64  `db:"expires_at"`
}

func (r submissionRow) submission() domain.Submission {
	return domain.Submission{
		ID:          r.ID,
		Email:       r.Email,
		Name:        r.Name,
		Message:     r.Message,
		StatusCode:  r.StatusCode,
		RequestID:   r.RequestID,
		Error:       r.Error,
		SubmittedAt: time.Unix(0, r.SubmittedAt).UTC(),
	}
}

// sqliteStore implements a Store backed by an SQLite file.
type sqliteStore struct {
	db              *sqlx.DB
	cleanupMu       sync.Mutex
	lastCleanup     atomic.Int64
	submissionTTL   time.Duration
	cleanupInterval time.Duration
	now             func() time.Time
}

// openSQLite opens (or creates) the journal database at path.
func openSQLite(path string, opts Options) (Store, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage directory: %w", err)
		}
	}

	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)

	for _, stmt := range []string{sqliteCreateTable, sqliteCreateIndex} {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("init sqlite schema: %w", err)
		}
	}

	store := &sqliteStore{
		db:              db,
		submissionTTL:   opts.SubmissionTTL,
		cleanupInterval: opts.CleanupInterval,
		now:             time.Now,
	}
	store.lastCleanup.Store(store.now().Unix())
	return store, nil
}

// Close closes the database handle.
func (s *sqliteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// RecordSubmission upserts sub under its ID until the retention TTL elapses.
func (s *sqliteStore) RecordSubmission(sub domain.Submission) error {
	if s == nil || s.db == nil {
		return nil
	}
	if strings.TrimSpace(sub.ID) == "" {
		return fmt.Errorf("submission id is empty")
	}

	now := s.now()
	if err := s.maybeCleanupExpired(now); err != nil {
		return err
	}

	row := submissionRow{
		ID:          sub.ID,
		Email:       sub.Email,
		Name:        sub.Name,
		Message:     sub.Message,
		StatusCode:  sub.StatusCode,
		RequestID:   sub.RequestID,
		Error:       sub.Error,
		SubmittedAt: sub.SubmittedAt.UnixNano(),
		ExpiresAt:   now.Add(s.submissionTTL).Unix(),
	}
	if _, err := s.db.NamedExec(sqliteUpsert, row); err != nil {
		return fmt.Errorf("insert submission: %w", err)
	}
	return nil
}

// Submissions returns the unexpired submissions, newest first.
func (s *sqliteStore) Submissions() ([]domain.Submission, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}

	now := s.now()
	if err := s.maybeCleanupExpired(now); err != nil {
		return nil, err
	}

	var rows []submissionRow
	if err := s.db.Select(&rows, sqliteSelectLive, now.Unix()); err != nil {
		return nil, fmt.Errorf("select submissions: %w", err)
	}

	out := make([]domain.Submission, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.submission())
	}
	return out, nil
}

func (s *sqliteStore) maybeCleanupExpired(now time.Time) error {
	last := time.Unix(s.lastCleanup.Load(), 0)
	if now.Sub(last) < s.cleanupInterval {
		return nil
	}

	s.cleanupMu.Lock()
	defer s.cleanupMu.Unlock()

	last = time.Unix(s.lastCleanup.Load(), 0)
	if now.Sub(last) < s.cleanupInterval {
		return nil
	}

	if _, err := s.db.Exec(sqliteDeleteExpired, now.Unix()); err != nil {
		return fmt.Errorf("delete expired submissions: %w", err)
	}
	s.lastCleanup.Store(now.Unix())
	return nil
}
