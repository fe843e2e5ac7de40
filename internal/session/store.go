// Package session persists per-browser sessions: the bearer token pair, the
// user id, and the completed_baby_steps flag. It is the server-side stand-in
// for the browser local storage the original client relied on, with a
// defined hydrate-on-boot, clear-on-logout lifecycle.
package session

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Session is one browser session's durable state. IsAuthenticated is
// deliberately NOT derivable from this record alone: a session holding only
// a user id (post-boot, profile not yet loaded) is provisional.
type Session struct {
	SID                string
	AccessToken        string
	RefreshToken       string
	UserID             int64
	CompletedBabySteps bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Anonymous reports a session with no token, i.e. logged out.
func (s Session) Anonymous() bool {
	return s.AccessToken == ""
}

var ErrNotFound = errors.New("session not found")

// Store keeps sessions in SQLite so a server restart does not log every
// user out.
type Store struct {
	db *sql.DB
}

func NewStore(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// NewSID returns a 128-bit random session id.
func NewSID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing means the process is in no state to serve.
		panic(fmt.Sprintf("session id entropy: %v", err))
	}
	return hex.EncodeToString(buf)
}

// Create inserts an empty anonymous session and returns it.
func (s *Store) Create(ctx context.Context) (Session, error) {
	sess := Session{SID: NewSID(), CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC()}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (sid, created_at, updated_at) VALUES (?, ?, ?)`,
		sess.SID, sess.CreatedAt, sess.UpdatedAt)
	if err != nil {
		return Session{}, fmt.Errorf("create session: %w", err)
	}
	return sess, nil
}

// Get loads a session by id.
func (s *Store) Get(ctx context.Context, sid string) (Session, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT sid, access_token, refresh_token, user_id, completed_baby_steps, created_at, updated_at
		 FROM sessions WHERE sid = ?`, sid)

	var sess Session
	var completed int
	err := row.Scan(&sess.SID, &sess.AccessToken, &sess.RefreshToken,
		&sess.UserID, &completed, &sess.CreatedAt, &sess.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, ErrNotFound
	}
	if err != nil {
		return Session{}, fmt.Errorf("load session: %w", err)
	}
	sess.CompletedBabySteps = completed != 0
	return sess, nil
}

// SetTokens stores the token pair and user id after a successful login.
func (s *Store) SetTokens(ctx context.Context, sid, access, refresh string, userID int64) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET access_token = ?, refresh_token = ?, user_id = ?, updated_at = ?
		 WHERE sid = ?`,
		access, refresh, userID, time.Now().UTC(), sid)
	if err != nil {
		return fmt.Errorf("store tokens: %w", err)
	}
	return ensureUpdated(res)
}

// SetCompletedBabySteps flips the flag gating the Milestones nav link.
func (s *Store) SetCompletedBabySteps(ctx context.Context, sid string, completed bool) error {
	val := 0
	if completed {
		val = 1
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET completed_baby_steps = ?, updated_at = ? WHERE sid = ?`,
		val, time.Now().UTC(), sid)
	if err != nil {
		return fmt.Errorf("store completed flag: %w", err)
	}
	return ensureUpdated(res)
}

// Clear wipes a session back to anonymous without deleting the row, for
// when a stored token turns out dead mid-request and the sid must stay
// resolvable.
func (s *Store) Clear(ctx context.Context, sid string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE sessions
		 SET access_token = '', refresh_token = '', user_id = 0, completed_baby_steps = 0, updated_at = ?
		 WHERE sid = ?`,
		time.Now().UTC(), sid)
	if err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return ensureUpdated(res)
}

// Delete removes a session row entirely, the logout path.
func (s *Store) Delete(ctx context.Context, sid string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE sid = ?`, sid); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// PurgeStale removes sessions idle for longer than maxIdle. Called
// periodically by the server.
func (s *Store) PurgeStale(ctx context.Context, maxIdle time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-maxIdle)
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE updated_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	n, _ := res.RowsAffected()
	if n > 0 {
		slog.DebugContext(ctx, "Purged stale sessions", "count", n)
	}
	return n, nil
}

func ensureUpdated(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return nil // driver does not report; assume success
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
