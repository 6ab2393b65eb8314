package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/calculate1024/goal-tracker/internal/goal"
)

// kv keys inside the database. The whole AppState lives under one entry and
// is rewritten on every mutation; settings live under a second entry.
const (
	stateKey    = "app_state"
	settingsKey = "settings"
)

// Store is the single source of truth for goals, categories and filters.
// It loads the persisted state once at open and writes it through on every
// mutation before returning to the caller.
type Store struct {
	db *sql.DB

	mu          sync.Mutex
	state       *goal.AppState
	subscribers []func()

	now func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the store's time source, used by tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Open opens (or creates) the database at dbPath and loads the persisted
// state, migrating legacy records in place.
func Open(dbPath string, opts ...Option) (*Store, error) {
	// Expand ~ in path
	if strings.HasPrefix(dbPath, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	s := &Store{db: db, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	if err := s.load(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// migrate creates the kv table.
func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS kv (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`)
	return err
}

// load reads the persisted state, or initializes a fresh one.
func (s *Store) load() error {
	var raw string
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, stateKey).Scan(&raw)
	if err == sql.ErrNoRows {
		s.state = goal.NewState()
		return s.persistLocked()
	}
	if err != nil {
		return err
	}

	state := &goal.AppState{}
	if err := json.Unmarshal([]byte(raw), state); err != nil {
		return fmt.Errorf("corrupt persisted state: %w", err)
	}
	state.Migrate(s.now())
	s.state = state
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Subscribe registers fn to be called after every successful mutation.
// The view layer is the only expected subscriber.
func (s *Store) Subscribe(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

// persistLocked writes the whole state through to the database.
// Callers must hold s.mu (or be pre-publication, as in load).
func (s *Store) persistLocked() error {
	data, err := json.Marshal(s.state)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	_, err = s.db.Exec(`INSERT OR REPLACE INTO kv (key, value) VALUES (?, ?)`, stateKey, string(data))
	if err != nil {
		return fmt.Errorf("persist state: %w", err)
	}
	return nil
}

// commitLocked persists and, on success, notifies subscribers. A failed
// persist surfaces to the mutating caller and skips notification.
func (s *Store) commitLocked() error {
	if err := s.persistLocked(); err != nil {
		return err
	}
	for _, fn := range s.subscribers {
		fn()
	}
	return nil
}
