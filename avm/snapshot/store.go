package snapshot

import (
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// ErrSnapshotNotFound indicates the requested snapshot doesn't exist.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// Store persists snapshots in a SQLite database, keyed by UUID and indexed
// by content hash.
type Store struct {
	db     *sql.DB
	dbPath string
	mu     sync.Mutex
}

// Meta describes one stored snapshot without its payload.
type Meta struct {
	ID         string
	Hash       string // hex-encoded SHA-256 of the object graph
	CapturedAt time.Time
	Size       int64
}

// OpenStore opens (creating if necessary) a snapshot store at the given
// database path.
func OpenStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Set busy timeout for concurrent access
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS snapshots (
		id TEXT PRIMARY KEY,
		hash TEXT NOT NULL,
		captured_at TEXT NOT NULL,
		data BLOB NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating table: %w", err)
	}

	return &Store{db: db, dbPath: dbPath}, nil
}

// Close closes the database connection.
func (st *Store) Close() error {
	if st.db != nil {
		return st.db.Close()
	}
	return nil
}

// Save persists s and returns its ID, assigning a fresh UUID if the
// snapshot doesn't carry one.
func (st *Store) Save(s *Snapshot) (string, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	h, err := Hash(s)
	if err != nil {
		return "", err
	}
	data, err := Marshal(s)
	if err != nil {
		return "", fmt.Errorf("marshaling snapshot: %w", err)
	}

	_, err = st.db.Exec(
		`INSERT OR REPLACE INTO snapshots (id, hash, captured_at, data) VALUES (?, ?, ?, ?)`,
		s.ID, hex.EncodeToString(h[:]), s.CapturedAt.UTC().Format(time.RFC3339Nano), data,
	)
	if err != nil {
		return "", fmt.Errorf("saving snapshot %s: %w", s.ID, err)
	}
	return s.ID, nil
}

// Load retrieves the snapshot with the given ID.
func (st *Store) Load(id string) (*Snapshot, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	var data []byte
	err := st.db.QueryRow(`SELECT data FROM snapshots WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("loading snapshot %s: %w", id, ErrSnapshotNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("loading snapshot %s: %w", id, err)
	}
	return Unmarshal(data)
}

// List returns metadata for all stored snapshots, newest first.
func (st *Store) List() ([]Meta, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	rows, err := st.db.Query(
		`SELECT id, hash, captured_at, length(data) FROM snapshots ORDER BY captured_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	defer rows.Close()

	var metas []Meta
	for rows.Next() {
		var m Meta
		var capturedAt string
		if err := rows.Scan(&m.ID, &m.Hash, &capturedAt, &m.Size); err != nil {
			return nil, fmt.Errorf("scanning snapshot row: %w", err)
		}
		t, err := time.Parse(time.RFC3339Nano, capturedAt)
		if err != nil {
			return nil, fmt.Errorf("parsing captured_at for %s: %w", m.ID, err)
		}
		m.CapturedAt = t
		metas = append(metas, m)
	}
	return metas, rows.Err()
}

// Delete removes the snapshot with the given ID.
// Deleting a non-existent snapshot returns ErrSnapshotNotFound.
func (st *Store) Delete(id string) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	res, err := st.db.Exec(`DELETE FROM snapshots WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting snapshot %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("deleting snapshot %s: %w", id, ErrSnapshotNotFound)
	}
	return nil
}
