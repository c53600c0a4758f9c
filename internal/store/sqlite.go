package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nvandessel/neuropath/internal/constants"
	"github.com/nvandessel/neuropath/internal/network"
)

// timeLayout is fixed-width so stored timestamps sort lexicographically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// SQLiteGraphStore implements GraphStore using SQLite for persistence.
type SQLiteGraphStore struct {
	mu     sync.RWMutex
	db     *sql.DB
	dir    string
	dbPath string
}

// NewSQLiteGraphStore opens (creating if needed) the database at
// dir/neuropath.db.
func NewSQLiteGraphStore(dir string) (*SQLiteGraphStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create %s directory: %w", constants.DirName, err)
	}

	dbPath := filepath.Join(dir, constants.DatabaseFile)

	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite works best with single writer

	if err := InitSchema(context.Background(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteGraphStore{
		db:     db,
		dir:    dir,
		dbPath: dbPath,
	}, nil
}

// Path returns the database file path.
func (s *SQLiteGraphStore) Path() string {
	return s.dbPath
}

// DB returns the underlying database handle.
func (s *SQLiteGraphStore) DB() *sql.DB {
	return s.db
}

// Load reads every neuron and synapse.
func (s *SQLiteGraphStore) Load(ctx context.Context) (network.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := network.Snapshot{Nodes: []network.Node{}, Edges: []network.Edge{}}

	rows, err := s.db.QueryContext(ctx, `SELECT key, activation FROM neurons ORDER BY key`)
	if err != nil {
		return network.Snapshot{}, fmt.Errorf("query neurons: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var n network.Node
		if err := rows.Scan(&n.Key, &n.Activation); err != nil {
			return network.Snapshot{}, fmt.Errorf("scan neuron: %w", err)
		}
		snap.Nodes = append(snap.Nodes, n)
	}
	if err := rows.Err(); err != nil {
		return network.Snapshot{}, fmt.Errorf("iterate neurons: %w", err)
	}

	edgeRows, err := s.db.QueryContext(ctx, `SELECT a, b, weight FROM synapses ORDER BY a, b`)
	if err != nil {
		return network.Snapshot{}, fmt.Errorf("query synapses: %w", err)
	}
	defer edgeRows.Close()
	for edgeRows.Next() {
		var e network.Edge
		if err := edgeRows.Scan(&e.A, &e.B, &e.Weight); err != nil {
			return network.Snapshot{}, fmt.Errorf("scan synapse: %w", err)
		}
		snap.Edges = append(snap.Edges, e)
	}
	if err := edgeRows.Err(); err != nil {
		return network.Snapshot{}, fmt.Errorf("iterate synapses: %w", err)
	}

	return snap, nil
}

// Save replaces the stored network in a single transaction. Neuron creation
// times survive a save.
func (s *SQLiteGraphStore) Save(ctx context.Context, snap network.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	created := make(map[string]string)
	rows, err := tx.QueryContext(ctx, `SELECT key, created_at FROM neurons`)
	if err != nil {
		return fmt.Errorf("query neuron timestamps: %w", err)
	}
	for rows.Next() {
		var key, at string
		if err := rows.Scan(&key, &at); err != nil {
			rows.Close()
			return fmt.Errorf("scan neuron timestamp: %w", err)
		}
		created[key] = at
	}
	rows.Close()

	if _, err := tx.ExecContext(ctx, `DELETE FROM synapses`); err != nil {
		return fmt.Errorf("clear synapses: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM neurons`); err != nil {
		return fmt.Errorf("clear neurons: %w", err)
	}

	now := time.Now().UTC().Format(timeLayout)
	for _, n := range snap.Nodes {
		at, ok := created[n.Key]
		if !ok {
			at = now
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO neurons (key, activation, created_at) VALUES (?, ?, ?)`,
			n.Key, n.Activation, at); err != nil {
			return fmt.Errorf("insert neuron %q: %w", n.Key, err)
		}
	}

	for _, e := range snap.Edges {
		a, b := e.A, e.B
		if a > b {
			a, b = b, a
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO synapses (a, b, weight, updated_at) VALUES (?, ?, ?, ?)`,
			a, b, e.Weight, now); err != nil {
			return fmt.Errorf("insert synapse %s-%s: %w", a, b, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}

// RecordSearch appends a path search to history.
func (s *SQLiteGraphStore) RecordSearch(ctx context.Context, rec SearchRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.At.IsZero() {
		rec.At = time.Now()
	}

	var path sql.NullString
	if rec.Found {
		data, err := json.Marshal(rec.Path)
		if err != nil {
			return fmt.Errorf("encode path: %w", err)
		}
		path = sql.NullString{String: string(data), Valid: true}
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO path_searches (id, start_key, end_key, path, found, cost, searched_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Start, rec.End, path, boolToInt(rec.Found), rec.Cost, rec.At.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("record search: %w", err)
	}
	return nil
}

// ListSearches returns recorded searches, newest first.
func (s *SQLiteGraphStore) ListSearches(ctx context.Context, limit int) ([]SearchRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT id, start_key, end_key, path, found, cost, searched_at FROM path_searches ORDER BY searched_at DESC, rowid DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list searches: %w", err)
	}
	defer rows.Close()

	var records []SearchRecord
	for rows.Next() {
		var rec SearchRecord
		var path sql.NullString
		var found int
		var at string
		if err := rows.Scan(&rec.ID, &rec.Start, &rec.End, &path, &found, &rec.Cost, &at); err != nil {
			return nil, fmt.Errorf("scan search: %w", err)
		}
		rec.Found = found != 0
		if path.Valid {
			if err := json.Unmarshal([]byte(path.String), &rec.Path); err != nil {
				return nil, fmt.Errorf("decode path for search %s: %w", rec.ID, err)
			}
		}
		t, err := time.Parse(timeLayout, at)
		if err != nil {
			return nil, fmt.Errorf("parse search time: %w", err)
		}
		rec.At = t
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Close closes the database.
func (s *SQLiteGraphStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
