package metadata

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
	_ "modernc.org/sqlite"
)

// Store is the SQLite-backed cross-reference key store. Each published help
// document contributes one row, so later runs can resolve see-also entries
// against everything already produced.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// OpenStore opens (or creates) the key store. Use ":memory:" for tests.
func OpenStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open metadata database: %w", err)
	}

	store := &Store{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close() // Best effort cleanup on initialization error
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS crossrefs (
		key TEXT PRIMARY KEY,
		context TEXT NOT NULL,
		refkeywords TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_context ON crossrefs(context);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Record upserts one produced key.
func (s *Store) Record(ctx context.Context, key ResolvedKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO crossrefs (key, context, refkeywords) VALUES (?, ?, ?) ON CONFLICT(key) DO UPDATE SET context = excluded.context, refkeywords = excluded.refkeywords",
		normalizeKey(key.Key), key.Context, key.Refkeywords,
	)
	if err != nil {
		return fmt.Errorf("insert crossref: %w", err)
	}
	return nil
}

// Keys returns every stored key, ordered.
func (s *Store) Keys(ctx context.Context) ([]ResolvedKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT key, context, refkeywords FROM crossrefs ORDER BY key")
	if err != nil {
		return nil, fmt.Errorf("query crossrefs: %w", err)
	}
	defer rows.Close()

	var keys []ResolvedKey
	for rows.Next() {
		var k ResolvedKey
		if err := rows.Scan(&k.Key, &k.Context, &k.Refkeywords); err != nil {
			return nil, fmt.Errorf("scan crossref: %w", err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return keys, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// LoadRules reads the conversion rules from a YAML file. A missing path
// yields empty rules, so runs without curated rules still work.
func LoadRules(path string) (Rules, error) {
	var rules Rules
	if path == "" {
		return rules, nil
	}
	data, err := os.ReadFile(path) // #nosec G304 -- operator-supplied rules path
	if err != nil {
		return rules, fmt.Errorf("read rules file: %w", err)
	}
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return rules, fmt.Errorf("parse rules file: %w", err)
	}
	return rules, nil
}

// Load builds the in-memory index from the key store plus the rules file.
// The dbPath may be empty, in which case no cross-reference keys are known.
func Load(ctx context.Context, dbPath, rulesPath string) (*Index, error) {
	rules, err := LoadRules(rulesPath)
	if err != nil {
		return nil, err
	}
	if dbPath == "" {
		return NewStatic(nil, rules), nil
	}

	store, err := OpenStore(dbPath)
	if err != nil {
		return nil, err
	}
	defer func() { _ = store.Close() }()

	keys, err := store.Keys(ctx)
	if err != nil {
		return nil, err
	}
	return NewStatic(keys, rules), nil
}
