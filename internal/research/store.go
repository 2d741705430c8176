package research

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store persists research results, upserting one row per conversation and
// application.
type Store interface {
	SaveResult(ctx context.Context, result Result) error
	ListResults(ctx context.Context, conversationID string) ([]Result, error)
	Close() error
}

// NewStore creates a postgres-backed store when configured, otherwise in-memory.
func NewStore(ctx context.Context, databaseURL string) (Store, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return NewInMemoryStore(), nil
	}
	return NewPostgresStore(ctx, databaseURL)
}

// PostgresStore keeps results in a single JSONB-payload table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, strings.TrimSpace(databaseURL))
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	stmt := `CREATE TABLE IF NOT EXISTS research_results (
		conversation_id TEXT NOT NULL,
		application TEXT NOT NULL,
		payload JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (conversation_id, application)
	);`
	if _, err := pool.Exec(ctx, stmt); err != nil {
		pool.Close()
		return nil, fmt.Errorf("init research schema: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) SaveResult(ctx context.Context, result Result) error {
	if result.UpdatedAt.IsZero() {
		result.UpdatedAt = time.Now().UTC()
	}
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO research_results (conversation_id, application, payload, updated_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (conversation_id, application)
		 DO UPDATE SET payload=EXCLUDED.payload, updated_at=EXCLUDED.updated_at`,
		result.ConversationID, result.Application, payload, result.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save result: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListResults(ctx context.Context, conversationID string) ([]Result, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT payload FROM research_results WHERE conversation_id=$1 ORDER BY application`,
		conversationID,
	)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	var out []Result
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan result row: %w", err)
		}
		var r Result
		if err := json.Unmarshal(payload, &r); err != nil {
			return nil, fmt.Errorf("unmarshal result: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate result rows: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// InMemoryStore is the non-persistent fallback for development and tests.
type InMemoryStore struct {
	mu      sync.RWMutex
	results map[string]map[string]Result
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{results: make(map[string]map[string]Result)}
}

func (s *InMemoryStore) SaveResult(ctx context.Context, result Result) error {
	if result.UpdatedAt.IsZero() {
		result.UpdatedAt = time.Now().UTC()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	byApp := s.results[result.ConversationID]
	if byApp == nil {
		byApp = make(map[string]Result)
		s.results[result.ConversationID] = byApp
	}
	byApp[result.Application] = result
	return nil
}

func (s *InMemoryStore) ListResults(ctx context.Context, conversationID string) ([]Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	byApp := s.results[conversationID]
	out := make([]Result, 0, len(byApp))
	for _, r := range byApp {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Application < out[j].Application })
	return out, nil
}

func (s *InMemoryStore) Close() error { return nil }
