// Package idempotency stores the response to a keyed request so a client
// retry replays it instead of repeating the side effect.
package idempotency

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"slices"
	"sync"

	"github.com/jackc/pgx/v5"

	"hrperf/internal/platform/querier"
)

var ErrConflict = errors.New("idempotency key conflicts with existing request")

type Store interface {
	Check(ctx context.Context, actorID, endpoint, key, requestHash string) (status int, body json.RawMessage, found bool, err error)
	Save(ctx context.Context, actorID, endpoint, key, requestHash string, status int, body json.RawMessage) error
}

func RequestHash(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

type PGStore struct {
	DB querier.Querier
}

func NewPGStore(db querier.Querier) *PGStore {
	return &PGStore{DB: db}
}

func (s *PGStore) Check(ctx context.Context, actorID, endpoint, key, requestHash string) (int, json.RawMessage, bool, error) {
	var storedHash string
	var status int
	var stored json.RawMessage
	err := s.DB.QueryRow(ctx, `
    SELECT request_hash, status, response_json
    FROM idempotency_keys
    WHERE actor_id = $1 AND key = $2 AND endpoint = $3
  `, actorID, key, endpoint).Scan(&storedHash, &status, &stored)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil, false, nil
	}
	if err != nil {
		return 0, nil, false, err
	}
	if storedHash != requestHash {
		return 0, nil, false, ErrConflict
	}
	return status, stored, true, nil
}

func (s *PGStore) Save(ctx context.Context, actorID, endpoint, key, requestHash string, status int, body json.RawMessage) error {
	tag, err := s.DB.Exec(ctx, `
    INSERT INTO idempotency_keys (actor_id, key, endpoint, request_hash, status, response_json)
    VALUES ($1, $2, $3, $4, $5, $6)
    ON CONFLICT (actor_id, key, endpoint)
    DO UPDATE SET response_json = EXCLUDED.response_json, status = EXCLUDED.status
    WHERE idempotency_keys.request_hash = EXCLUDED.request_hash
  `, actorID, key, endpoint, requestHash, status, []byte(body))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrConflict
	}
	return nil
}

type entry struct {
	hash   string
	status int
	body   []byte
}

// MemoryStore keeps keys for the life of the process.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]entry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: map[string]entry{}}
}

func memKey(actorID, endpoint, key string) string {
	return actorID + "\x00" + endpoint + "\x00" + key
}

func (m *MemoryStore) Check(ctx context.Context, actorID, endpoint, key, requestHash string) (int, json.RawMessage, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[memKey(actorID, endpoint, key)]
	if !ok {
		return 0, nil, false, nil
	}
	if e.hash != requestHash {
		return 0, nil, false, ErrConflict
	}
	return e.status, slices.Clone(e.body), true, nil
}

func (m *MemoryStore) Save(ctx context.Context, actorID, endpoint, key, requestHash string, status int, body json.RawMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := memKey(actorID, endpoint, key)
	if e, ok := m.entries[k]; ok && e.hash != requestHash {
		return ErrConflict
	}
	m.entries[k] = entry{hash: requestHash, status: status, body: slices.Clone(body)}
	return nil
}
