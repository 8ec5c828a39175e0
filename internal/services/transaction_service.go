package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"caixa/internal/cache"
	"caixa/internal/core"
)

// Store is the persistence surface the service needs. Satisfied by
// storage.SQLiteRepository.
type Store interface {
	InsertTransaction(ctx context.Context, tx core.Transaction) error
	ListBySession(ctx context.Context, sessionID string) ([]core.Transaction, error)
	GetByIDAndSession(ctx context.Context, id, sessionID string) (*core.Transaction, error)
	SumAmountBySession(ctx context.Context, sessionID string) (int64, error)
}

// Publisher emits created-events for the export pipeline. Satisfied by
// amqp.Client.
type Publisher interface {
	PublishTransactionCreated(ctx context.Context, id string, version int64) error
}

const (
	summaryCacheSize = 1024
	summaryCacheTTL  = 5 * time.Minute
)

// TransactionService orchestrates ledger operations over an injected store
// and an optional event publisher. A nil publisher disables export events
// without changing any API behavior.
type TransactionService struct {
	store     Store
	publisher Publisher
	summaries *cache.LRUCache[int64]

	// gens guards the cache against a lost invalidation: a summary computed
	// concurrently with a create must not be cached after the create's
	// Delete, or the stale balance would survive until the TTL expires.
	mu   sync.Mutex
	gens map[string]uint64
}

func NewTransactionService(store Store, publisher Publisher) *TransactionService {
	return &TransactionService{
		store:     store,
		publisher: publisher,
		summaries: cache.NewLRUCache[int64](summaryCacheSize, summaryCacheTTL),
		gens:      make(map[string]uint64),
	}
}

// Create validates the input, normalizes the amount sign, and persists a new
// transaction owned by sessionID. The created-event publish is best-effort:
// once the row is saved the request succeeds regardless of broker health.
func (s *TransactionService) Create(ctx context.Context, sessionID string, in core.CreateInput) (core.Transaction, error) {
	if err := in.Validate(); err != nil {
		return core.Transaction{}, err
	}

	tx := core.Transaction{
		ID:        uuid.NewString(),
		Title:     in.Title,
		Amount:    in.Normalized(),
		SessionID: sessionID,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.store.InsertTransaction(ctx, tx); err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	// The session's cached sum is stale as of this insert. The generation
	// bump must precede the Delete so an in-flight Summary cannot re-cache
	// the pre-insert sum.
	s.mu.Lock()
	s.gens[sessionID]++
	s.mu.Unlock()
	s.summaries.Delete(sessionID)

	if err := s.publishCreated(ctx, tx.ID); err != nil {
		slog.ErrorContext(ctx, "Failed to publish created event",
			"transaction_id", tx.ID, "error", err)
	}

	return tx, nil
}

// List returns the session's transactions in insertion order. A session with
// no rows gets an empty slice, not nil.
func (s *TransactionService) List(ctx context.Context, sessionID string) ([]core.Transaction, error) {
	txs, err := s.store.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txs, nil
}

// Get returns the transaction matching id within the session, or nil when no
// such row is visible. Ids owned by other sessions are reported exactly like
// ids that do not exist.
func (s *TransactionService) Get(ctx context.Context, sessionID, id string) (*core.Transaction, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, &core.ValidationError{Field: "id", Err: core.ErrInvalidID}
	}

	tx, err := s.store.GetByIDAndSession(ctx, id, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	return tx, nil
}

// Summary returns the signed sum over the session's transactions. The value
// is memoized per session and invalidated on create, so caching is invisible
// to callers.
func (s *TransactionService) Summary(ctx context.Context, sessionID string) (core.Summary, error) {
	if cents, ok := s.summaries.Get(sessionID); ok {
		return core.Summary{Amount: core.Money{Cents: cents}}, nil
	}

	s.mu.Lock()
	gen := s.gens[sessionID]
	s.mu.Unlock()

	cents, err := s.store.SumAmountBySession(ctx, sessionID)
	if err != nil {
		return core.Summary{}, fmt.Errorf("summarize transactions: %w", err)
	}

	// A create landed while the sum was being computed; the value may miss
	// its row, so serve it uncached and let the next call recompute.
	s.mu.Lock()
	if s.gens[sessionID] == gen {
		s.summaries.Set(sessionID, cents)
	}
	s.mu.Unlock()

	return core.Summary{Amount: core.Money{Cents: cents}}, nil
}

func (s *TransactionService) publishCreated(ctx context.Context, id string) error {
	if s.publisher == nil {
		slog.DebugContext(ctx, "No publisher configured, skipping created event", "transaction_id", id)
		return nil
	}
	return s.publisher.PublishTransactionCreated(ctx, id, 1)
}
