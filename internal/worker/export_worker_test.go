package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"caixa/internal/amqp"
	"caixa/internal/core"
)

type fakeStorage struct {
	rows     map[string]core.Transaction
	pending  []string
	exported []string
	errored  []string
	listErr  error
}

func newFakeStorage(txs ...core.Transaction) *fakeStorage {
	s := &fakeStorage{rows: make(map[string]core.Transaction)}
	for _, tx := range txs {
		s.rows[tx.ID] = tx
		s.pending = append(s.pending, tx.ID)
	}
	return s
}

func (s *fakeStorage) GetByID(_ context.Context, id string) (*core.Transaction, error) {
	tx, ok := s.rows[id]
	if !ok {
		return nil, nil
	}
	return &tx, nil
}

func (s *fakeStorage) ListPendingExport(_ context.Context, limit int) ([]core.Transaction, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]core.Transaction, 0)
	for _, id := range s.pending {
		if len(out) == limit {
			break
		}
		out = append(out, s.rows[id])
	}
	return out, nil
}

func (s *fakeStorage) MarkExported(_ context.Context, id string) error {
	s.exported = append(s.exported, id)
	return nil
}

func (s *fakeStorage) MarkExportError(_ context.Context, id string) error {
	s.errored = append(s.errored, id)
	return nil
}

type fakeAppender struct {
	appended []string
	failFor  map[string]error
}

func (a *fakeAppender) AppendTransaction(_ context.Context, tx core.Transaction) error {
	if err := a.failFor[tx.ID]; err != nil {
		return err
	}
	a.appended = append(a.appended, tx.ID)
	return nil
}

func someTx(title string) core.Transaction {
	return core.Transaction{
		ID:        uuid.NewString(),
		Title:     title,
		Amount:    core.Money{Cents: -1500},
		SessionID: uuid.NewString(),
		CreatedAt: time.Now().UTC(),
	}
}

func TestHandleCreatedMessage(t *testing.T) {
	tx := someTx("Groceries")
	storage := newFakeStorage(tx)
	appender := &fakeAppender{}
	w := NewExportWorker(storage, appender, 10)

	msg := amqp.NewTransactionCreatedMessage(tx.ID, 1)
	if err := w.HandleCreatedMessage(context.Background(), msg); err != nil {
		t.Fatalf("HandleCreatedMessage: %v", err)
	}

	if len(appender.appended) != 1 || appender.appended[0] != tx.ID {
		t.Errorf("appended = %v, want [%s]", appender.appended, tx.ID)
	}
	if len(storage.exported) != 1 || storage.exported[0] != tx.ID {
		t.Errorf("exported = %v, want [%s]", storage.exported, tx.ID)
	}
}

func TestHandleCreatedMessageMissingRow(t *testing.T) {
	storage := newFakeStorage()
	appender := &fakeAppender{}
	w := NewExportWorker(storage, appender, 10)

	msg := amqp.NewTransactionCreatedMessage(uuid.NewString(), 1)
	if err := w.HandleCreatedMessage(context.Background(), msg); err != nil {
		t.Fatalf("missing row should not be an error: %v", err)
	}
	if len(appender.appended) != 0 {
		t.Errorf("nothing should be appended, got %v", appender.appended)
	}
}

func TestHandleCreatedMessageAppendFailure(t *testing.T) {
	tx := someTx("Rent")
	storage := newFakeStorage(tx)
	appender := &fakeAppender{failFor: map[string]error{tx.ID: errors.New("sheets unavailable")}}
	w := NewExportWorker(storage, appender, 10)

	msg := amqp.NewTransactionCreatedMessage(tx.ID, 1)
	if err := w.HandleCreatedMessage(context.Background(), msg); err == nil {
		t.Fatal("append failure should surface so the message is redelivered")
	}
	if len(storage.errored) != 1 || storage.errored[0] != tx.ID {
		t.Errorf("errored = %v, want [%s]", storage.errored, tx.ID)
	}
	if len(storage.exported) != 0 {
		t.Errorf("failed export must not be marked exported: %v", storage.exported)
	}
}

func TestProcessPending(t *testing.T) {
	good1 := someTx("a")
	bad := someTx("b")
	good2 := someTx("c")
	storage := newFakeStorage(good1, bad, good2)
	appender := &fakeAppender{failFor: map[string]error{bad.ID: errors.New("boom")}}
	w := NewExportWorker(storage, appender, 10)

	if err := w.ProcessPending(context.Background()); err != nil {
		t.Fatalf("ProcessPending: %v", err)
	}

	// One bad row must not stop the rest of the batch.
	if len(storage.exported) != 2 {
		t.Errorf("exported = %v, want both good rows", storage.exported)
	}
	if len(storage.errored) != 1 || storage.errored[0] != bad.ID {
		t.Errorf("errored = %v, want [%s]", storage.errored, bad.ID)
	}
}

func TestProcessPendingRespectsBatchSize(t *testing.T) {
	txs := []core.Transaction{someTx("a"), someTx("b"), someTx("c")}
	storage := newFakeStorage(txs...)
	appender := &fakeAppender{}
	w := NewExportWorker(storage, appender, 2)

	if err := w.ProcessPending(context.Background()); err != nil {
		t.Fatalf("ProcessPending: %v", err)
	}
	if len(appender.appended) != 2 {
		t.Errorf("appended %d rows, want batch of 2", len(appender.appended))
	}
}

func TestProcessPendingEmpty(t *testing.T) {
	w := NewExportWorker(newFakeStorage(), &fakeAppender{}, 10)
	if err := w.ProcessPending(context.Background()); err != nil {
		t.Fatalf("empty pending set should be a no-op: %v", err)
	}
}
