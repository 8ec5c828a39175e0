package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"caixa/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteRepository is the durable home of the transactions table. It is
// constructed once at startup and injected into the service, never reached
// through a package-level handle.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// InsertTransaction persists a fully-formed transaction row. The row is
// expected to carry a unique id and a sign-normalized amount already.
func (r *SQLiteRepository) InsertTransaction(ctx context.Context, tx core.Transaction) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (id, title, amount_cents, session_id, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		tx.ID, tx.Title, tx.Amount.Cents, tx.SessionID, tx.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"id", tx.ID,
		"amount_cents", tx.Amount.Cents)

	return nil
}

// ListBySession returns every row owned by the session, oldest first.
// Insertion order is preserved via the rowid tiebreak.
func (r *SQLiteRepository) ListBySession(ctx context.Context, sessionID string) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, title, amount_cents, session_id, created_at
		 FROM transactions
		 WHERE session_id = ?
		 ORDER BY created_at ASC, rowid ASC`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	out := make([]core.Transaction, 0)
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return out, nil
}

// GetByIDAndSession returns the row matching both id and session, or nil when
// there is no match. An id owned by another session is indistinguishable from
// an id that does not exist; this is the session-isolation boundary.
func (r *SQLiteRepository) GetByIDAndSession(ctx context.Context, id, sessionID string) (*core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, title, amount_cents, session_id, created_at
		 FROM transactions
		 WHERE id = ? AND session_id = ?`,
		id, sessionID,
	)
	tx, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	return &tx, nil
}

// SumAmountBySession returns the signed sum over the session's rows, in
// cents. Sessions with no rows sum to zero, not to an absent value.
func (r *SQLiteRepository) SumAmountBySession(ctx context.Context, sessionID string) (int64, error) {
	var sum int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount_cents), 0)
		 FROM transactions
		 WHERE session_id = ?`,
		sessionID,
	).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("sum transactions: %w", err)
	}
	return sum, nil
}

// GetByID fetches a row regardless of session. Export-worker use only; it
// never backs an API read.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, title, amount_cents, session_id, created_at
		 FROM transactions
		 WHERE id = ?`,
		id,
	)
	tx, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get transaction by id: %w", err)
	}
	return &tx, nil
}

// ListPendingExport returns rows not yet copied to the export target,
// oldest first.
func (r *SQLiteRepository) ListPendingExport(ctx context.Context, limit int) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, title, amount_cents, session_id, created_at
		 FROM transactions
		 WHERE exported_at IS NULL
		 ORDER BY created_at ASC, rowid ASC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list pending export: %w", err)
	}
	defer rows.Close()

	out := make([]core.Transaction, 0, limit)
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list pending export: %w", err)
	}
	return out, nil
}

// MarkExported records a successful copy to the export target.
func (r *SQLiteRepository) MarkExported(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET exported_at = ? WHERE id = ?`,
		time.Now().UTC().Format(timeLayout), id,
	)
	if err != nil {
		return fmt.Errorf("mark transaction exported: %w", err)
	}

	slog.InfoContext(ctx, "Transaction marked as exported", "id", id)
	return nil
}

// MarkExportError bumps the attempt counter so repeatedly failing rows are
// visible in the table.
func (r *SQLiteRepository) MarkExportError(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET export_attempts = export_attempts + 1 WHERE id = ?`,
		id,
	)
	if err != nil {
		return fmt.Errorf("mark transaction export error: %w", err)
	}

	slog.WarnContext(ctx, "Transaction marked with export error", "id", id)
	return nil
}

// timeLayout is how created_at/exported_at are stored. Lexicographic order
// matches chronological order, which the list queries rely on.
const timeLayout = "2006-01-02 15:04:05.999999999"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		tx        core.Transaction
		createdAt string
	)
	if err := row.Scan(&tx.ID, &tx.Title, &tx.Amount.Cents, &tx.SessionID, &createdAt); err != nil {
		return core.Transaction{}, err
	}
	ts, err := parseStoredTime(createdAt)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse created_at %q: %w", createdAt, err)
	}
	tx.CreatedAt = ts
	return tx, nil
}

func parseStoredTime(s string) (time.Time, error) {
	// Rows inserted by this code use timeLayout; CURRENT_TIMESTAMP defaults
	// come back without fractional seconds.
	for _, layout := range []string{timeLayout, "2006-01-02 15:04:05"} {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported timestamp format")
}
