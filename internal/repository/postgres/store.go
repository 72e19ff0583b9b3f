package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"guideapi/internal/repository"
)

// DBTX is the subset of database/sql operations shared by *sql.DB and
// *sql.Tx, letting the repositories run either standalone or inside a
// transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store is the PostgreSQL implementation of repository.Store.
type Store struct {
	db *sql.DB
}

// NewStore creates a new Store over an open connection pool.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

var _ repository.Store = (*Store)(nil)

// Guides returns a repository bound to the pool for non-transactional reads.
func (s *Store) Guides() repository.GuideRepository {
	return NewGuidePostgres(s.db)
}

// Ledger returns a ledger bound to the pool for non-transactional reads.
func (s *Store) Ledger() repository.HistoryLedger {
	return NewHistoryPostgres(s.db)
}

// InTx runs fn with transaction-bound repositories. Any error from fn
// rolls the transaction back; otherwise it commits.
func (s *Store) InTx(ctx context.Context, fn repository.TxFunc) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	if err := fn(NewGuidePostgres(tx), NewHistoryPostgres(tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
			return fmt.Errorf("%w; rollback failed: %v", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
