package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// RepoSet bundles repositories bound to a single transaction.
type RepoSet struct {
	Users    UserRepository
	Tickets  TicketRepository
	Comments CommentRepository
}

// TxManager runs a function inside a database transaction. If fn
// returns an error the transaction is rolled back and nothing is
// persisted.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(RepoSet) error) error
}

type pgxTxManager struct {
	pool *pgxpool.Pool
}

// NewTxManager builds a pgx-backed transaction manager.
func NewTxManager(pool *pgxpool.Pool) TxManager {
	return &pgxTxManager{pool: pool}
}

func (m *pgxTxManager) WithinTx(ctx context.Context, fn func(RepoSet) error) error {
	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	set := RepoSet{
		Users:    NewUserRepository(tx),
		Tickets:  NewTicketRepository(tx),
		Comments: NewCommentRepository(tx),
	}
	if err := fn(set); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
