// Package repository is the gorm-backed persistence of job sites, time
// entries and their audit trail.
package repository

import (
	"context"
	"errors"
	"strings"

	"jobsite-timeclock/internal/apperr"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PgErrUniqueViolation is PostgreSQL's unique_violation code.
const PgErrUniqueViolation = "23505"

type txKey struct{}

// Store implements the timeclock persistence port on gorm.
type Store struct {
	db *gorm.DB
	lg *zap.Logger
}

func NewStore(db *gorm.DB, lg *zap.Logger) *Store {
	if lg == nil {
		lg = zap.NewNop()
	}
	return &Store{db: db, lg: lg}
}

// InTx runs fn in one transaction. Store calls made with the ctx passed to
// fn join that transaction; nested InTx calls reuse it.
func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// conn returns the transaction bound to ctx, or the pool.
func (s *Store) conn(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return s.db.WithContext(ctx)
}

// locking adds FOR UPDATE inside a transaction. The sqlite dialect drops
// the clause; there BEGIN IMMEDIATE already serializes writers.
func (s *Store) locking(ctx context.Context) *gorm.DB {
	q := s.conn(ctx)
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return q
}

// isUniqueViolation recognizes duplicate-key errors from both drivers,
// translated or not.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == PgErrUniqueViolation
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// storageErr logs and classifies an unexpected driver error.
func (s *Store) storageErr(op string, err error) error {
	s.lg.Error("storage operation failed", zap.String("op", op), zap.Error(err))
	return apperr.Storage(err)
}
