package repository

import (
	"context"
	"errors"
)

// Package repository contains data access layer abstractions.
// Implementations can live in subpackages (e.g., postgres) inside this directory.

// ErrStaleVersion is returned by GuideRepository.Update when the stored
// version no longer matches the version the caller based its change on.
var ErrStaleVersion = errors.New("guide version is stale")

// TxFunc receives transaction-bound repositories. Everything done inside
// it commits or rolls back as one unit.
type TxFunc func(guides GuideRepository, ledger HistoryLedger) error

// Store is the unit-of-work entry point over the persistence layer.
// Guides and Ledger serve plain reads; InTx spans a guide write and its
// history append in a single transaction so the ledger can never contain
// an entry whose guide state did not commit, and vice versa.
type Store interface {
	Guides() GuideRepository
	Ledger() HistoryLedger
	InTx(ctx context.Context, fn TxFunc) error
}

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
// T is typically a model type.
type PageResult[T any] struct {
	Items []T
	Total int
}
