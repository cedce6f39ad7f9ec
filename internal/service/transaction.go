package service

import (
	"context"

	"github.com/ticketbari/ticketbari-api/internal/model"
)

// TransactionService exposes read-only views over the payment
// ledger, scoped to the calling actor.
type TransactionService struct {
	txns TransactionStore
}

// NewTransactionService wires a TransactionService.
func NewTransactionService(txns TransactionStore) *TransactionService {
	return &TransactionService{txns: txns}
}

// Get returns one of the actor's own transactions.
func (s *TransactionService) Get(ctx context.Context, actor Actor, id uint64) (*model.Transaction, error) {
	return s.txns.GetByIDForUser(ctx, id, actor.ID)
}

// ListForUser returns the actor's transactions, newest first.
func (s *TransactionService) ListForUser(ctx context.Context, actor Actor) ([]model.Transaction, error) {
	return s.txns.ListByUser(ctx, actor.ID)
}

// ListForVendor returns the transactions settling bookings against
// the actor's tickets.
func (s *TransactionService) ListForVendor(ctx context.Context, actor Actor) ([]model.Transaction, error) {
	return s.txns.ListByVendor(ctx, actor.ID)
}

// Stats aggregates the actor's ledger.
func (s *TransactionService) Stats(ctx context.Context, actor Actor) (*model.TransactionStats, error) {
	return s.txns.Stats(ctx, actor.ID)
}
