package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/GTDGit/taskify_api/internal/models"
	"github.com/GTDGit/taskify_api/internal/pricing"
)

// Draft is an in-progress sale held for one admin user.
type Draft struct {
	ID            string               `json:"id"`
	Owner         string               `json:"owner"`
	Sale          pricing.Sale         `json:"sale"`
	CustomerID    *int                 `json:"customerId,omitempty"`
	PaymentMethod models.PaymentMethod `json:"paymentMethod"`
	PaymentStatus models.PaymentStatus `json:"paymentStatus"`
	Notes         string               `json:"notes,omitempty"`
	CreatedAt     time.Time            `json:"createdAt"`
	UpdatedAt     time.Time            `json:"updatedAt"`
}

// DraftStore persists drafts under draft:{owner}:{id}. Every save refreshes the TTL.
type DraftStore struct {
	store Store
	ttl   time.Duration
}

// NewDraftStore creates a new DraftStore.
func NewDraftStore(store Store, ttl time.Duration) *DraftStore {
	return &DraftStore{store: store, ttl: ttl}
}

func (s *DraftStore) key(owner, id string) string {
	return fmt.Sprintf("draft:%s:%s", owner, id)
}

// Save writes d.
func (s *DraftStore) Save(ctx context.Context, d *Draft) error {
	d.UpdatedAt = time.Now()
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("failed to marshal draft: %w", err)
	}
	return s.store.Set(ctx, s.key(d.Owner, d.ID), string(data), s.ttl)
}

// Get loads a draft. Drafts of other owners are invisible (ErrMiss).
func (s *DraftStore) Get(ctx context.Context, owner, id string) (*Draft, error) {
	raw, err := s.store.Get(ctx, s.key(owner, id))
	if err != nil {
		return nil, err
	}

	var d Draft
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		return nil, fmt.Errorf("failed to unmarshal draft: %w", err)
	}
	return &d, nil
}

// Delete removes a draft.
func (s *DraftStore) Delete(ctx context.Context, owner, id string) error {
	return s.store.Delete(ctx, s.key(owner, id))
}
