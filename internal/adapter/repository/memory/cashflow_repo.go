// Package memory provides in-process repositories for file input and tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/aveongye/cst-case-study/internal/domain"
)

// CashflowRepository implements domain.CashflowRepository in memory
type CashflowRepository struct {
	mu      sync.RWMutex
	records []domain.CashflowRecord
	nextID  int64
}

// NewCashflowRepository creates a repository holding a copy of records
func NewCashflowRepository(records ...domain.CashflowRecord) *CashflowRepository {
	r := &CashflowRepository{}
	_ = r.Create(context.Background(), records)
	return r
}

// ListFunds returns the distinct fund names, sorted
func (r *CashflowRepository) ListFunds(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return fundNames(r.records), nil
}

// ListByFund returns the rows of a fund ordered by date then ID
func (r *CashflowRepository) ListByFund(ctx context.Context, fund string) ([]domain.CashflowRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.CashflowRecord
	for _, rec := range r.records {
		if rec.Fund == fund {
			out = append(out, rec)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %q (available: %v)", domain.ErrFundNotFound, fund, fundNames(r.records))
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Create appends rows, assigning an ID to rows without one
func (r *CashflowRepository) Create(ctx context.Context, records []domain.CashflowRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, rec := range records {
		if rec.ID == 0 {
			r.nextID++
			rec.ID = r.nextID
		} else if rec.ID > r.nextID {
			r.nextID = rec.ID
		}
		r.records = append(r.records, rec)
	}
	return nil
}

func fundNames(records []domain.CashflowRecord) []string {
	seen := make(map[string]struct{})
	names := make([]string, 0)
	for _, rec := range records {
		if _, ok := seen[rec.Fund]; ok {
			continue
		}
		seen[rec.Fund] = struct{}{}
		names = append(names, rec.Fund)
	}
	sort.Strings(names)
	return names
}
