package memory

import (
	"context"
	"sync"

	"github.com/aveongye/cst-case-study/internal/domain"
)

// ResultRepository implements domain.ResultRepository in memory
type ResultRepository struct {
	mu   sync.Mutex
	runs []*domain.FundAnalytics
}

// NewResultRepository creates an empty result repository
func NewResultRepository() *ResultRepository {
	return &ResultRepository{}
}

// SaveRun records the run
func (r *ResultRepository) SaveRun(ctx context.Context, run *domain.FundAnalytics) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs = append(r.runs, run)
	return nil
}

// Runs returns the saved runs in insertion order
func (r *ResultRepository) Runs() []*domain.FundAnalytics {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*domain.FundAnalytics(nil), r.runs...)
}
