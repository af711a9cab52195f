// Package repository opens the cashflow and result stores selected by configuration.
package repository

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/aveongye/cst-case-study/internal/adapter/repository/memory"
	"github.com/aveongye/cst-case-study/internal/adapter/repository/postgres"
	"github.com/aveongye/cst-case-study/internal/adapter/repository/sqlite"
	"github.com/aveongye/cst-case-study/internal/config"
	"github.com/aveongye/cst-case-study/internal/domain"
)

// Stores groups the repositories of one backend
type Stores struct {
	Cashflows domain.CashflowRepository
	Results   domain.ResultRepository
	close     func() error
}

// Close releases the backend connection, if any
func (s *Stores) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// Open connects to the storage backend named by cfg.Storage
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Stores, error) {
	switch cfg.Storage {
	case config.StorageMemory:
		return &Stores{
			Cashflows: memory.NewCashflowRepository(),
			Results:   memory.NewResultRepository(),
		}, nil

	case config.StorageSQLite:
		db, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		logger.Info("sqlite store opened", zap.String("path", cfg.SQLitePath))
		return &Stores{
			Cashflows: sqlite.NewCashflowRepository(db),
			Results:   sqlite.NewResultRepository(db),
			close:     db.Close,
		}, nil

	case config.StoragePostgres:
		db, err := postgres.Connect(ctx, cfg.PostgresURL, cfg.ConnectRetries, logger)
		if err != nil {
			return nil, err
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, err
		}
		logger.Info("postgres store connected")
		return &Stores{
			Cashflows: postgres.NewCashflowRepository(db),
			Results:   postgres.NewResultRepository(db),
			close:     db.Close,
		}, nil
	}

	return nil, fmt.Errorf("unknown storage %q", cfg.Storage)
}
