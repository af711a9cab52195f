// Package cli implements the casestudy command line application.
package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
	"go.uber.org/zap"

	"github.com/aveongye/cst-case-study/internal/adapter/repository"
	"github.com/aveongye/cst-case-study/internal/adapter/repository/memory"
	"github.com/aveongye/cst-case-study/internal/adapter/spreadsheet"
	"github.com/aveongye/cst-case-study/internal/config"
	"github.com/aveongye/cst-case-study/internal/logger"
	"github.com/aveongye/cst-case-study/internal/usecase/analytics"
	"github.com/aveongye/cst-case-study/internal/usecase/seeder"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&runCmd{}, "analytics")
	c.Register(&reportCmd{}, "analytics")

	c.Register(&importCmd{}, "store")
	c.Register(&seedCmd{}, "store")
	c.Register(&fundsCmd{}, "store")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var configPath = flag.String("config", "", "Path to a configuration file (yaml, json or toml); CST_* environment variables apply on top of defaults")

// stdout receives command results; tests swap it.
var stdout io.Writer = os.Stdout

// Completion describes the commands and flags for shell completion.
func Completion() *complete.Command {
	cashflowFiles := predict.Files("*")
	funds := predict.Set{config.DefaultFund, seeder.DemoFundName}

	return &complete.Command{
		Flags: map[string]complete.Predictor{
			"config": predict.Files("*"),
		},
		Sub: map[string]*complete.Command{
			"run": {
				Flags: map[string]complete.Predictor{
					"file":       cashflowFiles,
					"fund":       funds,
					"output-dir": predict.Dirs("*"),
				},
			},
			"report": {
				Flags: map[string]complete.Predictor{
					"file":  cashflowFiles,
					"fund":  funds,
					"html":  predict.Files("*.html"),
					"style": predict.Set{"auto", "dark", "light", "notty", "ascii", "dracula"},
					"width": predict.Something,
				},
			},
			"import": {
				Flags: map[string]complete.Predictor{
					"file": cashflowFiles,
				},
			},
			"seed":  {},
			"funds": {},
		},
	}
}

// environment is what every command needs: settings, a logger and an analytics service.
type environment struct {
	cfg     *config.Config
	logger  *zap.Logger
	service *analytics.AnalyticsService
	stores  *repository.Stores
}

func (e *environment) Close() {
	if e.stores != nil {
		e.stores.Close()
	}
	e.logger.Sync()
}

// loadEnvironment reads the configuration and builds the logger.
func loadEnvironment() (*environment, error) {
	cfg, err := config.Load(*configPath)
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.DebugLogging)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return &environment{cfg: cfg, logger: log}, nil
}

// openService prepares the analytics service. With a file, the rows of fund are
// read from it into memory and runs are not stored; otherwise the configured store is used.
func openService(ctx context.Context, file, fund string) (*environment, error) {
	env, err := loadEnvironment()
	if err != nil {
		return nil, err
	}

	if file != "" {
		records, err := spreadsheet.Load(file, env.cfg.CurrencyPolicy())
		if err != nil {
			env.Close()
			return nil, err
		}
		records, err = spreadsheet.FilterByFund(records, env.fundOrDefault(fund))
		if err != nil {
			env.Close()
			return nil, err
		}
		env.logger.Debug("cashflow file loaded", zap.String("file", file), zap.Int("rows", len(records)))
		env.service = analytics.NewAnalyticsService(memory.NewCashflowRepository(records...), nil, env.logger)
		return env, nil
	}

	if err := env.openStores(ctx); err != nil {
		env.Close()
		return nil, err
	}
	env.service = analytics.NewAnalyticsService(env.stores.Cashflows, env.stores.Results, env.logger)
	return env, nil
}

// openStores connects the configured store, seeding the demo fund when enabled.
func (e *environment) openStores(ctx context.Context) error {
	stores, err := repository.Open(ctx, e.cfg, e.logger)
	if err != nil {
		return err
	}
	e.stores = stores

	if e.cfg.SeedDemo {
		if err := seeder.NewDemoSeeder(stores.Cashflows, e.cfg.CurrencyPolicy(), e.logger).Seed(ctx); err != nil {
			return err
		}
	}
	return nil
}

// fundOrDefault returns fund, or the configured default fund when empty.
func (e *environment) fundOrDefault(fund string) string {
	if fund != "" {
		return fund
	}
	return e.cfg.DefaultFund
}

func fail(err error) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return subcommands.ExitFailure
}
