package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/aveongye/cst-case-study/internal/adapter/spreadsheet"
	"github.com/aveongye/cst-case-study/internal/usecase/seeder"
)

type importCmd struct {
	file string
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "import a cashflow spreadsheet into the configured store" }
func (*importCmd) Usage() string {
	return `casestudy import -file <cashflows.xlsx>

  Validates every row of the spreadsheet and stores them in one unit of work.
  Nothing is stored when a row is invalid.
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.file, "file", "", "Cashflow spreadsheet (.xlsx or .csv)")
}

func (c *importCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	if c.file == "" {
		fmt.Fprintf(os.Stderr, "Error: -file is required\n")
		return subcommands.ExitUsageError
	}

	env, err := loadEnvironment()
	if err != nil {
		return fail(err)
	}
	defer env.Close()

	records, err := spreadsheet.Load(c.file, env.cfg.CurrencyPolicy())
	if err != nil {
		return fail(err)
	}
	if err := env.openStores(ctx); err != nil {
		return fail(err)
	}
	if err := env.stores.Cashflows.Create(ctx, records); err != nil {
		return fail(err)
	}

	fmt.Fprintf(stdout, "Successfully imported %d rows from %s into the %s store\n", len(records), c.file, env.cfg.Storage)
	return subcommands.ExitSuccess
}

type seedCmd struct{}

func (*seedCmd) Name() string     { return "seed" }
func (*seedCmd) Synopsis() string { return "store the demonstration fund" }
func (*seedCmd) Usage() string {
	return `casestudy seed

  Stores the multi-currency demonstration fund unless it already exists.
`
}

func (*seedCmd) SetFlags(f *flag.FlagSet) {}

func (*seedCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	env, err := loadEnvironment()
	if err != nil {
		return fail(err)
	}
	defer env.Close()

	if err := env.openStores(ctx); err != nil {
		return fail(err)
	}
	if err := seeder.NewDemoSeeder(env.stores.Cashflows, env.cfg.CurrencyPolicy(), env.logger).Seed(ctx); err != nil {
		return fail(err)
	}

	fmt.Fprintf(stdout, "%s is available in the %s store\n", seeder.DemoFundName, env.cfg.Storage)
	return subcommands.ExitSuccess
}

type fundsCmd struct{}

func (*fundsCmd) Name() string     { return "funds" }
func (*fundsCmd) Synopsis() string { return "list the funds of the configured store" }
func (*fundsCmd) Usage() string {
	return `casestudy funds

  Lists the fund names present in the configured store.
`
}

func (*fundsCmd) SetFlags(f *flag.FlagSet) {}

func (*fundsCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	env, err := openService(ctx, "", "")
	if err != nil {
		return fail(err)
	}
	defer env.Close()

	funds, err := env.service.ListFunds(ctx)
	if err != nil {
		return fail(err)
	}
	for _, fund := range funds {
		fmt.Fprintln(stdout, fund)
	}
	return subcommands.ExitSuccess
}
