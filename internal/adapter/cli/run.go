package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"github.com/aveongye/cst-case-study/internal/adapter/export"
	"github.com/aveongye/cst-case-study/internal/adapter/report"
	"github.com/aveongye/cst-case-study/internal/domain"
)

type runCmd struct {
	file      string
	fund      string
	outputDir string
}

func (*runCmd) Name() string     { return "run" }
func (*runCmd) Synopsis() string { return "compute a fund's IRRs, NAV schedules and FX forwards and write them as CSV" }
func (*runCmd) Usage() string {
	return `casestudy run [-file <cashflows.xlsx>] [-fund <name>] [-output-dir <dir>]

  Computes the per-currency and fund-level IRRs, the NAV schedule of each
  currency and the rolling FX forward hedges of a fund, then writes them
  as CSV files. Without -file the configured store is used.
`
}

func (c *runCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.file, "file", "", "Cashflow spreadsheet (.xlsx or .csv); defaults to the configured store")
	f.StringVar(&c.fund, "fund", "", "Fund to analyse (defaults to the configured default_fund)")
	f.StringVar(&c.outputDir, "output-dir", "", "Directory receiving the CSV files (defaults to the configured output_dir)")
}

func (c *runCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	env, err := openService(ctx, c.file, c.fund)
	if err != nil {
		return fail(err)
	}
	defer env.Close()

	result, err := env.service.Run(ctx, env.fundOrDefault(c.fund))
	if err != nil {
		return fail(err)
	}

	dir := c.outputDir
	if dir == "" {
		dir = env.cfg.OutputDir
	}
	written, err := export.NewResultExporter(env.logger).WriteAll(dir, result)
	if err != nil {
		return fail(err)
	}

	printSummary(result)
	for _, path := range written {
		fmt.Fprintf(stdout, "wrote %s\n", path)
	}
	return subcommands.ExitSuccess
}

func printSummary(result *domain.FundAnalytics) {
	fmt.Fprintf(stdout, "%s (base %s)\n", result.Fund, result.BaseCurrency)
	for _, r := range result.CurrencyRates {
		fmt.Fprintf(stdout, "  IRR %s: %s\n", r.Scope, export.Percent(r.Rate))
	}
	if r := result.FundRate; r != nil {
		fmt.Fprintf(stdout, "  IRR fund: %s\n", export.Percent(r.Rate))
	}
	fmt.Fprintf(stdout, "  FX forwards: %d\n", len(result.Trades))
	if len(result.Trades) > 0 {
		first := result.Trades[0]
		fmt.Fprintf(stdout, "  first roll: %s %s %s -> %s\n",
			first.CurrencyPair(), report.Amount(first.Notional, first.Currency), first.TradeDate, first.DeliveryDate)
	}
	for _, failure := range result.Failures {
		fmt.Fprintf(stdout, "  skipped %s: %v\n", failure.Scope, failure.Err)
	}
}
