package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/aveongye/cst-case-study/internal/adapter/report"
)

type reportCmd struct {
	file  string
	fund  string
	html  string
	style string
	width int
}

func (*reportCmd) Name() string     { return "report" }
func (*reportCmd) Synopsis() string { return "display a fund's analytics as a formatted report" }
func (*reportCmd) Usage() string {
	return `casestudy report [-file <cashflows.xlsx>] [-fund <name>] [-html <out.html>] [-style <style>] [-width <n>]

  Renders the IRRs, NAV schedules and FX forwards of a fund in the terminal,
  or as an HTML page with -html.
`
}

func (c *reportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.file, "file", "", "Cashflow spreadsheet (.xlsx or .csv); defaults to the configured store")
	f.StringVar(&c.fund, "fund", "", "Fund to analyse (defaults to the configured default_fund)")
	f.StringVar(&c.html, "html", "", "Write the report as HTML to this file instead of the terminal")
	f.StringVar(&c.style, "style", "auto", "Terminal style (auto, dark, light, notty, ascii, dracula)")
	f.IntVar(&c.width, "width", 120, "Terminal word wrap width")
}

func (c *reportCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	if c.width <= 0 {
		fmt.Fprintf(os.Stderr, "Error: -width must be positive\n")
		return subcommands.ExitUsageError
	}

	env, err := openService(ctx, c.file, c.fund)
	if err != nil {
		return fail(err)
	}
	defer env.Close()

	result, err := env.service.Run(ctx, env.fundOrDefault(c.fund))
	if err != nil {
		return fail(err)
	}
	md := report.Markdown(result)

	if c.html != "" {
		page, err := report.HTML(md)
		if err != nil {
			return fail(err)
		}
		if err := os.WriteFile(c.html, []byte(page), 0644); err != nil {
			return fail(fmt.Errorf("failed to write %s: %w", c.html, err))
		}
		fmt.Fprintf(stdout, "wrote %s\n", c.html)
		return subcommands.ExitSuccess
	}

	out, err := report.Terminal(md, c.style, c.width)
	if err != nil {
		return fail(err)
	}
	fmt.Fprint(stdout, out)
	return subcommands.ExitSuccess
}
