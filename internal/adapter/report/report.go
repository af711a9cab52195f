// Package report renders an analytics run as markdown, HTML or styled terminal text.
package report

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/charmbracelet/glamour"
	"github.com/shopspring/decimal"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/aveongye/cst-case-study/internal/adapter/export"
	"github.com/aveongye/cst-case-study/internal/domain"
)

// Markdown returns a markdown summary of the run: rates, NAV schedules,
// the hedge blotter and failed scopes.
func Markdown(result *domain.FundAnalytics) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", result.Fund)
	fmt.Fprintf(&b, "Base currency **%s**, run `%s`", result.BaseCurrency, result.RunID)
	if !result.ComputedAt.IsZero() {
		fmt.Fprintf(&b, " at %s", result.ComputedAt.Format("2006-01-02 15:04:05 MST"))
	}
	b.WriteString(".\n\n")

	b.WriteString("## Internal rates of return\n\n")
	b.WriteString("| Scope | IRR | Iterations |\n|---|---:|---:|\n")
	for _, r := range result.CurrencyRates {
		fmt.Fprintf(&b, "| %s | %s | %d |\n", r.Scope, export.Percent(r.Rate), r.Iterations)
	}
	if r := result.FundRate; r != nil {
		fmt.Fprintf(&b, "| Fund (%s) | %s | %d |\n", result.BaseCurrency, export.Percent(r.Rate), r.Iterations)
	}
	b.WriteString("\n")

	for _, ccy := range result.Currencies() {
		fmt.Fprintf(&b, "## NAV schedule %s\n\n", ccy)
		b.WriteString("| Date | Cashflow | NAV pre-transaction | NAV post-transaction |\n|---|---:|---:|---:|\n")
		for _, p := range result.Schedules[ccy] {
			fmt.Fprintf(&b, "| %s | %s | %s | %s |\n",
				p.Date, Amount(p.Cashflow, ccy), Amount(p.PreTransaction, ccy), Amount(p.PostTransaction, ccy))
		}
		b.WriteString("\n")
	}

	b.WriteString("## FX forwards\n\n")
	if len(result.Trades) == 0 {
		b.WriteString("No trades proposed.\n\n")
	} else {
		b.WriteString("| Pair | Trade date | Delivery date | Direction | Notional |\n|---|---|---|---|---:|\n")
		for _, t := range result.Trades {
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
				t.CurrencyPair(), t.TradeDate, t.DeliveryDate, t.Direction, Amount(t.Notional, t.Currency))
		}
		b.WriteString("\n")
	}

	if len(result.Failures) > 0 {
		b.WriteString("## Failed scopes\n\n")
		for _, f := range result.Failures {
			fmt.Fprintf(&b, "- **%s**: %v\n", f.Scope, f.Err)
		}
		b.WriteString("\n")
	}

	return b.String()
}

// Amount formats an amount with the currency's symbol and minor units,
// e.g. £100,000,000.00. Unknown currencies fall back to two decimals.
func Amount(amount decimal.Decimal, currency string) string {
	cur := money.GetCurrency(currency)
	if cur == nil {
		return amount.StringFixed(2) + " " + currency
	}
	factor := decimal.New(1, int32(cur.Fraction))
	minor := amount.Mul(factor).Round(0)
	return money.New(minor.IntPart(), currency).Display()
}

// HTML renders markdown to an HTML fragment, tables included.
func HTML(md string) (string, error) {
	var buf bytes.Buffer
	renderer := goldmark.New(goldmark.WithExtensions(extension.Table))
	if err := renderer.Convert([]byte(md), &buf); err != nil {
		return "", fmt.Errorf("failed to render html: %w", err)
	}
	return buf.String(), nil
}

// Terminal renders markdown for a terminal. style is a glamour standard
// style name ("dark", "light", "notty", ...) or "auto" to detect it.
func Terminal(md, style string, width int) (string, error) {
	styleOpt := glamour.WithStandardStyle(style)
	if style == "" || style == "auto" {
		styleOpt = glamour.WithAutoStyle()
	}
	r, err := glamour.NewTermRenderer(styleOpt, glamour.WithWordWrap(width))
	if err != nil {
		return "", fmt.Errorf("failed to create terminal renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return out, nil
}
