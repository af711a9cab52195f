// Package export writes analytics results as CSV files.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"cloud.google.com/go/civil"
	"go.uber.org/zap"

	"github.com/aveongye/cst-case-study/internal/domain"
)

// File names written by WriteAll
const (
	CurrencyRatesFile = "currency_irrs.csv"
	FundRateFile      = "fund_irr.csv"
	TradesFile        = "fx_forward_trades.csv"
)

// ScheduleFile returns the NAV schedule file name of a currency
func ScheduleFile(currency string) string {
	return fmt.Sprintf("nav_schedule_%s.csv", currency)
}

// ResultExporter handles result export functionality
type ResultExporter struct {
	logger *zap.Logger
}

// NewResultExporter creates a new result exporter
func NewResultExporter(logger *zap.Logger) *ResultExporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResultExporter{
		logger: logger,
	}
}

// WriteAll writes every output of an analytics run into dir and returns the
// written paths. The fund rate file is skipped when the fund-level solve failed.
func (e *ResultExporter) WriteAll(dir string, result *domain.FundAnalytics) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	var written []string
	write := func(name string, rows [][]string) error {
		path := filepath.Join(dir, name)
		if err := writeCSV(path, rows); err != nil {
			return err
		}
		written = append(written, path)
		return nil
	}

	if err := write(CurrencyRatesFile, CurrencyRateRows(result)); err != nil {
		return written, err
	}
	if result.FundRate != nil {
		if err := write(FundRateFile, FundRateRows(result)); err != nil {
			return written, err
		}
	}
	for _, ccy := range result.Currencies() {
		if err := write(ScheduleFile(ccy), ScheduleRows(result, ccy)); err != nil {
			return written, err
		}
	}
	if err := write(TradesFile, TradeRows(result.Trades)); err != nil {
		return written, err
	}

	e.logger.Info("analytics exported",
		zap.String("fund", result.Fund),
		zap.String("dir", dir),
		zap.Int("files", len(written)))
	return written, nil
}

// CurrencyRateRows returns the currency IRR table, rates as percentages with 3 decimals
func CurrencyRateRows(result *domain.FundAnalytics) [][]string {
	rows := [][]string{{"Currency", "IRR"}}
	for _, r := range result.CurrencyRates {
		rows = append(rows, []string{r.Scope, Percent(r.Rate)})
	}
	return rows
}

// FundRateRows returns the fund IRR table
func FundRateRows(result *domain.FundAnalytics) [][]string {
	rows := [][]string{{"Fund_Name", "IRR"}}
	if result.FundRate != nil {
		rows = append(rows, []string{result.Fund, Percent(result.FundRate.Rate)})
	}
	return rows
}

// ScheduleRows returns the NAV schedule of a currency joined with its
// contractual balances on the same dates, amounts with 2 decimals
func ScheduleRows(result *domain.FundAnalytics, currency string) [][]string {
	rows := [][]string{{
		"Date",
		"Cashflow_Local",
		"Pre_Transaction_NAV_Local",
		"Post_Transaction_NAV_Local",
		"Loan_Receivable_Local",
		"Cash_On_Hand_Local",
		"Accrued_Interest_Local",
		"Contractual_Value_Local",
		"Future_Cashflows_Present_Value_Local",
		"Net_Asset_Present_Value_Local",
	}}

	balances := make(map[civil.Date]domain.BalancePoint)
	for _, b := range result.Balances[currency] {
		balances[b.Date] = b
	}

	for _, p := range result.Schedules[currency] {
		row := []string{
			p.Date.String(),
			p.Cashflow.StringFixed(2),
			p.PreTransaction.StringFixed(2),
			p.PostTransaction.StringFixed(2),
		}
		if b, ok := balances[p.Date]; ok {
			row = append(row,
				b.LoanReceivable.StringFixed(2),
				b.CashOnHand.StringFixed(2),
				b.AccruedInterest.StringFixed(2),
				b.ContractualValue.StringFixed(2),
				b.FuturePresentValue.StringFixed(2),
				b.NetAssetPresentValue.StringFixed(2))
		} else {
			row = append(row, "", "", "", "", "", "")
		}
		rows = append(rows, row)
	}
	return rows
}

// TradeRows returns the FX forward blotter
func TradeRows(trades []domain.HedgeTrade) [][]string {
	rows := [][]string{{
		"currency_pair",
		"trade_date",
		"delivery_date",
		"direction",
		"notional_currency",
		"notional_amount",
	}}
	for _, t := range trades {
		rows = append(rows, []string{
			t.CurrencyPair(),
			t.TradeDate.String(),
			t.DeliveryDate.String(),
			string(t.Direction),
			t.Currency,
			t.Notional.StringFixed(2),
		})
	}
	return rows
}

// Percent formats a rate as a percentage with 3 decimals, e.g. 0.0995 -> "9.951%"
func Percent(rate float64) string {
	return fmt.Sprintf("%.3f%%", rate*100)
}

func writeCSV(path string, rows [][]string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}

	writer := csv.NewWriter(file)
	if err := writer.WriteAll(rows); err != nil {
		file.Close()
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", filepath.Base(path), err)
	}
	return nil
}
