// Package spreadsheet loads fund cashflow rows from .xlsx and .csv files.
package spreadsheet

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/aveongye/cst-case-study/internal/domain"
)

// Column names of the cashflow table
const (
	ColumnID           = "ID"
	ColumnFund         = "Fund Name"
	ColumnDate         = "Date"
	ColumnType         = "Cashflow Type"
	ColumnLocalCcy     = "Local Currency"
	ColumnAmountLocal  = "Cashflow Amount Local"
	ColumnAmountBase   = "Cashflow Amount Base"
	ColumnBaseCurrency = "Base Currency"
)

// Columns lists the required columns in file order
var Columns = []string{
	ColumnID, ColumnFund, ColumnDate, ColumnType,
	ColumnLocalCcy, ColumnAmountLocal, ColumnAmountBase, ColumnBaseCurrency,
}

// dateLayouts are tried in order; slash and dash forms are day-first.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"02.01.2006",
	"2 January 2006",
	"2 Jan 2006",
}

// Load reads the cashflow rows of a .xlsx (first sheet) or .csv file and
// validates them against policy. Row errors are joined and name the file row.
func Load(path string, policy domain.CurrencyPolicy) ([]domain.CashflowRecord, error) {
	var (
		rows [][]string
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		rows, err = readWorkbook(path)
	case ".csv":
		rows, err = readCSV(path)
	default:
		return nil, fmt.Errorf("unsupported cashflow file %s: expected .xlsx or .csv", path)
	}
	if err != nil {
		return nil, err
	}

	records, err := Parse(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := domain.ValidateAll(records, policy); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

func readWorkbook(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook %s has no sheets", path)
	}
	// raw values keep date cells as serial numbers instead of the locale format
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	return rows, nil
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv %s: %w", path, err)
	}
	return rows, nil
}

// Parse converts a header row followed by data rows into records.
// Header names match case-insensitively, with underscores read as spaces.
// Blank rows are skipped. Currency codes are left as found.
func Parse(rows [][]string) ([]domain.CashflowRecord, error) {
	if len(rows) == 0 {
		return nil, errors.New("no header row")
	}

	index, err := headerIndex(rows[0])
	if err != nil {
		return nil, err
	}

	var (
		records []domain.CashflowRecord
		errs    []error
	)
	for i, row := range rows[1:] {
		if blank(row) {
			continue
		}
		line := i + 2
		cell := func(col string) string {
			j := index[col]
			if j >= len(row) {
				return ""
			}
			return clean(row[j])
		}

		rec, err := parseRow(cell)
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: line %d: %v", domain.ErrInvalidRecord, line, err))
			continue
		}
		records = append(records, rec)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return records, nil
}

func parseRow(cell func(string) string) (domain.CashflowRecord, error) {
	id, err := strconv.ParseInt(cell(ColumnID), 10, 64)
	if err != nil {
		// workbooks may store integers as floats
		f, ferr := strconv.ParseFloat(cell(ColumnID), 64)
		if ferr != nil {
			return domain.CashflowRecord{}, fmt.Errorf("invalid ID %q", cell(ColumnID))
		}
		id = int64(f)
	}
	date, err := ParseDate(cell(ColumnDate))
	if err != nil {
		return domain.CashflowRecord{}, err
	}
	local, err := parseAmount(cell(ColumnAmountLocal))
	if err != nil {
		return domain.CashflowRecord{}, fmt.Errorf("invalid %s: %w", ColumnAmountLocal, err)
	}
	base, err := parseAmount(cell(ColumnAmountBase))
	if err != nil {
		return domain.CashflowRecord{}, fmt.Errorf("invalid %s: %w", ColumnAmountBase, err)
	}

	return domain.CashflowRecord{
		ID:            id,
		Fund:          cell(ColumnFund),
		Date:          date,
		Type:          domain.CashflowType(cell(ColumnType)),
		LocalCurrency: cell(ColumnLocalCcy),
		AmountLocal:   local,
		AmountBase:    base,
		BaseCurrency:  cell(ColumnBaseCurrency),
	}, nil
}

// ParseDate reads an ISO or day-first date, or an Excel serial day number.
func ParseDate(value string) (civil.Date, error) {
	v := clean(value)
	if v == "" {
		return civil.Date{}, errors.New("missing date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return civil.DateOf(t), nil
		}
	}
	if serial, err := strconv.ParseFloat(v, 64); err == nil {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return civil.Date{}, fmt.Errorf("invalid date serial %q: %w", v, err)
		}
		return civil.DateOf(t), nil
	}
	return civil.Date{}, fmt.Errorf("invalid date %q", value)
}

func parseAmount(value string) (decimal.Decimal, error) {
	v := strings.ReplaceAll(value, ",", "")
	if v == "" {
		return decimal.Decimal{}, errors.New("missing amount")
	}
	return decimal.NewFromString(v)
}

func headerIndex(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for j, name := range header {
		index[canonical(name)] = j
	}

	out := make(map[string]int, len(Columns))
	var missing []string
	for _, col := range Columns {
		j, ok := index[canonical(col)]
		if !ok {
			missing = append(missing, col)
			continue
		}
		out[col] = j
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing columns: %s", strings.Join(missing, ", "))
	}
	return out, nil
}

func canonical(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(strings.ReplaceAll(clean(name), "_", " ")), " "))
}

// clean strips whitespace and the stray backticks found in exported sheets.
func clean(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "`", ""))
}

func blank(row []string) bool {
	for _, c := range row {
		if clean(c) != "" {
			return false
		}
	}
	return true
}

// FilterByFund returns the rows belonging to fund.
// Returns an error wrapping ErrFundNotFound listing the available funds.
func FilterByFund(records []domain.CashflowRecord, fund string) ([]domain.CashflowRecord, error) {
	if len(records) == 0 {
		return nil, errors.New("cannot filter an empty cashflow table")
	}

	var out []domain.CashflowRecord
	available := make(map[string]struct{})
	for _, r := range records {
		available[r.Fund] = struct{}{}
		if r.Fund == fund {
			out = append(out, r)
		}
	}
	if len(out) == 0 {
		names := make([]string, 0, len(available))
		for name := range available {
			names = append(names, name)
		}
		sort.Strings(names)
		return nil, fmt.Errorf("%w: %q (available: %s)", domain.ErrFundNotFound, fund, strings.Join(names, ", "))
	}
	return out, nil
}
