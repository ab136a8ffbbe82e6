package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rmacedo/custeio/internal/domain/history"
	"github.com/rmacedo/custeio/internal/domain/pricing"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

// SheetName is the single sheet the upload must contain.
const SheetName = "Custeio Derivado"

// ErrNoValidRows: every row was dropped for missing Local or Produto.
var ErrNoValidRows = errors.New("no valid rows after mapping")

// MissingSheetError names the sheets the workbook actually has, so the
// admin sees what they uploaded instead of a generic failure.
type MissingSheetError struct {
	Sheets []string
}

func (e *MissingSheetError) Error() string {
	return fmt.Sprintf("workbook has no sheet %q, sheets: %s", SheetName, strings.Join(e.Sheets, ", "))
}

// StoreError marks a failure after parsing succeeded, so callers can tell
// a bad workbook apart from a persistence fault.
type StoreError struct {
	Err error
}

func (e *StoreError) Error() string {
	return "store dataset: " + e.Err.Error()
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// DatasetStore is the write side: replace the dataset document and append
// the matching history entry atomically.
type DatasetStore interface {
	Replace(ctx context.Context, ds pricing.Dataset, entry history.Entry) error
}

// Notifier signals subscribers that the dataset changed. Best effort; an
// upload does not fail because the fan-out did.
type Notifier interface {
	PublishDatasetChanged(ctx context.Context) error
}

type Service struct {
	store  DatasetStore
	notify Notifier
	now    func() time.Time
}

func NewService(store DatasetStore, notify Notifier) *Service {
	return &Service{
		store:  store,
		notify: notify,
		now:    time.Now,
	}
}

type Result struct {
	Count      int
	LastUpdate string
}

// Ingest runs the whole upload pipeline: parse the workbook, require the
// named sheet, map columns to records, drop invalid rows, then replace the
// dataset plus history in one write. Any failure before the write leaves
// no side effect at all.
func (s *Service) Ingest(ctx context.Context, file io.Reader, uploaderName string) (Result, error) {
	wb, err := excelize.OpenReader(file)

	if err != nil {
		return Result{}, fmt.Errorf("open workbook: %w", err)
	}

	defer func() {
		_ = wb.Close()
	}()

	idx, err := wb.GetSheetIndex(SheetName)

	if err != nil || idx < 0 {
		return Result{}, &MissingSheetError{Sheets: wb.GetSheetList()}
	}

	rows, err := wb.GetRows(SheetName)

	if err != nil {
		return Result{}, fmt.Errorf("read sheet: %w", err)
	}

	records := MapRows(rows)

	if len(records) == 0 {
		return Result{}, ErrNoValidRows
	}

	now := s.now()
	updateDate := pricing.FormatUpdateDate(now)

	ds := pricing.Dataset{
		Records:    records,
		LastUpdate: updateDate,
		UpdatedBy:  uploaderName,
	}

	entry := history.Entry{
		ID:          uuid.NewString(),
		Timestamp:   now.UTC(),
		Date:        updateDate,
		User:        uploaderName,
		RecordCount: len(records),
	}

	if err := s.store.Replace(ctx, ds, entry); err != nil {
		return Result{}, &StoreError{Err: err}
	}

	if s.notify != nil {
		// fan-out only; the write already succeeded
		_ = s.notify.PublishDatasetChanged(ctx)
	}

	return Result{Count: len(records), LastUpdate: updateDate}, nil
}

// Column headers as they appear in the spreadsheet.
const (
	colLocal      = "LOCAL"
	colModalidade = "MODALIDADE VENDA"
	colUF         = "UF Destino"
	colProduto    = "Produto"
	colDerivado   = "Custeio Derivado"
	colBiocomb    = "Custeio Biocomb"
	colFOBZero    = "FOB Zero"
)

// MapRows converts raw sheet rows (first row = headers) into records.
// Monetary cells that fail to parse become 0; rows with an empty Local or
// Produto are dropped.
func MapRows(rows [][]string) []pricing.Record {
	if len(rows) < 2 {
		return nil
	}

	head := make(map[string]int, len(rows[0]))

	for i, name := range rows[0] {
		head[strings.TrimSpace(name)] = i
	}

	cell := func(row []string, col string) string {
		i, ok := head[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	records := make([]pricing.Record, 0, len(rows)-1)

	for _, row := range rows[1:] {
		r := pricing.Record{
			Local:           cell(row, colLocal),
			ModalidadeVenda: cell(row, colModalidade),
			UFDestino:       cell(row, colUF),
			Produto:         cell(row, colProduto),
			CusteioDerivado: parseDecimal(cell(row, colDerivado)),
			CusteioBiocomb:  parseDecimal(cell(row, colBiocomb)),
			FOBZero:         parseDecimal(cell(row, colFOBZero)),
		}

		if r.Local == "" || r.Produto == "" {
			continue
		}

		records = append(records, r)
	}

	return records
}

// parseDecimal accepts both "12.5" and "1.234,56"; anything unparseable
// is 0.
func parseDecimal(v string) float64 {
	if v == "" {
		return 0
	}

	// with a comma decimal present, dots are thousands separators
	if strings.Contains(v, ",") {
		v = strings.ReplaceAll(v, ".", "")
		v = strings.ReplaceAll(v, ",", ".")
	}

	f, err := strconv.ParseFloat(v, 64)

	if err != nil {
		return 0
	}

	return f
}
