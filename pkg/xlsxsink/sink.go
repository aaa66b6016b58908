package xlsxsink

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/indianleto/storefront-backend/pkg/config"
	"github.com/indianleto/storefront-backend/pkg/types"
	"github.com/tealeg/xlsx"
)

// Sink appends quotation rows to a local workbook. Each append rewrites the file.
type Sink struct {
	mu        sync.Mutex
	path      string
	sheetName string
}

func New(cfg config.XLSXConfig) (*Sink, error) {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		return nil, errors.New("xlsx path is required")
	}
	sheetName := strings.TrimSpace(cfg.SheetName)
	if sheetName == "" {
		sheetName = "Quotations"
	}
	return &Sink{path: path, sheetName: sheetName}, nil
}

func (s *Sink) Name() string {
	return "xlsx"
}

// EnsureHeaders creates the workbook and writes the header row when missing.
func (s *Sink) EnsureHeaders(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	file, sheet, err := s.open()
	if err != nil {
		return err
	}
	if sheet.MaxRow > 0 {
		return nil
	}
	header := sheet.AddRow()
	for _, h := range types.QuotationHeaders {
		header.AddCell().SetString(h)
	}
	return s.save(file)
}

func (s *Sink) AppendRow(ctx context.Context, row types.QuotationRow) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	file, sheet, err := s.open()
	if err != nil {
		return err
	}

	r := sheet.AddRow()
	for _, v := range row.Values() {
		cell := r.AddCell()
		switch value := v.(type) {
		case float64:
			cell.SetFloat(value)
		case string:
			cell.SetString(value)
		default:
			cell.SetValue(value)
		}
	}
	return s.save(file)
}

func (s *Sink) open() (*xlsx.File, *xlsx.Sheet, error) {
	var file *xlsx.File
	if _, err := os.Stat(s.path); err == nil {
		file, err = xlsx.OpenFile(s.path)
		if err != nil {
			return nil, nil, fmt.Errorf("opening workbook %q: %w", s.path, err)
		}
	} else if errors.Is(err, os.ErrNotExist) {
		file = xlsx.NewFile()
	} else {
		return nil, nil, fmt.Errorf("stat workbook %q: %w", s.path, err)
	}

	if sheet, ok := file.Sheet[s.sheetName]; ok {
		return file, sheet, nil
	}
	sheet, err := file.AddSheet(s.sheetName)
	if err != nil {
		return nil, nil, fmt.Errorf("adding sheet %q: %w", s.sheetName, err)
	}
	return file, sheet, nil
}

func (s *Sink) save(file *xlsx.File) error {
	if err := file.Save(s.path); err != nil {
		return fmt.Errorf("saving workbook %q: %w", s.path, err)
	}
	return nil
}
