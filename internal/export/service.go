package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/minghan-wu/litdomain/internal/repository"
)

// Service serializes the domain mapping to CSV or XLSX, ordered by domain
// then file name (the repository guarantees the order).
type Service struct {
	repo   repository.DomainRepository
	logger *slog.Logger
}

func NewService(repo repository.DomainRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

var header = []string{"file_path", "file_name", "domain", "updated_at"}

// ExportFile writes all records to target, picking the format from the
// extension (.xlsx -> workbook, anything else -> CSV).
func (s *Service) ExportFile(ctx context.Context, target string) error {
	if strings.EqualFold(filepath.Ext(target), ".xlsx") {
		b, err := s.ExportXLSX(ctx)
		if err != nil {
			return err
		}
		return os.WriteFile(target, b, 0o644)
	}

	f, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("export.csv.close_error", "error", err)
		}
	}()
	return s.WriteCSV(ctx, f)
}

// WriteCSV streams all records as CSV with a header row.
func (s *Service) WriteCSV(ctx context.Context, w io.Writer) error {
	start := time.Now()
	recs, err := s.repo.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("query records: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range recs {
		row := []string{r.FilePath, r.FileName, r.Domain, r.UpdatedAt.Format(time.RFC3339)}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("csv write: %w", err)
	}

	s.logger.Info("export.csv.ok",
		"rows", len(recs), "elapsed_ms", time.Since(start).Milliseconds())
	return nil
}

// ExportXLSX returns an XLSX workbook (as bytes) with all records.
func (s *Service) ExportXLSX(ctx context.Context) ([]byte, error) {
	start := time.Now()
	recs, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}

	f := excelize.NewFile()
	const sheet = "Domains"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	for i, h := range header {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, r := range recs {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
		write(1, r.FilePath)
		write(2, r.FileName)
		write(3, r.Domain)
		write(4, r.UpdatedAt.Format("2006-01-02 15:04:05"))
		row++
	}

	_ = f.SetColWidth(sheet, "A", "A", 60) // path
	_ = f.SetColWidth(sheet, "B", "B", 36) // file name
	_ = f.SetColWidth(sheet, "C", "C", 18) // domain
	_ = f.SetColWidth(sheet, "D", "D", 20) // timestamp

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(recs), "elapsed_ms", time.Since(start).Milliseconds())
	return buf.Bytes(), nil
}
