package table

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/KaramelBytes/edakit/internal/utils"
	"github.com/go-gota/gota/series"
	"github.com/xuri/excelize/v2"
)

// Persist writes t to directory/filename, creating directory when missing
// and overwriting any existing file. The encoding follows the file name as
// in Load. It returns the written path.
func Persist(t *Table, filename, directory string) (string, error) {
	if err := utils.EnsureDir(directory); err != nil {
		return "", fmt.Errorf("create directory: %w", err)
	}
	path := filepath.Join(directory, filename)
	format, comp, err := DetectFormat(path)
	if err != nil {
		return "", err
	}
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer f.Close()
	bw := bufio.NewWriter(f)
	w, err := compress(bw, comp)
	if err != nil {
		return "", err
	}
	if format == FormatXLSX {
		err = writeXLSX(w, t)
	} else {
		err = writeDelimited(w, t, format.delimiter())
	}
	if err != nil {
		return "", fmt.Errorf("write %s: %w", filename, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("close stream: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return "", fmt.Errorf("flush: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close file: %w", err)
	}
	slog.Info("table saved", "path", path, "rows", t.Rows())
	return path, nil
}

func writeDelimited(w io.Writer, t *Table, delim rune) error {
	cw := csv.NewWriter(w)
	cw.Comma = delim
	if err := cw.WriteAll(t.Records()); err != nil {
		return err
	}
	return cw.Error()
}

// writeXLSX stores numeric cells as numbers so spreadsheet tools keep the
// column types; missing cells stay blank.
func writeXLSX(w io.Writer, t *Table) error {
	x := excelize.NewFile()
	defer x.Close()
	sheet := x.GetSheetName(0)
	names := t.Names()
	header := make([]interface{}, len(names))
	for j, n := range names {
		header[j] = n
	}
	if err := x.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	cols := make([]series.Series, len(names))
	for j, n := range names {
		cols[j] = t.df.Col(n)
	}
	for i := 0; i < t.Rows(); i++ {
		row := make([]interface{}, len(names))
		for j, s := range cols {
			e := s.Elem(i)
			if e.IsNA() {
				row[j] = nil
				continue
			}
			switch s.Type() {
			case series.Int:
				v, _ := e.Int()
				row[j] = v
			case series.Float:
				row[j] = e.Float()
			default:
				row[j], _ = cellText(s, i)
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := x.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	_, err := x.WriteTo(w)
	return err
}
