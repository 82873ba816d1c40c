package table

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/go-gota/gota/dataframe"
	"github.com/xuri/excelize/v2"
)

// DefaultNAValues are the cell texts treated as missing when loading.
var DefaultNAValues = []string{"", "NA", "N/A", "NaN", "nan", "NULL", "null", "<nil>"}

// LoadOptions controls how a file is decoded into a Table.
type LoadOptions struct {
	// Delimiter overrides the field separator; 0 picks it from the extension.
	Delimiter rune
	// NAValues lists cell texts treated as missing; nil uses DefaultNAValues.
	NAValues []string
	// Sheet selects an xlsx worksheet by name; empty means the first sheet.
	Sheet string
}

// Load reads a delimited or xlsx file into a Table.
func Load(path string, opt LoadOptions) (*Table, error) {
	format, comp, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open table: %w", err)
	}
	defer f.Close()
	r, err := decompress(f, comp)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	na := opt.NAValues
	if na == nil {
		na = DefaultNAValues
	}
	name := filepath.Base(path)

	var t *Table
	if format == FormatXLSX {
		x, err := excelize.OpenReader(r)
		if err != nil {
			return nil, fmt.Errorf("open xlsx: %w", err)
		}
		defer x.Close()
		sheet := opt.Sheet
		if sheet == "" {
			sheet = x.GetSheetName(0)
		}
		rows, err := x.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
		}
		t, err = FromRecords(name, padRows(rows), na)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
	} else {
		delim := opt.Delimiter
		if delim == 0 {
			delim = format.delimiter()
		}
		df := dataframe.ReadCSV(r,
			dataframe.WithDelimiter(delim),
			dataframe.HasHeader(true),
			dataframe.DetectTypes(true),
			dataframe.NaNValues(na),
		)
		t, err = New(name, df)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
	}
	slog.Debug("table loaded", "path", path, "rows", t.Rows(), "columns", len(t.Names()))
	return t, nil
}

// padRows extends short rows to the header width; xlsx readers drop
// trailing empty cells.
func padRows(rows [][]string) [][]string {
	if len(rows) == 0 {
		return rows
	}
	width := len(rows[0])
	for i, r := range rows {
		if len(r) < width {
			tmp := make([]string, width)
			copy(tmp, r)
			rows[i] = tmp
		} else if len(r) > width {
			rows[i] = r[:width]
		}
	}
	return rows
}
