/*
Copyright © 2025 Equilab
*/
package metadata

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/360EntSecGroup-Skylar/excelize/v2"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"golang.org/x/exp/slices"
)

// TypesMarker is the first field of the column-type declaration line in the
// persisted metadata file.
const TypesMarker = "#q2:types"

// KeyColumn is the normalized name of the sample identifier column.
const KeyColumn = "sample-id"

// Table is a normalized, validated sample table keyed by sample-id.
type Table struct {
	df dataframe.DataFrame
}

// MappingError reports raw values with no entry in a fixed dictionary. All
// offending values are collected so the operator can extend the mapping in
// one pass.
type MappingError struct {
	Kind   string
	Values []string
}

func (e *MappingError) Error() string {
	return fmt.Sprintf("unmapped %s values (extend the %s mapping): %s",
		e.Kind, e.Kind, strings.Join(e.Values, ", "))
}

// DuplicateIDError reports sample identifiers that appear more than once in
// the raw spreadsheet.
type DuplicateIDError struct {
	IDs []string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("duplicate sample-id values: %s", strings.Join(e.IDs, ", "))
}

// Normalize reads the raw metadata workbook and produces a validated sample
// table. The first sheet's first row is a placeholder; the embedded second
// row is the true header. Every raw header must be present in m.Columns and
// every raw subject value in m.Subjects, otherwise the build fails listing
// every unmapped value. Numeric cells that fail to parse become missing.
func Normalize(xlsxPath string, m Mappings) (Table, error) {
	xl, err := excelize.OpenFile(xlsxPath)
	if err != nil {
		return Table{}, fmt.Errorf("opening metadata workbook %s: %w", xlsxPath, err)
	}

	sheet := xl.GetSheetName(xl.GetActiveSheetIndex())
	rows, err := xl.GetRows(sheet)
	if err != nil {
		return Table{}, fmt.Errorf("reading sheet %s of %s: %w", sheet, xlsxPath, err)
	}
	if len(rows) < 2 {
		return Table{}, fmt.Errorf("sheet %s of %s has no embedded header row", sheet, xlsxPath)
	}

	// Row 0 is the placeholder header written by the spreadsheet export;
	// row 1 carries the real column names.
	header := rows[1]
	data := rows[2:]

	cols := make([]string, len(header))
	var unmapped []string
	for i, h := range header {
		h = strings.TrimSpace(h)
		name, ok := m.Columns[h]
		if !ok {
			unmapped = append(unmapped, h)
			continue
		}
		cols[i] = name
	}
	if len(unmapped) > 0 {
		slices.Sort(unmapped)
		return Table{}, &MappingError{Kind: "column", Values: unmapped}
	}

	recs := make([][]string, 0, len(data)+1)
	recs = append(recs, cols)
	for _, r := range data {
		row := make([]string, len(cols))
		copy(row, r)
		empty := true
		for i := range row {
			row[i] = strings.TrimSpace(row[i])
			if row[i] != "" {
				empty = false
			}
		}
		if empty {
			continue
		}
		recs = append(recs, row)
	}

	df := dataframe.LoadRecords(recs,
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	if df.Err != nil {
		return Table{}, fmt.Errorf("building dataframe from %s: %w", xlsxPath, df.Err)
	}
	for _, required := range []string{KeyColumn, "subject", "sample-type"} {
		if !slices.Contains(df.Names(), required) {
			return Table{}, fmt.Errorf("metadata workbook %s has no %s column", xlsxPath, required)
		}
	}

	// Anonymize subjects. Raw identities must never pass through, so an
	// unmapped value fails the whole build.
	subjects := df.Col("subject").Records()
	var unknown []string
	for i, v := range subjects {
		alias, ok := m.Subjects[v]
		if !ok {
			if !slices.Contains(unknown, v) {
				unknown = append(unknown, v)
			}
			continue
		}
		subjects[i] = alias
	}
	if len(unknown) > 0 {
		slices.Sort(unknown)
		return Table{}, &MappingError{Kind: "subject", Values: unknown}
	}
	df = df.Mutate(series.New(subjects, series.String, "subject"))

	// Control rows get their sample-type forced, whatever the raw sheet
	// said. Runs after aliasing so the override keys on alias values.
	sampleTypes := df.Col("sample-type").Records()
	for i, alias := range subjects {
		if forced, ok := m.ControlTypes[alias]; ok {
			sampleTypes[i] = forced
		}
	}
	df = df.Mutate(series.New(sampleTypes, series.String, "sample-type"))

	// Lenient per-cell numeric coercion: unparseable cells become missing,
	// parseable cells are rewritten in canonical form.
	for _, col := range NumericColumns {
		if !slices.Contains(df.Names(), col) {
			continue
		}
		vals := df.Col(col).Records()
		for i, v := range vals {
			if v == "" {
				continue
			}
			f, perr := strconv.ParseFloat(v, 64)
			if perr != nil {
				vals[i] = ""
				continue
			}
			vals[i] = strconv.FormatFloat(f, 'g', -1, 64)
		}
		df = df.Mutate(series.New(vals, series.String, col))
	}
	if df.Err != nil {
		return Table{}, fmt.Errorf("normalizing %s: %w", xlsxPath, df.Err)
	}

	ids := df.Col(KeyColumn).Records()
	seen := make(map[string]bool, len(ids))
	var dupes []string
	for _, id := range ids {
		if id == "" {
			return Table{}, fmt.Errorf("metadata workbook %s contains a row with an empty %s", xlsxPath, KeyColumn)
		}
		if seen[id] && !slices.Contains(dupes, id) {
			dupes = append(dupes, id)
		}
		seen[id] = true
	}
	if len(dupes) > 0 {
		slices.Sort(dupes)
		return Table{}, &DuplicateIDError{IDs: dupes}
	}

	return Table{df: df}, nil
}

// Load reads a previously saved metadata file back into a Table. The type
// declaration line is skipped as a comment and re-derived from
// NumericColumns.
func Load(path string) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return Table{}, fmt.Errorf("opening metadata file %s: %w", path, err)
	}
	defer f.Close()

	df := dataframe.ReadCSV(f,
		dataframe.WithDelimiter('\t'),
		dataframe.WithComments('#'),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	if df.Err != nil {
		return Table{}, fmt.Errorf("reading metadata file %s: %w", path, df.Err)
	}
	if !slices.Contains(df.Names(), KeyColumn) {
		return Table{}, fmt.Errorf("metadata file %s has no %s column", path, KeyColumn)
	}
	return Table{df: df}, nil
}

// SampleIDs returns the sample identifiers in row order.
func (t Table) SampleIDs() []string {
	return t.df.Col(KeyColumn).Records()
}

// Columns returns the non-key column names in table order.
func (t Table) Columns() []string {
	var cols []string
	for _, n := range t.df.Names() {
		if n != KeyColumn {
			cols = append(cols, n)
		}
	}
	return cols
}

// Types returns the per-column type declaration aligned with Columns.
func (t Table) Types() []string {
	cols := t.Columns()
	types := make([]string, len(cols))
	for i, c := range cols {
		if isNumericColumn(c) {
			types[i] = "numeric"
		} else {
			types[i] = "categorical"
		}
	}
	return types
}

// Records returns the cell values of one column in row order.
func (t Table) Records(col string) []string {
	return t.df.Col(col).Records()
}

// NRows returns the number of sample rows.
func (t Table) NRows() int {
	return t.df.Nrow()
}

// Save writes the table in the self-describing tab-delimited layout: a
// header line led by the key column, the type declaration line, then one
// line per sample. The write is atomic: the file appears only on success.
func (t Table) Save(path string) error {
	cols := t.Columns()
	types := t.Types()
	ids := t.SampleIDs()

	var b strings.Builder
	b.WriteString(KeyColumn + "\t" + strings.Join(cols, "\t") + "\n")
	b.WriteString(TypesMarker + "\t" + strings.Join(types, "\t") + "\n")

	colRecords := make([][]string, len(cols))
	for i, c := range cols {
		colRecords[i] = t.df.Col(c).Records()
	}
	for row := range ids {
		fields := make([]string, 0, len(cols)+1)
		fields = append(fields, ids[row])
		for i := range cols {
			fields = append(fields, colRecords[i][row])
		}
		b.WriteString(strings.Join(fields, "\t") + "\n")
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", path, err)
	}
	if _, err := tmp.WriteString(b.String()); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing metadata file %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("closing metadata file %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("finalizing metadata file %s: %w", path, err)
	}
	return nil
}
