/*
Copyright © 2025 Equilab
*/
package metadata

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/360EntSecGroup-Skylar/excelize/v2"
)

var rawHeader = []interface{}{
	"Seq Pos", "Abbr", "Horse", "Type", "Tooth #", "Tooth location",
	"Replicate", "Gender", "Age", "disease state", "DIN",
}

// writeWorkbook writes an xlsx fixture in the shape the lab export uses: a
// placeholder first row, the true header in the second row, data below.
func writeWorkbook(t *testing.T, rows [][]interface{}) string {
	t.Helper()

	f := excelize.NewFile()
	sheet := f.GetSheetName(f.GetActiveSheetIndex())

	placeholder := make([]interface{}, len(rawHeader))
	for i := range placeholder {
		placeholder[i] = "Unnamed"
	}
	all := append([][]interface{}{placeholder, rawHeader}, rows...)
	for i, row := range all {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("setting row %d: %v", i+1, err)
		}
	}

	path := filepath.Join(t.TempDir(), "metadata.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("saving workbook: %v", err)
	}
	return path
}

func sampleRow(seqPos, abbr, horse, typ string) []interface{} {
	return []interface{}{seqPos, abbr, horse, typ, "1", "upper", "1", "mare", "12", "healthy", "7.5"}
}

func TestNormalizeEndToEnd(t *testing.T) {
	path := writeWorkbook(t, [][]interface{}{
		sampleRow("1", "S1", "Kommi", "Gum"),
		sampleRow("2", "S2", "H2O", "Gum"),
		sampleRow("3", "S3", "E. coli", "Gum"),
	})

	table, err := Normalize(path, DefaultMappings())
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}

	if got := table.SampleIDs(); !equal(got, []string{"S1", "S2", "S3"}) {
		t.Errorf("sample ids = %v, want [S1 S2 S3]", got)
	}
	if got := table.Records("subject"); !equal(got, []string{"Horse-1", "H2O", "E-coli"}) {
		t.Errorf("subject = %v, want [Horse-1 H2O E-coli]", got)
	}

	// Control rows get their sample-type forced whatever the sheet said.
	if got := table.Records("sample-type"); !equal(got, []string{"Gum", "Negative-Control", "Positive-Control"}) {
		t.Errorf("sample-type = %v", got)
	}
}

func TestNormalizeAnonymizationTotality(t *testing.T) {
	m := DefaultMappings()
	path := writeWorkbook(t, [][]interface{}{
		sampleRow("1", "S1", "Kommi", "Gum"),
		sampleRow("2", "S2", "Threnna", "Gum"),
		sampleRow("3", "S3", "Eydis", "Gum"),
		sampleRow("4", "S4", "E. coli", "Gum"),
		sampleRow("5", "S5", "H2O", "Gum"),
	})

	table, err := Normalize(path, m)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}

	for _, subject := range table.Records("subject") {
		if _, raw := m.Subjects[subject]; raw && subject != "H2O" {
			t.Errorf("raw identity %q leaked into output", subject)
		}
	}
	for _, horse := range []string{"Kommi", "Threnna", "Eydis"} {
		for _, subject := range table.Records("subject") {
			if subject == horse {
				t.Errorf("horse name %q present in normalized subjects", horse)
			}
		}
	}
}

func TestNormalizeNumericLeniency(t *testing.T) {
	rows := [][]interface{}{
		sampleRow("1", "S1", "Kommi", "Gum"),
		sampleRow("2", "S2", "Kommi", "Gum"),
	}
	rows[0][8] = "twelve" // Age fails to parse
	rows[1][8] = "12.50"  // Age parses, canonicalized

	path := writeWorkbook(t, rows)
	table, err := Normalize(path, DefaultMappings())
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}

	ages := table.Records("age")
	if ages[0] != "" {
		t.Errorf("unparseable age = %q, want missing", ages[0])
	}
	if ages[1] != "12.5" {
		t.Errorf("age = %q, want 12.5", ages[1])
	}
}

func TestNormalizeUnmappedColumn(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	header := append(append([]interface{}{}, rawHeader...), "Stall")
	placeholder := []interface{}{"Unnamed"}
	if err := f.SetSheetRow(sheet, "A1", &placeholder); err != nil {
		t.Fatal(err)
	}
	if err := f.SetSheetRow(sheet, "A2", &header); err != nil {
		t.Fatal(err)
	}
	row := append(sampleRow("1", "S1", "Kommi", "Gum"), "3b")
	if err := f.SetSheetRow(sheet, "A3", &row); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "metadata.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}

	_, err := Normalize(path, DefaultMappings())
	var mapErr *MappingError
	if !errors.As(err, &mapErr) {
		t.Fatalf("err = %v, want MappingError", err)
	}
	if mapErr.Kind != "column" || !equal(mapErr.Values, []string{"Stall"}) {
		t.Errorf("got kind=%s values=%v, want column [Stall]", mapErr.Kind, mapErr.Values)
	}
}

func TestNormalizeUnmappedSubject(t *testing.T) {
	path := writeWorkbook(t, [][]interface{}{
		sampleRow("1", "S1", "Kommi", "Gum"),
		sampleRow("2", "S2", "Glanni", "Gum"),
		sampleRow("3", "S3", "Glanni", "Gum"),
	})

	_, err := Normalize(path, DefaultMappings())
	var mapErr *MappingError
	if !errors.As(err, &mapErr) {
		t.Fatalf("err = %v, want MappingError", err)
	}
	if mapErr.Kind != "subject" || !equal(mapErr.Values, []string{"Glanni"}) {
		t.Errorf("got kind=%s values=%v, want subject [Glanni]", mapErr.Kind, mapErr.Values)
	}
}

func TestNormalizeDuplicateID(t *testing.T) {
	path := writeWorkbook(t, [][]interface{}{
		sampleRow("1", "S1", "Kommi", "Gum"),
		sampleRow("2", "S1", "Threnna", "Gum"),
	})

	_, err := Normalize(path, DefaultMappings())
	var dupErr *DuplicateIDError
	if !errors.As(err, &dupErr) {
		t.Fatalf("err = %v, want DuplicateIDError", err)
	}
	if !equal(dupErr.IDs, []string{"S1"}) {
		t.Errorf("duplicate ids = %v, want [S1]", dupErr.IDs)
	}
}

func TestNormalizeMissingWorkbook(t *testing.T) {
	_, err := Normalize(filepath.Join(t.TempDir(), "absent.xlsx"), DefaultMappings())
	if err == nil {
		t.Fatal("expected error for missing workbook")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := writeWorkbook(t, [][]interface{}{
		sampleRow("1", "S1", "Kommi", "Gum"),
		sampleRow("2", "S2", "H2O", "Gum"),
	})
	table, err := Normalize(path, DefaultMappings())
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}

	out := filepath.Join(t.TempDir(), "sample-metadata.tsv")
	if err := table.Save(out); err != nil {
		t.Fatalf("Save: %v", err)
	}

	raw, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(string(raw), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want 4", len(lines))
	}
	if !strings.HasPrefix(lines[0], KeyColumn+"\t") {
		t.Errorf("header line = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], TypesMarker+"\t") {
		t.Errorf("types line = %q", lines[1])
	}

	// The declared type of each column matches the coercion applied.
	header := strings.Split(lines[0], "\t")
	typs := strings.Split(lines[1], "\t")
	if len(header) != len(typs) {
		t.Fatalf("header has %d fields, types line has %d", len(header), len(typs))
	}
	for i := 1; i < len(header); i++ {
		want := "categorical"
		if isNumericColumn(header[i]) {
			want = "numeric"
		}
		if typs[i] != want {
			t.Errorf("column %s declared %s, want %s", header[i], typs[i], want)
		}
	}

	loaded, err := Load(out)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !equal(loaded.SampleIDs(), table.SampleIDs()) {
		t.Errorf("round-trip ids = %v, want %v", loaded.SampleIDs(), table.SampleIDs())
	}
	if !equal(loaded.Records("age"), table.Records("age")) {
		t.Errorf("round-trip age = %v, want %v", loaded.Records("age"), table.Records("age"))
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.tsv"))
	if err == nil {
		t.Fatal("expected error for missing metadata file")
	}
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
