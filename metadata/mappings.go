/*
Copyright © 2025 Equilab
*/
package metadata

// Mappings holds the fixed rename and anonymization dictionaries the
// normalizer runs under. They are configuration handed to Normalize, not
// hidden inside it, so they can be validated and tested on their own.
type Mappings struct {
	// Columns maps a raw spreadsheet header to its normalized column name.
	Columns map[string]string
	// Subjects maps a raw identity value to its anonymized alias. Horse
	// names must never reach the output file, so an unmapped value is a
	// hard error in Normalize.
	Subjects map[string]string
	// ControlTypes maps a control alias to the sample-type category that
	// is forced onto its rows, overriding whatever the spreadsheet said.
	ControlTypes map[string]string
}

// NumericColumns lists the normalized columns that are coerced to
// numeric-or-missing. The same list drives the #q2:types declaration, so the
// declared type always agrees with the coercion actually applied.
var NumericColumns = []string{"age", "din", "seq-pos", "tooth-number", "replicate"}

// DefaultMappings returns the project dictionaries for the EOTRH study
// spreadsheet.
func DefaultMappings() Mappings {
	return Mappings{
		Columns: map[string]string{
			"Seq Pos":        "seq-pos",
			"Abbr":           "sample-id",
			"Horse":          "subject",
			"Type":           "sample-type",
			"Tooth #":        "tooth-number",
			"Tooth location": "tooth-location",
			"Replicate":      "replicate",
			"Gender":         "gender",
			"Age":            "age",
			"disease state":  "disease-state",
			"DIN":            "din",
		},
		Subjects: map[string]string{
			"Kommi":   "Horse-1",
			"Threnna": "Horse-2",
			"Eydis":   "Horse-3",
			"E. coli": "E-coli",
			"H2O":     "H2O",
		},
		ControlTypes: map[string]string{
			"E-coli": "Positive-Control",
			"H2O":    "Negative-Control",
		},
	}
}

func isNumericColumn(name string) bool {
	for _, c := range NumericColumns {
		if c == name {
			return true
		}
	}
	return false
}
