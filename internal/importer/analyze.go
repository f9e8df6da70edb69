package importer

// Analysis describes how a sheet's header resolves, without importing.
type Analysis struct {
	Sheet     string              `json:"sheet"`
	Headers   []string            `json:"headers"`
	Resolved  map[Field]string    `json:"resolved"`
	Missing   []Field             `json:"missing"`
	Unmatched []string            `json:"unmatched"`
	RowCount  int                 `json:"rowCount"`
	Sample    []map[string]string `json:"sample"`
	Valid     int                 `json:"validRows"`
	Skipped   int                 `json:"skippedRows"`
}

// Analyze inspects the table's header and the first sampleSize rows.
func Analyze(t *Table, sampleSize int) *Analysis {
	cols := ResolveColumns(t.Header)
	a := &Analysis{
		Sheet:     t.Sheet,
		Headers:   t.Header,
		Resolved:  make(map[Field]string),
		Missing:   cols.Missing(),
		Unmatched: []string{},
		RowCount:  len(t.Rows),
		Sample:    []map[string]string{},
	}

	matched := make(map[int]bool)
	for field, i := range cols {
		a.Resolved[field] = t.Header[i]
		matched[i] = true
	}
	for i, h := range t.Header {
		if !matched[i] {
			a.Unmatched = append(a.Unmatched, h)
		}
	}

	for i, row := range t.Rows {
		if i >= sampleSize {
			break
		}
		sample := make(map[string]string, len(t.Header))
		for j, h := range t.Header {
			if j < len(row) {
				sample[h] = row[j]
			}
		}
		a.Sample = append(a.Sample, sample)
	}

	if len(a.Missing) == 0 {
		for _, row := range ExtractRows(t, cols) {
			switch {
			case row.blank():
			case missingReason(row) != "":
				a.Skipped++
			default:
				a.Valid++
			}
		}
	}
	return a
}
