// Package ingest reads contact exports into records and writes export sets
// back out as CSV.
package ingest

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/sells-group/contact-cli/internal/model"
)

// ReadCSV parses a CSV export. The first row is the header. A UTF-8 or
// UTF-16 byte order mark selects the decoding (phone exports are often
// UTF-16); input without one is read as UTF-8. Short rows are padded with
// empty strings and extra cells beyond the header are dropped.
func ReadCSV(r io.Reader) ([]string, []model.Record, error) {
	dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	reader := csv.NewReader(transform.NewReader(r, dec))
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, eris.Wrap(err, "ingest: read csv header")
	}
	header = cleanHeader(header)

	var recs []model.Record
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return header, recs, eris.Wrapf(err, "ingest: read csv row %d", len(recs)+2)
		}
		if blankRow(row) {
			continue
		}
		recs = append(recs, rowToRecord(header, row))
	}
	return header, recs, nil
}

// WriteCSV writes recs under header, each row built by Project. Record
// columns outside header are not written.
func WriteCSV(w io.Writer, header []string, recs []model.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return eris.Wrap(err, "ingest: write csv header")
	}
	for _, rec := range recs {
		if err := cw.Write(Project(header, rec)); err != nil {
			return eris.Wrap(err, "ingest: write csv row")
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "ingest: flush csv")
}

// OutputHeader picks the column set of the output: the header of the source
// kind named by dominant, or of the largest source when dominant is empty or
// absent. Tags, Changes Made and any extra columns are appended when missing.
func OutputHeader(sources []model.Source, dominant model.SourceKind, extra ...string) []string {
	var pick *model.Source
	for i := range sources {
		s := &sources[i]
		if dominant != "" && s.Kind == dominant {
			pick = s
			break
		}
		if pick == nil || len(s.Records) > len(pick.Records) {
			pick = s
		}
	}

	var header []string
	if pick != nil {
		header = append(header, pick.Header...)
	}
	if len(header) == 0 && pick != nil {
		header = unionColumns(pick.Records)
	}

	seen := make(map[string]bool, len(header))
	for _, h := range header {
		seen[h] = true
	}
	for _, col := range append([]string{model.ColTags, model.ColChanges}, extra...) {
		if col != "" && !seen[col] {
			header = append(header, col)
			seen[col] = true
		}
	}
	return header
}

func cleanHeader(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		out[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}
	return out
}

// rowToRecord maps a row onto header. A repeated column keeps its first
// non-empty value.
func rowToRecord(header, row []string) model.Record {
	rec := make(model.Record, len(header))
	for i, col := range header {
		if col == "" {
			continue
		}
		val := ""
		if i < len(row) {
			val = row[i]
		}
		if prev, dup := rec[col]; dup && prev != "" {
			continue
		}
		rec[col] = val
	}
	return rec
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func unionColumns(recs []model.Record) []string {
	seen := make(map[string]bool)
	var cols []string
	for _, r := range recs {
		for _, c := range r.Columns() {
			if !seen[c] {
				seen[c] = true
				cols = append(cols, c)
			}
		}
	}
	return cols
}
