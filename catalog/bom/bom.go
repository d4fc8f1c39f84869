// Package bom loads, matches and exports bill-of-materials files.
package bom

import (
	"encoding/csv"
	"io"
)

// Line is one BOM row. VendorPartHint may arrive blank and is filled in by
// the matcher; it is never written back to the source file unless the table
// is explicitly exported.
type Line struct {
	Comment        string
	Designator     string
	Footprint      string
	VendorPartHint string
}

// exportHeader is the fixed column set of exported BOM files, and the shape
// Load expects back.
var exportHeader = []string{"Comment", "Designator", "Footprint", "LCSC Part #"}

// Load reads BOM lines from r. The header row is recognized by the literal
// "Comment" in its first column and skipped; rows with fewer than three
// columns are skipped too. A missing fourth column is an empty hint.
func Load(r io.Reader) ([]Line, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	var lines []Line
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(record) < 3 || record[0] == "Comment" {
			continue
		}

		line := Line{
			Comment:    record[0],
			Designator: record[1],
			Footprint:  record[2],
		}
		if len(record) > 3 {
			line.VendorPartHint = record[3]
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// Export writes lines to w under the fixed header. Exporting and re-loading
// yields the same lines.
func Export(w io.Writer, lines []Line) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(exportHeader); err != nil {
		return err
	}
	for _, line := range lines {
		record := []string{line.Comment, line.Designator, line.Footprint, line.VendorPartHint}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}
