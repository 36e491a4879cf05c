package converter

// xlsx.go: spreadsheets → table slides.
// Each non-empty sheet becomes one table_fullscreen slide titled with the
// sheet name; the first row is the header.

import (
	"encoding/csv"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/Cortexa-LLC/mcp/src/slidesmith/deck"
)

func convertXLSX(filePath string) (*deck.Deck, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("open xlsx %s: %w", filePath, err)
	}
	defer func() { _ = f.Close() }()

	d := &deck.Deck{}
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("read sheet %q in %s: %w", sheet, filePath, err)
		}
		if s, ok := tableSlide(sheet, rows); ok {
			d.Slides = append(d.Slides, s)
		}
	}
	return d, nil
}

func convertCSV(filePath string, data []byte) (*deck.Deck, error) {
	r := csv.NewReader(strings.NewReader(string(data)))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv %s: %w", filePath, err)
	}
	title := strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath))
	d := &deck.Deck{}
	if s, ok := tableSlide(title, records); ok {
		d.Slides = append(d.Slides, s)
	}
	return d, nil
}
