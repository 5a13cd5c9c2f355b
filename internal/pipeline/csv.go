package pipeline

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"
)

// TranscriptRecord is one narration segment row in the export the scene
// generator consumes downstream.
type TranscriptRecord struct {
	ID            string
	Text          string
	Keywords      []string
	LengthSeconds float64
}

// WriteTranscriptCSV writes segment records with a header row. Keywords are
// pipe-joined inside one cell so the file stays one row per segment.
func WriteTranscriptCSV(w io.Writer, records []TranscriptRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"id", "text", "keywords", "length_seconds"}); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{
			r.ID,
			r.Text,
			strings.Join(r.Keywords, "|"),
			strconv.FormatFloat(r.LengthSeconds, 'f', 2, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
