package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/planefx/internal/scenario"
)

type ExportData struct {
	Run     RunMetadata       `json:"run"`
	Samples []scenario.Sample `json:"samples"`
}

// ExportJSON writes a stored run and its full trace as one JSON document.
func (s *Store) ExportJSON(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	samples, err := s.LoadTrace(runID)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(ExportData{Run: *meta, Samples: samples})
}
