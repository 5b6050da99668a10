package store

import (
	"encoding/json"
	"io"
	"os"
)

// ExportData is the JSON shape of a fully exported run: metadata plus
// every recorded sample in one document.
type ExportData struct {
	ID       string             `json:"id"`
	System   string             `json:"system"`
	Method   string             `json:"method"`
	Dt       float64            `json:"dt"`
	Duration float64            `json:"duration"`
	T0       float64            `json:"t0"`
	Steps    int                `json:"steps"`
	Times    []float64          `json:"times"`
	States   [][]float64        `json:"states"`
	Metrics  map[string]float64 `json:"metrics"`
}

// WriteJSON writes a stored run to w as a single indented JSON document.
func (s *Store) WriteJSON(runID string, w io.Writer) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}

	times, states, err := s.LoadStates(runID)
	if err != nil {
		return err
	}

	data := ExportData{
		ID:       meta.ID,
		System:   meta.System,
		Method:   meta.Method,
		Dt:       meta.Dt,
		Duration: meta.Duration,
		T0:       meta.T0,
		Steps:    meta.Steps,
		Times:    times,
		States:   make([][]float64, len(states)),
		Metrics:  meta.Metrics,
	}
	for i, st := range states {
		data.States[i] = st
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func (s *Store) ExportJSON(runID, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return s.WriteJSON(runID, file)
}

// WriteCSV streams a stored run's samples to w in the states.csv format.
func (s *Store) WriteCSV(runID string, w io.Writer) error {
	times, states, err := s.LoadStates(runID)
	if err != nil {
		return err
	}
	return writeStatesCSV(w, times, states)
}

func (s *Store) ExportCSV(runID, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return s.WriteCSV(runID, file)
}
