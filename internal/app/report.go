package app

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// ReportFile is the name of the run summary written next to the output files.
const ReportFile = ".lastrun.json"

// RunReport summarizes one fetch run.
type RunReport struct {
	Source       string    `json:"source"`
	Symbol       string    `json:"symbol"`
	Period       string    `json:"period"`
	Begin        string    `json:"begin"`
	Bars         int       `json:"bars"`
	Earliest     string    `json:"earliest,omitempty"`
	Latest       string    `json:"latest,omitempty"`
	ReachedBegin bool      `json:"reached_begin"`
	Files        []string  `json:"files"`
	FinishedAt   time.Time `json:"finished_at"`
}

func writeRunReport(dir string, r *RunReport) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", err
	}
	p := filepath.Join(dir, ReportFile)
	if err := os.WriteFile(p, data, 0644); err != nil {
		return "", err
	}
	return p, nil
}
