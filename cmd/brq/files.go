package main

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/csg33k/brq-ebookings/internal/domain"
)

func writeJSONFile(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	body, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, body, 0o644)
}

func writeReport(path string, rows []domain.ReportRow, write func(io.Writer, []domain.ReportRow) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f, rows); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
