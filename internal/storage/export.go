package storage

import (
	"encoding/json"
	"io"
	"os"
)

type ExportData struct {
	Meta    RunMetadata `json:"meta"`
	Columns []string    `json:"columns"`
	Rows    [][]float64 `json:"rows"`
}

func ExportJSON(w io.Writer, meta RunMetadata, columns []string, rows [][]float64) error {
	meta.Metrics = finiteOnly(meta.Metrics)
	data := ExportData{
		Meta:    meta,
		Columns: columns,
		Rows:    rows,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func ExportJSONFile(path string, meta RunMetadata, columns []string, rows [][]float64) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return ExportJSON(file, meta, columns, rows)
}
