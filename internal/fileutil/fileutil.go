// Package fileutil writes catalogs to files and streams.
package fileutil

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Output formats
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// FileExists checks if a file exists at the given path
func FileExists(filePath string) bool {
	info, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}

// WriteFileWithOverwrite writes data to a file, respecting the overwrite flag
// Returns true if the file was written, false if it was skipped
func WriteFileWithOverwrite(filePath string, data []byte, perm os.FileMode, overwrite bool) (bool, error) {
	if FileExists(filePath) && !overwrite {
		slog.Info("Output file already exists, skipping", "filename", filePath, "overwrite", overwrite)
		return false, nil
	}

	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return false, fmt.Errorf("failed to create directory: %w", err)
	}

	slog.Info("Writing output file", "filename", filePath, "overwrite", overwrite)
	if err := os.WriteFile(filePath, data, perm); err != nil {
		return false, fmt.Errorf("failed to write file: %w", err)
	}

	return true, nil
}

// WriteJSONFile writes data as indented JSON to a file, respecting the overwrite flag
func WriteJSONFile(data any, filePath string, overwrite bool) (bool, error) {
	jsonData, err := marshalJSON(data)
	if err != nil {
		return false, err
	}
	return WriteFileWithOverwrite(filePath, jsonData, 0644, overwrite)
}

// WriteYAMLFile writes data as YAML to a file, respecting the overwrite flag
func WriteYAMLFile(data any, filePath string, overwrite bool) (bool, error) {
	yamlData, err := yaml.Marshal(data)
	if err != nil {
		return false, fmt.Errorf("failed to marshal YAML: %w", err)
	}
	return WriteFileWithOverwrite(filePath, yamlData, 0644, overwrite)
}

// WriteFile writes data in the given format to a file
func WriteFile(data any, format, filePath string, overwrite bool) (bool, error) {
	switch format {
	case "", FormatJSON:
		return WriteJSONFile(data, filePath, overwrite)
	case FormatYAML:
		return WriteYAMLFile(data, filePath, overwrite)
	default:
		return false, fmt.Errorf("unsupported format %q", format)
	}
}

// Encode writes data in the given format to w
func Encode(w io.Writer, format string, data any) error {
	switch format {
	case "", FormatJSON:
		jsonData, err := marshalJSON(data)
		if err != nil {
			return err
		}
		_, err = w.Write(jsonData)
		return err
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(data); err != nil {
			return fmt.Errorf("failed to encode YAML: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}

func marshalJSON(data any) ([]byte, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return append(jsonData, '\n'), nil
}
