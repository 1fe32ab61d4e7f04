package site

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ResultFileName is the serialized Result written per site.
const ResultFileName = "sitedata.json"

// AboutFileName is the rendered about page written next to the result when
// the region document names one.
const AboutFileName = "about.html"

// WriteResult persists a Result under <outputDir>/<site>/. This is the CLI
// handing the in-memory result to the template layer; the assembler itself
// never writes anything. Returns the site output directory.
func WriteResult(outputDir string, result *Result) (string, error) {
	if outputDir == "" {
		return "", errors.New("output directory is required")
	}
	if result == nil {
		return "", errors.New("result is required")
	}
	if result.Site == "" {
		return "", errors.New("result has no site name")
	}

	siteDir := filepath.Join(outputDir, result.Site)
	if err := os.MkdirAll(siteDir, 0o750); err != nil {
		return "", fmt.Errorf("create site output directory: %w", err)
	}

	encoded, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode result: %w", err)
	}
	if err := os.WriteFile(filepath.Join(siteDir, ResultFileName), append(encoded, '\n'), 0o644); err != nil {
		return "", fmt.Errorf("write result: %w", err)
	}

	if result.About != nil {
		if err := os.WriteFile(filepath.Join(siteDir, AboutFileName), []byte(result.About.HTML), 0o644); err != nil {
			return "", fmt.Errorf("write about page: %w", err)
		}
	}

	return siteDir, nil
}
