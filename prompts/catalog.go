// Package prompts loads the few-shot catalog (spec.md §4.4/§3) that
// internal/knn indexes at startup. Grounded on the teacher's
// GetPrompt(key, templatesDir) override idiom: a user-supplied file wins
// over a compiled-in default when present.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/josephgoksu/promptforge/types"
)

//go:embed catalog.json
var embeddedCatalog embed.FS

// defaultCatalogFilename is the override filename GetCatalog looks for
// under a configured catalog directory, mirroring the teacher's
// "<key>.txt under templatesDir" convention.
const defaultCatalogFilename = "fewshot_catalog.json"

// GetCatalog returns the few-shot catalog: a user-supplied JSON file at
// <catalogDir>/fewshot_catalog.json if present, otherwise the compiled-in
// default catalog.
func GetCatalog(catalogDir string) ([]types.FewShotExample, error) {
	if strings.TrimSpace(catalogDir) != "" {
		customPath := filepath.Join(catalogDir, defaultCatalogFilename)
		if _, err := os.Stat(customPath); err == nil {
			data, readErr := os.ReadFile(customPath)
			if readErr != nil {
				return nil, fmt.Errorf("prompts: read custom catalog at %s: %w", customPath, readErr)
			}
			return decodeCatalog(data)
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("prompts: stat custom catalog at %s: %w", customPath, err)
		}
	}

	data, err := embeddedCatalog.ReadFile("catalog.json")
	if err != nil {
		return nil, fmt.Errorf("prompts: read embedded catalog: %w", err)
	}
	return decodeCatalog(data)
}

func decodeCatalog(data []byte) ([]types.FewShotExample, error) {
	var catalog []types.FewShotExample
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("prompts: decode catalog: %w", err)
	}
	return catalog, nil
}
