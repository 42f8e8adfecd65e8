// ABOUTME: Loads value mappings and style overrides from YAML or JSON files for the CLI.
// ABOUTME: Builds the shared export.Request that every render, watch, and playground mode starts from.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/2389-research/marble/export"
	"github.com/2389-research/marble/render"
	"gopkg.in/yaml.v3"
)

// decodeFile decodes a YAML (.yaml, .yml) or JSON (anything else) file into v.
func decodeFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, v)
	default:
		err = json.Unmarshal(data, v)
	}
	if err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// loadValues merges the values file (if any) with inline JSON. Inline keys win.
func loadValues(path, inline string) (map[string]any, error) {
	var values map[string]any
	if path != "" {
		if err := decodeFile(path, &values); err != nil {
			return nil, fmt.Errorf("values file: %w", err)
		}
	}
	if strings.TrimSpace(inline) != "" {
		var extra map[string]any
		if err := json.Unmarshal([]byte(inline), &extra); err != nil {
			return nil, fmt.Errorf("-values-json must be a JSON object: %w", err)
		}
		if values == nil {
			values = make(map[string]any, len(extra))
		}
		for k, v := range extra {
			values[k] = v
		}
	}
	return values, nil
}

// loadStyle reads style overrides. An empty path means the default style.
func loadStyle(path string) (*render.Overrides, error) {
	if path == "" {
		return nil, nil
	}
	var ov render.Overrides
	if err := decodeFile(path, &ov); err != nil {
		return nil, fmt.Errorf("style file: %w", err)
	}
	return &ov, nil
}

// baseRequest builds the request shared by every input; Notation is filled in per input.
func baseRequest(cfg config) (export.Request, error) {
	format, err := export.ParseFormat(cfg.format)
	if err != nil {
		return export.Request{}, err
	}
	values, err := loadValues(cfg.valuesFile, cfg.valuesJSON)
	if err != nil {
		return export.Request{}, err
	}
	style, err := loadStyle(cfg.styleFile)
	if err != nil {
		return export.Request{}, err
	}
	return export.Request{
		Values:              values,
		ErrorMessage:        cfg.errorMessage,
		ExcludeSubscription: cfg.noSubscription,
		Style:               style,
		Format:              format,
	}, nil
}
