// Package validate checks persisted artifacts against the embedded
// JSON Schemas.
package validate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	jsonc "github.com/muhammadmuzzammil1998/jsonc"

	"github.com/mehmetkoksal-w/routemap/schemas"
)

// JSONC validates a JSONC file against an embedded schema.
func JSONC(path string, schemaName string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	clean := jsonc.ToJSON(data)
	schema, err := schemas.Compile(schemaName)
	if err != nil {
		return err
	}
	var instance any
	if err := json.Unmarshal(clean, &instance); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	if err := schema.Validate(instance); err != nil {
		return fmt.Errorf("%s invalid: %w", path, err)
	}
	return nil
}

// JSON validates a standard JSON file.
func JSON(path string, schemaName string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	schema, err := schemas.Compile(schemaName)
	if err != nil {
		return err
	}
	var instance any
	if err := json.Unmarshal(bytes.TrimSpace(data), &instance); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	if err := schema.Validate(instance); err != nil {
		return fmt.Errorf("%s invalid: %w", path, err)
	}
	return nil
}

// Value validates an in-memory value that round-trips through JSON.
func Value(v any, schemaName string) error {
	schema, err := schemas.Compile(schemaName)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal for validation: %w", err)
	}
	var instance any
	if err := json.Unmarshal(raw, &instance); err != nil {
		return err
	}
	if err := schema.Validate(instance); err != nil {
		return fmt.Errorf("artifact invalid: %w", err)
	}
	return nil
}
