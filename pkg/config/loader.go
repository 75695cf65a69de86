// Package config loads ratchet.toml or ratchet.yaml, validates every entry and builds
// the rules, tool checks and scan options it declares.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Load reads and validates the config file at path.
// The file format is chosen by extension: .toml, .yaml or .yml.
func Load(path string) (*Config, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	file, err := Decode(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	cfg, err := build(file, filepath.Dir(absPath))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.Path = absPath
	return cfg, nil
}

// Decode parses config content in the format named by ext. Unknown keys are errors.
func Decode(data []byte, ext string) (File, error) {
	var file File
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
			return file, err
		}
	case ".toml":
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&file); err != nil {
			return file, describeTOMLError(err)
		}
	default:
		return file, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return file, nil
}

// Default returns the configuration used when no config file exists: the built-in
// rule catalogue over dir.
func Default(dir string) (*Config, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	return build(File{}, absDir)
}

func describeTOMLError(err error) error {
	var strictErr *toml.StrictMissingError
	if !errors.As(err, &strictErr) {
		return err
	}
	keys := make([]string, 0, len(strictErr.Errors))
	for _, decodeErr := range strictErr.Errors {
		keys = append(keys, strings.Join(decodeErr.Key(), "."))
	}
	return fmt.Errorf("unknown config keys: %s", strings.Join(keys, ", "))
}
