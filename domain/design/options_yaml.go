package design

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"glmdesign/domain/core"
)

// ParseOptions decodes a YAML options document. Unknown keys are rejected so
// that a typo never silently falls back to a default.
func ParseOptions(data []byte) (Options, error) {
	var opts Options
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&opts); err != nil && !errors.Is(err, io.EOF) {
		return Options{}, fmt.Errorf("%w: failed to decode options: %w", core.ErrConfig, err)
	}
	return opts, nil
}

// LoadOptions reads options from a YAML file. An empty path yields defaults.
func LoadOptions(path string) (Options, error) {
	if path == "" {
		return DefaultOptions(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Options{}, fmt.Errorf("failed to read options file %s: %w", path, err)
	}
	opts, err := ParseOptions(data)
	if err != nil {
		return Options{}, fmt.Errorf("%s: %w", path, err)
	}
	return opts, nil
}

// MarshalOptions encodes options back to YAML
func MarshalOptions(opts Options) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(opts); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
