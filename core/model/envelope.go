package model

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/ezoic/minwls/pkg/errors"
)

// FormatVersion is the envelope version written by Export.
const FormatVersion = "1.0"

// ModelSpec is the metadata header of an exported model.
type ModelSpec struct {
	Name          string `json:"name"`           // e.g. "LinearRegression"
	FormatVersion string `json:"format_version"` // envelope version
}

// Envelope is an exported model: a spec header plus model specific params.
type Envelope struct {
	ModelSpec ModelSpec       `json:"model_spec"`
	Params    json.RawMessage `json:"params"`
}

// LoadFromFile reads an envelope from a JSON file.
func LoadFromFile(filename string) (*Envelope, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	return LoadFromReader(file)
}

// LoadFromReader reads an envelope and checks its header.
func LoadFromReader(r io.Reader) (*Envelope, error) {
	var env Envelope
	if err := json.NewDecoder(r).Decode(&env); err != nil {
		return nil, fmt.Errorf("failed to decode JSON: %w", err)
	}

	if env.ModelSpec.FormatVersion == "" {
		return nil, errors.NewValueError("LoadModel", "format_version is required")
	}
	if env.ModelSpec.FormatVersion != FormatVersion {
		return nil, errors.NewValueError("LoadModel",
			fmt.Sprintf("unsupported format version: %s", env.ModelSpec.FormatVersion))
	}
	if env.ModelSpec.Name == "" {
		return nil, errors.NewValueError("LoadModel", "model name is required")
	}

	return &env, nil
}

// DecodeParams unmarshals the params of env into dst after checking that
// the envelope holds a model called name.
func DecodeParams(env *Envelope, name string, dst interface{}) error {
	if env.ModelSpec.Name != name {
		return errors.NewValueError("DecodeParams",
			fmt.Sprintf("expected %s, got %s", name, env.ModelSpec.Name))
	}
	if err := json.Unmarshal(env.Params, dst); err != nil {
		return fmt.Errorf("failed to unmarshal params: %w", err)
	}
	return nil
}

// Export writes params under name as an indented JSON envelope.
func Export(name string, params interface{}, w io.Writer) error {
	env := Envelope{
		ModelSpec: ModelSpec{
			Name:          name,
			FormatVersion: FormatVersion,
		},
	}

	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("failed to marshal params: %w", err)
	}
	env.Params = paramsJSON

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(&env); err != nil {
		return fmt.Errorf("failed to encode model: %w", err)
	}

	return nil
}
