package classify

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/mod/semver"

	"github.com/abhisek/rpscam/internal/move"
)

// AssetMajorVersion is the asset format major version this build reads.
const AssetMajorVersion = "v1"

// Asset is the on-disk centroid model.
type Asset struct {
	// Version is the semver of the asset format.
	Version string `json:"version"`

	// Labels must match move.Labels() in order.
	Labels []string `json:"labels"`

	// InputSize is the square side frames are scaled to before pooling.
	InputSize int `json:"input_size"`

	// Grid is the pooling grid side; feature vectors have Grid*Grid entries.
	Grid int `json:"grid"`

	// Temperature scales distances before the softmax. Lower is sharper.
	Temperature float64 `json:"temperature"`

	// Centroids holds one mean feature vector per label.
	Centroids [][]float64 `json:"centroids"`

	// Samples records how many training images fed each centroid.
	Samples []int `json:"samples,omitempty"`
}

// AssetError reports an asset that parsed but is semantically invalid.
type AssetError struct {
	Field string
	Err   error
}

func (e *AssetError) Error() string {
	return fmt.Sprintf("invalid model asset field %q: %v", e.Field, e.Err)
}

func (e *AssetError) Unwrap() error { return e.Err }

const assetSchemaDoc = `{
  "type": "object",
  "required": ["version", "labels", "input_size", "grid", "temperature", "centroids"],
  "properties": {
    "version":     {"type": "string", "pattern": "^v[0-9]+\\.[0-9]+\\.[0-9]+$"},
    "labels":      {"type": "array", "items": {"type": "string"}, "minItems": 1},
    "input_size":  {"type": "integer", "minimum": 1},
    "grid":        {"type": "integer", "minimum": 1},
    "temperature": {"type": "number", "exclusiveMinimum": 0},
    "centroids":   {"type": "array", "items": {"type": "array", "items": {"type": "number"}}},
    "samples":     {"type": "array", "items": {"type": "integer", "minimum": 0}}
  }
}`

var (
	assetSchemaOnce sync.Once
	assetSchema     *jsonschema.Schema
	assetSchemaErr  error
)

func compiledAssetSchema() (*jsonschema.Schema, error) {
	assetSchemaOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(strings.NewReader(assetSchemaDoc))
		if err != nil {
			assetSchemaErr = fmt.Errorf("parse asset schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		const url = "schema://model-asset.json"
		if err := c.AddResource(url, doc); err != nil {
			assetSchemaErr = fmt.Errorf("add asset schema: %w", err)
			return
		}
		assetSchema, assetSchemaErr = c.Compile(url)
	})
	return assetSchema, assetSchemaErr
}

// ParseAsset decodes and validates an asset document.
func ParseAsset(data []byte) (*Asset, error) {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(string(data)))
	if err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	sch, err := compiledAssetSchema()
	if err != nil {
		return nil, err
	}
	if err := sch.Validate(doc); err != nil {
		return nil, fmt.Errorf("schema validation failed: %w", err)
	}

	var a Asset
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("decode asset: %w", err)
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return &a, nil
}

// LoadAsset reads and validates the asset at path.
func LoadAsset(path string) (*Asset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseAsset(data)
}

// Save writes the asset as indented JSON.
func (a *Asset) Save(path string) error {
	if err := a.Validate(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal asset: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// Validate checks the invariants the schema cannot express.
func (a *Asset) Validate() error {
	if !semver.IsValid(a.Version) {
		return &AssetError{Field: "version", Err: fmt.Errorf("%q is not a semantic version", a.Version)}
	}
	if major := semver.Major(a.Version); major != AssetMajorVersion {
		return &AssetError{Field: "version", Err: fmt.Errorf("unsupported major version %s (want %s)", major, AssetMajorVersion)}
	}

	want := move.Labels()
	if len(a.Labels) != len(want) {
		return &AssetError{Field: "labels", Err: fmt.Errorf("got %d labels, want %d", len(a.Labels), len(want))}
	}
	for i, l := range want {
		if a.Labels[i] != l {
			return &AssetError{Field: "labels", Err: fmt.Errorf("label %d is %q, want %q", i, a.Labels[i], l)}
		}
	}

	if a.Grid < 1 || a.InputSize < a.Grid {
		return &AssetError{Field: "grid", Err: fmt.Errorf("grid %d must be between 1 and input size %d", a.Grid, a.InputSize)}
	}
	if a.Temperature <= 0 {
		return &AssetError{Field: "temperature", Err: errors.New("must be positive")}
	}

	if len(a.Centroids) != len(want) {
		return &AssetError{Field: "centroids", Err: fmt.Errorf("got %d centroids, want %d", len(a.Centroids), len(want))}
	}
	dim := a.Grid * a.Grid
	for i, c := range a.Centroids {
		if len(c) != dim {
			return &AssetError{Field: "centroids", Err: fmt.Errorf("centroid %d has %d values, want %d", i, len(c), dim)}
		}
	}
	return nil
}
