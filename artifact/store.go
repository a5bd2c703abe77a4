// Package artifact reads the feature schema and the regression model from
// disk and publishes them as one immutable snapshot.
package artifact

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"homeprice/ml"
)

var (
	ErrArtifactMissing = errors.New("artifact missing")
	ErrArtifactParse   = errors.New("artifact parse error")
)

// Snapshot is the state produced by one load. It is never modified after
// it has been published.
type Snapshot struct {
	Schema    *ml.FeatureSchema
	Model     ml.Regressor
	ModelType string
	Version   uint64
	LoadedAt  time.Time
}

func emptySnapshot() *Snapshot {
	return &Snapshot{Schema: ml.NewFeatureSchema(nil)}
}

func (s *Snapshot) Locations() []string {
	if s == nil {
		return []string{}
	}
	return s.Schema.Locations()
}

// Ready reports whether the snapshot can serve model estimates.
func (s *Snapshot) Ready() bool {
	return s != nil && s.Schema.Len() > 0 && s.Model != nil
}

type columnsFile struct {
	DataColumns *[]string `json:"data_columns"`
}

// ReadSchema returns the ordered data_columns list stored at path.
func ReadSchema(path string) ([]string, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrArtifactMissing, err)
	}
	var doc columnsFile
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrArtifactParse, path, err)
	}
	if doc.DataColumns == nil {
		return nil, fmt.Errorf("%w: %s: data_columns not found", ErrArtifactParse, path)
	}
	return *doc.DataColumns, nil
}

// WriteSchema stores columns in the format ReadSchema expects.
func WriteSchema(path string, columns []string) error {
	payload, err := json.Marshal(columnsFile{DataColumns: &columns})
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o644)
}

// ReadModel decodes the model stored at path. File system failures are
// reported as ErrArtifactMissing, undecodable content as ErrArtifactParse.
func ReadModel(path string) (ml.Regressor, string, error) {
	model, modelType, err := ml.LoadModel(path)
	if err != nil {
		var pathErr *fs.PathError
		if errors.As(err, &pathErr) {
			return nil, "", fmt.Errorf("%w: %w", ErrArtifactMissing, err)
		}
		return nil, "", fmt.Errorf("%w: %s: %w", ErrArtifactParse, path, err)
	}
	return model, modelType, nil
}
