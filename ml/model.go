package ml

import "errors"

var (
	ErrNotFitted          = errors.New("model not fitted")
	ErrDimensionMismatch  = errors.New("feature dimension mismatch")
	ErrUnsupportedModel   = errors.New("unsupported model type")
	ErrInvalidModelConfig = errors.New("invalid model definition")
)

// Regressor is a trained model that maps one feature vector to a scalar.
type Regressor interface {
	Predict(features []float64) (float64, error)
}

const (
	ModelTypeLinear       = "linear_regression"
	ModelTypeDecisionTree = "decision_tree"
	ModelTypeUnfitted     = "unfitted"
)

// UnfittedModel stands in for a model file that exists but could not be
// decoded. Every prediction fails, so callers take their fallback path.
type UnfittedModel struct{}

func (UnfittedModel) Predict(features []float64) (float64, error) {
	return 0, ErrNotFitted
}
