package ml

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
)

// LinearRegression holds coefficients exported from a fitted ordinary least
// squares model, one per schema column, in schema order.
type LinearRegression struct {
	Coefficients []float64 `json:"coefficients"`
	Intercept    float64   `json:"intercept"`
}

func (lr *LinearRegression) Predict(features []float64) (float64, error) {
	if len(lr.Coefficients) == 0 {
		return 0, ErrNotFitted
	}
	if len(features) != len(lr.Coefficients) {
		return 0, fmt.Errorf("%w: model expects %d features, got %d", ErrDimensionMismatch, len(lr.Coefficients), len(features))
	}
	sum := lr.Intercept
	for i, coef := range lr.Coefficients {
		sum += coef * features[i]
	}
	return sum, nil
}

func (lr *LinearRegression) validate() error {
	if len(lr.Coefficients) == 0 {
		return fmt.Errorf("%w: no coefficients", ErrInvalidModelConfig)
	}
	for i, coef := range lr.Coefficients {
		if math.IsNaN(coef) || math.IsInf(coef, 0) {
			return fmt.Errorf("%w: coefficient %d is not finite", ErrInvalidModelConfig, i)
		}
	}
	if math.IsNaN(lr.Intercept) || math.IsInf(lr.Intercept, 0) {
		return fmt.Errorf("%w: intercept is not finite", ErrInvalidModelConfig)
	}
	return nil
}

func (lr *LinearRegression) Save(path string) error {
	if err := lr.validate(); err != nil {
		return err
	}
	payload, err := json.Marshal(struct {
		ModelType string `json:"model_type"`
		*LinearRegression
	}{ModelTypeLinear, lr})
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o644)
}
