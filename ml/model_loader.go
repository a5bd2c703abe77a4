package ml

import (
	"encoding/json"
	"fmt"
	"os"
)

type modelEnvelope struct {
	ModelType string `json:"model_type"`
}

// LoadModel reads a model definition written by LinearRegression.Save or
// DecisionTree.Save. The returned string is the model type.
func LoadModel(path string) (Regressor, string, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, "", err
	}
	return DecodeModel(payload)
}

func DecodeModel(payload []byte) (Regressor, string, error) {
	var envelope modelEnvelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil, "", fmt.Errorf("decode model envelope: %w", err)
	}

	switch envelope.ModelType {
	case ModelTypeLinear:
		model := &LinearRegression{}
		if err := json.Unmarshal(payload, model); err != nil {
			return nil, "", fmt.Errorf("decode %s: %w", envelope.ModelType, err)
		}
		if err := model.validate(); err != nil {
			return nil, "", err
		}
		return model, envelope.ModelType, nil
	case ModelTypeDecisionTree:
		model := &DecisionTree{}
		if err := json.Unmarshal(payload, model); err != nil {
			return nil, "", fmt.Errorf("decode %s: %w", envelope.ModelType, err)
		}
		if err := model.validate(); err != nil {
			return nil, "", err
		}
		return model, envelope.ModelType, nil
	default:
		return nil, "", fmt.Errorf("%w: %q", ErrUnsupportedModel, envelope.ModelType)
	}
}
