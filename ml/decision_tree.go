package ml

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// DecisionTree is a regression tree stored as a flat node array with the
// root at index 0.
type DecisionTree struct {
	Nodes []TreeNode `json:"nodes"`
}

type TreeNode struct {
	FeatureIdx int     `json:"feature_idx"`
	Threshold  float64 `json:"threshold"`
	LeftChild  int     `json:"left_child"`
	RightChild int     `json:"right_child"`
	Value      float64 `json:"value"`
	IsLeaf     bool    `json:"is_leaf"`
}

func (dt *DecisionTree) Predict(features []float64) (float64, error) {
	if len(dt.Nodes) == 0 {
		return 0, ErrNotFitted
	}
	idx := 0
	// a well-formed tree reaches a leaf in fewer hops than it has nodes
	for steps := 0; steps <= len(dt.Nodes); steps++ {
		node := dt.Nodes[idx]
		if node.IsLeaf {
			return node.Value, nil
		}
		if node.FeatureIdx < 0 || node.FeatureIdx >= len(features) {
			return 0, fmt.Errorf("%w: split on feature %d, vector has %d", ErrDimensionMismatch, node.FeatureIdx, len(features))
		}
		if features[node.FeatureIdx] <= node.Threshold {
			idx = node.LeftChild
		} else {
			idx = node.RightChild
		}
		if idx < 0 || idx >= len(dt.Nodes) {
			return 0, errors.New("invalid tree state")
		}
	}
	return 0, errors.New("tree contains a cycle")
}

func (dt *DecisionTree) validate() error {
	if len(dt.Nodes) == 0 {
		return fmt.Errorf("%w: tree has no nodes", ErrInvalidModelConfig)
	}
	for i, node := range dt.Nodes {
		if node.IsLeaf {
			continue
		}
		if node.LeftChild < 0 || node.LeftChild >= len(dt.Nodes) || node.RightChild < 0 || node.RightChild >= len(dt.Nodes) {
			return fmt.Errorf("%w: node %d has a child out of range", ErrInvalidModelConfig, i)
		}
	}
	return nil
}

func (dt *DecisionTree) Save(path string) error {
	if err := dt.validate(); err != nil {
		return err
	}
	payload, err := json.Marshal(struct {
		ModelType string `json:"model_type"`
		*DecisionTree
	}{ModelTypeDecisionTree, dt})
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o644)
}
