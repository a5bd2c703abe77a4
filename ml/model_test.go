package ml

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinearRegressionPredict(t *testing.T) {
	model := &LinearRegression{Coefficients: []float64{0.05, 2, 3, 10, -5}, Intercept: 1}

	got, err := model.Predict([]float64{1000, 2, 2, 1, 0})
	require.NoError(t, err)
	assert.InDelta(t, 1+50+4+6+10, got, 1e-9)
}

func TestLinearRegressionDimensionMismatch(t *testing.T) {
	model := &LinearRegression{Coefficients: []float64{1, 2, 3}}

	_, err := model.Predict([]float64{1, 2})
	assert.ErrorIs(t, err, ErrDimensionMismatch)

	_, err = (&LinearRegression{}).Predict([]float64{1})
	assert.ErrorIs(t, err, ErrNotFitted)
}

func TestDecisionTreePredict(t *testing.T) {
	tree := &DecisionTree{Nodes: []TreeNode{
		{FeatureIdx: 0, Threshold: 1200, LeftChild: 1, RightChild: 2},
		{IsLeaf: true, Value: 55.5},
		{FeatureIdx: 3, Threshold: 0.5, LeftChild: 3, RightChild: 4},
		{IsLeaf: true, Value: 90},
		{IsLeaf: true, Value: 140.25},
	}}

	cases := []struct {
		x    []float64
		want float64
	}{
		{[]float64{1000, 2, 2, 1}, 55.5},
		{[]float64{1500, 2, 2, 0}, 90},
		{[]float64{1500, 2, 2, 1}, 140.25},
	}
	for _, c := range cases {
		got, err := tree.Predict(c.x)
		require.NoError(t, err)
		assert.Equal(t, c.want, got)
	}

	_, err := tree.Predict([]float64{1500})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestDecisionTreeCycle(t *testing.T) {
	tree := &DecisionTree{Nodes: []TreeNode{
		{FeatureIdx: 0, Threshold: 1, LeftChild: 1, RightChild: 1},
		{FeatureIdx: 0, Threshold: 1, LeftChild: 0, RightChild: 0},
	}}
	_, err := tree.Predict([]float64{0})
	assert.Error(t, err)
}

func TestUnfittedModel(t *testing.T) {
	_, err := UnfittedModel{}.Predict([]float64{1, 2, 3})
	assert.ErrorIs(t, err, ErrNotFitted)
}

func TestDecodeModel(t *testing.T) {
	model, modelType, err := DecodeModel([]byte(`{"model_type":"linear_regression","coefficients":[1,2],"intercept":0.5}`))
	require.NoError(t, err)
	assert.Equal(t, ModelTypeLinear, modelType)
	assert.Equal(t, &LinearRegression{Coefficients: []float64{1, 2}, Intercept: 0.5}, model)

	model, modelType, err = DecodeModel([]byte(`{"model_type":"decision_tree","nodes":[{"is_leaf":true,"value":7}]}`))
	require.NoError(t, err)
	assert.Equal(t, ModelTypeDecisionTree, modelType)
	got, err := model.Predict(nil)
	require.NoError(t, err)
	assert.Equal(t, 7.0, got)
}

func TestDecodeModelErrors(t *testing.T) {
	_, _, err := DecodeModel([]byte(`not json`))
	assert.Error(t, err)

	_, _, err = DecodeModel([]byte(`{"model_type":"random_forest"}`))
	assert.ErrorIs(t, err, ErrUnsupportedModel)

	_, _, err = DecodeModel([]byte(`{"model_type":"linear_regression","coefficients":[]}`))
	assert.ErrorIs(t, err, ErrInvalidModelConfig)

	_, _, err = DecodeModel([]byte(`{"model_type":"decision_tree","nodes":[{"left_child":4,"right_child":1}]}`))
	assert.ErrorIs(t, err, ErrInvalidModelConfig)
}

func TestSaveLoadModel(t *testing.T) {
	dir := t.TempDir()

	linearPath := filepath.Join(dir, "linear.json")
	linear := &LinearRegression{Coefficients: []float64{0.08, 1.5, 2.5, 12}, Intercept: -3}
	require.NoError(t, linear.Save(linearPath))
	loaded, modelType, err := LoadModel(linearPath)
	require.NoError(t, err)
	assert.Equal(t, ModelTypeLinear, modelType)
	assert.Equal(t, linear, loaded)

	treePath := filepath.Join(dir, "tree.json")
	tree := &DecisionTree{Nodes: []TreeNode{
		{FeatureIdx: 0, Threshold: 10, LeftChild: 1, RightChild: 2},
		{IsLeaf: true, Value: 1},
		{IsLeaf: true, Value: 2},
	}}
	require.NoError(t, tree.Save(treePath))
	loaded, modelType, err = LoadModel(treePath)
	require.NoError(t, err)
	assert.Equal(t, ModelTypeDecisionTree, modelType)
	assert.Equal(t, tree, loaded)

	_, _, err = LoadModel(filepath.Join(dir, "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
