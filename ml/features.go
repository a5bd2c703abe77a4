package ml

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Positions of the numeric inputs in every feature vector. The schema's
// first three column names are not consulted.
const (
	SqftIdx = 0
	BathIdx = 1
	BHKIdx  = 2

	// FixedColumns is the number of leading non-location columns.
	FixedColumns = 3
)

// FeatureSchema is the ordered list of model input columns.
type FeatureSchema struct {
	columns []string
	index   map[string]int
}

func NewFeatureSchema(columns []string) *FeatureSchema {
	s := &FeatureSchema{
		columns: append([]string(nil), columns...),
		index:   make(map[string]int, len(columns)),
	}
	for i, name := range s.columns {
		if _, ok := s.index[name]; !ok {
			s.index[name] = i
		}
	}
	return s
}

func (s *FeatureSchema) Len() int {
	if s == nil {
		return 0
	}
	return len(s.columns)
}

// Columns returns a copy of the ordered model inputs.
func (s *FeatureSchema) Columns() []string {
	if s == nil {
		return []string{}
	}
	return append([]string{}, s.columns...)
}

// Locations returns every column after the fixed numeric ones.
func (s *FeatureSchema) Locations() []string {
	if s.Len() <= FixedColumns {
		return []string{}
	}
	return append([]string{}, s.columns[FixedColumns:]...)
}

// IndexOf finds the lower-cased location among all columns.
func (s *FeatureSchema) IndexOf(location string) (int, bool) {
	if s == nil {
		return -1, false
	}
	idx, ok := s.index[NormalizeLocation(location)]
	if !ok {
		return -1, false
	}
	return idx, true
}

// Encode builds the model input for one request. An unknown location leaves
// every location slot at zero.
func (s *FeatureSchema) Encode(location string, sqft float64, bhk, bath int) []float64 {
	x := make([]float64, s.Len())
	setSlot(x, SqftIdx, sqft)
	setSlot(x, BathIdx, float64(bath))
	setSlot(x, BHKIdx, float64(bhk))
	if idx, ok := s.IndexOf(location); ok {
		x[idx] = 1
	}
	return x
}

func setSlot(x []float64, idx int, v float64) {
	if idx < len(x) {
		x[idx] = v
	}
}

// NormalizeLocation applies Unicode lower-casing and nothing else.
func NormalizeLocation(location string) string {
	return cases.Lower(language.Und).String(location)
}
