package domain

// FeatureVector is the classifier input. Its width is fixed by the type.
type FeatureVector [FeatureCount]float64

// Encode maps an assessment onto the classifier's column layout: the numeric
// fields in NumericFields order followed by the treatment indicators.
// It performs no validation.
func Encode(a Assessment) FeatureVector {
	var v FeatureVector
	for i, f := range NumericFields {
		v[i] = f.Value(a)
	}
	for i, t := range indicatorTreatments {
		if a.Treatment == t {
			v[NumericFieldCount+i] = 1
		}
	}
	return v
}

// Slice returns a copy of the vector as a slice for classifier backends.
func (v FeatureVector) Slice() []float64 {
	out := make([]float64, FeatureCount)
	copy(out, v[:])
	return out
}

// Named pairs each value with its column name, in order.
func (v FeatureVector) Named() []NamedFeature {
	names := FeatureNames()
	out := make([]NamedFeature, FeatureCount)
	for i := range v {
		out[i] = NamedFeature{Name: names[i], Value: v[i]}
	}
	return out
}

// NamedFeature is a single column of an encoded vector.
type NamedFeature struct {
	Name  string  `json:"name" yaml:"name"`
	Value float64 `json:"value" yaml:"value"`
}
