package preprocessing

import (
	"fmt"
	"sort"
)

// LabelEncoder maps arbitrary string class labels to consecutive integer
// codes. Codes follow the lexicographic order of the distinct labels, so
// the same label set always yields the same encoding regardless of input
// order.
type LabelEncoder struct {
	ClassToInt map[string]int
	IntToClass []string
	IsFitted   bool
}

func NewLabelEncoder() *LabelEncoder {
	return &LabelEncoder{
		ClassToInt: make(map[string]int),
	}
}

func (le *LabelEncoder) Fit(labels []string) {
	unique := make(map[string]bool)
	for _, label := range labels {
		unique[label] = true
	}

	classes := make([]string, 0, len(unique))
	for label := range unique {
		classes = append(classes, label)
	}
	sort.Strings(classes)

	le.ClassToInt = make(map[string]int, len(classes))
	le.IntToClass = classes
	for idx, label := range classes {
		le.ClassToInt[label] = idx
	}

	le.IsFitted = true
}

func (le *LabelEncoder) Transform(labels []string) ([]int, error) {
	if !le.IsFitted {
		return nil, fmt.Errorf("LabelEncoder must be fitted before transform")
	}

	result := make([]int, len(labels))
	for i, label := range labels {
		code, ok := le.ClassToInt[label]
		if !ok {
			return nil, fmt.Errorf("unknown label: %s", label)
		}
		result[i] = code
	}

	return result, nil
}

func (le *LabelEncoder) FitTransform(labels []string) ([]int, error) {
	le.Fit(labels)
	return le.Transform(labels)
}

func (le *LabelEncoder) InverseTransform(encoded []int) ([]string, error) {
	if !le.IsFitted {
		return nil, fmt.Errorf("LabelEncoder must be fitted before inverse transform")
	}

	result := make([]string, len(encoded))
	for i, code := range encoded {
		if code < 0 || code >= len(le.IntToClass) {
			return nil, fmt.Errorf("unknown encoding: %d", code)
		}
		result[i] = le.IntToClass[code]
	}

	return result, nil
}

// NumClasses returns the number of distinct labels seen at fit time.
func (le *LabelEncoder) NumClasses() int {
	return len(le.IntToClass)
}
