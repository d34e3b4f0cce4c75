package design

import "strings"

// InterceptLabel names the constant column added by the intercept stage.
const InterceptLabel = "intercept"

// Canonical folds a covariate name for comparison. Every column lookup in
// the pipeline goes through this function.
func Canonical(name string) string {
	return strings.ToLower(name)
}

// SameName reports whether two covariate names refer to the same column
func SameName(a, b string) bool {
	return Canonical(a) == Canonical(b)
}

// IsIntercept reports whether name is the intercept column
func IsIntercept(name string) bool {
	return SameName(name, InterceptLabel)
}

// FindColumns returns the indices of every label matching name
func FindColumns(labels []string, name string) []int {
	var idx []int
	want := Canonical(name)
	for i, label := range labels {
		if Canonical(label) == want {
			idx = append(idx, i)
		}
	}
	return idx
}

// FindColumn returns the index of the first label matching name
func FindColumn(labels []string, name string) (int, bool) {
	want := Canonical(name)
	for i, label := range labels {
		if Canonical(label) == want {
			return i, true
		}
	}
	return -1, false
}

// InterceptIndex returns the position of the intercept column, or -1
func InterceptIndex(labels []string) int {
	i, _ := FindColumn(labels, InterceptLabel)
	return i
}

// ColumnMask marks every label matched by one of names. The first name that
// matches nothing is returned as missing.
func ColumnMask(labels []string, names []string) (mask []bool, missing string) {
	mask = make([]bool, len(labels))
	for _, name := range names {
		idx := FindColumns(labels, name)
		if len(idx) == 0 {
			return nil, name
		}
		for _, i := range idx {
			mask[i] = true
		}
	}
	return mask, ""
}

// MaskIndices converts a boolean mask into ascending indices
func MaskIndices(mask []bool) []int {
	var idx []int
	for i, on := range mask {
		if on {
			idx = append(idx, i)
		}
	}
	return idx
}
