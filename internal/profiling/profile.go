package profiling

import (
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"

	"glmdesign/domain/design"
)

// ColumnProfile summarises the distribution of one design column
type ColumnProfile struct {
	Name     string  `json:"name"`
	N        int     `json:"n"`
	Mean     float64 `json:"mean"`
	StdDev   float64 `json:"std_dev"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Median   float64 `json:"median"`
	Q25      float64 `json:"q25"`
	Q75      float64 `json:"q75"`
	Skewness float64 `json:"skewness"`
	Kurtosis float64 `json:"kurtosis"`
	Outliers int     `json:"outliers"`
	// NormalP is the Jarque-Bera p-value; 1 when the test cannot run
	NormalP  float64 `json:"normal_p"`
	Constant bool    `json:"constant"`
}

// Profiler computes column profiles
type Profiler struct{}

// NewProfiler creates a new profiler
func NewProfiler() *Profiler {
	return &Profiler{}
}

// ProfileDesign profiles every column of X in column order. A model without
// observations yields no profiles.
func (p *Profiler) ProfileDesign(m design.Model) []ColumnProfile {
	if m.X.Rows() == 0 {
		return nil
	}
	out := make([]ColumnProfile, 0, m.X.Cols())
	for j, name := range m.LabelsY {
		prof, err := p.ProfileColumn(name, m.X.Col(j))
		if err != nil {
			continue
		}
		out = append(out, prof)
	}
	return out
}

// ProfileColumn computes summary and shape statistics for one column
func (p *Profiler) ProfileColumn(name string, data []float64) (ColumnProfile, error) {
	prof := ColumnProfile{Name: name, N: len(data), NormalP: 1}

	var err error
	if prof.Mean, err = stats.Mean(data); err != nil {
		return prof, err
	}
	if prof.Min, err = stats.Min(data); err != nil {
		return prof, err
	}
	if prof.Max, err = stats.Max(data); err != nil {
		return prof, err
	}
	if prof.Median, err = stats.Median(data); err != nil {
		return prof, err
	}
	if prof.Q25, err = stats.Percentile(data, 25); err != nil {
		prof.Q25 = prof.Min
	}
	if prof.Q75, err = stats.Percentile(data, 75); err != nil {
		prof.Q75 = prof.Max
	}
	if len(data) > 1 {
		if prof.StdDev, err = stats.StandardDeviationSample(data); err != nil {
			return prof, err
		}
	}

	prof.Constant = prof.Min == prof.Max
	if prof.Constant {
		return prof, nil
	}

	prof.Skewness = skewness(data, prof.Mean)
	prof.Kurtosis = kurtosis(data, prof.Mean)
	prof.Outliers = outliers(data, prof.Q25, prof.Q75)
	prof.NormalP = jarqueBera(len(data), prof.Skewness, prof.Kurtosis)
	return prof, nil
}

// skewness is the population moment coefficient g1
func skewness(data []float64, mean float64) float64 {
	m2, m3 := 0.0, 0.0
	for _, x := range data {
		d := x - mean
		m2 += d * d
		m3 += d * d * d
	}
	n := float64(len(data))
	m2 /= n
	m3 /= n
	if m2 == 0 {
		return 0
	}
	return m3 / math.Pow(m2, 1.5)
}

// kurtosis is the population moment coefficient b2 (3 for a normal sample)
func kurtosis(data []float64, mean float64) float64 {
	m2, m4 := 0.0, 0.0
	for _, x := range data {
		d := x - mean
		m2 += d * d
		m4 += d * d * d * d
	}
	n := float64(len(data))
	m2 /= n
	m4 /= n
	if m2 == 0 {
		return 0
	}
	return m4 / (m2 * m2)
}

// outliers counts values outside 1.5 IQR of the quartiles
func outliers(data []float64, q25, q75 float64) int {
	iqr := q75 - q25
	lower, upper := q25-1.5*iqr, q75+1.5*iqr
	count := 0
	for _, x := range data {
		if x < lower || x > upper {
			count++
		}
	}
	return count
}

// jarqueBera returns the p-value of the Jarque-Bera normality test
func jarqueBera(n int, skew, kurt float64) float64 {
	if n < 3 {
		return 1
	}
	jb := float64(n) / 6 * (skew*skew + (kurt-3)*(kurt-3)/4)
	return 1 - distuv.ChiSquared{K: 2}.CDF(jb)
}
