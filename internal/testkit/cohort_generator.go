package testkit

import (
	"encoding/csv"
	"fmt"
	"math/rand"
	"os"
	"strconv"

	"glmdesign/domain/design"
)

// CohortGeneratorConfig configures the synthetic cohort generator
type CohortGeneratorConfig struct {
	Subjects int     `json:"subjects"`
	Units    int     `json:"units"`   // response columns, 0 for none
	Repeats  int     `json:"repeats"` // observations per subject
	Effect   float64 `json:"effect"`  // age effect on every unit
	Noise    float64 `json:"noise"`   // response noise sd
	Seed     int64   `json:"seed"`
}

// DefaultCohortConfig returns sensible defaults for cohort generation
func DefaultCohortConfig() CohortGeneratorConfig {
	return CohortGeneratorConfig{
		Subjects: 40,
		Units:    3,
		Repeats:  1,
		Effect:   0.05,
		Noise:    1,
		Seed:     42,
	}
}

// CohortColumns names the generated covariates in column order
var CohortColumns = []string{"age", "sex", "iq", "group"}

// CohortGenerator generates reproducible covariate tables shaped like a
// neuroimaging study: continuous age and iq, binary sex and group.
type CohortGenerator struct {
	config CohortGeneratorConfig
	rng    *rand.Rand
}

// NewCohortGenerator creates a new cohort generator
func NewCohortGenerator(config CohortGeneratorConfig) *CohortGenerator {
	if config.Repeats < 1 {
		config.Repeats = 1
	}
	return &CohortGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// Generate produces a model with Subjects*Repeats observations labelled
// sub-001, sub-002, ...; repeated observations share a label.
func (g *CohortGenerator) Generate() design.Model {
	n := g.config.Subjects * g.config.Repeats
	x := design.NewMatrix(n, len(CohortColumns), nil)
	y := design.NewMatrix(n, g.config.Units, nil)
	labels := make([]string, 0, n)

	row := 0
	for s := 0; s < g.config.Subjects; s++ {
		age := 20 + g.rng.Float64()*50
		sex := float64(g.rng.Intn(2))
		iq := 100 + g.rng.NormFloat64()*15
		group := float64(s % 2)
		for r := 0; r < g.config.Repeats; r++ {
			labels = append(labels, fmt.Sprintf("sub-%03d", s+1))
			x.Set(row, 0, age)
			x.Set(row, 1, sex)
			x.Set(row, 2, iq)
			x.Set(row, 3, group)
			for u := 0; u < g.config.Units; u++ {
				y.Set(row, u, g.config.Effect*age+0.5*group+g.rng.NormFloat64()*g.config.Noise)
			}
			row++
		}
	}

	m := design.Model{X: x, LabelsX: labels, LabelsY: append([]string(nil), CohortColumns...)}
	if g.config.Units > 0 {
		m.Y = y
	}
	return m
}

// WriteCSV writes a matrix with its row and column labels as a table file
func WriteCSV(path string, rowLabels, colLabels []string, m design.Matrix) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(append([]string{"label"}, colLabels...)); err != nil {
		return err
	}
	for i, label := range rowLabels {
		record := []string{label}
		for _, v := range m.Row(i) {
			record = append(record, strconv.FormatFloat(v, 'g', -1, 64))
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return file.Close()
}

// UnitLabels names n response columns
func UnitLabels(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = "unit_" + strconv.Itoa(i+1)
	}
	return out
}
