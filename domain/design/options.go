package design

import (
	"fmt"

	"glmdesign/domain/core"
)

// SelectFilter keeps rows whose values in the Label column(s) satisfy every
// configured predicate. Min and Max are strict bounds.
type SelectFilter struct {
	Label  string    `json:"label" yaml:"label"`
	Values []float64 `json:"values,omitempty" yaml:"values,omitempty"`
	Min    *float64  `json:"min,omitempty" yaml:"min,omitempty"`
	Max    *float64  `json:"max,omitempty" yaml:"max,omitempty"`
}

// Interaction synthesizes the product of two or more existing columns
type Interaction struct {
	Label           string   `json:"label" yaml:"label"`
	Factor          []string `json:"factor" yaml:"factor"`
	NormalizeBefore *bool    `json:"normalize_before,omitempty" yaml:"normalize_before,omitempty"`
}

// ShouldNormalize reports whether factors and product are z-scored (default true)
func (i Interaction) ShouldNormalize() bool {
	return i.NormalizeBefore == nil || *i.NormalizeBefore
}

// Projection replaces the Ortho columns with their residuals after
// regression on the Space columns.
type Projection struct {
	Space []string `json:"space" yaml:"space"`
	Ortho []string `json:"ortho" yaml:"ortho"`
}

// Options configures one pipeline run. Zero values are filled by WithDefaults.
type Options struct {
	LabelsX       []string       `json:"labels_x,omitempty" yaml:"labels_x,omitempty"`
	Select        []SelectFilter `json:"select,omitempty" yaml:"select,omitempty"`
	Interaction   []Interaction  `json:"interaction,omitempty" yaml:"interaction,omitempty"`
	Projection    []Projection   `json:"projection,omitempty" yaml:"projection,omitempty"`
	NormalizeX    NormalizeX     `json:"normalize_x" yaml:"normalize_x"`
	NormalizeY    bool           `json:"normalize_y" yaml:"normalize_y"`
	FlagIntercept *bool          `json:"flag_intercept,omitempty" yaml:"flag_intercept,omitempty"`
	Contrast      Contrast       `json:"contrast,omitempty" yaml:"contrast,omitempty"`
}

// DefaultOptions returns the documented defaults: intercept on, every
// covariate z-scored, responses untouched, no selection, no interactions,
// no projections and an empty contrast.
func DefaultOptions() Options {
	return Options{}.WithDefaults()
}

// WithDefaults returns a copy with every unset field given its default.
// labels_x stays empty here; it is derived from the model at reorder time.
func (o Options) WithDefaults() Options {
	if o.FlagIntercept == nil {
		on := true
		o.FlagIntercept = &on
	}
	if o.NormalizeX.Mode() == normalizeUnset {
		o.NormalizeX = NormalizeAllColumns()
	}
	if o.Select == nil {
		o.Select = []SelectFilter{}
	}
	if o.Interaction == nil {
		o.Interaction = []Interaction{}
	}
	if o.Projection == nil {
		o.Projection = []Projection{}
	}
	if o.Contrast == nil {
		o.Contrast = Contrast{}
	}
	return o
}

// Intercept reports whether the intercept column is requested
func (o Options) Intercept() bool {
	return o.FlagIntercept == nil || *o.FlagIntercept
}

// Validate rejects malformed configuration before any stage runs
func (o Options) Validate() error {
	seen := make(map[string]struct{}, len(o.LabelsX))
	for _, label := range o.LabelsX {
		if _, dup := seen[label]; dup {
			return fmt.Errorf("%w: labels_x contains %q more than once", core.ErrDuplicateLabel, label)
		}
		seen[label] = struct{}{}
	}

	for i, f := range o.Select {
		if f.Label == "" {
			return core.NewConfigError(fmt.Sprintf("select[%d].label", i), "cannot be empty")
		}
	}

	for i, in := range o.Interaction {
		if in.Label == "" {
			return core.NewInteractionError(fmt.Sprintf("#%d", i), "label cannot be empty")
		}
		if len(in.Factor) < 2 {
			return core.NewInteractionError(in.Label, fmt.Sprintf("needs at least 2 factors, got %d", len(in.Factor)))
		}
	}

	for i, p := range o.Projection {
		if len(p.Ortho) == 0 {
			return core.NewConfigError(fmt.Sprintf("projection[%d].ortho", i), "cannot be empty")
		}
	}

	names := make(map[string]struct{}, len(o.Contrast))
	for _, term := range o.Contrast {
		if term.Name == "" {
			return core.NewConfigError("contrast", "names cannot be empty")
		}
		key := Canonical(term.Name)
		if _, dup := names[key]; dup {
			return fmt.Errorf("%w: contrast names %q more than once", core.ErrDuplicateLabel, term.Name)
		}
		names[key] = struct{}{}
	}
	return nil
}

// Fingerprint hashes the options so that identical runs can be recognised
func (o Options) Fingerprint() core.Hash {
	o = o.WithDefaults()
	h := core.NewHasher().Strings(o.LabelsX)
	for _, f := range o.Select {
		h.String(Canonical(f.Label)).Floats(f.Values)
		h.Floats(optionalBound(f.Min)).Floats(optionalBound(f.Max))
	}
	for _, in := range o.Interaction {
		h.String(in.Label).Strings(in.Factor).String(fmt.Sprint(in.ShouldNormalize()))
	}
	for _, p := range o.Projection {
		h.Strings(p.Space).Strings(p.Ortho)
	}
	h.String(o.NormalizeX.String()).String(fmt.Sprint(o.NormalizeY, o.Intercept()))
	h.Strings(o.Contrast.Names()).Floats(o.Contrast.Weights())
	return h.Sum()
}

func optionalBound(b *float64) []float64 {
	if b == nil {
		return nil
	}
	return []float64{*b}
}
