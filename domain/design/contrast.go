package design

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ContrastTerm weights one named covariate
type ContrastTerm struct {
	Name   string  `json:"name" yaml:"name"`
	Weight float64 `json:"weight" yaml:"weight"`
}

// Contrast is an ordered name→weight mapping. The order decides the column
// order of the final design.
type Contrast []ContrastTerm

// Names returns the covariate names in order
func (c Contrast) Names() []string {
	names := make([]string, len(c))
	for i, term := range c {
		names[i] = term.Name
	}
	return names
}

// Weights returns the weights in order
func (c Contrast) Weights() []float64 {
	w := make([]float64, len(c))
	for i, term := range c {
		w[i] = term.Weight
	}
	return w
}

// Lookup finds the weight for name, case-insensitively
func (c Contrast) Lookup(name string) (float64, bool) {
	for _, term := range c {
		if SameName(term.Name, name) {
			return term.Weight, true
		}
	}
	return 0, false
}

// Has reports whether name is a contrast key
func (c Contrast) Has(name string) bool {
	_, ok := c.Lookup(name)
	return ok
}

// MarshalJSON writes an object whose key order follows the contrast order
func (c Contrast) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, term := range c {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(term.Name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(term.Weight)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON accepts {"age": 1, "sex": 0} (order kept) or
// [{"name": "age", "weight": 1}, ...]
func (c *Contrast) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		return nil
	}
	if strings.HasPrefix(trimmed, "[") {
		var terms []ContrastTerm
		if err := json.Unmarshal(data, &terms); err != nil {
			return fmt.Errorf("contrast: %w", err)
		}
		*c = terms
		return nil
	}

	keys, err := orderedJSONKeys(data)
	if err != nil {
		return fmt.Errorf("contrast must be a mapping of name to weight: %w", err)
	}
	var weights map[string]float64
	if err := json.Unmarshal(data, &weights); err != nil {
		return fmt.Errorf("contrast weights must be numeric: %w", err)
	}
	out := make(Contrast, 0, len(keys))
	for _, k := range keys {
		out = append(out, ContrastTerm{Name: k, Weight: weights[k]})
	}
	*c = out
	return nil
}

// MarshalYAML writes an ordered mapping
func (c Contrast) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, term := range c {
		var val yaml.Node
		if err := val.Encode(term.Weight); err != nil {
			return nil, err
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: term.Name},
			&val,
		)
	}
	return node, nil
}

// UnmarshalYAML accepts an ordered mapping or a sequence of {name, weight}
func (c *Contrast) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.MappingNode:
		out := make(Contrast, 0, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			var w float64
			if err := node.Content[i+1].Decode(&w); err != nil {
				return fmt.Errorf("contrast %q: weight must be numeric: %w", node.Content[i].Value, err)
			}
			out = append(out, ContrastTerm{Name: node.Content[i].Value, Weight: w})
		}
		*c = out
	case yaml.SequenceNode:
		var terms []ContrastTerm
		if err := node.Decode(&terms); err != nil {
			return fmt.Errorf("contrast: %w", err)
		}
		*c = terms
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			return nil
		}
		return fmt.Errorf("contrast: expected mapping at line %d", node.Line)
	default:
		return fmt.Errorf("contrast: unsupported yaml node at line %d", node.Line)
	}
	return nil
}
