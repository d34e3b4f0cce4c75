package design

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// NormalizeMode selects which covariate columns the normalizer z-scores
type NormalizeMode int

const (
	normalizeUnset NormalizeMode = iota
	NormalizeNone
	NormalizeAll
	NormalizeSubset
)

// NormalizeX is either "every column", "no column" or a named subset.
// In configuration files it is written as a boolean, a list of names or a
// mapping whose keys are names.
type NormalizeX struct {
	mode  NormalizeMode
	names []string
}

// NormalizeAllColumns z-scores every covariate
func NormalizeAllColumns() NormalizeX { return NormalizeX{mode: NormalizeAll} }

// NormalizeNoColumns leaves covariates untouched
func NormalizeNoColumns() NormalizeX { return NormalizeX{mode: NormalizeNone} }

// NormalizeColumns z-scores only the named covariates
func NormalizeColumns(names ...string) NormalizeX {
	return NormalizeX{mode: NormalizeSubset, names: append([]string(nil), names...)}
}

func (n NormalizeX) Mode() NormalizeMode { return n.mode }

// Names returns the subset in configured order
func (n NormalizeX) Names() []string {
	return append([]string(nil), n.names...)
}

// Includes reports whether the named column is normalized under this setting
func (n NormalizeX) Includes(name string) bool {
	switch n.mode {
	case NormalizeAll, normalizeUnset:
		return true
	case NormalizeSubset:
		for _, candidate := range n.names {
			if SameName(candidate, name) {
				return true
			}
		}
	}
	return false
}

func (n NormalizeX) String() string {
	switch n.mode {
	case NormalizeNone:
		return "none"
	case NormalizeSubset:
		return "subset(" + strings.Join(n.names, ",") + ")"
	default:
		return "all"
	}
}

// MarshalJSON writes a boolean for all/none and a list for a subset
func (n NormalizeX) MarshalJSON() ([]byte, error) {
	if n.mode == NormalizeSubset {
		return json.Marshal(n.names)
	}
	return json.Marshal(n.mode != NormalizeNone)
}

// UnmarshalJSON accepts true/false, ["a","b"] or {"a": ..., "b": ...}
func (n *NormalizeX) UnmarshalJSON(data []byte) error {
	if strings.TrimSpace(string(data)) == "null" {
		return nil
	}
	var flag bool
	if err := json.Unmarshal(data, &flag); err == nil {
		*n = fromFlag(flag)
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*n = NormalizeColumns(list...)
		return nil
	}
	keys, err := orderedJSONKeys(data)
	if err != nil {
		return fmt.Errorf("normalize_x must be a boolean, a list of names or a mapping: %w", err)
	}
	*n = NormalizeColumns(keys...)
	return nil
}

// MarshalYAML mirrors MarshalJSON
func (n NormalizeX) MarshalYAML() (interface{}, error) {
	if n.mode == NormalizeSubset {
		return n.names, nil
	}
	return n.mode != NormalizeNone, nil
}

// UnmarshalYAML accepts a scalar boolean, a sequence or a mapping
func (n *NormalizeX) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			return nil
		}
		var flag bool
		if err := node.Decode(&flag); err != nil {
			return fmt.Errorf("normalize_x: %w", err)
		}
		*n = fromFlag(flag)
	case yaml.SequenceNode:
		var list []string
		if err := node.Decode(&list); err != nil {
			return fmt.Errorf("normalize_x: %w", err)
		}
		*n = NormalizeColumns(list...)
	case yaml.MappingNode:
		keys := make([]string, 0, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			keys = append(keys, node.Content[i].Value)
		}
		*n = NormalizeColumns(keys...)
	default:
		return fmt.Errorf("normalize_x: unsupported yaml node at line %d", node.Line)
	}
	return nil
}

func fromFlag(flag bool) NormalizeX {
	if flag {
		return NormalizeAllColumns()
	}
	return NormalizeNoColumns()
}

// orderedJSONKeys returns the keys of a JSON object in document order.
// Duplicate keys are kept so that Options.Validate can reject them.
func orderedJSONKeys(data []byte) ([]string, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	dec := json.NewDecoder(strings.NewReader(string(data)))
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(raw))
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v", tok)
		}
		keys = append(keys, key)
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil, err
		}
	}
	return keys, nil
}
