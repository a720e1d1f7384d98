package template

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// PhaseList preserves the declaration order of the core_phases object,
// which a plain map[string]Phase would lose. Determinism of phase order
// (spec.md §8) depends on this.
type PhaseList []PhaseEntry

// Names returns the phase keys in declaration order.
func (p PhaseList) Names() []string {
	names := make([]string, len(p))
	for i, entry := range p {
		names[i] = entry.Key
	}
	return names
}

// Get returns the phase registered under key, if any.
func (p PhaseList) Get(key string) (Phase, bool) {
	for _, entry := range p {
		if entry.Key == key {
			return entry.Phase, true
		}
	}
	return Phase{}, false
}

func (p *PhaseList) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	delim, ok := tok.(json.Delim)
	if !ok || delim != '{' {
		return fmt.Errorf("core_phases: expected a JSON object")
	}

	result := PhaseList{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("core_phases: expected string key")
		}
		var phase Phase
		if err := dec.Decode(&phase); err != nil {
			return fmt.Errorf("core_phases.%s: %w", key, err)
		}
		result = append(result, PhaseEntry{Key: key, Phase: phase})
	}
	if _, err := dec.Token(); err != nil { // closing '}'
		return err
	}
	*p = result
	return nil
}

func (p PhaseList) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, entry := range p {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyBytes, err := json.Marshal(entry.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')
		valBytes, err := json.Marshal(entry.Phase)
		if err != nil {
			return nil, err
		}
		buf.Write(valBytes)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (p *PhaseList) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("core_phases: expected a YAML mapping")
	}
	result := PhaseList{}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		var phase Phase
		if err := node.Content[i+1].Decode(&phase); err != nil {
			return fmt.Errorf("core_phases.%s: %w", key, err)
		}
		result = append(result, PhaseEntry{Key: key, Phase: phase})
	}
	*p = result
	return nil
}
