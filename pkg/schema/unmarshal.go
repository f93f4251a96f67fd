package schema

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Sentinel spellings accepted for Target in documents.
const (
	targetAllToken     = "ALL"
	targetSectionToken = "SECTION"
)

// UnmarshalJSON accepts "ALL", "SECTION", or an array of tokens.
func (t *Target) UnmarshalJSON(data []byte) error {
	var sentinel string
	if err := json.Unmarshal(data, &sentinel); err == nil {
		return t.fromSentinel(sentinel)
	}

	var tokens []string
	if err := json.Unmarshal(data, &tokens); err != nil {
		return fmt.Errorf("schema: target must be %q, %q, or a string list: %w", targetAllToken, targetSectionToken, err)
	}
	*t = Target{Fields: tokens}
	return nil
}

// MarshalJSON writes the sentinel string or the token list back out.
func (t Target) MarshalJSON() ([]byte, error) {
	switch {
	case t.All:
		return json.Marshal(targetAllToken)
	case t.Section:
		return json.Marshal(targetSectionToken)
	default:
		return json.Marshal(t.Fields)
	}
}

// UnmarshalYAML mirrors the JSON shape for YAML documents.
func (t *Target) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var sentinel string
		if err := node.Decode(&sentinel); err != nil {
			return err
		}
		return t.fromSentinel(sentinel)
	case yaml.SequenceNode:
		var tokens []string
		if err := node.Decode(&tokens); err != nil {
			return err
		}
		*t = Target{Fields: tokens}
		return nil
	default:
		return fmt.Errorf("schema: target must be %q, %q, or a string list", targetAllToken, targetSectionToken)
	}
}

func (t *Target) fromSentinel(raw string) error {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case targetAllToken:
		*t = Target{All: true}
	case targetSectionToken:
		*t = Target{Section: true}
	default:
		return fmt.Errorf("schema: unknown target sentinel %q", raw)
	}
	return nil
}

// UnmarshalJSON accepts a single custom-validator reference or a list.
func (c *CustomRefs) UnmarshalJSON(data []byte) error {
	var many []CustomRef
	if err := json.Unmarshal(data, &many); err == nil {
		*c = many
		return nil
	}

	var one CustomRef
	if err := json.Unmarshal(data, &one); err != nil {
		return fmt.Errorf("schema: custom must be a validator reference or a list: %w", err)
	}
	*c = CustomRefs{one}
	return nil
}

// UnmarshalYAML mirrors the JSON shape for YAML documents.
func (c *CustomRefs) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.SequenceNode:
		var many []CustomRef
		if err := node.Decode(&many); err != nil {
			return err
		}
		*c = many
		return nil
	case yaml.MappingNode:
		var one CustomRef
		if err := node.Decode(&one); err != nil {
			return err
		}
		*c = CustomRefs{one}
		return nil
	default:
		return fmt.Errorf("schema: custom must be a validator reference or a list")
	}
}

// UnmarshalJSON accepts a bare boolean (isDisable: true) or the structured
// form with always/when/logic/conditions.
func (d *Disable) UnmarshalJSON(data []byte) error {
	var flag bool
	if err := json.Unmarshal(data, &flag); err == nil {
		*d = Disable{Always: flag}
		return nil
	}

	type alias Disable
	var structured alias
	if err := json.Unmarshal(data, &structured); err != nil {
		return fmt.Errorf("schema: disable must be a boolean or an object: %w", err)
	}
	*d = Disable(structured)
	return nil
}

// UnmarshalYAML mirrors the JSON shape for YAML documents.
func (d *Disable) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		var flag bool
		if err := node.Decode(&flag); err != nil {
			return fmt.Errorf("schema: disable must be a boolean or an object: %w", err)
		}
		*d = Disable{Always: flag}
		return nil
	}

	type alias Disable
	var structured alias
	if err := node.Decode(&structured); err != nil {
		return err
	}
	*d = Disable(structured)
	return nil
}
