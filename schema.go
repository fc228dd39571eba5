package caseflow

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const snapshotSchemaURL = "https://caseflow.meikuraledutech.dev/schemas/graph.json"

const snapshotSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["nodes", "edges"],
  "properties": {
    "nodes": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["id", "kind", "position"],
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "kind": {"type": "string", "enum": ["setup", "action"]},
          "label": {"type": "string"},
          "position": {
            "type": "object",
            "required": ["x", "y"],
            "properties": {
              "x": {"type": "number"},
              "y": {"type": "number"}
            }
          }
        }
      }
    },
    "edges": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "source", "target"],
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "source": {"type": "string", "minLength": 1},
          "target": {"type": "string", "minLength": 1},
          "branch": {"type": "boolean"}
        }
      }
    }
  }
}`

// SnapshotValidator checks raw snapshot documents before they are decoded
// into a Graph. It is safe for concurrent use.
type SnapshotValidator struct {
	schema *jsonschema.Schema
}

// NewSnapshotValidator compiles the snapshot schema.
func NewSnapshotValidator() (*SnapshotValidator, error) {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(snapshotSchemaJSON))
	if err != nil {
		return nil, fmt.Errorf("caseflow: unmarshal snapshot schema: %w", err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(snapshotSchemaURL, doc); err != nil {
		return nil, fmt.Errorf("caseflow: add snapshot schema: %w", err)
	}
	sch, err := c.Compile(snapshotSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("caseflow: compile snapshot schema: %w", err)
	}
	return &SnapshotValidator{schema: sch}, nil
}

// Validate checks body against the snapshot schema. Violations are wrapped
// in ErrInvalidGraph.
func (v *SnapshotValidator) Validate(body []byte) error {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidGraph, err)
	}
	if err := v.schema.Validate(doc); err != nil {
		var verr *jsonschema.ValidationError
		if errors.As(err, &verr) {
			return fmt.Errorf("%w: %s", ErrInvalidGraph, strings.Join(violations(verr), "; "))
		}
		return fmt.Errorf("%w: %v", ErrInvalidGraph, err)
	}
	return nil
}

func violations(verr *jsonschema.ValidationError) []string {
	if len(verr.Causes) == 0 {
		return []string{"/" + strings.Join(verr.InstanceLocation, "/") + ": " + verr.Error()}
	}
	var out []string
	for _, c := range verr.Causes {
		out = append(out, violations(c)...)
	}
	return out
}
