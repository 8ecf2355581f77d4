package llms

import (
	"encoding/json"
	"fmt"
	"reflect"
	"slices"

	"github.com/invopop/jsonschema"
)

// Tool is a function exposed to the model. The model decides when to invoke
// it; Execute runs the registered callback with the model-provided arguments.
type Tool struct {
	Function ToolFunction

	execute func(arguments string) (string, error)
}

// ToolFunction describes a tool to the model.
type ToolFunction struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  ParameterSchema `json:"parameters"`
}

// ParameterSchema is the JSON-schema object describing a tool's parameters.
type ParameterSchema struct {
	Type       string                   `json:"type"`
	Properties map[string]ParameterBase `json:"properties,omitempty"`
	Required   []string                 `json:"required,omitempty"`
}

// ParameterBase describes a single tool parameter.
type ParameterBase struct {
	Type        string   `json:"type"`
	Description string   `json:"description,omitempty"`
	Enum        []string `json:"enum,omitempty"`
}

// NewTool creates a tool whose arguments are unmarshalled into T before the
// callback runs.
//
// When parameters is nil the schema is reflected from T instead; fields
// without an omitempty json tag are marked required.
func NewTool[T any](name string, description string, parameters map[string]ParameterBase, execute func(T) (string, error)) Tool {
	schema := ParameterSchema{Type: "object", Properties: parameters}
	if parameters == nil {
		schema = reflectParameters[T]()
	} else {
		required := make([]string, 0, len(parameters))
		for parameter := range parameters {
			required = append(required, parameter)
		}
		slices.Sort(required)
		schema.Required = required
	}

	return Tool{
		Function: ToolFunction{
			Name:        name,
			Description: description,
			Parameters:  schema,
		},
		execute: func(arguments string) (string, error) {
			var params T
			if arguments != "" {
				if err := json.Unmarshal([]byte(arguments), &params); err != nil {
					return "", fmt.Errorf("failed to unmarshal arguments for tool %q: %w", name, err)
				}
			}
			return execute(params)
		},
	}
}

// Execute runs the tool's callback with the raw arguments payload.
func (t Tool) Execute(arguments string) (string, error) {
	if t.execute == nil {
		return "", fmt.Errorf("tool %q has no callback", t.Function.Name)
	}
	return t.execute(arguments)
}

func reflectParameters[T any]() ParameterSchema {
	var params T

	reflector := jsonschema.Reflector{DoNotReference: true}
	var schema *jsonschema.Schema
	if reflect.TypeOf(params) != nil && reflect.TypeOf(params).Kind() == reflect.Ptr {
		schema = reflector.ReflectFromType(reflect.TypeOf(params).Elem())
	} else {
		schema = reflector.Reflect(params)
	}

	parameters := ParameterSchema{Type: "object", Properties: map[string]ParameterBase{}}
	if schema == nil {
		return parameters
	}

	if schema.Properties != nil {
		for pair := schema.Properties.Oldest(); pair != nil; pair = pair.Next() {
			parameters.Properties[pair.Key] = ParameterBase{
				Type:        pair.Value.Type,
				Description: pair.Value.Description,
			}
		}
	}
	parameters.Required = append(parameters.Required, schema.Required...)

	return parameters
}
