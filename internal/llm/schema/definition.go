// Package schema is the static catalog of JSON Schemas used to constrain
// model responses, together with the minimal validator applied to structured
// replies. The Definition type covers the JSON Schema subset the catalog
// needs; it marshals to standard JSON Schema so it can be sent to the
// provider as a response_format payload unchanged.
package schema

import "encoding/json"

// DataType enumerates the JSON Schema primitive types used by the catalog.
type DataType string

const (
	TypeObject  DataType = "object"
	TypeArray   DataType = "array"
	TypeString  DataType = "string"
	TypeNumber  DataType = "number"
	TypeInteger DataType = "integer"
	TypeBoolean DataType = "boolean"
)

// Definition describes the expected shape of a JSON value. Nil pointer
// constraint fields mean "unconstrained".
type Definition struct {
	Type        DataType               `json:"type"`
	Description string                 `json:"description,omitempty"`
	Properties  map[string]*Definition `json:"properties,omitempty"`
	Required    []string               `json:"required,omitempty"`
	Items       *Definition            `json:"items,omitempty"`
	Enum        []string               `json:"enum,omitempty"`

	MinLength *int     `json:"minLength,omitempty"`
	MaxLength *int     `json:"maxLength,omitempty"`
	Minimum   *float64 `json:"minimum,omitempty"`
	Maximum   *float64 `json:"maximum,omitempty"`
	MinItems  *int     `json:"minItems,omitempty"`
	MaxItems  *int     `json:"maxItems,omitempty"`

	// AdditionalProperties, when set to false, rejects unknown object keys.
	// Strict structured-output modes require it to be explicit.
	AdditionalProperties *bool `json:"additionalProperties,omitempty"`
}

// MarshalJSON renders the definition as standard JSON Schema. Having the
// pointer type satisfy json.Marshaler lets the gateway hand a *Definition to
// the provider SDK's response_format field unchanged.
func (d *Definition) MarshalJSON() ([]byte, error) {
	type plain Definition
	return json.Marshal((*plain)(d))
}

// ResponseFormat wraps a schema into the structured-response envelope the
// gateway sends to the provider. Strict enables post-hoc validation of the
// returned payload against the schema.
type ResponseFormat struct {
	Name   string
	Strict bool
	Schema *Definition
}

// NewResponseFormat wraps a JSON Schema into the gateway's structured-response
// envelope under the given name.
func NewResponseFormat(name string, strict bool, def *Definition) *ResponseFormat {
	return &ResponseFormat{Name: name, Strict: strict, Schema: def}
}

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }
func boolPtr(v bool) *bool        { return &v }
