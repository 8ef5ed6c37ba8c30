package models

import (
	"maps"
	"slices"
	"sort"
)

// Property types understood by Connector.Schema.
const (
	PropertyTypeString   = "string"
	PropertyTypeText     = "text"
	PropertyTypePassword = "password"
	PropertyTypeHidden   = "hidden"
	PropertyTypeBoolean  = "boolean"
	PropertyTypeInteger  = "integer"
	PropertyTypeNumber   = "number"
)

// Connector is a reusable definition of an external system type and its configurable properties.
type Connector struct {
	ID          string                        `json:"id" yaml:"id"`
	Name        string                        `json:"name" yaml:"name"`
	Description string                        `json:"description,omitempty" yaml:"description,omitempty"`
	Icon        string                        `json:"icon,omitempty" yaml:"icon,omitempty"`
	Properties  map[string]*ConnectorProperty `json:"properties,omitempty" yaml:"properties,omitempty"`
}

// ConnectorProperty describes one configurable property of a connector.
// Value may carry a sensitive value coming from a form and is never persisted.
type ConnectorProperty struct {
	DisplayName  string          `json:"display_name,omitempty" yaml:"display_name,omitempty"`
	Description  string          `json:"description,omitempty" yaml:"description,omitempty"`
	Type         string          `json:"type,omitempty" yaml:"type,omitempty"`
	Required     bool            `json:"required,omitempty" yaml:"required,omitempty"`
	Secret       bool            `json:"secret,omitempty" yaml:"secret,omitempty"`
	DefaultValue string          `json:"default_value,omitempty" yaml:"default_value,omitempty"`
	Enum         []PropertyValue `json:"enum,omitempty" yaml:"enum,omitempty"`
	Value        string          `json:"value,omitempty" yaml:"value,omitempty"`
}

// PropertyValue is one allowed value of an enumerated property.
type PropertyValue struct {
	Label string `json:"label" yaml:"label"`
	Value string `json:"value" yaml:"value"`
}

// Sensitive reports whether the property holds a secret.
func (p *ConnectorProperty) Sensitive() bool {
	return p != nil && (p.Secret || p.Type == PropertyTypePassword)
}

// Clone returns a deep copy of the connector.
func (c *Connector) Clone() *Connector {
	if c == nil {
		return nil
	}

	clone := *c
	if c.Properties != nil {
		clone.Properties = make(map[string]*ConnectorProperty, len(c.Properties))
		for name, property := range c.Properties {
			if property == nil {
				clone.Properties[name] = nil

				continue
			}

			p := *property
			p.Enum = slices.Clone(property.Enum)
			clone.Properties[name] = &p
		}
	}

	return &clone
}

// StripPropertyValues removes every property value so form values never leak into a save.
func (c *Connector) StripPropertyValues() {
	if c == nil {
		return
	}

	for _, property := range c.Properties {
		if property != nil {
			property.Value = ""
		}
	}
}

// PropertyNames returns the property names in lexical order.
func (c *Connector) PropertyNames() []string {
	if c == nil {
		return nil
	}

	names := slices.Collect(maps.Keys(c.Properties))
	sort.Strings(names)

	return names
}

// Schema describes the connector properties as a JSON Schema object.
func (c *Connector) Schema() *JSONSchema {
	schema := &JSONSchema{
		Type:       "object",
		Properties: map[string]*Property{},
	}

	if c == nil {
		return schema
	}

	schema.Title = c.Name
	schema.Description = c.Description

	for _, name := range c.PropertyNames() {
		descriptor := c.Properties[name]
		if descriptor == nil {
			continue
		}

		property := &Property{
			Type:        jsonType(descriptor.Type),
			Description: descriptor.Description,
		}

		if descriptor.Sensitive() {
			property.Format = PropertyTypePassword
		}

		for _, value := range descriptor.Enum {
			property.Enum = append(property.Enum, value.Value)
		}

		if descriptor.DefaultValue != "" {
			property.Default = descriptor.DefaultValue
		}

		if descriptor.Required {
			schema.Required = append(schema.Required, name)
		}

		schema.Properties[name] = property
	}

	return schema
}

func jsonType(propertyType string) string {
	switch propertyType {
	case PropertyTypeBoolean:
		return "boolean"
	case PropertyTypeInteger:
		return "integer"
	case PropertyTypeNumber:
		return "number"
	default:
		return "string"
	}
}
