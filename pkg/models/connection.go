// Package models defines the domain models for connections, connectors and credentials.
package models

import (
	"maps"
	"slices"
	"time"
)

// Connection is a configured instance of a Connector with user supplied values.
type Connection struct {
	ID                   string            `json:"id"`
	Name                 string            `json:"name"                            validate:"required,min=1"`
	Description          string            `json:"description,omitempty"`
	Tags                 []string          `json:"tags,omitempty"`
	ConnectorID          string            `json:"connector_id"                    validate:"required"`
	Connector            *Connector        `json:"connector,omitempty"`
	Icon                 string            `json:"icon,omitempty"`
	ConfiguredProperties map[string]string `json:"configured_properties,omitempty"`
	CreatedAt            time.Time         `json:"created_at"`
	UpdatedAt            time.Time         `json:"updated_at"`
}

// Clone returns a deep copy of the connection, including its embedded connector.
func (c *Connection) Clone() *Connection {
	if c == nil {
		return nil
	}

	clone := *c
	clone.Tags = slices.Clone(c.Tags)
	clone.ConfiguredProperties = maps.Clone(c.ConfiguredProperties)
	clone.Connector = c.Connector.Clone()

	return &clone
}

// Redacted returns a copy safe to log or publish: connector property values are stripped and
// configured values of secret properties are dropped.
func (c *Connection) Redacted() *Connection {
	redacted := c.Clone()
	if redacted == nil {
		return nil
	}

	if redacted.Connector == nil {
		return redacted
	}

	for name, property := range redacted.Connector.Properties {
		if property != nil && property.Sensitive() {
			delete(redacted.ConfiguredProperties, name)
		}
	}

	redacted.Connector.StripPropertyValues()

	return redacted
}

// HasTags reports whether the connection carries a tag collection.
func (c *Connection) HasTags() bool {
	return c != nil && c.Tags != nil
}
