package models

// Credentials is the credential descriptor fetched for a connector.
// It is only considered present when Type is set.
type Credentials struct {
	ConnectorID      string `json:"connector_id" yaml:"connector_id"`
	Type             string `json:"type,omitempty" yaml:"type,omitempty"`
	Label            string `json:"label,omitempty" yaml:"label,omitempty"`
	Icon             string `json:"icon,omitempty" yaml:"icon,omitempty"`
	Description      string `json:"description,omitempty" yaml:"description,omitempty"`
	AuthorizationURL string `json:"authorization_url,omitempty" yaml:"authorization_url,omitempty"`
	Configured       bool   `json:"configured" yaml:"configured"`
}

// Present reports whether the credentials carry a type.
func (c *Credentials) Present() bool {
	return c != nil && c.Type != ""
}

// ValidFor reports whether the credentials were fetched for the given connector.
func (c *Credentials) ValidFor(connectorID string) bool {
	return c != nil && connectorID != "" && c.ConnectorID == connectorID
}

// AcquisitionResponse is returned when credential acquisition is started for a connector.
type AcquisitionResponse struct {
	ConnectorID string `json:"connector_id"`
	Type        string `json:"type"`
	RedirectURL string `json:"redirect_url"`
	State       string `json:"state"`
}
