// Package web provides HTTP request and response types for the connections API.
package web

import (
	"github.com/dukex/operion-connections/pkg/listquery"
	"github.com/dukex/operion-connections/pkg/models"
)

// ErrorResponse represents a standardized API error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// ListResponse is the filtered and sorted projection of a list with the toolbar that produced it.
type ListResponse[T any] struct {
	Items        []T                     `json:"items"`
	ResultsCount int                     `json:"results_count"`
	Toolbar      listquery.ToolbarConfig `json:"toolbar"`
}

// CreateDraftRequest represents the request body for starting a new connection draft.
type CreateDraftRequest struct {
	ConnectorID string `json:"connector_id" validate:"required"`
}

// UpdateDraftRequest represents the request body for editing a draft.
// All fields are optional to support partial updates.
type UpdateDraftRequest struct {
	Name                 *string           `json:"name,omitempty"                  validate:"omitempty,min=1"`
	Description          *string           `json:"description,omitempty"`
	Tags                 *[]string         `json:"tags,omitempty"                  validate:"omitempty,dive,required"`
	ConfiguredProperties map[string]string `json:"configured_properties,omitempty"`
}

// AcceptedResponse acknowledges an operation that completes in the background.
type AcceptedResponse struct {
	Status string `json:"status"`
}

// RegisterCredentialsRequest describes the credential provider of a connector.
type RegisterCredentialsRequest struct {
	Type             string `json:"type"                        validate:"required"`
	Label            string `json:"label,omitempty"`
	Icon             string `json:"icon,omitempty"`
	Description      string `json:"description,omitempty"`
	AuthorizationURL string `json:"authorization_url,omitempty" validate:"omitempty,url"`
	Configured       bool   `json:"configured"`
}

// CredentialsCallbackResponse names the connector a redeemed acquisition state belongs to.
type CredentialsCallbackResponse struct {
	ConnectorID string            `json:"connector_id"`
	State       string            `json:"state"`
	Connector   *models.Connector `json:"connector"`
}
