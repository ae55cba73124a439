package drpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// Organization is a tenant of the DRP platform.
type Organization struct {
	ID                  string `json:"id"`
	Name                string `json:"name"`
	Address             string `json:"address,omitempty"`
	CompanyContactName  string `json:"companyContactName,omitempty"`
	CompanyContactPhone string `json:"companyContactPhone,omitempty"`
	CompanyContactEmail string `json:"companyContactEmail,omitempty"`
	DotNumber           string `json:"dotNumber,omitempty"`
	McNumber            string `json:"mcNumber,omitempty"`
	TimeZone            string `json:"timeZone,omitempty"`
	AccountStatus       string `json:"accountStatus,omitempty"`
	MaxDriverSeats      int    `json:"maxDriverSeats,omitempty"`
}

// ListOrganizations returns all organizations visible to the caller. For
// everyone but super admins the backend scopes the list to the tenant header.
func (c *Client) ListOrganizations(ctx context.Context) ([]Organization, error) {
	var envelope Envelope
	if err := c.do(ctx, http.MethodGet, "api/organizations/list-organizations", nil, nil, &envelope); err != nil {
		return nil, err
	}

	var orgs []Organization
	if envelope.Data != nil {
		if err := json.Unmarshal(envelope.Data, &orgs); err != nil {
			return nil, fmt.Errorf("failed to parse organizations: %w", err)
		}
	}
	return orgs, nil
}

// GetOrganization returns a single organization by id.
func (c *Client) GetOrganization(ctx context.Context, id string) (*Organization, error) {
	var envelope Envelope
	if err := c.do(ctx, http.MethodGet, "api/organizations/"+url.PathEscape(id), nil, nil, &envelope); err != nil {
		return nil, err
	}
	if envelope.Data == nil {
		return nil, fmt.Errorf("organization not found: %s", id)
	}

	var org Organization
	if err := json.Unmarshal(envelope.Data, &org); err != nil {
		return nil, fmt.Errorf("failed to parse organization: %w", err)
	}
	return &org, nil
}
