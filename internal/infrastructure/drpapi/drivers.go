package drpapi

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// Driver is a driver record within the active organization.
type Driver struct {
	ID             string `json:"id"`
	Username       string `json:"username"`
	Phone          string `json:"phone"`
	LicenseNumber  string `json:"licenseNumber"`
	LicenseState   string `json:"licenseState"`
	Status         string `json:"status"`
	DriverType     string `json:"driverType"`
	Timezone       string `json:"timezone"`
	HireDate       string `json:"hireDate"`
	OrganizationID string `json:"organizationId"`
}

// DriverPage is the paginated driver list response.
type DriverPage struct {
	Data            []Driver `json:"data"`
	CurrentPage     int      `json:"currentPage"`
	TotalPages      int      `json:"totalPages"`
	TotalCount      int      `json:"totalCount"`
	PageSize        int      `json:"pageSize"`
	HasPreviousPage bool     `json:"hasPreviousPage"`
	HasNextPage     bool     `json:"hasNextPage"`
}

// DriverListParams narrows the paginated driver list.
type DriverListParams struct {
	Page     int
	PageSize int
	Search   string
}

// ListDrivers returns one page of drivers for the active organization.
func (c *Client) ListDrivers(ctx context.Context, params DriverListParams) (*DriverPage, error) {
	query := url.Values{}
	if params.Page > 0 {
		query.Set("pageNumber", strconv.Itoa(params.Page))
	}
	if params.PageSize > 0 {
		query.Set("pageSize", strconv.Itoa(params.PageSize))
	}
	if params.Search != "" {
		query.Set("search", params.Search)
	}

	var page DriverPage
	if err := c.do(ctx, http.MethodGet, "api/drivers/list-driver-pagination", query, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}
