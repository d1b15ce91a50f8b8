package entity

// Client represents a billable client as served by the admin API
type Client struct {
	ID          string `json:"_id"`
	ClientID    string `json:"client_id"`
	ClientName  string `json:"clientName"`
	CompanyName string `json:"companyName"`
	BrandName   string `json:"brandName"`
}

// DisplayName returns the label used in client selection lists
func (c Client) DisplayName() string {
	if c.BrandName != "" {
		return c.BrandName
	}
	return c.ClientName
}
