package model

import "encoding/json"

// UnknownCompanyName is the sentinel name used when the provider returns an
// empty payload for a company lookup.
const UnknownCompanyName = "Unknown Company"

// CanonicalCompany is the provider-agnostic representation of a LinkedIn
// company page. Name is the only essential field.
type CanonicalCompany struct {
	CompanyID     string   `json:"company_id,omitempty"`
	Name          string   `json:"name"`
	Description   string   `json:"description,omitempty"`
	Website       string   `json:"website,omitempty"`
	LinkedInURL   string   `json:"linkedin_url,omitempty"`
	Industries    []string `json:"industries"`
	EmployeeCount int      `json:"employee_count,omitempty"`
	FollowerCount int      `json:"follower_count,omitempty"`
	FoundedYear   *int     `json:"founded_year,omitempty"`

	HQCity    string `json:"hq_city,omitempty"`
	HQRegion  string `json:"hq_region,omitempty"`
	HQCountry string `json:"hq_country,omitempty"`

	// Never nil: absent provider input normalizes to an empty list.
	Locations           []Location          `json:"locations"`
	AffiliatedCompanies []AffiliatedCompany `json:"affiliated_companies"`

	// FundingInfo is only present when the provider supplied a non-empty
	// funding object.
	FundingInfo *FundingInfo `json:"funding_info,omitempty"`

	RawData json.RawMessage `json:"raw_data,omitempty"`
}

// IsUnknown reports whether the company is the empty-lookup sentinel.
func (c *CanonicalCompany) IsUnknown() bool {
	return c.Name == UnknownCompanyName && c.CompanyID == ""
}

// Location is one office location of a company.
type Location struct {
	City           string `json:"city,omitempty"`
	Region         string `json:"region,omitempty"`
	Country        string `json:"country,omitempty"`
	IsHeadquarters bool   `json:"is_headquarters,omitempty"`
}

// FundingInfo summarizes a company's funding history.
type FundingInfo struct {
	NumRounds       int    `json:"num_rounds,omitempty"`
	LastRoundType   string `json:"last_round_type,omitempty"`
	LastRoundDate   string `json:"last_round_date,omitempty"`
	LastRoundAmount string `json:"last_round_amount,omitempty"`
	CrunchbaseURL   string `json:"crunchbase_url,omitempty"`
}

// AffiliatedCompany is a related company referenced on a company page.
type AffiliatedCompany struct {
	Name        string `json:"name"`
	LinkedInURL string `json:"linkedin_url,omitempty"`
	Industry    string `json:"industry,omitempty"`
	Location    string `json:"location,omitempty"`
}
