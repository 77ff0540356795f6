package model

import "encoding/json"

// CanonicalProfile is the provider-agnostic representation of a LinkedIn
// profile. Essential fields (ProfileID, FullName, LinkedInURL) are validated
// at transform time; everything else is best-effort.
type CanonicalProfile struct {
	ProfileID       string `json:"profile_id"`
	FullName        string `json:"full_name"`
	LinkedInURL     string `json:"linkedin_url"`
	Headline        string `json:"headline,omitempty"`
	About           string `json:"about,omitempty"`
	CurrentCompany  string `json:"current_company,omitempty"`
	CurrentTitle    string `json:"current_title,omitempty"`
	Location        string `json:"location,omitempty"`
	FollowerCount   int    `json:"follower_count,omitempty"`
	ConnectionCount int    `json:"connection_count,omitempty"`

	// Never nil: absent provider input normalizes to an empty list.
	Experiences []Experience `json:"experiences"`
	Educations  []Education  `json:"educations"`

	// RawData preserves the original provider payload for auditability.
	RawData json.RawMessage `json:"raw_data,omitempty"`
}

// Experience is a single entry in a profile's work history. Start/end
// year and month are independently optional; a nil end with IsCurrent set
// means the position is ongoing.
type Experience struct {
	Title       string `json:"title,omitempty"`
	CompanyName string `json:"company_name,omitempty"`
	CompanyURL  string `json:"company_url,omitempty"`
	Location    string `json:"location,omitempty"`
	StartYear   *int   `json:"start_year,omitempty"`
	StartMonth  *int   `json:"start_month,omitempty"`
	EndYear     *int   `json:"end_year,omitempty"`
	EndMonth    *int   `json:"end_month,omitempty"`
	IsCurrent   bool   `json:"is_current"`
	Description string `json:"description,omitempty"`
}

// Education is a single entry in a profile's education history.
type Education struct {
	School       string `json:"school,omitempty"`
	Degree       string `json:"degree,omitempty"`
	FieldOfStudy string `json:"field_of_study,omitempty"`
	StartYear    *int   `json:"start_year,omitempty"`
	EndYear      *int   `json:"end_year,omitempty"`
	DateRange    string `json:"date_range,omitempty"`
}
