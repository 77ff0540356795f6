package model

import "time"

// EnrichedProfile is the final output of an ingestion: the canonical profile
// plus company details for each distinct company URL referenced in its
// experience history. Companies is positionally aligned with CompanyURLs; a
// nil entry marks a company whose fetch failed or was skipped.
type EnrichedProfile struct {
	Profile     *CanonicalProfile   `json:"profile"`
	CompanyURLs []string            `json:"company_urls"`
	Companies   []*CanonicalCompany `json:"companies"`
	CreatedAt   time.Time           `json:"created_at"`
}

// CompanyCount returns the number of companies that were actually resolved.
// Always <= len(CompanyURLs).
func (e *EnrichedProfile) CompanyCount() int {
	n := 0
	for _, c := range e.Companies {
		if c != nil {
			n++
		}
	}
	return n
}
