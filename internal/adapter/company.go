package adapter

import (
	"encoding/json"

	"github.com/rotisserie/eris"

	"github.com/sells-group/linkedin-ingest/internal/model"
)

// TransformCompany converts a raw Cassidy company document into a
// CanonicalCompany. Company name is the only essential field. Funding info is
// only constructed when the raw funding object is non-empty; list fields
// default to empty, never nil.
func TransformCompany(raw json.RawMessage) (*model.CanonicalCompany, error) {
	doc, err := decodeDoc(raw)
	if err != nil {
		return nil, eris.Wrap(err, "adapter: decode company document")
	}

	if missing := missingEssentials(doc, mapping.Company, essentialCompanyFields); len(missing) > 0 {
		return nil, &IncompleteDataError{Entity: "company", MissingFields: missing}
	}

	m := mapping.Company
	c := &model.CanonicalCompany{
		CompanyID:           stringField(doc, m["company_id"]),
		Name:                stringField(doc, m["name"]),
		Description:         stringField(doc, m["description"]),
		Website:             stringField(doc, m["website"]),
		LinkedInURL:         stringField(doc, m["linkedin_url"]),
		Industries:          stringList(doc[m["industries"]]),
		EmployeeCount:       intField(doc, m["employee_count"]),
		FollowerCount:       intField(doc, m["follower_count"]),
		FoundedYear:         optionalInt(doc[m["founded_year"]]),
		HQCity:              stringField(doc, m["hq_city"]),
		HQRegion:            stringField(doc, m["hq_region"]),
		HQCountry:           stringField(doc, m["hq_country"]),
		Locations:           transformLocations(doc["locations"]),
		AffiliatedCompanies: transformAffiliated(doc["affiliated_companies"]),
		FundingInfo:         transformFunding(doc["funding_info"]),
		RawData:             raw,
	}
	return c, nil
}

// transformLocations filters null entries but keeps all others. Absent or
// non-list input yields an empty list.
func transformLocations(v any) []model.Location {
	items, _ := v.([]any)
	out := make([]model.Location, 0, len(items))
	for _, item := range items {
		doc, ok := item.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, model.Location{
			City:           stringField(doc, "city"),
			Region:         stringField(doc, "region"),
			Country:        stringField(doc, "country"),
			IsHeadquarters: boolField(doc, "is_headquarters"),
		})
	}
	return out
}

func transformAffiliated(v any) []model.AffiliatedCompany {
	items, _ := v.([]any)
	out := make([]model.AffiliatedCompany, 0, len(items))
	for _, item := range items {
		doc, ok := item.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, model.AffiliatedCompany{
			Name:        stringField(doc, "name"),
			LinkedInURL: stringField(doc, "linkedin_url"),
			Industry:    stringField(doc, "industry"),
			Location:    stringField(doc, "location"),
		})
	}
	return out
}

// transformFunding returns nil unless the raw funding object is non-empty.
func transformFunding(v any) *model.FundingInfo {
	doc, ok := v.(map[string]any)
	if !ok || len(doc) == 0 {
		return nil
	}
	return &model.FundingInfo{
		NumRounds:       intField(doc, "num_rounds"),
		LastRoundType:   stringField(doc, "last_round_type"),
		LastRoundDate:   stringField(doc, "last_round_date"),
		LastRoundAmount: stringField(doc, "last_round_amount"),
		CrunchbaseURL:   stringField(doc, "crunchbase_url"),
	}
}

func stringList(v any) []string {
	switch val := v.(type) {
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		if val == "" {
			return []string{}
		}
		return []string{val}
	default:
		return []string{}
	}
}
