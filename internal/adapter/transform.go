package adapter

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/linkedin-ingest/internal/model"
)

// Transform converts a raw Cassidy profile document into a CanonicalProfile.
// Essential fields are validated first; an *IncompleteDataError lists every
// missing or blank one. The untransformed payload is attached as RawData.
func Transform(raw json.RawMessage) (*model.CanonicalProfile, error) {
	doc, err := decodeDoc(raw)
	if err != nil {
		return nil, eris.Wrap(err, "adapter: decode profile document")
	}

	if missing := missingEssentials(doc, mapping.Profile, essentialProfileFields); len(missing) > 0 {
		return nil, &IncompleteDataError{Entity: "profile", MissingFields: missing}
	}

	m := mapping.Profile
	p := &model.CanonicalProfile{
		ProfileID:       stringField(doc, m["profile_id"]),
		FullName:        stringField(doc, m["full_name"]),
		LinkedInURL:     stringField(doc, m["linkedin_url"]),
		Headline:        stringField(doc, m["headline"]),
		About:           stringField(doc, m["about"]),
		CurrentCompany:  stringField(doc, m["current_company"]),
		CurrentTitle:    stringField(doc, m["current_title"]),
		Location:        stringField(doc, m["location"]),
		FollowerCount:   intField(doc, m["follower_count"]),
		ConnectionCount: intField(doc, m["connection_count"]),
		Experiences:     transformExperiences(doc["experiences"]),
		Educations:      transformEducations(doc["educations"]),
		RawData:         raw,
	}
	return p, nil
}

func transformExperiences(v any) []model.Experience {
	items, _ := v.([]any)
	out := make([]model.Experience, 0, len(items))
	m := mapping.Experience
	for _, item := range items {
		doc, ok := item.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, model.Experience{
			Title:       stringField(doc, m["title"]),
			CompanyName: stringField(doc, m["company_name"]),
			CompanyURL:  stringField(doc, m["company_url"]),
			Location:    stringField(doc, m["location"]),
			StartYear:   optionalInt(doc[m["start_year"]]),
			StartMonth:  optionalInt(doc[m["start_month"]]),
			EndYear:     optionalInt(doc[m["end_year"]]),
			EndMonth:    optionalInt(doc[m["end_month"]]),
			IsCurrent:   boolField(doc, m["is_current"]),
			Description: stringField(doc, m["description"]),
		})
	}
	return out
}

func transformEducations(v any) []model.Education {
	items, _ := v.([]any)
	out := make([]model.Education, 0, len(items))
	m := mapping.Education
	for _, item := range items {
		doc, ok := item.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, model.Education{
			School:       stringField(doc, m["school"]),
			Degree:       stringField(doc, m["degree"]),
			FieldOfStudy: stringField(doc, m["field_of_study"]),
			StartYear:    optionalInt(doc[m["start_year"]]),
			EndYear:      optionalInt(doc[m["end_year"]]),
			DateRange:    stringField(doc, m["date_range"]),
		})
	}
	return out
}

// decodeDoc parses a raw document into a generic map.
func decodeDoc(raw json.RawMessage) (map[string]any, error) {
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// missingEssentials returns the canonical names of every essential field that
// is absent or blank in the document, in declaration order.
func missingEssentials(doc map[string]any, m map[string]string, essentials []string) []string {
	var missing []string
	for _, canonical := range essentials {
		if strings.TrimSpace(stringField(doc, m[canonical])) == "" {
			missing = append(missing, canonical)
		}
	}
	return missing
}

func stringField(doc map[string]any, key string) string {
	if key == "" {
		return ""
	}
	switch v := doc[key].(type) {
	case string:
		return v
	case float64:
		// Numeric ids arrive as JSON numbers.
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

func intField(doc map[string]any, key string) int {
	if v := optionalInt(doc[key]); v != nil {
		return *v
	}
	return 0
}

func boolField(doc map[string]any, key string) bool {
	switch v := doc[key].(type) {
	case bool:
		return v
	case string:
		b, err := strconv.ParseBool(v)
		return err == nil && b
	default:
		return false
	}
}

// ongoingMarkers are the year strings the provider uses for a position that
// has not ended.
var ongoingMarkers = []string{"present", "current", "now"}

// optionalInt coerces a year/month value to an optional integer. Ongoing
// markers ("Present", "current", "now") and unparseable strings both become
// absent, silently; numeric values pass through unchanged.
func optionalInt(v any) *int {
	switch val := v.(type) {
	case float64:
		n := int(val)
		return &n
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return nil
		}
		for _, marker := range ongoingMarkers {
			if strings.EqualFold(s, marker) {
				return nil
			}
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil
		}
		return &n
	default:
		return nil
	}
}
