// Package adapter transforms raw Cassidy documents into the canonical data
// model through a declarative field-mapping table.
package adapter

import "gopkg.in/yaml.v3"

// mappingDoc is the declarative mapping of canonical field -> provider field,
// grouped by entity. It started life as an external JSON config; keeping it
// as an embedded document preserves the single place to adjust when the
// provider renames a field.
const mappingDoc = `
profile:
  profile_id: profile_id
  full_name: full_name
  linkedin_url: linkedin_url
  headline: headline
  about: about
  current_company: current_company
  current_title: current_job_title
  location: location
  follower_count: follower_count
  connection_count: connection_count
experience:
  title: title
  company_name: company
  company_url: company_linkedin_url
  location: location
  start_year: start_year
  start_month: start_month
  end_year: end_year
  end_month: end_month
  is_current: is_current
  description: description
education:
  school: school
  degree: degree
  field_of_study: field_of_study
  start_year: start_year
  end_year: end_year
  date_range: date_range
company:
  company_id: company_id
  name: company_name
  description: description
  website: website
  linkedin_url: linkedin_url
  industries: industries
  employee_count: employee_count
  follower_count: follower_count
  founded_year: founded_year
  hq_city: hq_city
  hq_region: hq_region
  hq_country: hq_country
`

// fieldMapping holds the per-entity mapping tables, loaded once at init.
type fieldMapping struct {
	Profile    map[string]string `yaml:"profile"`
	Experience map[string]string `yaml:"experience"`
	Education  map[string]string `yaml:"education"`
	Company    map[string]string `yaml:"company"`
}

var mapping fieldMapping

func init() {
	if err := yaml.Unmarshal([]byte(mappingDoc), &mapping); err != nil {
		panic("adapter: invalid field mapping: " + err.Error())
	}
}

// essentialProfileFields are the canonical fields a profile document must
// carry, non-blank, to be usable.
var essentialProfileFields = []string{"profile_id", "full_name", "linkedin_url"}

// essentialCompanyFields is the required set for a company document.
var essentialCompanyFields = []string{"name"}
