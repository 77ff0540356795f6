// Package store persists canonical profiles and companies. It is the
// collaborator boundary downstream of the ingestion pipeline: finished
// entities land here, nothing in the pipeline reads them back.
package store

import (
	"context"

	"github.com/sells-group/linkedin-ingest/internal/model"
)

// Store defines the persistence interface for canonical entities. Lookups
// return (nil, nil) when the entity does not exist.
type Store interface {
	SaveProfile(ctx context.Context, p *model.CanonicalProfile) error
	GetProfile(ctx context.Context, profileID string) (*model.CanonicalProfile, error)
	ListProfiles(ctx context.Context, limit, offset int) ([]model.CanonicalProfile, error)

	SaveCompany(ctx context.Context, c *model.CanonicalCompany) error
	GetCompany(ctx context.Context, key string) (*model.CanonicalCompany, error)

	Migrate(ctx context.Context) error
	Close() error
}

// companyKey derives the storage key for a company: the provider id when
// present, else the LinkedIn URL, else the name.
func companyKey(c *model.CanonicalCompany) string {
	if c.CompanyID != "" {
		return c.CompanyID
	}
	if c.LinkedInURL != "" {
		return c.LinkedInURL
	}
	return c.Name
}
