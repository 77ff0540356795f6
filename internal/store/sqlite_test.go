package store

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/linkedin-ingest/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func testProfile(id string) *model.CanonicalProfile {
	year := 2021
	return &model.CanonicalProfile{
		ProfileID:   id,
		FullName:    "Jane Doe",
		LinkedInURL: "https://linkedin.com/in/janedoe",
		Headline:    "VP Engineering",
		Experiences: []model.Experience{
			{Title: "VP Engineering", CompanyName: "Acme Corp", StartYear: &year, IsCurrent: true},
		},
		Educations: []model.Education{},
		RawData:    json.RawMessage(`{"profile_id": "` + id + `"}`),
	}
}

func testCompany(id, name string) *model.CanonicalCompany {
	return &model.CanonicalCompany{
		CompanyID:           id,
		Name:                name,
		Industries:          []string{"Manufacturing"},
		Locations:           []model.Location{},
		AffiliatedCompanies: []model.AffiliatedCompany{},
		RawData:             json.RawMessage(`{"company_name": "` + name + `"}`),
	}
}

func TestSQLite_Profile_SaveAndGet(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	p := testProfile("jane-doe-123")
	require.NoError(t, st.SaveProfile(ctx, p))

	got, err := st.GetProfile(ctx, "jane-doe-123")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Jane Doe", got.FullName)
	require.Len(t, got.Experiences, 1)
	require.NotNil(t, got.Experiences[0].StartYear)
	assert.Equal(t, 2021, *got.Experiences[0].StartYear)
}

func TestSQLite_Profile_GetMissing(t *testing.T) {
	st := newTestSQLiteStore(t)

	got, err := st.GetProfile(context.Background(), "nonexistent")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSQLite_Profile_UpsertOverwrites(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	p := testProfile("jane-doe-123")
	require.NoError(t, st.SaveProfile(ctx, p))

	p.Headline = "CTO"
	require.NoError(t, st.SaveProfile(ctx, p))

	got, err := st.GetProfile(ctx, "jane-doe-123")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "CTO", got.Headline)

	profiles, err := st.ListProfiles(ctx, 10, 0)
	require.NoError(t, err)
	assert.Len(t, profiles, 1, "re-ingestion updates in place")
}

func TestSQLite_Profile_ListPagination(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	for _, id := range []string{"p1", "p2", "p3"} {
		require.NoError(t, st.SaveProfile(ctx, testProfile(id)))
	}

	page, err := st.ListProfiles(ctx, 2, 0)
	require.NoError(t, err)
	assert.Len(t, page, 2)

	page, err = st.ListProfiles(ctx, 2, 2)
	require.NoError(t, err)
	assert.Len(t, page, 1)
}

func TestSQLite_Company_SaveAndGet(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	c := testCompany("acme-1", "Acme Corp")
	require.NoError(t, st.SaveCompany(ctx, c))

	got, err := st.GetCompany(ctx, "acme-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Acme Corp", got.Name)
	assert.Equal(t, []string{"Manufacturing"}, got.Industries)
}

func TestSQLite_Company_KeyFallback(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	// No provider id: the LinkedIn URL becomes the key.
	c := testCompany("", "Acme Corp")
	c.LinkedInURL = "https://linkedin.com/company/acme"
	require.NoError(t, st.SaveCompany(ctx, c))

	got, err := st.GetCompany(ctx, "https://linkedin.com/company/acme")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Acme Corp", got.Name)

	// Neither id nor URL: the name is the key.
	c2 := testCompany("", "Initech")
	require.NoError(t, st.SaveCompany(ctx, c2))

	got, err = st.GetCompany(ctx, "Initech")
	require.NoError(t, err)
	require.NotNil(t, got)
}

func TestSQLite_Company_GetMissing(t *testing.T) {
	st := newTestSQLiteStore(t)

	got, err := st.GetCompany(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}
