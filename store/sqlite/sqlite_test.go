package sqlite_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/loan-projection/catalog"
	"github.com/warp/loan-projection/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func seeded(t *testing.T) *sqlite.Store {
	store := newTestStore(t)
	ds, err := catalog.Embedded("default")
	require.NoError(t, err)
	require.NoError(t, catalog.Seed(context.Background(), store, ds))
	return store
}

// =============================================================================
// COLLEGES
// =============================================================================

func TestStore_CollegeRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	err := store.SaveCollege(ctx, catalog.College{
		Name:              "  Example   State University ",
		State:             "or",
		InStateTuition:    decimal.RequireFromString("12345.67"),
		OutOfStateTuition: decimal.RequireFromString("38000"),
	})
	require.NoError(t, err)

	// Lookup is case- and whitespace-insensitive
	c, err := store.GetCollege(ctx, "example state university")
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, "Example   State University", c.Name)
	assert.Equal(t, "OR", c.State)
	assert.True(t, c.InStateTuition.Equal(decimal.RequireFromString("12345.67")))

	missing, err := store.GetCollege(ctx, "Nowhere College")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestStore_CollegeUpsert(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	c := catalog.College{Name: "Upsert U", State: "TX", InStateTuition: decimal.NewFromInt(10000), OutOfStateTuition: decimal.NewFromInt(20000)}
	require.NoError(t, store.SaveCollege(ctx, c))

	c.InStateTuition = decimal.NewFromInt(11000)
	require.NoError(t, store.SaveCollege(ctx, c))

	got, err := store.GetCollege(ctx, "Upsert U")
	require.NoError(t, err)
	assert.True(t, got.InStateTuition.Equal(decimal.NewFromInt(11000)))

	counts, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, counts.Colleges)
}

func TestStore_SaveCollegeRejectsInvalid(t *testing.T) {
	store := newTestStore(t)

	err := store.SaveCollege(context.Background(), catalog.College{Name: "Bad", State: "ZZ", InStateTuition: decimal.NewFromInt(1), OutOfStateTuition: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, catalog.ErrInvalidRecord)
}

func TestStore_SearchColleges(t *testing.T) {
	store := seeded(t)
	ctx := context.Background()

	texas, err := store.SearchColleges(ctx, catalog.Filter{State: "tx"})
	require.NoError(t, err)
	assert.Len(t, texas, 3)

	private := true
	privateTX, err := store.SearchColleges(ctx, catalog.Filter{State: "TX", Private: &private})
	require.NoError(t, err)
	require.Len(t, privateTX, 1)
	assert.Equal(t, "Rice University", privateTX[0].Name)

	byName, err := store.SearchColleges(ctx, catalog.Filter{Query: "University of California"})
	require.NoError(t, err)
	assert.Len(t, byName, 2)

	limited, err := store.SearchColleges(ctx, catalog.Filter{Limit: 5})
	require.NoError(t, err)
	assert.Len(t, limited, 5)

	// LIKE wildcards in the query are literal
	none, err := store.SearchColleges(ctx, catalog.Filter{Query: "%"})
	require.NoError(t, err)
	assert.Empty(t, none)
}

// =============================================================================
// SALARIES AND TAXES
// =============================================================================

func TestStore_Salaries(t *testing.T) {
	store := seeded(t)
	ctx := context.Background()

	ca, err := store.GetSalary(ctx, "computer science", "ca")
	require.NoError(t, err)
	require.NotNil(t, ca)
	assert.Equal(t, "CA", ca.State)
	assert.True(t, ca.AverageStartingSalary.Equal(decimal.NewFromInt(94400)))

	national, err := store.GetSalary(ctx, "Computer Science", "")
	require.NoError(t, err)
	require.NotNil(t, national)
	assert.True(t, national.IsNational())
	assert.True(t, national.AverageStartingSalary.Equal(decimal.NewFromInt(80000)))

	// No Vermont record: helper falls back to national
	vt, err := catalog.LookupSalary(ctx, store, "Computer Science", "VT")
	require.NoError(t, err)
	require.NotNil(t, vt)
	assert.True(t, vt.IsNational())

	majors, err := store.ListMajors(ctx)
	require.NoError(t, err)
	assert.Len(t, majors, 15)
	assert.Contains(t, majors, "Computer Science")
	assert.IsIncreasing(t, majors)
}

func TestStore_StateTaxes(t *testing.T) {
	store := seeded(t)
	ctx := context.Background()

	all, err := store.ListStateTaxes(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 51)

	tx, err := store.GetStateTax(ctx, "TX")
	require.NoError(t, err)
	require.NotNil(t, tx)
	assert.True(t, tx.Rate.IsZero())
	assert.Equal(t, "Texas", tx.Name)

	ca, err := store.GetStateTax(ctx, "ca")
	require.NoError(t, err)
	assert.True(t, ca.Rate.Equal(decimal.RequireFromString("0.093")))
}

func TestStore_Reset(t *testing.T) {
	store := seeded(t)
	ctx := context.Background()

	counts, err := store.Count(ctx)
	require.NoError(t, err)
	assert.False(t, counts.IsEmpty())

	require.NoError(t, store.Reset(ctx))

	counts, err = store.Count(ctx)
	require.NoError(t, err)
	assert.True(t, counts.IsEmpty())
}
