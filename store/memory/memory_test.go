package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/loan-projection/catalog"
)

func TestCatalog_SeedAndLookup(t *testing.T) {
	// GIVEN: the minimal dataset
	ctx := context.Background()
	c := NewCatalog()
	ds, err := catalog.Embedded("minimal")
	require.NoError(t, err)
	require.NoError(t, catalog.Seed(ctx, c, ds))

	// WHEN/THEN: point lookups ignore case
	college, err := c.GetCollege(ctx, "university of florida")
	require.NoError(t, err)
	require.NotNil(t, college)
	assert.Equal(t, "FL", college.State)

	sal, err := c.GetSalary(ctx, "COMPUTER SCIENCE", "tx")
	require.NoError(t, err)
	require.NotNil(t, sal)
	assert.True(t, sal.AverageStartingSalary.Equal(decimal.NewFromInt(80000)))

	missing, err := c.GetSalary(ctx, "Computer Science", "FL")
	require.NoError(t, err)
	assert.Nil(t, missing)

	majors, err := c.ListMajors(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Computer Science", "Psychology"}, majors)

	taxes, err := c.ListStateTaxes(ctx)
	require.NoError(t, err)
	require.Len(t, taxes, 3)
	assert.Equal(t, "CA", taxes[0].State)
}

func TestCatalog_SearchAndLimit(t *testing.T) {
	ctx := context.Background()
	c := NewCatalog()
	ds, err := catalog.Embedded("default")
	require.NoError(t, err)
	require.NoError(t, catalog.Seed(ctx, c, ds))

	public := false
	got, err := c.SearchColleges(ctx, catalog.Filter{State: "CA", Private: &public})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "University of California, Berkeley", got[0].Name)

	got, err = c.SearchColleges(ctx, catalog.Filter{Query: "state", Limit: 2})
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestCatalog_SaveStateTaxFillsName(t *testing.T) {
	ctx := context.Background()
	c := NewCatalog()

	require.NoError(t, c.SaveStateTax(ctx, catalog.StateTax{State: "or", Rate: decimal.RequireFromString("0.0875")}))

	got, err := c.GetStateTax(ctx, "OR")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Oregon", got.Name)
}

func TestCatalog_RejectsInvalid(t *testing.T) {
	ctx := context.Background()
	c := NewCatalog()

	err := c.SaveSalary(ctx, catalog.Salary{Major: "Art", AverageStartingSalary: decimal.Zero})
	assert.ErrorIs(t, err, catalog.ErrInvalidRecord)

	err = c.SaveStateTax(ctx, catalog.StateTax{State: "CA", Rate: decimal.RequireFromString("0.6")})
	assert.ErrorIs(t, err, catalog.ErrInvalidRecord)
}

func TestCatalog_Reset(t *testing.T) {
	ctx := context.Background()
	c := NewCatalog()
	ds, err := catalog.Embedded("minimal")
	require.NoError(t, err)
	require.NoError(t, catalog.Seed(ctx, c, ds))

	require.NoError(t, c.Reset(ctx))

	college, err := c.GetCollege(ctx, "University of Florida")
	require.NoError(t, err)
	assert.Nil(t, college)
}

// =============================================================================
// CACHE
// =============================================================================

func TestCache_Expiry(t *testing.T) {
	// GIVEN: a cache with a controllable clock
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewCache()
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "short", "a", time.Minute))
	require.NoError(t, c.Set(ctx, "forever", "b", 0))

	v, ok, err := c.Get(ctx, "short")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "a", v)

	// WHEN: the TTL passes
	now = now.Add(time.Minute)

	// THEN: only the entry without TTL survives
	_, ok, _ = c.Get(ctx, "short")
	assert.False(t, ok)

	v, ok, _ = c.Get(ctx, "forever")
	assert.True(t, ok)
	assert.Equal(t, "b", v)
}

func TestCache_SweepsExpiredEntries(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewCache()
	c.now = func() time.Time { return now }

	for i := 0; i < sweepThreshold; i++ {
		require.NoError(t, c.Set(ctx, fmt.Sprintf("k%d", i), "v", time.Second))
	}
	assert.Equal(t, sweepThreshold, c.Len())

	now = now.Add(time.Hour)
	require.NoError(t, c.Set(ctx, "fresh", "v", time.Second))

	assert.Equal(t, 1, c.Len())
}
