package catalog_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/loan-projection/catalog"
	"github.com/warp/loan-projection/store/memory"
)

// =============================================================================
// DATASETS
// =============================================================================

func TestEmbeddedDatasets(t *testing.T) {
	infos, err := catalog.EmbeddedDatasets()
	require.NoError(t, err)
	require.Len(t, infos, 2)

	assert.Equal(t, "default", infos[0].Name)
	assert.Equal(t, 20, infos[0].Colleges)
	assert.Equal(t, 51, infos[0].StateTaxes)

	assert.Equal(t, "minimal", infos[1].Name)
	assert.Equal(t, 2, infos[1].Colleges)
}

func TestEmbedded_Unknown(t *testing.T) {
	_, err := catalog.Embedded("nope")
	assert.ErrorIs(t, err, catalog.ErrUnknownDataset)
}

func TestLoadDataset_RejectsUnknownFields(t *testing.T) {
	_, err := catalog.LoadDataset(strings.NewReader(`{"name": "x", "colleges": [], "extra": 1}`))
	assert.Error(t, err)
}

func TestLoadDataset_RejectsInvalidRecord(t *testing.T) {
	raw := `{
		"name": "bad",
		"colleges": [{"name": "Nowhere", "state": "XX", "in_state_tuition": 1, "out_of_state_tuition": 1}]
	}`
	_, err := catalog.LoadDataset(strings.NewReader(raw))

	var recErr *catalog.RecordError
	require.True(t, errors.As(err, &recErr))
	assert.Equal(t, "college", recErr.Kind)
	assert.ErrorIs(t, err, catalog.ErrInvalidRecord)
}

func TestCollege_TuitionFor(t *testing.T) {
	c := catalog.College{
		Name:              "University of Texas at Austin",
		State:             "TX",
		InStateTuition:    decimal.NewFromInt(11678),
		OutOfStateTuition: decimal.NewFromInt(41070),
	}

	tuition, inState := c.TuitionFor("tx")
	assert.True(t, inState)
	assert.True(t, tuition.Equal(decimal.NewFromInt(11678)))

	tuition, inState = c.TuitionFor("CA")
	assert.False(t, inState)
	assert.True(t, tuition.Equal(decimal.NewFromInt(41070)))
}

func TestStateTax_Validate(t *testing.T) {
	assert.NoError(t, catalog.StateTax{State: "TX", Rate: decimal.Zero}.Validate())
	assert.Error(t, catalog.StateTax{State: "TX", Rate: decimal.RequireFromString("-0.01")}.Validate())
	assert.Error(t, catalog.StateTax{State: "TX", Rate: decimal.RequireFromString("0.5")}.Validate())
	assert.Error(t, catalog.StateTax{State: "PR", Rate: decimal.Zero}.Validate())
}

// =============================================================================
// SALARY FALLBACK
// =============================================================================

func TestLookupSalary_Fallback(t *testing.T) {
	ctx := context.Background()
	source := seededMemory(t)

	tx, err := catalog.LookupSalary(ctx, source, "Psychology", "TX")
	require.NoError(t, err)
	require.NotNil(t, tx)
	assert.Equal(t, "TX", tx.State)

	fl, err := catalog.LookupSalary(ctx, source, "Psychology", "FL")
	require.NoError(t, err)
	require.NotNil(t, fl)
	assert.True(t, fl.IsNational())

	none, err := catalog.LookupSalary(ctx, source, "Underwater Basket Weaving", "FL")
	require.NoError(t, err)
	assert.Nil(t, none)
}

// =============================================================================
// CACHED CATALOG
// =============================================================================

// countingCatalog counts point lookups that reach the source.
type countingCatalog struct {
	catalog.Catalog
	collegeCalls int
}

func (c *countingCatalog) GetCollege(ctx context.Context, name string) (*catalog.College, error) {
	c.collegeCalls++
	return c.Catalog.GetCollege(ctx, name)
}

type failingCache struct{}

func (failingCache) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("cache down")
}

func (failingCache) Set(context.Context, string, string, time.Duration) error {
	return errors.New("cache down")
}

func seededMemory(t *testing.T) *memory.Catalog {
	src := memory.NewCatalog()
	ds, err := catalog.Embedded("minimal")
	require.NoError(t, err)
	require.NoError(t, catalog.Seed(context.Background(), src, ds))
	return src
}

func TestCachedCatalog_ReadThrough(t *testing.T) {
	// GIVEN: a cached catalog over a counting source
	ctx := context.Background()
	source := &countingCatalog{Catalog: seededMemory(t)}
	cached := catalog.NewCachedCatalog(source, memory.NewCache(), time.Hour, nil)

	// WHEN: the same college is looked up twice
	first, err := cached.GetCollege(ctx, "University of Texas at Austin")
	require.NoError(t, err)
	second, err := cached.GetCollege(ctx, "  university of texas at austin ")
	require.NoError(t, err)

	// THEN: the source is hit once and both results agree
	assert.Equal(t, 1, source.collegeCalls)
	require.NotNil(t, second)
	assert.Equal(t, first.Name, second.Name)
	assert.True(t, first.InStateTuition.Equal(second.InStateTuition))
}

func TestCachedCatalog_CachesMisses(t *testing.T) {
	ctx := context.Background()
	source := &countingCatalog{Catalog: seededMemory(t)}
	cached := catalog.NewCachedCatalog(source, memory.NewCache(), time.Hour, nil)

	for i := 0; i < 3; i++ {
		c, err := cached.GetCollege(ctx, "Nowhere College")
		require.NoError(t, err)
		assert.Nil(t, c)
	}
	assert.Equal(t, 1, source.collegeCalls)
}

func TestCachedCatalog_Invalidate(t *testing.T) {
	// GIVEN: a cached miss
	ctx := context.Background()
	mem := seededMemory(t)
	cached := catalog.NewCachedCatalog(mem, memory.NewCache(), time.Hour, nil)

	c, err := cached.GetCollege(ctx, "Rice University")
	require.NoError(t, err)
	require.Nil(t, c)

	// WHEN: the record is added and the cache invalidated
	require.NoError(t, mem.SaveCollege(ctx, catalog.College{
		Name:              "Rice University",
		State:             "TX",
		Private:           true,
		InStateTuition:    decimal.NewFromInt(58128),
		OutOfStateTuition: decimal.NewFromInt(58128),
	}))
	cached.Invalidate()

	// THEN: the new record is visible
	c, err = cached.GetCollege(ctx, "Rice University")
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.True(t, c.Private)
}

func TestCachedCatalog_CacheFailureFallsBack(t *testing.T) {
	ctx := context.Background()
	cached := catalog.NewCachedCatalog(seededMemory(t), failingCache{}, time.Hour, nil)

	sal, err := cached.GetSalary(ctx, "Computer Science", "")
	require.NoError(t, err)
	require.NotNil(t, sal)
	assert.True(t, sal.AverageStartingSalary.Equal(decimal.NewFromInt(80000)))

	tax, err := cached.GetStateTax(ctx, "CA")
	require.NoError(t, err)
	require.NotNil(t, tax)
	assert.True(t, tax.Rate.Equal(decimal.RequireFromString("0.093")))
}
