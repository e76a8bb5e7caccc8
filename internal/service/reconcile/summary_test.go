package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BerkeYazan/Resource-Mismatch-Analysis/internal/model"
)

func ptr(v float64) *float64 { return &v }

func TestFilter(t *testing.T) {
	t.Parallel()
	results := []model.BranchResult{
		{Branch: "ANKARA MERKEZ", Province: "ANKARA", Resource: "SÜT"},
		{Branch: "ANKARA KIZILAY", Province: "ANKARA", Resource: "KAHVE"},
		{Branch: "IZMIR ALSANCAK", Province: "IZMIR", Resource: "SÜT"},
	}

	assert.Len(t, Filter{}.Apply(results), 3)
	assert.True(t, Filter{}.Empty())
	assert.Len(t, Filter{Province: "ANKARA"}.Apply(results), 2)
	assert.Len(t, Filter{Resource: "SÜT"}.Apply(results), 2)
	got := Filter{Province: "ANKARA", Resource: "SÜT"}.Apply(results)
	require.Len(t, got, 1)
	assert.Equal(t, "ANKARA MERKEZ", got[0].Branch)
	assert.Empty(t, Filter{Branch: "YOK"}.Apply(results))
}

func TestSort_PercentNilLast(t *testing.T) {
	t.Parallel()
	build := func() []model.BranchResult {
		return []model.BranchResult{
			{Resource: "A", DifferencePercent: nil},
			{Resource: "B", DifferencePercent: ptr(-40)},
			{Resource: "C", DifferencePercent: ptr(15)},
			{Resource: "D", DifferencePercent: nil},
			{Resource: "E", DifferencePercent: ptr(0)},
		}
	}
	names := func(rs []model.BranchResult) []string {
		out := make([]string, len(rs))
		for i, r := range rs {
			out[i] = r.Resource
		}
		return out
	}

	asc := build()
	Sort(asc, SortByPercent, false)
	assert.Equal(t, []string{"B", "E", "C", "A", "D"}, names(asc))

	desc := build()
	Sort(desc, SortByPercent, true)
	assert.Equal(t, []string{"C", "E", "B", "A", "D"}, names(desc))
}

func TestSort_TurkishCollation(t *testing.T) {
	t.Parallel()
	results := []model.BranchResult{
		{Resource: "ŞEKER"}, {Resource: "SÜT"}, {Resource: "ÇAY"}, {Resource: "CEVİZ"}, {Resource: "ZEYTİN"},
	}
	Sort(results, SortByResource, false)
	got := make([]string, len(results))
	for i, r := range results {
		got[i] = r.Resource
	}
	assert.Equal(t, []string{"CEVİZ", "ÇAY", "SÜT", "ŞEKER", "ZEYTİN"}, got)
}

func TestParseSortField(t *testing.T) {
	t.Parallel()
	assert.Equal(t, SortByDemand, ParseSortField(" Demand "))
	assert.Equal(t, SortByPercent, ParseSortField("nonsense"))
	assert.Equal(t, SummaryByDeficit, ParseSummaryField("deficit"))
	assert.Equal(t, SummaryByBranch, ParseSummaryField(""))
}

func TestSortAndFilterSummaries(t *testing.T) {
	t.Parallel()
	summaries := []model.BranchSummary{
		{Branch: "B", Province: "ANKARA", DeficitCount: 1},
		{Branch: "A", Province: "IZMIR", DeficitCount: 3},
		{Branch: "C", Province: "ANKARA", DeficitCount: 2},
	}
	SortSummaries(summaries, SummaryByDeficit, true)
	assert.Equal(t, "A", summaries[0].Branch)
	assert.Equal(t, "B", summaries[2].Branch)

	SortSummaries(summaries, SummaryByBranch, false)
	assert.Equal(t, "A", summaries[0].Branch)

	assert.Len(t, FilterSummaries(summaries, "ANKARA"), 2)
	assert.Len(t, FilterSummaries(summaries, ""), 3)
}

func TestIngredientTotals(t *testing.T) {
	t.Parallel()
	e := testEngine()
	recipes, _, sales := fixture()

	totals := e.IngredientTotals(recipes, sales)
	got := map[string]float64{}
	for _, it := range totals {
		got[it.Ingredient] = it.TotalAmount
	}
	// LATTE 17 adet, MOCHA 10 adet, SANDVİÇ 8 adet
	assert.InDelta(t, 3400, got["SÜT"], 1e-9)
	assert.InDelta(t, 14*17+14*10, got["KAHVE"], 1e-9)
	assert.InDelta(t, 500, got["BİTTER"], 1e-9)
	assert.InDelta(t, 8, got["KRUVASAN SADE"], 1e-9)
	assert.Equal(t, "BİTTER", totals[0].Ingredient)
	assert.Equal(t, "SÜT", totals[len(totals)-1].Ingredient)

	assert.Equal(t, 3, e.ProductsWithRecipes(recipes))
}

func TestIngredientTotals_Rounding(t *testing.T) {
	t.Parallel()
	e := testEngine()
	totals := e.IngredientTotals(
		[]model.RecipeItem{{Product: "X", Ingredient: "TUZ", Amount: 0.333, Unit: "gr"}},
		[]model.SalesEntry{{Product: "X", Amount: 3}},
	)
	require.Len(t, totals, 1)
	assert.Equal(t, 1.0, totals[0].TotalAmount)
}
