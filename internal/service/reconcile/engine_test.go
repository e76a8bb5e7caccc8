package reconcile

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BerkeYazan/Resource-Mismatch-Analysis/internal/model"
	"github.com/BerkeYazan/Resource-Mismatch-Analysis/internal/normalize"
)

func testEngine() *Engine {
	return NewEngine(Options{Normalizer: normalize.New(&normalize.Tables{}), Logger: zerolog.Nop()})
}

func fixture() ([]model.RecipeItem, []model.SupplyEntry, []model.SalesEntry) {
	recipes := []model.RecipeItem{
		{Product: "LATTE", Ingredient: "SÜT", Amount: 200, Unit: "gr"},
		{Product: "LATTE", Ingredient: "KAHVE", Amount: 14, Unit: "gram"},
		{Product: "MOCHA", Ingredient: "BİTTER", Amount: 50, Unit: "gr"},
		{Product: "MOCHA", Ingredient: "KAHVE", Amount: 14, Unit: "gr"},
		{Product: "SANDVİÇ", Ingredient: "KRUVASAN SADE", Amount: 1, Unit: "gr"},
	}
	supply := []model.SupplyEntry{
		{Date: "2025-04-01", Branch: "Ankara Merkez", Resource: "SÜT", Amount: 2, TotalAmount: 2000, Unit: "gr"},
		{Date: "2025-04-01", Branch: "Ankara Merkez", Resource: "KAHVE", Amount: 1, TotalAmount: 1000, Unit: "gr"},
		{Date: "2025-04-01", Branch: "Ankara Merkez", Resource: "BITTER", Amount: 1, TotalAmount: 500, Unit: "gr"},
		{Date: "2025-04-01", Branch: "Ankara Merkez", Resource: "ŞEKER", Amount: 1, TotalAmount: 500, Unit: "gr"},
		{Date: "2025-04-01", Branch: "Ankara Merkez", Resource: "PEÇETE", Amount: 3, TotalAmount: 3, Unit: "koli"},
		{Date: "2025-04-01", Branch: "İzmir Alsancak", Resource: "SÜT", Amount: 1, TotalAmount: 1000, Unit: "gr"},
	}
	sales := []model.SalesEntry{
		{Branch: "Ankara Merkez", Product: "LATTE", Amount: 10},
		{Branch: "Ankara Merkez", Product: "Paket Mocha", Amount: 10},
		{Branch: "ankara merkez", Product: "SANDVİÇ", Amount: 8},
		{Branch: "İzmir Alsancak", Product: "LATTE", Amount: 7},
	}
	return recipes, supply, sales
}

func find(t *testing.T, results []model.BranchResult, branch, key string) model.BranchResult {
	t.Helper()
	for _, r := range results {
		if r.Branch == branch && r.ResourceKey == key {
			return r
		}
	}
	t.Fatalf("no result for %s / %s", branch, key)
	return model.BranchResult{}
}

func TestReconcile_Metrics(t *testing.T) {
	t.Parallel()
	results, err := testEngine().Reconcile(fixture())
	require.NoError(t, err)

	// 200 × 10 = 2000，与供货完全一致
	milk := find(t, results, "ANKARA MERKEZ", "SÜT")
	require.NotNil(t, milk.DifferencePercent)
	assert.Equal(t, 2000.0, milk.DemandAmount)
	assert.InDelta(t, 0, *milk.DifferencePercent, 1e-9)

	// 14 × 10 + 14 × 10 = 280，供货 1000
	coffee := find(t, results, "ANKARA MERKEZ", "KAHVE")
	assert.Equal(t, "gr", coffee.Unit)
	assert.InDelta(t, 280, coffee.DemandAmount, 1e-9)
	assert.InDelta(t, 72, *coffee.DifferencePercent, 1e-9)

	// BİTTER 与 BITTER 并为同一键，展示名取配方写法
	bitter := find(t, results, "ANKARA MERKEZ", "BITTER")
	assert.Equal(t, "BİTTER", bitter.Resource)
	assert.InDelta(t, 500, bitter.SuppliedAmount, 1e-9)
	assert.InDelta(t, 0, *bitter.Difference, 1e-9)

	// 只有供货
	sugar := find(t, results, "ANKARA MERKEZ", "ŞEKER")
	assert.Equal(t, 0.0, sugar.DemandAmount)
	assert.InDelta(t, 100, *sugar.DifferencePercent, 1e-9)

	// 只有用量：差异为负，百分比无定义
	croissant := find(t, results, "ANKARA MERKEZ", "KRUVASAN SADE")
	assert.Equal(t, "adet", croissant.Unit)
	assert.InDelta(t, -8, *croissant.Difference, 1e-9)
	assert.Nil(t, croissant.DifferencePercent)
	assert.True(t, croissant.PercentInfinite)

	// 不可比较单位保留原样，不计算差异
	napkin := find(t, results, "ANKARA MERKEZ", "PEÇETE")
	assert.Equal(t, "koli", napkin.Unit)
	assert.Nil(t, napkin.Difference)
	assert.Nil(t, napkin.DifferencePercent)

	// 1000 供货，1400 用量：-40%
	izmir := find(t, results, "IZMIR ALSANCAK", "SÜT")
	assert.Equal(t, "IZMIR", izmir.Province)
	assert.InDelta(t, -40, *izmir.DifferencePercent, 1e-9)
}

func TestReconcile_DefaultTablesCanonicalRecipes(t *testing.T) {
	t.Parallel()
	n := normalize.Default()
	engine := NewEngine(Options{Normalizer: n, Logger: zerolog.Nop()})

	// 配方用规范名登记；ÇİKOLATALI 是 ÇİKOLATALI COOKIE 的子串
	recipes := []model.RecipeItem{
		{Product: "ÇİKOLATALI COOKIE", Ingredient: "COOKİE SADE MIX", Amount: 50, Unit: "gr"},
		{Product: "ÇİKOLATALI", Ingredient: "SÜTLÜ.ÇİK.", Amount: 30, Unit: "gr"},
	}
	sales := []model.SalesEntry{
		{Branch: "İzmir Alsancak", Product: n.Product("COOKİE ÇİKOLATALI"), Amount: 10},
	}

	results, err := engine.Reconcile(recipes, nil, sales)
	require.NoError(t, err)
	require.Len(t, results, 1)
	cookie := find(t, results, "IZMIR ALSANCAK", normalize.IngredientKey("COOKİE SADE MIX"))
	assert.InDelta(t, 500, cookie.DemandAmount, 1e-9)

	totals := engine.IngredientTotals(recipes, sales)
	require.Len(t, totals, 1)
	assert.Equal(t, "COOKİE SADE MIX", totals[0].Ingredient)
	assert.InDelta(t, 500, totals[0].TotalAmount, 1e-9)

	assert.Equal(t, 2, engine.ProductsWithRecipes(recipes))
}

func TestReconcile_Conservation(t *testing.T) {
	t.Parallel()
	recipes, supply, sales := fixture()
	results, err := testEngine().Reconcile(recipes, supply, sales)
	require.NoError(t, err)

	var supplied, demand float64
	for _, r := range results {
		supplied += r.SuppliedAmount
		demand += r.DemandAmount
	}
	var wantSupplied float64
	for _, s := range supply {
		wantSupplied += s.TotalAmount
	}
	// 2000 + 140 + 500 + 140 + 8 + 1400 + 98
	assert.InDelta(t, wantSupplied, supplied, 1e-9)
	assert.InDelta(t, 4286, demand, 1e-9)
}

func TestReconcile_DefaultOrder(t *testing.T) {
	t.Parallel()
	results, err := testEngine().Reconcile(fixture())
	require.NoError(t, err)
	require.NotEmpty(t, results)

	seenNil := false
	prev := -1.0
	for i, r := range results {
		if r.DifferencePercent == nil {
			seenNil = true
			continue
		}
		require.False(t, seenNil, "row %d has a percent after an undefined one", i)
		abs := absPercent(r)
		if prev >= 0 {
			assert.LessOrEqual(t, abs, prev)
		}
		prev = abs
	}
	assert.Equal(t, "ŞEKER", results[0].Resource)
}

func TestReconcile_Empty(t *testing.T) {
	t.Parallel()
	results, err := testEngine().Reconcile(nil, nil, nil)
	require.NoError(t, err)
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestReconcile_RecoversPanic(t *testing.T) {
	t.Parallel()
	recipes, supply, sales := fixture()

	broken := &Engine{nearMatch: DefaultNearMatchPercent, log: zerolog.Nop()}
	results, err := broken.Reconcile(recipes, supply, sales)
	require.ErrorIs(t, err, ErrAnalysisFailed)
	assert.Empty(t, results)
}

func TestSummarize(t *testing.T) {
	t.Parallel()
	e := testEngine()
	results, err := e.Reconcile(fixture())
	require.NoError(t, err)

	summaries := e.Summarize(results)
	require.Len(t, summaries, 2)

	byBranch := map[string]model.BranchSummary{}
	for _, s := range summaries {
		byBranch[s.Branch] = s
	}
	ankara := byBranch["ANKARA MERKEZ"]
	assert.Equal(t, 6, ankara.TotalItemsAnalyzed)
	assert.Equal(t, 2, ankara.SurplusCount)   // KAHVE 72%, ŞEKER 100%
	assert.Equal(t, 2, ankara.NearMatchCount) // SÜT, BITTER
	assert.Equal(t, 1, ankara.DeficitCount)   // KRUVASAN
	assert.Equal(t, 1, ankara.IncomparableUnitCount)
	assert.InDelta(t, 720+500, ankara.TotalSurplusGr, 1e-9)
	assert.InDelta(t, -8, ankara.TotalDeficitAdet, 1e-9)

	// SÜT -40% 与只有用量的 KAHVE
	izmir := byBranch["IZMIR ALSANCAK"]
	assert.Equal(t, 2, izmir.DeficitCount)
	assert.InDelta(t, -400-98, izmir.TotalDeficitGr, 1e-9)
	assert.Equal(t, "IZMIR", izmir.Province)
}

func TestClassify_Boundaries(t *testing.T) {
	t.Parallel()
	e := testEngine()
	f := func(v float64) *float64 { return &v }

	cases := []struct {
		name string
		r    model.BranchResult
		want Status
	}{
		{"minus ten", model.BranchResult{Unit: "gr", Difference: f(-1), DifferencePercent: f(-10)}, StatusDeficit},
		{"plus ten", model.BranchResult{Unit: "gr", Difference: f(1), DifferencePercent: f(10)}, StatusSurplus},
		{"inside", model.BranchResult{Unit: "adet", Difference: f(1), DifferencePercent: f(9.99)}, StatusNearMatch},
		{"zero both", model.BranchResult{Unit: "gr", Difference: f(0)}, StatusNearMatch},
		{"infinite", model.BranchResult{Unit: "gr", Difference: f(-5), PercentInfinite: true}, StatusDeficit},
		{"unknown unit", model.BranchResult{Unit: "unknown"}, StatusIncomparable},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, e.Classify(tc.r), tc.name)
	}
}

func TestAnalyze_MissingData(t *testing.T) {
	t.Parallel()
	recipes, _, sales := fixture()
	p := &model.Project{Recipes: recipes, Sales: sales}

	_, err := testEngine().Analyze(p)
	require.ErrorIs(t, err, ErrMissingData)
	var missing *MissingDataError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []model.SourceKind{model.SourceSupply}, missing.Missing)
	assert.Contains(t, err.Error(), "HAVI verisi")
}

func TestAnalyze(t *testing.T) {
	t.Parallel()
	recipes, supply, sales := fixture()
	p := &model.Project{Recipes: recipes, Supply: supply, Sales: sales}

	a, err := testEngine().Analyze(p)
	require.NoError(t, err)
	assert.Len(t, a.Results, 8)
	assert.Equal(t, []string{"ANKARA MERKEZ", "IZMIR ALSANCAK"}, a.Branches)
	assert.Equal(t, []string{"ANKARA", "IZMIR"}, a.Provinces)
	assert.Contains(t, a.Resources, "BİTTER")
}
