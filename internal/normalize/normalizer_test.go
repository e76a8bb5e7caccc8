package normalize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBranch_RoundTrip(t *testing.T) {
	t.Parallel()
	n := Default()

	cases := []struct {
		in   string
		want string
	}{
		{"CHL izmir_alsancak cafe", "İZMİR ALSANCAK"},
		{"CHL İzmir Mavibahçe Cafe", "İZMİR MAVİBAHÇE"},
		{"istanbul-kadıköy", "İSTANBUL KADIKOY"},
		{"Ankara  Çankaya", "ANKARA ÇANKAYA"},
		{"chl ANKARA_KIZILAY CAFE", "ANKARA KIZILAY"},
		{"", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, n.Branch(tc.in), "input %q", tc.in)
	}
}

func TestBranch_Idempotent(t *testing.T) {
	t.Parallel()
	n := Default()

	inputs := []string{
		"", "   ", "CAFE", "X CAFE CAFE", "CHL CHL bursa", "CHL  CAFE",
		"İSTANBUL Ç", "izmir   alsancak ", "ı", "i̇stanbul", "İZMİR ALSANCAK",
		"istanbul_cankaya", "Şişli-Ğ Ö Ü", "chlistanbul", "a\tb\nc",
	}
	for _, in := range inputs {
		once := n.Branch(in)
		assert.Equal(t, once, n.Branch(once), "input %q", in)
	}
}

func TestIngredient_FirstMatchWins(t *testing.T) {
	t.Parallel()

	n := New(&Tables{Resources: []Entry{
		{Pattern: "kuvertur", Name: "GENERIC"},
		{Pattern: "kuvertur beyaz", Name: "BEYAZ"},
	}})
	assert.Equal(t, "GENERIC", n.Ingredient("KUVERTUR BEYAZ 2,5 KG"))

	n = Default()
	assert.Equal(t, "SÜTLÜ.ÇİK.", n.Ingredient("CALLEBOUT SUTLU KUVERTUR 10 KG"))
	assert.Equal(t, "BİTTER.ÇİK.", n.Ingredient("callebout kuvertur bitter 2,5kg"))
	assert.Equal(t, "LABNE", n.Ingredient("  Labne Peyniri 2,75 KG "))
}

func TestIngredient_UnmappedStripsWeights(t *testing.T) {
	t.Parallel()
	n := Default()

	assert.Equal(t, "BILINMEYEN URUN", n.Ingredient("Bilinmeyen Urun 5 KG"))
	assert.Equal(t, "BILINMEYEN", n.Ingredient("Bilinmeyen 250 gr 12"))
	assert.False(t, n.IsTrackedResource("Bilinmeyen Urun 5 KG"))
	assert.True(t, n.IsTrackedResource("KURUVASAN SADE 80GR X 48AD"))
}

func TestProduct(t *testing.T) {
	t.Parallel()
	n := Default()

	assert.Equal(t, "LATTE", n.Product("PAKET  Cafe Latte"))
	assert.Equal(t, "SARMA TEK KİŞİLİK", n.Product("CHOCOLABS SARMA"))
	assert.Equal(t, "SARMA TEK KİŞİLİK", n.Product("PAKET CHOCOLABS SARMA"))
	assert.Equal(t, "SARMA ÇİFT KİŞİLİK", n.Product("XL PAKET CHOCOLABS SARMA"))
	assert.Equal(t, "KENYA", n.Product("Kenia"))
	assert.Equal(t, "YENI ÜRÜN", n.Product("  yeni   ürün "))
}

func TestProduct_ContainsFallbackUsesTableOrder(t *testing.T) {
	t.Parallel()

	n := New(&Tables{Products: []Entry{
		{Pattern: "LATTE", Name: "LATTE"},
		{Pattern: "BÜYÜK LATTE", Name: "BÜYÜK"},
	}})
	assert.Equal(t, "LATTE", n.Product("ÇOK BÜYÜK LATTE"))
	assert.Equal(t, "BÜYÜK", n.Product("büyük latte"), "exact match precedes contains scan")
}

func TestProduct_Idempotent(t *testing.T) {
	t.Parallel()
	tables, err := DefaultTables()
	require.NoError(t, err)
	n := New(tables)

	for _, list := range [][]Entry{tables.Products, tables.ProductOverrides} {
		for _, e := range list {
			assert.Equal(t, e.Name, n.Product(e.Name), "canonical name %q", e.Name)
			once := n.Product(e.Pattern)
			assert.Equal(t, once, n.Product(once), "pattern %q", e.Pattern)
		}
	}

	// 规范名包含其他模式时不再被包含匹配改写
	assert.Equal(t, "ÇİKOLATALI COOKIE", n.Product("COOKİE ÇİKOLATALI"))
	assert.Equal(t, "ÇİKOLATALI COOKIE", n.Product("ÇİKOLATALI COOKIE"))
	assert.Equal(t, "ÇİKOLATALI MUFFIN", n.Product("ÇİKOLATALI MUFFIN"))
}

func TestTotality(t *testing.T) {
	t.Parallel()
	n := New(nil)

	for _, in := range []string{"", " ", "\x00", strings.Repeat("ç", 64)} {
		assert.NotPanics(t, func() {
			_ = n.Branch(in)
			_ = n.Product(in)
			_ = n.Ingredient(in)
		})
	}
	assert.Equal(t, "", Province(""))
}

func TestIngredientKeyAndProvince(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "ŞEKER INCE", IngredientKey("şeker İnce"))
	assert.Equal(t, IngredientKey("BİTTER.ÇİK."), IngredientKey("BITTER.ÇIK."))
	assert.Equal(t, "İZMİR", Province("İZMİR ALSANCAK"))
	assert.Equal(t, "Kadıköy", StripBranchPrefix("CHL  Kadıköy "))
}

func TestDefaultTables_Validate(t *testing.T) {
	t.Parallel()

	tables, err := DefaultTables()
	require.NoError(t, err)
	require.NotEmpty(t, tables.Resources)
	require.NotEmpty(t, tables.Products)

	var shadowed, duplicate bool
	for _, issue := range tables.Validate() {
		require.NotEqual(t, IssueError, issue.Level, issue.String())
		if issue.Pattern == "bobaco blueberry kova 3.4kg" {
			shadowed = true
		}
		if issue.Pattern == "BERGAMOTLU ÇAY" && issue.Table == "resources" {
			duplicate = true
		}
	}
	assert.True(t, shadowed, "expected shadowed pattern warning")
	assert.True(t, duplicate, "expected duplicate pattern warning")
}

func TestParseTables_Conflict(t *testing.T) {
	t.Parallel()

	_, err := ParseTables([]byte(`
resources:
  - {pattern: "labne", name: "LABNE"}
  - {pattern: "LABNE", name: "PEYNIR"}
`))
	require.Error(t, err)

	_, err = ParseTables([]byte(`
branch_prefixes:
  - {pattern: "IZMIR", name: "ANKARA"}
`))
	require.Error(t, err)
}
