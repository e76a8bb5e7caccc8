package reconcile

import (
	"math"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/BerkeYazan/Resource-Mismatch-Analysis/internal/model"
)

// Status 单条结果的分类
type Status string

const (
	StatusDeficit      Status = "deficit"      // 用量明显超出供货
	StatusSurplus      Status = "surplus"      // 供货明显超出用量
	StatusNearMatch    Status = "near_match"   // 基本一致
	StatusIncomparable Status = "incomparable" // 单位不可比较
)

// Classify 按阈值给结果分类
// 有有限百分比时按百分比判断；否则按差异正负判断
func (e *Engine) Classify(r model.BranchResult) Status {
	if !r.Comparable() || r.Difference == nil {
		return StatusIncomparable
	}
	if r.DifferencePercent != nil {
		pct := *r.DifferencePercent
		switch {
		case pct <= -e.nearMatch:
			return StatusDeficit
		case pct >= e.nearMatch:
			return StatusSurplus
		default:
			return StatusNearMatch
		}
	}
	switch d := *r.Difference; {
	case d < 0:
		return StatusDeficit
	case d > 0:
		return StatusSurplus
	default:
		return StatusNearMatch
	}
}

// Summarize 按门店汇总，门店顺序与结果中首次出现的顺序一致
func (e *Engine) Summarize(results []model.BranchResult) []model.BranchSummary {
	index := make(map[string]int)
	var out []model.BranchSummary

	for _, r := range results {
		i, ok := index[r.Branch]
		if !ok {
			i = len(out)
			index[r.Branch] = i
			out = append(out, model.BranchSummary{Branch: r.Branch, Province: r.Province})
		}
		s := &out[i]
		s.TotalItemsAnalyzed++

		status := e.Classify(r)
		// 差异带符号累计：缺口为负，富余为正
		diff := r.DifferenceValue()
		switch status {
		case StatusIncomparable:
			s.IncomparableUnitCount++
		case StatusDeficit:
			s.DeficitCount++
			if r.Unit == model.UnitCount {
				s.TotalDeficitAdet += diff
			} else {
				s.TotalDeficitGr += diff
			}
		case StatusSurplus:
			s.SurplusCount++
			if r.Unit == model.UnitCount {
				s.TotalSurplusAdet += diff
			} else {
				s.TotalSurplusGr += diff
			}
		default:
			s.NearMatchCount++
		}
	}
	if out == nil {
		out = []model.BranchSummary{}
	}
	return out
}

// Filter 结果筛选条件，空值表示不限
type Filter struct {
	Province string `form:"province" json:"province,omitempty"`
	Branch   string `form:"branch" json:"branch,omitempty"`
	Resource string `form:"resource" json:"resource,omitempty"`
}

// Empty 是否没有任何筛选
func (f Filter) Empty() bool {
	return f.Province == "" && f.Branch == "" && f.Resource == ""
}

// Apply 按省份、门店、原料精确筛选
func (f Filter) Apply(results []model.BranchResult) []model.BranchResult {
	out := make([]model.BranchResult, 0, len(results))
	for _, r := range results {
		if f.Province != "" && r.Province != f.Province {
			continue
		}
		if f.Branch != "" && r.Branch != f.Branch {
			continue
		}
		if f.Resource != "" && r.Resource != f.Resource {
			continue
		}
		out = append(out, r)
	}
	return out
}

// SortField 结果排序字段
type SortField string

const (
	SortByBranch     SortField = "branch"
	SortByResource   SortField = "resource"
	SortBySupplied   SortField = "supplied"
	SortByDemand     SortField = "demand"
	SortByDifference SortField = "difference"
	SortByPercent    SortField = "percent"
)

// ParseSortField 解析排序字段，未知值回退为百分比
func ParseSortField(s string) SortField {
	switch f := SortField(strings.ToLower(strings.TrimSpace(s))); f {
	case SortByBranch, SortByResource, SortBySupplied, SortByDemand, SortByDifference, SortByPercent:
		return f
	default:
		return SortByPercent
	}
}

// Sort 稳定排序；百分比或差异为空的行在两个方向上都排在最后
func Sort(results []model.BranchResult, by SortField, desc bool) {
	coll := collate.New(language.Turkish)
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		switch by {
		case SortByBranch:
			return ordered(coll.CompareString(a.Branch, b.Branch), desc)
		case SortByResource:
			return ordered(coll.CompareString(a.Resource, b.Resource), desc)
		case SortBySupplied:
			return ordered(compareFloat(a.SuppliedAmount, b.SuppliedAmount), desc)
		case SortByDemand:
			return ordered(compareFloat(a.DemandAmount, b.DemandAmount), desc)
		case SortByDifference:
			return nilsLast(a.Difference, b.Difference, desc)
		default:
			return nilsLast(a.DifferencePercent, b.DifferencePercent, desc)
		}
	})
}

// FilterSummaries 按省份筛选门店汇总
func FilterSummaries(summaries []model.BranchSummary, province string) []model.BranchSummary {
	if province == "" {
		return summaries
	}
	out := make([]model.BranchSummary, 0, len(summaries))
	for _, s := range summaries {
		if s.Province == province {
			out = append(out, s)
		}
	}
	return out
}

// SummaryField 门店汇总排序字段
type SummaryField string

const (
	SummaryByBranch    SummaryField = "branch"
	SummaryByItems     SummaryField = "items"
	SummaryByDeficit   SummaryField = "deficit"
	SummaryBySurplus   SummaryField = "surplus"
	SummaryByNearMatch SummaryField = "near_match"
	SummaryByDeficitGr SummaryField = "deficit_gr"
	SummaryBySurplusGr SummaryField = "surplus_gr"
)

// ParseSummaryField 解析汇总排序字段，未知值回退为门店名
func ParseSummaryField(s string) SummaryField {
	switch f := SummaryField(strings.ToLower(strings.TrimSpace(s))); f {
	case SummaryByItems, SummaryByDeficit, SummaryBySurplus, SummaryByNearMatch, SummaryByDeficitGr, SummaryBySurplusGr:
		return f
	default:
		return SummaryByBranch
	}
}

// SortSummaries 门店汇总稳定排序
func SortSummaries(summaries []model.BranchSummary, by SummaryField, desc bool) {
	coll := collate.New(language.Turkish)
	sort.SliceStable(summaries, func(i, j int) bool {
		a, b := summaries[i], summaries[j]
		switch by {
		case SummaryByItems:
			return ordered(a.TotalItemsAnalyzed-b.TotalItemsAnalyzed, desc)
		case SummaryByDeficit:
			return ordered(a.DeficitCount-b.DeficitCount, desc)
		case SummaryBySurplus:
			return ordered(a.SurplusCount-b.SurplusCount, desc)
		case SummaryByNearMatch:
			return ordered(a.NearMatchCount-b.NearMatchCount, desc)
		case SummaryByDeficitGr:
			return ordered(compareFloat(a.TotalDeficitGr, b.TotalDeficitGr), desc)
		case SummaryBySurplusGr:
			return ordered(compareFloat(a.TotalSurplusGr, b.TotalSurplusGr), desc)
		default:
			return ordered(coll.CompareString(a.Branch, b.Branch), desc)
		}
	})
}

// IngredientTotals 所有门店合计的原料理论用量（配方用量 × 销量），保留两位小数，按原料名排序
func (e *Engine) IngredientTotals(recipes []model.RecipeItem, sales []model.SalesEntry) []model.IngredientTotal {
	sold := make(map[string]float64)
	for _, s := range sales {
		sold[e.normalizer.Product(s.Product)] += finite(s.Amount)
	}

	index := make(map[string]int)
	out := []model.IngredientTotal{}
	for _, r := range recipes {
		qty, ok := sold[e.normalizer.Product(r.Product)]
		if !ok {
			continue
		}
		i, seen := index[r.Ingredient]
		if !seen {
			i = len(out)
			index[r.Ingredient] = i
			out = append(out, model.IngredientTotal{Ingredient: r.Ingredient, Unit: r.Unit})
		}
		out[i].TotalAmount += finite(r.Amount) * qty
	}

	for i := range out {
		out[i].TotalAmount = math.Round(out[i].TotalAmount*100) / 100
	}
	coll := collate.New(language.Turkish)
	sort.SliceStable(out, func(i, j int) bool {
		return coll.CompareString(out[i].Ingredient, out[j].Ingredient) < 0
	})
	return out
}

// ProductsWithRecipes 有配方的不同商品数
func (e *Engine) ProductsWithRecipes(recipes []model.RecipeItem) int {
	seen := make(map[string]struct{})
	for _, r := range recipes {
		if k := e.normalizer.Product(r.Product); k != "" {
			seen[k] = struct{}{}
		}
	}
	return len(seen)
}

// UniqueBranches 结果中的门店，按土耳其语排序
func UniqueBranches(results []model.BranchResult) []string {
	return unique(results, func(r model.BranchResult) string { return r.Branch })
}

// UniqueResources 结果中的原料
func UniqueResources(results []model.BranchResult) []string {
	return unique(results, func(r model.BranchResult) string { return r.Resource })
}

// UniqueProvinces 结果中的省份
func UniqueProvinces(results []model.BranchResult) []string {
	return unique(results, func(r model.BranchResult) string { return r.Province })
}

func unique(results []model.BranchResult, key func(model.BranchResult) string) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, r := range results {
		k := key(r)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	collate.New(language.Turkish).SortStrings(out)
	return out
}

func ordered(c int, desc bool) bool {
	if desc {
		return c > 0
	}
	return c < 0
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func nilsLast(a, b *float64, desc bool) bool {
	switch {
	case a == nil && b == nil:
		return false
	case a == nil:
		return false
	case b == nil:
		return true
	}
	return ordered(compareFloat(*a, *b), desc)
}
