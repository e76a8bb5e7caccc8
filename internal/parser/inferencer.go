package parser

import (
	"strings"

	"github.com/BerkeYazan/Resource-Mismatch-Analysis/internal/model"
)

// 内容形态推断的默认阈值
const (
	DefaultBranchRepeatRatio    = 0.8 // 门店列：不同值占比低于该值（值会重复）
	DefaultProductDistinctRatio = 0.3 // 商品列：不同值占比高于该值
	DefaultSampleSize           = 10  // 采样的数据行数
)

// InferOptions 列推断参数
type InferOptions struct {
	BranchRepeatRatio    float64
	ProductDistinctRatio float64
	SampleSize           int
}

// DefaultInferOptions 默认参数
func DefaultInferOptions() InferOptions {
	return InferOptions{
		BranchRepeatRatio:    DefaultBranchRepeatRatio,
		ProductDistinctRatio: DefaultProductDistinctRatio,
		SampleSize:           DefaultSampleSize,
	}
}

// Inferencer 列推断器：表头精确匹配 -> 表头子串匹配 -> 内容形态兜底
type Inferencer struct {
	opts InferOptions
}

// NewInferencer 创建列推断器，非法参数回退为默认值
func NewInferencer(opts InferOptions) *Inferencer {
	def := DefaultInferOptions()
	if opts.BranchRepeatRatio <= 0 {
		opts.BranchRepeatRatio = def.BranchRepeatRatio
	}
	if opts.ProductDistinctRatio <= 0 {
		opts.ProductDistinctRatio = def.ProductDistinctRatio
	}
	if opts.SampleSize <= 0 {
		opts.SampleSize = def.SampleSize
	}
	return &Inferencer{opts: opts}
}

// Options 当前参数
func (inf *Inferencer) Options() InferOptions {
	return inf.opts
}

// Infer 按规则为每个角色选出一列；同一列只分配给一个角色，按规则顺序优先
func (inf *Inferencer) Infer(table model.Table, specs []RoleSpec) Mapping {
	mapping := make(Mapping, len(specs))
	if len(table.Columns) == 0 {
		return mapping
	}

	normalized := make([]string, len(table.Columns))
	for i, col := range table.Columns {
		normalized[i] = NormalizeColumnName(col)
	}
	claimed := make(map[string]bool, len(table.Columns))

	assign := func(role Role, idx int) {
		col := table.Columns[idx]
		mapping[role] = col
		claimed[col] = true
	}

	// 1. 精确匹配
	for _, spec := range specs {
		for idx, label := range normalized {
			if claimed[table.Columns[idx]] {
				continue
			}
			if matchExact(label, spec.Exact) {
				assign(spec.Role, idx)
				break
			}
		}
	}

	// 2. 子串匹配
	for _, spec := range specs {
		if _, ok := mapping[spec.Role]; ok {
			continue
		}
		for idx, label := range normalized {
			if claimed[table.Columns[idx]] {
				continue
			}
			if matchContains(label, spec.Contains) {
				assign(spec.Role, idx)
				break
			}
		}
	}

	// 3. 内容形态兜底
	sample := table.Records
	if len(sample) > inf.opts.SampleSize {
		sample = sample[:inf.opts.SampleSize]
	}
	for idx, col := range table.Columns {
		if claimed[col] {
			continue
		}
		profile := profileColumn(sample, col)
		if profile.count == 0 {
			continue
		}
		for _, spec := range specs {
			if spec.Shape == ShapeNone {
				continue
			}
			if _, ok := mapping[spec.Role]; ok {
				continue
			}
			if inf.fits(profile, spec.Shape) {
				assign(spec.Role, idx)
				break
			}
		}
	}

	return mapping
}

// Recognize 按列规则命中数判断表格属于哪类数据源
func (inf *Inferencer) Recognize(table model.Table) SourceRecognition {
	candidates := []struct {
		kind     model.SourceKind
		specs    []RoleSpec
		required []Role
	}{
		{model.SourceSupply, SupplyRoles, []Role{RoleDate, RoleBranch, RoleProduct, RoleAmount}},
		{model.SourceRecipe, RecipeRoles, []Role{RoleProduct, RoleIngredient, RoleAmount}},
		{model.SourceSales, SalesRoles, []Role{RoleBranch, RoleProduct, RoleAmount}},
	}

	best := SourceRecognition{Confidence: 0}
	for _, c := range candidates {
		mapping := inf.inferByHeader(table, c.specs)
		matched := len(c.required) - len(mapping.Missing(c.required...))
		confidence := float64(matched) / float64(len(c.required))
		if confidence > best.Confidence {
			best = SourceRecognition{Kind: c.kind, Confidence: confidence, Mapping: mapping}
		}
	}
	return best
}

// inferByHeader 只用表头规则推断，供类型识别使用
func (inf *Inferencer) inferByHeader(table model.Table, specs []RoleSpec) Mapping {
	headerOnly := make([]RoleSpec, len(specs))
	for i, spec := range specs {
		spec.Shape = ShapeNone
		headerOnly[i] = spec
	}
	return inf.Infer(table, headerOnly)
}

type columnProfile struct {
	count      int
	distinct   int
	allText    bool
	allNumeric bool
}

func profileColumn(sample []model.Record, col string) columnProfile {
	p := columnProfile{allText: true, allNumeric: true}
	seen := make(map[string]struct{}, len(sample))
	for _, rec := range sample {
		v, ok := rec[col]
		if !ok || v == nil {
			continue
		}
		if s, isString := v.(string); isString {
			if strings.TrimSpace(s) == "" {
				continue
			}
			if LooksNumeric(s) {
				p.allText = false
			}
		} else {
			p.allText = false
		}
		if !IsNumeric(v) {
			p.allNumeric = false
		}
		p.count++
		seen[model.ValueText(v)] = struct{}{}
	}
	p.distinct = len(seen)
	return p
}

func (inf *Inferencer) fits(p columnProfile, shape Shape) bool {
	ratio := float64(p.distinct) / float64(p.count)
	switch shape {
	case ShapeRepeatedText:
		return p.allText && ratio < inf.opts.BranchRepeatRatio
	case ShapeDistinctText:
		return p.allText && ratio > inf.opts.ProductDistinctRatio
	case ShapeNumeric:
		return p.allNumeric
	default:
		return false
	}
}

func matchExact(label string, synonyms []string) bool {
	for _, s := range synonyms {
		if label == NormalizeColumnName(s) {
			return true
		}
	}
	return false
}

func matchContains(label string, groups [][]string) bool {
	for _, group := range groups {
		if ContainsAll(label, group) {
			return true
		}
	}
	return false
}
