package importer

import (
	"strings"

	"github.com/BerkeYazan/Resource-Mismatch-Analysis/internal/model"
	"github.com/BerkeYazan/Resource-Mismatch-Analysis/internal/parser"
	"github.com/BerkeYazan/Resource-Mismatch-Analysis/internal/unit"
)

var recipeRequired = []parser.Role{parser.RoleProduct, parser.RoleIngredient, parser.RoleAmount}

// 表头无法识别时按位置取列：Ürün, Hammadde, Miktar, Birim
var recipePositions = []parser.Role{parser.RoleProduct, parser.RoleIngredient, parser.RoleAmount, parser.RoleUnit}

// RecipeProcessor 配方处理器
type RecipeProcessor struct {
	opts Options
}

// NewRecipeProcessor 创建配方处理器
func NewRecipeProcessor(opts Options) *RecipeProcessor {
	return &RecipeProcessor{opts: opts.withDefaults()}
}

// Kind 数据源类型
func (p *RecipeProcessor) Kind() model.SourceKind {
	return model.SourceRecipe
}

// Process 解析配方表
// 商品列合并单元格留空时沿用上一个非空商品名；缺原料、缺商品或数量无法解析的行跳过
func (p *RecipeProcessor) Process(table model.Table) (Result, error) {
	res := emptyResult(model.SourceRecipe)
	log := p.opts.Logger.With().Str("kind", string(model.SourceRecipe)).Str("file", table.FileName()).Logger()

	table = locateHeader(p.opts.Inferencer, table, parser.RecipeRoles, recipeRequired)
	mapping := p.opts.Inferencer.Infer(table, parser.RecipeRoles)
	if len(mapping.Missing(recipeRequired...)) > 0 {
		mapping = positionalMapping(table.Columns, mapping)
		log.Warn().Interface("mapping", mapping).Msg("配方列按位置识别，结果可能不准确")
	}
	if missing := mapping.Missing(recipeRequired...); len(missing) > 0 {
		err := &ColumnsError{Kind: model.SourceRecipe, Missing: missing}
		log.Error().Err(err).Msg("配方必需列缺失")
		return res, err
	}
	res.Mapping = mapping

	acc := foldRecipeRows(table.Records, mapping)
	res.Dataset = model.RecipeSet(acc.items)
	res.Stats = Stats{
		RowsRead:    len(table.Records),
		RowsSkipped: acc.skipped,
		RowsEmitted: len(acc.items),
	}
	log.Info().Int("rows", res.Stats.RowsRead).Int("skipped", acc.skipped).Int("items", len(acc.items)).Msg("配方处理完成")
	return res, nil
}

// positionalMapping 未识别的角色按列位置补齐（位置可能与已识别的列重合）
func positionalMapping(columns []string, mapping parser.Mapping) parser.Mapping {
	out := make(parser.Mapping, len(recipePositions))
	for role, col := range mapping {
		out[role] = col
	}
	for i, role := range recipePositions {
		if _, ok := out[role]; ok || i >= len(columns) {
			continue
		}
		out[role] = columns[i]
	}
	return out
}

// recipeAccumulator 配方逐行折叠的累加器；current 为沿用的商品名
type recipeAccumulator struct {
	current string
	items   []model.RecipeItem
	skipped int
}

func foldRecipeRows(records []model.Record, mapping parser.Mapping) recipeAccumulator {
	acc := recipeAccumulator{items: []model.RecipeItem{}}
	for _, rec := range records {
		acc = acc.step(rec, mapping)
	}
	return acc
}

// step 处理一行并返回新的累加器
func (acc recipeAccumulator) step(rec model.Record, mapping parser.Mapping) recipeAccumulator {
	if s, ok := rec[mapping[parser.RoleProduct]].(string); ok && strings.TrimSpace(s) != "" {
		acc.current = strings.TrimSpace(s)
	}

	ingredient := strings.TrimSpace(rec.Text(mapping[parser.RoleIngredient]))
	amountCol := mapping[parser.RoleAmount]
	if ingredient == "" || acc.current == "" || rec.IsBlank(amountCol) {
		acc.skipped++
		return acc
	}
	amount, ok := parser.ParseNumber(rec[amountCol])
	if !ok {
		acc.skipped++
		return acc
	}
	if amount < 0 {
		amount = 0
	}

	u := model.UnitGram
	if col, ok := mapping.Column(parser.RoleUnit); ok {
		if raw := strings.TrimSpace(rec.Text(col)); raw != "" {
			u = model.NormalizeUnit(raw)
		}
	}
	if unit.IsCountProduct(ingredient) {
		u = model.UnitCount
	}

	acc.items = append(acc.items, model.RecipeItem{
		Product:    acc.current,
		Ingredient: ingredient,
		Amount:     amount,
		Unit:       u,
	})
	return acc
}
