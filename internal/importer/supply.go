package importer

import (
	"strings"

	"github.com/BerkeYazan/Resource-Mismatch-Analysis/internal/model"
	"github.com/BerkeYazan/Resource-Mismatch-Analysis/internal/normalize"
	"github.com/BerkeYazan/Resource-Mismatch-Analysis/internal/parser"
	"github.com/BerkeYazan/Resource-Mismatch-Analysis/internal/unit"
)

var supplyRequired = []parser.Role{parser.RoleBranch, parser.RoleProduct, parser.RoleAmount}

// SupplyProcessor 供货（HAVI）处理器
type SupplyProcessor struct {
	opts Options
}

// NewSupplyProcessor 创建供货处理器
func NewSupplyProcessor(opts Options) *SupplyProcessor {
	return &SupplyProcessor{opts: opts.withDefaults()}
}

// Kind 数据源类型
func (p *SupplyProcessor) Kind() model.SourceKind {
	return model.SourceSupply
}

// Process 解析供货明细
// 只保留原料表中登记过的物料；同一 (日期, 门店, 原料, 单位) 的多行合计
func (p *SupplyProcessor) Process(table model.Table) (Result, error) {
	res := emptyResult(model.SourceSupply)
	log := p.opts.Logger.With().Str("kind", string(model.SourceSupply)).Str("file", table.FileName()).Logger()

	table = locateHeader(p.opts.Inferencer, table, parser.SupplyRoles, supplyRequired)
	mapping := p.opts.Inferencer.Infer(table, parser.SupplyRoles)
	if missing := mapping.Missing(supplyRequired...); len(missing) > 0 {
		err := &ColumnsError{Kind: model.SourceSupply, Missing: missing}
		log.Error().Err(err).Interface("columns", table.Columns).Msg("供货必需列缺失")
		return res, err
	}
	if _, ok := mapping.Column(parser.RoleDate); !ok {
		log.Warn().Msg("未找到发票日期列，日期留空")
	}
	res.Mapping = mapping

	agg := newSupplyAggregator()
	skipped, untracked := 0, 0
	for _, rec := range table.Records {
		entry, ok, tracked := p.entry(rec, mapping)
		if !tracked {
			untracked++
		}
		if !ok {
			skipped++
			continue
		}
		agg.add(entry)
	}

	entries := agg.entries()
	res.Dataset = model.SupplySet(entries)
	res.Stats = Stats{
		RowsRead:    len(table.Records),
		RowsSkipped: skipped,
		RowsEmitted: len(entries),
	}
	log.Info().
		Int("rows", len(table.Records)).
		Int("untracked", untracked).
		Int("skipped", skipped).
		Int("entries", len(entries)).
		Msg("供货处理完成")
	return res, nil
}

// entry 单行转换；tracked 表示物料在原料表中
func (p *SupplyProcessor) entry(rec model.Record, mapping parser.Mapping) (model.SupplyEntry, bool, bool) {
	desc := strings.TrimSpace(rec.Text(mapping[parser.RoleProduct]))
	if desc == "" {
		return model.SupplyEntry{}, false, true
	}
	if !p.opts.Normalizer.IsTrackedResource(desc) {
		return model.SupplyEntry{}, false, false
	}

	branch := normalize.StripBranchPrefix(rec.Text(mapping[parser.RoleBranch]))
	if branch == "" {
		return model.SupplyEntry{}, false, true
	}

	date := ""
	if col, ok := mapping.Column(parser.RoleDate); ok {
		date = parser.FormatDate(rec[col])
	}

	declared := parser.AmountOrZero(rec[mapping[parser.RoleAmount]])
	q := unit.Extract(desc, declared)
	if q.Unit != model.UnitCount {
		// 可颂类一律按个计数
		if c, ok := unit.CountQuantity(desc); ok {
			q = c
		}
	}
	p.opts.Logger.Trace().Str("desc", desc).Str("rule", q.Rule).Float64("base", q.Base).Msg("包装数量解析")

	return model.SupplyEntry{
		Date:        date,
		Branch:      branch,
		Resource:    p.opts.Normalizer.Ingredient(desc),
		Amount:      declared,
		TotalAmount: q.Total(declared),
		Unit:        model.NormalizeUnit(q.Unit),
	}, true, true
}

// supplyAggregator 按首次出现顺序合计
type supplyAggregator struct {
	index map[string]int
	out   []model.SupplyEntry
}

func newSupplyAggregator() *supplyAggregator {
	return &supplyAggregator{index: make(map[string]int), out: []model.SupplyEntry{}}
}

func (a *supplyAggregator) add(e model.SupplyEntry) {
	key := strings.Join([]string{e.Date, e.Branch, e.Resource, e.Unit}, "|")
	if i, ok := a.index[key]; ok {
		a.out[i].Amount += e.Amount
		a.out[i].TotalAmount += e.TotalAmount
		return
	}
	a.index[key] = len(a.out)
	a.out = append(a.out, e)
}

func (a *supplyAggregator) entries() []model.SupplyEntry {
	return a.out
}
