package importer

import (
	"strings"

	"github.com/BerkeYazan/Resource-Mismatch-Analysis/internal/model"
	"github.com/BerkeYazan/Resource-Mismatch-Analysis/internal/normalize"
	"github.com/BerkeYazan/Resource-Mismatch-Analysis/internal/parser"
)

var salesRequired = []parser.Role{parser.RoleBranch, parser.RoleProduct, parser.RoleAmount}

// SalesProcessor 收银（AktifPOS）处理器
type SalesProcessor struct {
	opts Options
}

// NewSalesProcessor 创建收银处理器
func NewSalesProcessor(opts Options) *SalesProcessor {
	return &SalesProcessor{opts: opts.withDefaults()}
}

// Kind 数据源类型
func (p *SalesProcessor) Kind() model.SourceKind {
	return model.SourceSales
}

// Process 解析收银报表
// 整份报表使用同一个日期区间；缺门店或商品的行跳过；按 (门店, 商品) 合计
func (p *SalesProcessor) Process(table model.Table) (Result, error) {
	res := emptyResult(model.SourceSales)
	log := p.opts.Logger.With().Str("kind", string(model.SourceSales)).Str("file", table.FileName()).Logger()

	candidates := dateCandidates(table)

	table = locateHeader(p.opts.Inferencer, table, parser.SalesRoles, salesRequired)
	mapping := p.opts.Inferencer.Infer(table, parser.SalesRoles)
	if missing := mapping.Missing(salesRequired...); len(missing) > 0 {
		err := &ColumnsError{Kind: model.SourceSales, Missing: missing}
		log.Error().Err(err).Interface("columns", table.Columns).Msg("收银必需列缺失")
		return res, err
	}
	res.Mapping = mapping

	dr, ok := parser.FindDateRange(candidates...)
	if !ok {
		dr = parser.CurrentMonthRange(p.opts.Now())
		log.Warn().Str("start", dr.StartISO()).Str("end", dr.EndISO()).Msg("报表中未找到日期区间，使用当前月份")
	}
	res.DateRange = &dr

	index := make(map[string]int)
	entries := []model.SalesEntry{}
	skipped := 0
	for _, rec := range table.Records {
		rawBranch := strings.TrimSpace(rec.Text(mapping[parser.RoleBranch]))
		rawProduct := strings.TrimSpace(rec.Text(mapping[parser.RoleProduct]))
		if rawBranch == "" || rawProduct == "" {
			skipped++
			continue
		}
		branch := normalize.StripBranchPrefix(rawBranch)
		product := p.opts.Normalizer.Product(rawProduct)
		if branch == "" || product == "" {
			skipped++
			continue
		}
		amount := parser.AmountOrZero(rec[mapping[parser.RoleAmount]])

		key := branch + "|" + product
		if i, ok := index[key]; ok {
			entries[i].Amount += amount
			continue
		}
		index[key] = len(entries)
		entries = append(entries, model.SalesEntry{
			Date:    dr.StartISO(),
			EndDate: dr.EndISO(),
			Branch:  branch,
			Product: product,
			Amount:  amount,
		})
	}

	res.Dataset = model.SalesSet(entries)
	res.Stats = Stats{
		RowsRead:    len(table.Records),
		RowsSkipped: skipped,
		RowsEmitted: len(entries),
	}
	log.Info().
		Int("rows", len(table.Records)).
		Int("skipped", skipped).
		Int("entries", len(entries)).
		Str("start", dr.StartISO()).
		Msg("收银处理完成")
	return res, nil
}

// dateCandidates 日期区间的候选文本：表头单元格、前几行单元格、源文件名
func dateCandidates(table model.Table) []string {
	out := append([]string{}, table.Columns...)
	limit := headerSearchRows
	if len(table.Records) < limit {
		limit = len(table.Records)
	}
	for _, rec := range table.Records[:limit] {
		for _, col := range table.Columns {
			if s, ok := rec[col].(string); ok && s != "" {
				out = append(out, s)
			}
		}
	}
	return append(out, table.FileName())
}
