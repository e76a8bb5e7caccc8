package importer

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/BerkeYazan/Resource-Mismatch-Analysis/internal/model"
	"github.com/BerkeYazan/Resource-Mismatch-Analysis/internal/normalize"
	"github.com/BerkeYazan/Resource-Mismatch-Analysis/internal/parser"
)

// ErrColumnsNotFound 必需列无法识别；处理器返回空结果
var ErrColumnsNotFound = errors.New("gerekli sütunlar bulunamadı")

// headerSearchRows 表头不在第一行时向下查找的行数
const headerSearchRows = 5

// ColumnsError 记录缺失的列角色
type ColumnsError struct {
	Kind    model.SourceKind
	Missing []parser.Role
}

func (e *ColumnsError) Error() string {
	roles := make([]string, len(e.Missing))
	for i, r := range e.Missing {
		roles[i] = string(r)
	}
	return fmt.Sprintf("%s: %s (%s)", ErrColumnsNotFound.Error(), e.Kind.Label(), strings.Join(roles, ", "))
}

func (e *ColumnsError) Unwrap() error {
	return ErrColumnsNotFound
}

// Stats 行处理统计
type Stats struct {
	RowsRead    int `json:"rowsRead"`
	RowsSkipped int `json:"rowsSkipped"`
	RowsEmitted int `json:"rowsEmitted"` // 汇总后的条数
}

// Result 单个文件的处理结果
type Result struct {
	Kind      model.SourceKind  `json:"kind"`
	Dataset   model.Dataset     `json:"-"`
	Mapping   parser.Mapping    `json:"mapping"`
	DateRange *parser.DateRange `json:"dateRange,omitempty"` // 仅收银报表
	Stats     Stats             `json:"stats"`
}

func emptyResult(kind model.SourceKind) Result {
	var ds model.Dataset
	switch kind {
	case model.SourceRecipe:
		ds = model.RecipeSet{}
	case model.SourceSupply:
		ds = model.SupplySet{}
	default:
		ds = model.SalesSet{}
	}
	return Result{Kind: kind, Dataset: ds, Mapping: parser.Mapping{}}
}

// Processor 把表格记录转换为某一类规范化数据
type Processor interface {
	Kind() model.SourceKind
	Process(table model.Table) (Result, error)
}

// Options 处理器依赖
type Options struct {
	Normalizer *normalize.Normalizer
	Inferencer *parser.Inferencer
	Logger     zerolog.Logger
	Now        func() time.Time // 收银报表缺少日期时使用当前月
}

func (o Options) withDefaults() Options {
	if o.Normalizer == nil {
		o.Normalizer = normalize.Default()
	}
	if o.Inferencer == nil {
		o.Inferencer = parser.NewInferencer(parser.DefaultInferOptions())
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// NewProcessor 按数据源类型创建处理器
func NewProcessor(kind model.SourceKind, opts Options) (Processor, error) {
	switch kind {
	case model.SourceRecipe:
		return NewRecipeProcessor(opts), nil
	case model.SourceSupply:
		return NewSupplyProcessor(opts), nil
	case model.SourceSales:
		return NewSalesProcessor(opts), nil
	default:
		return nil, fmt.Errorf("unknown source kind %q", kind)
	}
}

// locateHeader 表头行识别：当前表头解析不出必需列时，
// 在前几条记录中找能解析出全部必需列的一行提升为表头；都不行则原样返回
func locateHeader(inf *parser.Inferencer, table model.Table, specs []parser.RoleSpec, required []parser.Role) model.Table {
	headerOnly := make([]parser.RoleSpec, len(specs))
	for i, spec := range specs {
		spec.Shape = parser.ShapeNone
		headerOnly[i] = spec
	}

	if len(inf.Infer(table, headerOnly).Missing(required...)) == 0 {
		return table
	}
	limit := headerSearchRows
	if len(table.Records) < limit {
		limit = len(table.Records)
	}
	for i := 0; i < limit; i++ {
		promoted := table.PromoteHeader(i)
		if len(inf.Infer(promoted, headerOnly).Missing(required...)) == 0 {
			return promoted
		}
	}
	return table
}
