package reconcile

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/BerkeYazan/Resource-Mismatch-Analysis/internal/model"
	"github.com/BerkeYazan/Resource-Mismatch-Analysis/internal/normalize"
	"github.com/BerkeYazan/Resource-Mismatch-Analysis/internal/unit"
)

// DefaultNearMatchPercent 差异在 ±10% 之内视为基本一致
const DefaultNearMatchPercent = 10.0

var (
	// ErrAnalysisFailed 对账过程中出现意外错误，结果被清空
	ErrAnalysisFailed = errors.New("Analiz hesaplaması sırasında bir hata oluştu")
	// ErrMissingData 三类数据源未全部导入
	ErrMissingData = errors.New("eksik veri")
)

// MissingDataError 列出缺少的数据源
type MissingDataError struct {
	Missing []model.SourceKind
}

func (e *MissingDataError) Error() string {
	labels := make([]string, len(e.Missing))
	for i, k := range e.Missing {
		labels[i] = k.Label()
	}
	return fmt.Sprintf("%s: %s", ErrMissingData.Error(), strings.Join(labels, ", "))
}

func (e *MissingDataError) Unwrap() error {
	return ErrMissingData
}

// Options 对账参数
type Options struct {
	NearMatchPercent float64
	Normalizer       *normalize.Normalizer
	Logger           zerolog.Logger
}

// Engine 对账引擎：按 (门店, 原料) 比较供货量与理论用量
type Engine struct {
	nearMatch  float64
	normalizer *normalize.Normalizer
	log        zerolog.Logger
}

// NewEngine 创建对账引擎
func NewEngine(opts Options) *Engine {
	if opts.NearMatchPercent <= 0 {
		opts.NearMatchPercent = DefaultNearMatchPercent
	}
	if opts.Normalizer == nil {
		opts.Normalizer = normalize.Default()
	}
	return &Engine{
		nearMatch:  opts.NearMatchPercent,
		normalizer: opts.Normalizer,
		log:        opts.Logger,
	}
}

// NearMatchPercent 当前阈值
func (e *Engine) NearMatchPercent() float64 {
	return e.nearMatch
}

// Analysis 一次完整分析的结果
type Analysis struct {
	Results   []model.BranchResult  `json:"results"`
	Summaries []model.BranchSummary `json:"summaries"`
	Branches  []string              `json:"branches"`
	Resources []string              `json:"resources"`
	Provinces []string              `json:"provinces"`
}

// Analyze 对项目数据做完整分析；数据不全时返回 MissingDataError
func (e *Engine) Analyze(p *model.Project) (*Analysis, error) {
	if missing := p.Missing(); len(missing) > 0 {
		return nil, &MissingDataError{Missing: missing}
	}
	results, err := e.Reconcile(p.Recipes, p.Supply, p.Sales)
	if err != nil {
		return nil, err
	}
	return &Analysis{
		Results:   results,
		Summaries: e.Summarize(results),
		Branches:  UniqueBranches(results),
		Resources: UniqueResources(results),
		Provinces: UniqueProvinces(results),
	}, nil
}

type pairKey struct {
	ingredient string
	branch     string
}

type amount struct {
	value float64
	unit  string
}

// sums 预聚合的用量与供货量，keys 保留首次出现顺序
type sums struct {
	demand  map[pairKey]*amount
	supply  map[pairKey]*amount
	seen    map[pairKey]struct{}
	keys    []pairKey
	display map[string]string
}

func newSums() *sums {
	return &sums{
		demand:  make(map[pairKey]*amount),
		supply:  make(map[pairKey]*amount),
		seen:    make(map[pairKey]struct{}),
		display: make(map[string]string),
	}
}

func (s *sums) add(m map[pairKey]*amount, key pairKey, value float64, unit string) {
	cur, ok := m[key]
	if !ok {
		cur = &amount{}
		m[key] = cur
	}
	if _, ok := s.seen[key]; !ok {
		s.seen[key] = struct{}{}
		s.keys = append(s.keys, key)
	}
	cur.value += finite(value)
	cur.unit = unit
}

// Reconcile 对账
// 1. 收银数量 × 配方用量，按 (原料键, 门店) 汇总理论用量
// 2. 供货总量按同样的键汇总
// 3. 展示名优先取配方中的写法，其次取供货
// 4. 两侧键的并集逐一生成结果并排序
func (e *Engine) Reconcile(recipes []model.RecipeItem, supply []model.SupplyEntry, sales []model.SalesEntry) (results []model.BranchResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error().Interface("panic", r).Msg("对账计算异常")
			results = []model.BranchResult{}
			err = fmt.Errorf("%w: %v", ErrAnalysisFailed, r)
		}
	}()

	s := e.aggregate(recipes, supply, sales)

	results = make([]model.BranchResult, 0, len(s.keys))
	for _, key := range s.keys {
		results = append(results, e.buildResult(s, key))
	}
	SortDefault(results)

	e.log.Debug().
		Int("recipes", len(recipes)).
		Int("supply", len(supply)).
		Int("sales", len(sales)).
		Int("results", len(results)).
		Msg("对账完成")
	return results, nil
}

func (e *Engine) aggregate(recipes []model.RecipeItem, supply []model.SupplyEntry, sales []model.SalesEntry) *sums {
	s := newSums()

	byProduct := make(map[string][]model.RecipeItem)
	for _, r := range recipes {
		key := e.normalizer.Product(r.Product)
		byProduct[key] = append(byProduct[key], r)
	}

	for _, sale := range sales {
		branch := e.normalizer.Branch(sale.Branch)
		for _, r := range byProduct[e.normalizer.Product(sale.Product)] {
			key := pairKey{ingredient: normalize.IngredientKey(r.Ingredient), branch: branch}
			s.add(s.demand, key, r.Amount*sale.Amount, r.Unit)
		}
	}

	for _, entry := range supply {
		key := pairKey{ingredient: normalize.IngredientKey(entry.Resource), branch: e.normalizer.Branch(entry.Branch)}
		s.add(s.supply, key, entry.TotalAmount, entry.Unit)
	}

	for _, r := range recipes {
		k := normalize.IngredientKey(r.Ingredient)
		if _, ok := s.display[k]; !ok {
			s.display[k] = r.Ingredient
		}
	}
	for _, entry := range supply {
		k := normalize.IngredientKey(entry.Resource)
		if _, ok := s.display[k]; !ok {
			s.display[k] = entry.Resource
		}
	}
	return s
}

func (e *Engine) buildResult(s *sums, key pairKey) model.BranchResult {
	display, ok := s.display[key.ingredient]
	if !ok {
		display = key.ingredient
	}

	var supplied, demand float64
	u := model.UnitUnknown
	if d, ok := s.demand[key]; ok {
		demand = d.value
		u = d.unit
	}
	if sp, ok := s.supply[key]; ok {
		supplied = sp.value
		u = sp.unit
	}
	if strings.TrimSpace(u) == "" {
		u = model.UnitUnknown
	}
	u = model.NormalizeUnit(u)
	if unit.IsCountProduct(display) {
		u = model.UnitCount
	}

	r := model.BranchResult{
		Branch:         key.branch,
		Province:       normalize.Province(key.branch),
		Resource:       display,
		ResourceKey:    key.ingredient,
		Unit:           u,
		SuppliedAmount: supplied,
		DemandAmount:   demand,
	}
	if !model.IsComparableUnit(u) {
		return r
	}

	diff := supplied - demand
	r.Difference = &diff
	switch {
	case supplied != 0:
		pct := diff / supplied * 100
		r.DifferencePercent = &pct
	case demand > 0:
		r.PercentInfinite = true
	}
	return r
}

// SortDefault 默认排序：|差异%| 降序，未定义的排最后；再按门店、原料（土耳其语排序规则）
func SortDefault(results []model.BranchResult) {
	coll := collate.New(language.Turkish)
	sort.SliceStable(results, func(i, j int) bool {
		a, b := absPercent(results[i]), absPercent(results[j])
		if a != b {
			return a > b
		}
		if c := coll.CompareString(results[i].Branch, results[j].Branch); c != 0 {
			return c < 0
		}
		return coll.CompareString(results[i].Resource, results[j].Resource) < 0
	})
}

func absPercent(r model.BranchResult) float64 {
	if r.DifferencePercent == nil {
		return -1
	}
	return math.Abs(*r.DifferencePercent)
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
