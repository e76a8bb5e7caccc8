package normalize

import (
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed tables.yaml
var defaultTablesYAML []byte

// Entry 有序查找表中的一条：模式 -> 标准名
type Entry struct {
	Pattern string `yaml:"pattern"`
	Name    string `yaml:"name"`
}

// Tables 规范化所需的全部查找表，加载后只读
type Tables struct {
	Resources        []Entry `yaml:"resources"`
	Products         []Entry `yaml:"products"`
	ProductOverrides []Entry `yaml:"product_overrides"`
	BranchExceptions []Entry `yaml:"branch_exceptions"`
	BranchPrefixes   []Entry `yaml:"branch_prefixes"`
	BranchSuffixes   []Entry `yaml:"branch_suffixes"`
}

// IssueLevel 表校验问题级别
type IssueLevel string

const (
	IssueWarning IssueLevel = "warning"
	IssueError   IssueLevel = "error"
)

// Issue 表校验发现的问题
type Issue struct {
	Level   IssueLevel `json:"level"`
	Table   string     `json:"table"`
	Index   int        `json:"index"`
	Pattern string     `json:"pattern"`
	Message string     `json:"message"`
}

func (i Issue) String() string {
	return fmt.Sprintf("[%s] %s#%d %q: %s", i.Level, i.Table, i.Index, i.Pattern, i.Message)
}

var (
	defaultOnce   sync.Once
	defaultTables *Tables
	defaultErr    error
)

// DefaultTables 返回内置查找表（进程内只解析一次）
func DefaultTables() (*Tables, error) {
	defaultOnce.Do(func() {
		defaultTables, defaultErr = ParseTables(defaultTablesYAML)
	})
	return defaultTables, defaultErr
}

// MustDefaultTables 内置表解析失败时 panic；内置表由测试保证可解析
func MustDefaultTables() *Tables {
	t, err := DefaultTables()
	if err != nil {
		panic(err)
	}
	return t
}

// LoadTablesFile 从外部 YAML 文件加载查找表
func LoadTablesFile(path string) (*Tables, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open tables file: %w", err)
	}
	defer f.Close()
	return LoadTables(f)
}

// LoadTables 从 reader 加载查找表
func LoadTables(r io.Reader) (*Tables, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read tables: %w", err)
	}
	return ParseTables(data)
}

// ParseTables 解析并校验查找表；存在 error 级问题时返回错误
func ParseTables(data []byte) (*Tables, error) {
	t, err := DecodeTables(data)
	if err != nil {
		return nil, err
	}
	for _, issue := range t.Validate() {
		if issue.Level == IssueError {
			return nil, fmt.Errorf("invalid tables: %s", issue)
		}
	}
	return t, nil
}

// DecodeTables 只解析不校验，供表检查工具列出全部问题
func DecodeTables(data []byte) (*Tables, error) {
	var t Tables
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse tables: %w", err)
	}
	return &t, nil
}

// DefaultTablesYAML 内置查找表原文
func DefaultTablesYAML() []byte {
	return defaultTablesYAML
}

// Validate 检查表维护错误：
// 同一模式映射到不同标准名为 error；
// 重复模式（同名）以及被前面更短模式遮蔽、永远不会命中的模式为 warning。
func (t *Tables) Validate() []Issue {
	var issues []Issue
	issues = append(issues, validateSubstringTable("resources", t.Resources, strings.ToLower, true)...)
	// 商品表先精确匹配，子串遮蔽不影响可达性
	issues = append(issues, validateSubstringTable("products", t.Products, strings.ToUpper, false)...)
	issues = append(issues, validateExactTable("product_overrides", t.ProductOverrides)...)
	branchTables := []struct {
		name    string
		entries []Entry
	}{
		{"branch_exceptions", t.BranchExceptions},
		{"branch_prefixes", t.BranchPrefixes},
		{"branch_suffixes", t.BranchSuffixes},
	}
	for _, bt := range branchTables {
		issues = append(issues, validateExactTable(bt.name, bt.entries)...)
		issues = append(issues, validateBranchRestore(bt.name, bt.entries)...)
	}
	return issues
}

// validateBranchRestore 还原后的门店名去掉土耳其字母后必须与模式一致，否则门店名规范化不再幂等
func validateBranchRestore(table string, entries []Entry) []Issue {
	var issues []Issue
	for i, e := range entries {
		if e.Pattern == "" || e.Name == "" {
			continue
		}
		if strings.ToUpper(FoldTurkish(e.Name)) != e.Pattern {
			issues = append(issues, Issue{
				Level:   IssueError,
				Table:   table,
				Index:   i,
				Pattern: e.Pattern,
				Message: fmt.Sprintf("restored name %q does not fold back to pattern", e.Name),
			})
		}
	}
	return issues
}

func validateExactTable(table string, entries []Entry) []Issue {
	var issues []Issue
	seen := make(map[string]Entry, len(entries))
	for i, e := range entries {
		if strings.TrimSpace(e.Pattern) == "" || e.Name == "" {
			issues = append(issues, Issue{Level: IssueError, Table: table, Index: i, Pattern: e.Pattern, Message: "empty pattern or name"})
			continue
		}
		if prev, ok := seen[e.Pattern]; ok {
			issues = append(issues, duplicateIssue(table, i, e, prev))
			continue
		}
		seen[e.Pattern] = e
	}
	return issues
}

type foldedPattern struct {
	key   string
	index int
}

func validateSubstringTable(table string, entries []Entry, fold func(string) string, checkShadow bool) []Issue {
	var issues []Issue
	seen := make(map[string]Entry, len(entries))
	folded := make([]foldedPattern, 0, len(entries))
	for i, e := range entries {
		if strings.TrimSpace(e.Pattern) == "" || e.Name == "" {
			issues = append(issues, Issue{Level: IssueError, Table: table, Index: i, Pattern: e.Pattern, Message: "empty pattern or name"})
			continue
		}
		key := fold(e.Pattern)
		if prev, ok := seen[key]; ok {
			issues = append(issues, duplicateIssue(table, i, e, prev))
			continue
		}
		for _, earlier := range folded {
			if !checkShadow {
				break
			}
			if strings.Contains(key, earlier.key) {
				issues = append(issues, Issue{
					Level:   IssueWarning,
					Table:   table,
					Index:   i,
					Pattern: e.Pattern,
					Message: fmt.Sprintf("shadowed by earlier pattern %q (#%d)", entries[earlier.index].Pattern, earlier.index),
				})
				break
			}
		}
		seen[key] = e
		folded = append(folded, foldedPattern{key: key, index: i})
	}
	return issues
}

func duplicateIssue(table string, i int, e, prev Entry) Issue {
	if prev.Name != e.Name {
		return Issue{
			Level:   IssueError,
			Table:   table,
			Index:   i,
			Pattern: e.Pattern,
			Message: fmt.Sprintf("conflicting duplicate: %q vs %q", prev.Name, e.Name),
		}
	}
	return Issue{Level: IssueWarning, Table: table, Index: i, Pattern: e.Pattern, Message: "duplicate pattern"}
}
