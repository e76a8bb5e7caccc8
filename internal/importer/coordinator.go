package importer

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/BerkeYazan/Resource-Mismatch-Analysis/internal/model"
	"github.com/BerkeYazan/Resource-Mismatch-Analysis/internal/parser"
)

// Coordinator 导入协调器：读取表格 -> 识别数据源类型 -> 调用对应处理器
type Coordinator struct {
	reader     *parser.Reader
	inferencer *parser.Inferencer
	opts       Options
	log        zerolog.Logger
}

// NewCoordinator 创建导入协调器
func NewCoordinator(opts Options) *Coordinator {
	opts = opts.withDefaults()
	return &Coordinator{
		reader:     parser.NewReader(),
		inferencer: opts.Inferencer,
		opts:       opts,
		log:        opts.Logger,
	}
}

// ImportOptions 导入选项
type ImportOptions struct {
	Kind     model.SourceKind // 为空时按表头自动识别
	FileName string
	Data     []byte
}

// Report 导入报告
type Report struct {
	Result
	FileName    string                    `json:"fileName"`
	SheetName   string                    `json:"sheetName"`
	Columns     []string                  `json:"columns"`
	Recognition *parser.SourceRecognition `json:"recognition,omitempty"` // 自动识别时的结果
	ImportedAt  time.Time                 `json:"importedAt"`
	Duration    time.Duration             `json:"duration"`
}

// Import 读取并处理一个文件
// 读取失败直接返回错误；列识别失败时返回空结果和 ErrColumnsNotFound
func (c *Coordinator) Import(opts ImportOptions) (*Report, error) {
	start := time.Now()

	table, err := c.reader.Read(opts.FileName, opts.Data)
	if err != nil {
		c.log.Error().Err(err).Str("file", opts.FileName).Msg("读取文件失败")
		return nil, fmt.Errorf("failed to read %s: %w", opts.FileName, err)
	}

	report := &Report{
		FileName:   opts.FileName,
		SheetName:  table.SheetName,
		Columns:    table.Columns,
		ImportedAt: start.UTC(),
	}

	kind := opts.Kind
	if kind == "" {
		rec := c.inferencer.Recognize(table)
		report.Recognition = &rec
		if rec.Kind == "" {
			report.Result = emptyResult(model.SourceSales)
			return report, &ColumnsError{Kind: model.SourceSales, Missing: salesRequired}
		}
		kind = rec.Kind
		c.log.Info().Str("file", opts.FileName).Str("kind", string(kind)).Float64("confidence", rec.Confidence).Msg("自动识别数据源类型")
	}

	processor, err := NewProcessor(kind, c.opts)
	if err != nil {
		return nil, err
	}
	res, err := processor.Process(table)
	report.Result = res
	report.Duration = time.Since(start)
	return report, err
}

