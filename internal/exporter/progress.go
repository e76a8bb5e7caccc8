package exporter

// ProgressEvent 导出进度事件
type ProgressEvent struct {
	Percent int    `json:"percent"`
	Stage   string `json:"stage"`
	Sheet   string `json:"sheet,omitempty"`
}

// progressReporter 百分比限制在 0..100 且不回退；相同百分比不重复上报
type progressReporter struct {
	fn   func(ProgressEvent)
	last int
}

func newProgressReporter(fn func(ProgressEvent)) *progressReporter {
	return &progressReporter{fn: fn, last: -1}
}

func (p *progressReporter) report(percent int, stage, sheet string) {
	if p.fn == nil {
		return
	}
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	if percent <= p.last {
		return
	}
	p.last = percent
	p.fn(ProgressEvent{Percent: percent, Stage: stage, Sheet: sheet})
}

// rows 按已写行数在 [from, to] 区间内插值
func (p *progressReporter) rows(done, total, from, to int, stage, sheet string) {
	if total <= 0 {
		return
	}
	p.report(from+(to-from)*done/total, stage, sheet)
}
