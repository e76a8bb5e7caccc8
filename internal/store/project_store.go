package store

import (
	"errors"

	"github.com/BerkeYazan/Resource-Mismatch-Analysis/internal/model"
)

var (
	ErrProjectNotFound = errors.New("project not found")
	ErrInvalidStep     = errors.New("invalid step index")
)

// ProjectStore 分析项目持久化
// 写入数据集时同步对应步骤的完成标记；返回值都是副本
type ProjectStore interface {
	Create(name string) (*model.Project, error)
	List() ([]model.ProjectSummary, error)
	Get(id string) (*model.Project, error)
	UpdateDataset(id string, ds model.Dataset) (*model.Project, error)
	UpdateStep(id string, index int, done bool) (*model.Project, error)
	Delete(id string) error

	RecordImport(rec model.ImportRecord) error
	ImportHistory(id string, limit int) ([]model.ImportRecord, error)

	Close() error
}
