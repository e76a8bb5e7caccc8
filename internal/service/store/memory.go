package store

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/BerkeYazan/Resource-Mismatch-Analysis/internal/model"
	dbstore "github.com/BerkeYazan/Resource-Mismatch-Analysis/internal/store"
)

// MemoryStore 内存项目存储，进程退出后数据丢失
type MemoryStore struct {
	projects map[string]*model.Project
	imports  map[string][]model.ImportRecord
	now      func() time.Time
	mu       sync.RWMutex
}

var _ dbstore.ProjectStore = (*MemoryStore)(nil)

// NewMemoryStore 创建内存存储
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		projects: make(map[string]*model.Project),
		imports:  make(map[string][]model.ImportRecord),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Create 创建项目
func (s *MemoryStore) Create(name string) (*model.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := model.NewProject(name, s.now())
	s.projects[p.ID] = p
	return p.Clone(), nil
}

// List 项目列表，最新创建的在前
func (s *MemoryStore) List() ([]model.ProjectSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]model.ProjectSummary, 0, len(s.projects))
	for _, p := range s.projects {
		items = append(items, p.Summary())
	}
	sort.Slice(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.After(items[j].CreatedAt)
		}
		return items[i].ID > items[j].ID
	})
	return items, nil
}

// Get 获取项目副本
func (s *MemoryStore) Get(id string) (*model.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.projects[id]
	if !ok {
		return nil, dbstore.ErrProjectNotFound
	}
	return p.Clone(), nil
}

// UpdateDataset 写入一类数据集并同步步骤标记
func (s *MemoryStore) UpdateDataset(id string, ds model.Dataset) (*model.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.projects[id]
	if !ok {
		return nil, dbstore.ErrProjectNotFound
	}
	next := p.Clone()
	next.SetDataset(ds)
	// 入参切片可能被调用方继续修改，存一份副本
	next = next.Clone()
	next.UpdatedAt = s.now()
	s.projects[id] = next
	return next.Clone(), nil
}

// UpdateStep 设置步骤完成标记
func (s *MemoryStore) UpdateStep(id string, index int, done bool) (*model.Project, error) {
	if !model.ValidStep(index) {
		return nil, fmt.Errorf("%w: %d", dbstore.ErrInvalidStep, index)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.projects[id]
	if !ok {
		return nil, dbstore.ErrProjectNotFound
	}
	p.CompletedSteps[index] = done
	p.UpdatedAt = s.now()
	return p.Clone(), nil
}

// Delete 删除项目
func (s *MemoryStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.projects[id]; !ok {
		return dbstore.ErrProjectNotFound
	}
	delete(s.projects, id)
	delete(s.imports, id)
	return nil
}

// RecordImport 写入导入记录
func (s *MemoryStore) RecordImport(rec model.ImportRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.projects[rec.ProjectID]; !ok {
		return dbstore.ErrProjectNotFound
	}
	if rec.ImportedAt.IsZero() {
		rec.ImportedAt = s.now()
	}
	s.imports[rec.ProjectID] = append(s.imports[rec.ProjectID], rec)
	return nil
}

// ImportHistory 导入记录，最新的在前
func (s *MemoryStore) ImportHistory(id string, limit int) ([]model.ImportRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := s.imports[id]
	out := make([]model.ImportRecord, 0, len(records))
	for i := len(records) - 1; i >= 0; i-- {
		out = append(out, records[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// Count 项目数量
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.projects)
}

// Clear 清空所有项目
func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects = make(map[string]*model.Project)
	s.imports = make(map[string][]model.ImportRecord)
}

// Close 内存存储无需释放资源
func (s *MemoryStore) Close() error {
	return nil
}
