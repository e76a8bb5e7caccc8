package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/BerkeYazan/Resource-Mismatch-Analysis/internal/model"
)

// timeLayout 定长时间格式，保证文本排序与时间顺序一致
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const projectColumns = `id, name, created_at, updated_at, recipe_data, supply_data, sales_data, completed_steps`

// Create 创建项目，名称为空时使用默认名称
func (s *SQLiteStore) Create(name string) (*model.Project, error) {
	p := model.NewProject(name, s.now())
	if err := s.insert(p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *SQLiteStore) insert(p *model.Project) error {
	row, err := encodeProject(p)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`
		INSERT INTO projects (`+projectColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, row.id, row.name, row.createdAt, row.updatedAt, row.recipes, row.supply, row.sales, row.steps)
	if err != nil {
		return fmt.Errorf("failed to insert project: %w", err)
	}
	return nil
}

// List 项目列表，最新创建的在前
func (s *SQLiteStore) List() ([]model.ProjectSummary, error) {
	rows, err := s.db.Query(`SELECT ` + projectColumns + ` FROM projects ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query projects: %w", err)
	}
	defer rows.Close()

	items := []model.ProjectSummary{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p.Summary())
	}
	return items, rows.Err()
}

// Get 获取项目
func (s *SQLiteStore) Get(id string) (*model.Project, error) {
	row := s.db.QueryRow(`SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)
	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProjectNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// UpdateDataset 写入一类数据集并同步步骤标记
func (s *SQLiteStore) UpdateDataset(id string, ds model.Dataset) (*model.Project, error) {
	return s.update(id, func(p *model.Project) error {
		p.SetDataset(ds)
		return nil
	})
}

// UpdateStep 设置步骤完成标记
func (s *SQLiteStore) UpdateStep(id string, index int, done bool) (*model.Project, error) {
	if !model.ValidStep(index) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidStep, index)
	}
	return s.update(id, func(p *model.Project) error {
		p.CompletedSteps[index] = done
		return nil
	})
}

// update 读取-修改-写回，在一个事务内完成
func (s *SQLiteStore) update(id string, mutate func(*model.Project) error) (*model.Project, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	p, err := scanProject(tx.QueryRow(`SELECT `+projectColumns+` FROM projects WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProjectNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := mutate(p); err != nil {
		return nil, err
	}
	p.UpdatedAt = s.now()

	row, err := encodeProject(p)
	if err != nil {
		return nil, err
	}
	if _, err := tx.Exec(`
		UPDATE projects SET
			name = ?,
			updated_at = ?,
			recipe_data = ?,
			supply_data = ?,
			sales_data = ?,
			completed_steps = ?
		WHERE id = ?
	`, row.name, row.updatedAt, row.recipes, row.supply, row.sales, row.steps, row.id); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit: %w", err)
	}
	return p, nil
}

// Delete 删除项目及其导入记录
func (s *SQLiteStore) Delete(id string) error {
	res, err := s.db.Exec(`DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if n == 0 {
		return ErrProjectNotFound
	}
	return nil
}

type projectRow struct {
	id, name             string
	createdAt, updatedAt string
	recipes, supply      string
	sales, steps         string
}

func encodeProject(p *model.Project) (projectRow, error) {
	row := projectRow{
		id:        p.ID,
		name:      p.Name,
		createdAt: p.CreatedAt.UTC().Format(timeLayout),
		updatedAt: p.UpdatedAt.UTC().Format(timeLayout),
	}
	fields := []struct {
		dst *string
		v   any
	}{
		{&row.recipes, nonNil(p.Recipes)},
		{&row.supply, nonNil(p.Supply)},
		{&row.sales, nonNil(p.Sales)},
		{&row.steps, p.CompletedSteps},
	}
	for _, f := range fields {
		data, err := json.Marshal(f.v)
		if err != nil {
			return projectRow{}, fmt.Errorf("failed to encode project %s: %w", p.ID, err)
		}
		*f.dst = string(data)
	}
	return row, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProject(sc scanner) (*model.Project, error) {
	var row projectRow
	if err := sc.Scan(&row.id, &row.name, &row.createdAt, &row.updatedAt, &row.recipes, &row.supply, &row.sales, &row.steps); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan project: %w", err)
	}

	p := &model.Project{ID: row.id, Name: row.name}
	var err error
	if p.CreatedAt, err = time.Parse(timeLayout, row.createdAt); err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if p.UpdatedAt, err = time.Parse(timeLayout, row.updatedAt); err != nil {
		return nil, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	fields := []struct {
		src string
		dst any
	}{
		{row.recipes, &p.Recipes},
		{row.supply, &p.Supply},
		{row.sales, &p.Sales},
		{row.steps, &p.CompletedSteps},
	}
	for _, f := range fields {
		if err := json.Unmarshal([]byte(f.src), f.dst); err != nil {
			return nil, fmt.Errorf("failed to decode project %s: %w", row.id, err)
		}
	}
	return p, nil
}

func nonNil[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}
