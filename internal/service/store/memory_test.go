package store

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/BerkeYazan/Resource-Mismatch-Analysis/internal/model"
	dbstore "github.com/BerkeYazan/Resource-Mismatch-Analysis/internal/store"
)

func newTestStore() *MemoryStore {
	s := NewMemoryStore()
	clock := time.Date(2025, 4, 18, 9, 30, 0, 0, time.UTC)
	var mu sync.Mutex
	s.now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		clock = clock.Add(time.Second)
		return clock
	}
	return s
}

// TestNewMemoryStore 测试创建存储
func TestNewMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	if store == nil {
		t.Fatal("NewMemoryStore() returned nil")
	}
	if store.Count() != 0 {
		t.Errorf("New store should be empty, got %d projects", store.Count())
	}
}

// TestCreateProject 测试创建项目与默认名称
func TestCreateProject(t *testing.T) {
	store := newTestStore()

	p, err := store.Create("")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if p.Name != "Analiz 18.04.2025 09:30" {
		t.Errorf("default name = %q", p.Name)
	}
	for i, done := range p.CompletedSteps {
		if done {
			t.Errorf("step %d should start incomplete", i)
		}
	}

	named, _ := store.Create("Nisan")
	if named.Name != "Nisan" {
		t.Errorf("name = %q, want Nisan", named.Name)
	}
	if store.Count() != 2 {
		t.Errorf("Store should have 2 projects, got %d", store.Count())
	}
}

// TestGetProjectNotFound 测试获取不存在的项目
func TestGetProjectNotFound(t *testing.T) {
	store := NewMemoryStore()

	_, err := store.Get("non-existent")
	if !errors.Is(err, dbstore.ErrProjectNotFound) {
		t.Errorf("Get should return ErrProjectNotFound, got %v", err)
	}
	if err := store.Delete("non-existent"); !errors.Is(err, dbstore.ErrProjectNotFound) {
		t.Errorf("Delete should return ErrProjectNotFound, got %v", err)
	}
}

// TestListNewestFirst 测试列表排序
func TestListNewestFirst(t *testing.T) {
	store := newTestStore()

	a, _ := store.Create("a")
	b, _ := store.Create("b")
	c, _ := store.Create("c")

	items, err := store.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	want := []string{c.ID, b.ID, a.ID}
	for i, id := range want {
		if items[i].ID != id {
			t.Errorf("items[%d] = %s, want %s", i, items[i].ID, id)
		}
	}
}

// TestUpdateDataset 测试写入数据集与步骤标记
func TestUpdateDataset(t *testing.T) {
	store := newTestStore()
	p, _ := store.Create("demo")

	sales := model.SalesSet{{Date: "2025-04-01", EndDate: "2025-04-30", Branch: "Kadıköy", Product: "LATTE", Amount: 5.5}}
	updated, err := store.UpdateDataset(p.ID, sales)
	if err != nil {
		t.Fatalf("UpdateDataset failed: %v", err)
	}
	if !updated.CompletedSteps[model.StepSales] {
		t.Error("sales step should be complete")
	}
	if updated.CompletedSteps[model.StepRecipe] {
		t.Error("recipe step should stay incomplete")
	}

	// 修改调用方切片不影响存储
	sales[0].Amount = 99
	got, _ := store.Get(p.ID)
	if got.Sales[0].Amount != 5.5 {
		t.Errorf("stored amount = %v, want 5.5", got.Sales[0].Amount)
	}

	// 修改返回副本不影响存储
	got.Sales[0].Branch = "X"
	again, _ := store.Get(p.ID)
	if again.Sales[0].Branch != "Kadıköy" {
		t.Errorf("stored branch = %q, want Kadıköy", again.Sales[0].Branch)
	}

	updated, _ = store.UpdateDataset(p.ID, model.SalesSet(nil))
	if updated.CompletedSteps[model.StepSales] {
		t.Error("empty dataset should clear the step flag")
	}
}

// TestUpdateStep 测试步骤标记
func TestUpdateStep(t *testing.T) {
	store := newTestStore()
	p, _ := store.Create("demo")

	updated, err := store.UpdateStep(p.ID, model.StepAnalysis, true)
	if err != nil {
		t.Fatalf("UpdateStep failed: %v", err)
	}
	if !updated.CompletedSteps[model.StepAnalysis] {
		t.Error("analysis step should be complete")
	}

	if _, err := store.UpdateStep(p.ID, model.StepCount, true); !errors.Is(err, dbstore.ErrInvalidStep) {
		t.Errorf("out of range step should fail, got %v", err)
	}
	if _, err := store.UpdateStep("missing", 0, true); !errors.Is(err, dbstore.ErrProjectNotFound) {
		t.Errorf("missing project should fail, got %v", err)
	}
}

// TestImportHistory 测试导入记录
func TestImportHistory(t *testing.T) {
	store := newTestStore()
	p, _ := store.Create("demo")

	for _, name := range []string{"a.xlsx", "b.xlsx", "c.xlsx"} {
		if err := store.RecordImport(model.ImportRecord{ProjectID: p.ID, FileName: name, Status: model.ImportStatusOK}); err != nil {
			t.Fatalf("RecordImport failed: %v", err)
		}
	}
	if err := store.RecordImport(model.ImportRecord{ProjectID: "missing"}); !errors.Is(err, dbstore.ErrProjectNotFound) {
		t.Errorf("unknown project should fail, got %v", err)
	}

	history, _ := store.ImportHistory(p.ID, 2)
	if len(history) != 2 || history[0].FileName != "c.xlsx" || history[1].FileName != "b.xlsx" {
		t.Errorf("unexpected history: %+v", history)
	}

	_ = store.Delete(p.ID)
	history, _ = store.ImportHistory(p.ID, 0)
	if len(history) != 0 {
		t.Errorf("history should be removed with the project, got %d", len(history))
	}
}

// TestConcurrentAccess 测试并发访问
func TestConcurrentAccess(t *testing.T) {
	store := newTestStore()
	p, _ := store.Create("demo")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = store.Get(p.ID)
			_, _ = store.List()
		}()
		go func(idx int) {
			defer wg.Done()
			_, _ = store.UpdateStep(p.ID, idx%model.StepCount, idx%2 == 0)
			_, _ = store.Create("")
		}(i)
	}
	wg.Wait()

	if store.Count() != 51 {
		t.Errorf("After concurrent access, count = %d, want 51", store.Count())
	}
}

// TestClear 测试清空数据
func TestClear(t *testing.T) {
	store := newTestStore()
	_, _ = store.Create("a")
	_, _ = store.Create("b")

	store.Clear()
	if store.Count() != 0 {
		t.Errorf("After clear, count should be 0, got %d", store.Count())
	}
}
