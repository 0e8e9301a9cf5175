package indexer

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/StaffPilotAI/staffpilot/engine/domain"
	"github.com/StaffPilotAI/staffpilot/engine/semantic"
)

// --- Mocks ---

type mockSource struct {
	employees []domain.Employee
	err       error
}

func (m *mockSource) List(_ context.Context) ([]domain.Employee, error) {
	return m.employees, m.err
}

type mockEmbedder struct{ dims int }

func (m *mockEmbedder) Embed(_ context.Context, _ string) []float32 {
	return make([]float32, m.dims)
}

type mockStore struct {
	batches  [][]semantic.VectorRecord
	failNext int // fail the first N upsert calls
	info     semantic.CollectionInfo
	infoErr  error
}

func (m *mockStore) Upsert(_ context.Context, records []semantic.VectorRecord) error {
	if m.failNext > 0 {
		m.failNext--
		return errors.New("upsert fail")
	}
	m.batches = append(m.batches, records)
	return nil
}

func (m *mockStore) Info(_ context.Context) (semantic.CollectionInfo, error) {
	return m.info, m.infoErr
}

func employees(n int) []domain.Employee {
	out := make([]domain.Employee, n)
	for i := range out {
		out[i] = domain.Employee{
			ID:         fmt.Sprintf("emp-%03d", i),
			Name:       fmt.Sprintf("Employee %d", i),
			Position:   "Engineer",
			Department: "Engineering",
		}
	}
	return out
}

func newTestIndexer(src *mockSource, store *mockStore, batch int) *Indexer {
	return New(Deps{
		Source:   src,
		Embedder: &mockEmbedder{dims: 8},
		Store:    store,
	}, Options{BatchSize: batch})
}

// Retries in tests should not sleep for real.
func init() {
	upsertRetry.MaxAttempts = 1
	upsertRetry.InitialWait = 0
}

// --- Tests ---

func TestRun_Batches(t *testing.T) {
	store := &mockStore{info: semantic.CollectionInfo{PointsCount: 25}}
	ix := newTestIndexer(&mockSource{employees: employees(25)}, store, 10)

	report, err := ix.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Indexed != 25 || report.Skipped != 0 || report.Failed != 0 {
		t.Errorf("report = %+v", report)
	}
	if report.Points != 25 {
		t.Errorf("points = %d, want 25", report.Points)
	}
	if len(store.batches) != 3 {
		t.Fatalf("batches = %d, want 3", len(store.batches))
	}
	if len(store.batches[0]) != 10 || len(store.batches[2]) != 5 {
		t.Errorf("batch sizes = %d, %d, %d", len(store.batches[0]), len(store.batches[1]), len(store.batches[2]))
	}
}

func TestRun_DeduplicatesByID(t *testing.T) {
	emps := employees(3)
	emps = append(emps, emps[0], emps[1])
	store := &mockStore{}
	ix := newTestIndexer(&mockSource{employees: emps}, store, 10)

	report, err := ix.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Indexed != 3 {
		t.Errorf("indexed = %d, want 3 (duplicates map to the same point)", report.Indexed)
	}
	if len(store.batches) != 1 || len(store.batches[0]) != 3 {
		t.Fatalf("batches = %+v", store.batches)
	}
}

func TestRun_SkipsInvalidRecords(t *testing.T) {
	emps := employees(5)
	emps[1].Name = ""
	emps[3].Department = ""
	store := &mockStore{}
	ix := newTestIndexer(&mockSource{employees: emps}, store, 10)

	report, err := ix.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Indexed != 3 || report.Skipped != 2 {
		t.Errorf("report = %+v", report)
	}
}

func TestRun_FailedBatchContinues(t *testing.T) {
	store := &mockStore{failNext: 1}
	ix := newTestIndexer(&mockSource{employees: employees(20)}, store, 10)

	report, err := ix.Run(context.Background())
	if err != nil {
		t.Fatalf("partial failure must not fail the run: %v", err)
	}
	if report.Failed != 10 || report.Indexed != 10 {
		t.Errorf("report = %+v", report)
	}
}

func TestRun_NothingIndexed(t *testing.T) {
	store := &mockStore{failNext: 100}
	ix := newTestIndexer(&mockSource{employees: employees(5)}, store, 10)

	_, err := ix.Run(context.Background())
	if !errors.Is(err, domain.ErrNothingIndexed) {
		t.Fatalf("want ErrNothingIndexed, got %v", err)
	}
}

func TestRun_EmptySourceSucceeds(t *testing.T) {
	ix := newTestIndexer(&mockSource{}, &mockStore{}, 10)
	report, err := ix.Run(context.Background())
	if err != nil {
		t.Fatalf("empty source is a successful no-op: %v", err)
	}
	if report.Indexed != 0 {
		t.Errorf("report = %+v", report)
	}
}

func TestRun_SourceError(t *testing.T) {
	ix := newTestIndexer(&mockSource{err: errors.New("db down")}, &mockStore{}, 10)
	if _, err := ix.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestRun_InfoErrorIsBestEffort(t *testing.T) {
	store := &mockStore{infoErr: errors.New("rpc fail")}
	ix := newTestIndexer(&mockSource{employees: employees(3)}, store, 10)

	report, err := ix.Run(context.Background())
	if err != nil {
		t.Fatalf("info failure must not fail the run: %v", err)
	}
	if report.Points != 0 {
		t.Errorf("points = %d, want 0", report.Points)
	}
}

func TestPointID_Deterministic(t *testing.T) {
	a := PointID("emp-001")
	b := PointID("emp-001")
	if a != b {
		t.Fatalf("same record id must map to the same point: %q vs %q", a, b)
	}
	if a == PointID("emp-002") {
		t.Fatal("different record ids must map to different points")
	}
	if len(a) != 36 {
		t.Errorf("point id should be a UUID, got %q", a)
	}
}

func TestIndexOne(t *testing.T) {
	store := &mockStore{}
	ix := newTestIndexer(&mockSource{}, store, 10)

	e := employees(1)[0]
	if err := ix.IndexOne(context.Background(), e); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.batches) != 1 || len(store.batches[0]) != 1 {
		t.Fatalf("batches = %+v", store.batches)
	}
	if store.batches[0][0].ID != PointID(e.ID) {
		t.Errorf("point id = %q", store.batches[0][0].ID)
	}
}

func TestIndexOne_InvalidRecord(t *testing.T) {
	ix := newTestIndexer(&mockSource{}, &mockStore{}, 10)
	err := ix.IndexOne(context.Background(), domain.Employee{ID: "x"})
	if !errors.Is(err, domain.ErrInvalidEmployee) {
		t.Fatalf("want ErrInvalidEmployee, got %v", err)
	}
}

func TestIndexOne_StoreError(t *testing.T) {
	ix := newTestIndexer(&mockSource{}, &mockStore{failNext: 100}, 10)
	if err := ix.IndexOne(context.Background(), employees(1)[0]); err == nil {
		t.Fatal("expected error")
	}
}
