package adjustments

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/Gulfam-bhatti-del/Posly-Dashboard-sub001/internal/shared"
)

type memoryRepo struct {
	warehouses   map[int64]bool
	stock        map[int64]int64
	adjustments  []Adjustment
	nextID       int64
	seq          int64
	stockWrites  []int64
	failStockFor map[int64]error
	createErr    error
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		warehouses:   map[int64]bool{1: true},
		stock:        map[int64]int64{},
		failStockFor: map[int64]error{},
	}
}

func (m *memoryRepo) CreateWithLines(ctx context.Context, adjustment *Adjustment) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.nextID++
	m.seq++
	adjustment.ID = m.nextID
	adjustment.Reference = fmt.Sprintf("ADJ-%s-%04d", time.Now().Format("0601"), m.seq)
	adjustment.ItemCount = len(adjustment.Lines)
	adjustment.CreatedAt = time.Now()
	for i := range adjustment.Lines {
		adjustment.Lines[i].ID = int64(i + 1)
		adjustment.Lines[i].AdjustmentID = adjustment.ID
	}
	m.adjustments = append(m.adjustments, *adjustment)
	return nil
}

func (m *memoryRepo) Get(ctx context.Context, id int64) (Adjustment, error) {
	for _, adj := range m.adjustments {
		if adj.ID == id {
			return adj, nil
		}
	}
	return Adjustment{}, ErrNotFound
}

func (m *memoryRepo) List(ctx context.Context, filters ListFilters) ([]Adjustment, int, error) {
	return m.adjustments, len(m.adjustments), nil
}

func (m *memoryRepo) Delete(ctx context.Context, id int64) error {
	for i, adj := range m.adjustments {
		if adj.ID == id {
			m.adjustments = append(m.adjustments[:i], m.adjustments[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (m *memoryRepo) UpdateProductStock(ctx context.Context, productID, newStock int64) error {
	if err := m.failStockFor[productID]; err != nil {
		return err
	}
	m.stock[productID] = newStock
	m.stockWrites = append(m.stockWrites, productID)
	return nil
}

func (m *memoryRepo) WarehouseExists(ctx context.Context, id int64) (bool, error) {
	return m.warehouses[id], nil
}

type memoryGuard struct {
	keys     map[string]bool
	released []string
}

func newMemoryGuard() *memoryGuard {
	return &memoryGuard{keys: map[string]bool{}}
}

func (g *memoryGuard) CheckAndInsert(ctx context.Context, key, module string) error {
	if g.keys[key] {
		return shared.ErrIdempotencyConflict
	}
	g.keys[key] = true
	return nil
}

func (g *memoryGuard) Delete(ctx context.Context, key string) error {
	delete(g.keys, key)
	g.released = append(g.released, key)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func validInput() CommitInput {
	return CommitInput{
		WarehouseID: 1,
		Note:        "cycle count",
		Lines: []LineInput{
			{ProductID: 10, ProductCode: "SKU-010", ProductName: "Beras 5kg", StockSnapshot: 8, Quantity: 3, Kind: KindIncrease},
			{ProductID: 11, ProductCode: "SKU-011", ProductName: "Gula 1kg", StockSnapshot: 5, Quantity: 2, Kind: KindDecrease},
		},
	}
}

func TestCommitPersistsHeaderLinesAndStock(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, testLogger())

	result, err := svc.Commit(context.Background(), validInput())
	require.NoError(t, err)
	require.NotZero(t, result.AdjustmentID)
	require.Contains(t, result.Reference, "ADJ-")
	require.Empty(t, result.Warnings)

	require.Len(t, repo.adjustments, 1)
	require.Equal(t, 2, repo.adjustments[0].ItemCount)

	// increase: 8 + 3, decrease: 5 - 2
	require.Equal(t, int64(11), repo.stock[10])
	require.Equal(t, int64(3), repo.stock[11])
	require.Equal(t, []int64{10, 11}, repo.stockWrites)

	require.Len(t, result.Lines, 2)
	require.True(t, result.Lines[0].Applied)
	require.Equal(t, int64(8), result.Lines[0].PreviousStock)
	require.Equal(t, int64(11), result.Lines[0].NewStock)
}

func TestCommitValidationWritesNothing(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*CommitInput)
		wantErr error
	}{
		{"missing warehouse", func(in *CommitInput) { in.WarehouseID = 0 }, ErrWarehouseRequired},
		{"unknown warehouse", func(in *CommitInput) { in.WarehouseID = 99 }, ErrWarehouseNotFound},
		{"no lines", func(in *CommitInput) { in.Lines = nil }, ErrNoLines},
		{"zero quantity", func(in *CommitInput) { in.Lines[0].Quantity = 0 }, ErrInvalidLine},
		{"bad kind", func(in *CommitInput) { in.Lines[1].Kind = "transfer" }, ErrInvalidLine},
		{"missing product", func(in *CommitInput) { in.Lines[0].ProductID = 0 }, ErrInvalidLine},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := newMemoryRepo()
			svc := NewService(repo, testLogger())
			input := validInput()
			tc.mutate(&input)

			_, err := svc.Commit(context.Background(), input)
			require.ErrorIs(t, err, tc.wantErr)
			require.Empty(t, repo.adjustments)
			require.Empty(t, repo.stockWrites)
		})
	}
}

func TestCommitDecreaseFloorsAtZero(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, testLogger())

	input := validInput()
	input.Lines = []LineInput{
		{ProductID: 20, ProductCode: "SKU-020", ProductName: "Teh Celup", StockSnapshot: 2, Quantity: 9, Kind: KindDecrease},
	}

	result, err := svc.Commit(context.Background(), input)
	require.NoError(t, err)
	require.Equal(t, int64(0), repo.stock[20])
	require.Equal(t, int64(0), result.Lines[0].NewStock)
}

func TestCommitUsesSnapshotNotLiveStock(t *testing.T) {
	repo := newMemoryRepo()
	// Live stock diverged from what the editor saw.
	repo.stock[30] = 100
	svc := NewService(repo, testLogger())

	input := validInput()
	input.Lines = []LineInput{
		{ProductID: 30, ProductCode: "SKU-030", ProductName: "Minyak 2L", StockSnapshot: 4, Quantity: 1, Kind: KindIncrease},
	}

	_, err := svc.Commit(context.Background(), input)
	require.NoError(t, err)
	// Snapshot 4 + 1, not 100 + 1.
	require.Equal(t, int64(5), repo.stock[30])
}

func TestCommitContinuesPastFailedLine(t *testing.T) {
	repo := newMemoryRepo()
	repo.failStockFor[10] = errors.New("deadlock detected")
	svc := NewService(repo, testLogger())

	result, err := svc.Commit(context.Background(), validInput())
	require.NoError(t, err)

	// Document committed despite the failed line.
	require.Len(t, repo.adjustments, 1)
	require.Len(t, result.Warnings, 1)
	require.Contains(t, result.Warnings[0], "SKU-010")

	require.False(t, result.Lines[0].Applied)
	require.True(t, result.Lines[1].Applied)
	require.Equal(t, []int64{11}, repo.stockWrites)
}

func TestCommitStopOnErrorHaltsReconciliation(t *testing.T) {
	repo := newMemoryRepo()
	repo.failStockFor[10] = errors.New("connection reset")
	svc := NewService(repo, testLogger(), WithStopOnError(true))

	result, err := svc.Commit(context.Background(), validInput())
	require.NoError(t, err)
	require.Len(t, repo.adjustments, 1)
	require.Len(t, result.Lines, 1)
	require.Empty(t, repo.stockWrites)
}

func TestCommitHeaderFailureWritesNoStock(t *testing.T) {
	repo := newMemoryRepo()
	repo.createErr = errors.New("serialization failure")
	svc := NewService(repo, testLogger())

	_, err := svc.Commit(context.Background(), validInput())
	require.Error(t, err)
	require.Empty(t, repo.stockWrites)
}

func TestCommitIdempotency(t *testing.T) {
	repo := newMemoryRepo()
	guard := newMemoryGuard()
	svc := NewService(repo, testLogger(), WithIdempotency(guard))

	input := validInput()
	input.RequestID = uuid.NewString()

	_, err := svc.Commit(context.Background(), input)
	require.NoError(t, err)

	_, err = svc.Commit(context.Background(), input)
	require.ErrorIs(t, err, shared.ErrIdempotencyConflict)
	require.Len(t, repo.adjustments, 1)
}

func TestCommitReleasesKeyOnFailure(t *testing.T) {
	repo := newMemoryRepo()
	repo.createErr = errors.New("out of disk")
	guard := newMemoryGuard()
	svc := NewService(repo, testLogger(), WithIdempotency(guard))

	input := validInput()
	input.RequestID = uuid.NewString()

	_, err := svc.Commit(context.Background(), input)
	require.Error(t, err)
	require.Equal(t, []string{input.RequestID}, guard.released)

	// Retry with the same key succeeds once the fault clears.
	repo.createErr = nil
	_, err = svc.Commit(context.Background(), input)
	require.NoError(t, err)
}

func TestCommitRejectsMalformedRequestID(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, testLogger(), WithIdempotency(newMemoryGuard()))

	input := validInput()
	input.RequestID = "not-a-uuid"

	_, err := svc.Commit(context.Background(), input)
	require.Error(t, err)
	require.Empty(t, repo.adjustments)
}
