package adjustments

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/Gulfam-bhatti-del/Posly-Dashboard-sub001/internal/shared"
)

// IdempotencyGuard is the subset of shared.IdempotencyStore the service needs.
type IdempotencyGuard interface {
	CheckAndInsert(ctx context.Context, key, module string) error
	Delete(ctx context.Context, key string) error
}

// Auditor records committed adjustments.
type Auditor interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// CacheBumper invalidates product lookup caches after stock moves.
type CacheBumper interface {
	Bump(ctx context.Context) error
}

// CommitInput is an adjustment as submitted by the editor.
type CommitInput struct {
	WarehouseID int64       `json:"warehouse_id"`
	Date        time.Time   `json:"date"`
	Note        string      `json:"note"`
	RequestID   string      `json:"request_id"`
	Lines       []LineInput `json:"lines"`
}

// LineInput carries the editor's view of one line, snapshot stock included.
type LineInput struct {
	ProductID     int64  `json:"product_id"`
	ProductCode   string `json:"product_code"`
	ProductName   string `json:"product_name"`
	StockSnapshot int64  `json:"stock_snapshot"`
	Quantity      int64  `json:"quantity"`
	Kind          Kind   `json:"kind"`
}

// LineResult reports the stock reconciliation outcome for one line.
type LineResult struct {
	ProductID     int64  `json:"product_id"`
	ProductCode   string `json:"product_code"`
	PreviousStock int64  `json:"previous_stock"`
	NewStock      int64  `json:"new_stock"`
	Applied       bool   `json:"applied"`
	Error         string `json:"error,omitempty"`
}

// CommitResult is what a successful commit returns. Warnings carry per-line
// stock failures that did not abort the document.
type CommitResult struct {
	AdjustmentID int64        `json:"adjustment_id"`
	Reference    string       `json:"reference"`
	Lines        []LineResult `json:"lines"`
	Warnings     []string     `json:"warnings,omitempty"`
}

// Service owns the adjustment commit workflow.
type Service struct {
	repo        Repository
	logger      *slog.Logger
	idempotency IdempotencyGuard
	audit       Auditor
	cache       CacheBumper
	stopOnError bool
}

type Option func(*Service)

func WithIdempotency(guard IdempotencyGuard) Option {
	return func(s *Service) { s.idempotency = guard }
}

func WithAudit(audit Auditor) Option {
	return func(s *Service) { s.audit = audit }
}

func WithCacheBumper(cache CacheBumper) Option {
	return func(s *Service) { s.cache = cache }
}

// WithStopOnError aborts reconciliation at the first failed stock write
// instead of continuing with the remaining lines.
func WithStopOnError(stop bool) Option {
	return func(s *Service) { s.stopOnError = stop }
}

func NewService(repo Repository, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{repo: repo, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Commit validates, persists and reconciles an adjustment. Validation runs
// in full before anything is written. The header and its lines go into one
// transaction; stock writes then run line by line in insertion order, each
// standing or failing on its own.
func (s *Service) Commit(ctx context.Context, input CommitInput) (CommitResult, error) {
	if err := s.validate(ctx, input); err != nil {
		return CommitResult{}, err
	}

	if input.RequestID != "" && s.idempotency != nil {
		if _, err := uuid.Parse(input.RequestID); err != nil {
			return CommitResult{}, fmt.Errorf("adjustments: request_id must be a UUID: %w", err)
		}
		if err := s.idempotency.CheckAndInsert(ctx, input.RequestID, "adjustments"); err != nil {
			return CommitResult{}, err
		}
	}

	adjustment := Adjustment{
		WarehouseID: input.WarehouseID,
		Date:        input.Date,
		Note:        input.Note,
		Lines:       make([]Line, 0, len(input.Lines)),
	}
	if adjustment.Date.IsZero() {
		adjustment.Date = time.Now()
	}
	for _, in := range input.Lines {
		adjustment.Lines = append(adjustment.Lines, Line{
			ProductID:     in.ProductID,
			ProductCode:   in.ProductCode,
			ProductName:   in.ProductName,
			StockSnapshot: in.StockSnapshot,
			Quantity:      in.Quantity,
			Kind:          in.Kind,
		})
	}

	if err := s.repo.CreateWithLines(ctx, &adjustment); err != nil {
		s.releaseKey(ctx, input.RequestID)
		return CommitResult{}, err
	}

	result := CommitResult{
		AdjustmentID: adjustment.ID,
		Reference:    adjustment.Reference,
		Lines:        make([]LineResult, 0, len(adjustment.Lines)),
	}

	for _, line := range adjustment.Lines {
		lr := LineResult{
			ProductID:     line.ProductID,
			ProductCode:   line.ProductCode,
			PreviousStock: line.StockSnapshot,
			NewStock:      line.NewStock(),
		}
		err := s.repo.UpdateProductStock(ctx, line.ProductID, lr.NewStock)
		if err != nil {
			lr.Error = err.Error()
			result.Lines = append(result.Lines, lr)
			warning := fmt.Sprintf("stock update failed for product %s: %v", line.ProductCode, err)
			result.Warnings = append(result.Warnings, warning)
			s.logger.Warn("adjustment stock update failed",
				slog.String("reference", adjustment.Reference),
				slog.Int64("product_id", line.ProductID),
				slog.Any("error", err))
			if s.stopOnError {
				break
			}
			continue
		}
		lr.Applied = true
		result.Lines = append(result.Lines, lr)
	}

	if s.cache != nil {
		if err := s.cache.Bump(ctx); err != nil {
			s.logger.Warn("lookup cache bump failed", slog.Any("error", err))
		}
	}
	if s.audit != nil {
		err := s.audit.Record(ctx, shared.AuditLog{
			Action:   "adjustment.commit",
			Entity:   "adjustment",
			EntityID: strconv.FormatInt(adjustment.ID, 10),
			Meta: map[string]any{
				"reference":    adjustment.Reference,
				"warehouse_id": adjustment.WarehouseID,
				"lines":        len(adjustment.Lines),
				"warnings":     len(result.Warnings),
			},
			At: time.Now(),
		})
		if err != nil {
			s.logger.Warn("audit record failed", slog.Any("error", err))
		}
	}

	return result, nil
}

func (s *Service) validate(ctx context.Context, input CommitInput) error {
	if input.WarehouseID <= 0 {
		return ErrWarehouseRequired
	}
	if len(input.Lines) == 0 {
		return ErrNoLines
	}
	for i, line := range input.Lines {
		if line.ProductID <= 0 {
			return fmt.Errorf("%w: line %d has no product", ErrInvalidLine, i+1)
		}
		if line.Quantity < 1 {
			return fmt.Errorf("%w: line %d quantity must be >= 1", ErrInvalidLine, i+1)
		}
		if line.StockSnapshot < 0 {
			return fmt.Errorf("%w: line %d stock snapshot is negative", ErrInvalidLine, i+1)
		}
		if !line.Kind.Valid() {
			return fmt.Errorf("%w: line %d kind must be increase or decrease", ErrInvalidLine, i+1)
		}
	}
	exists, err := s.repo.WarehouseExists(ctx, input.WarehouseID)
	if err != nil {
		return err
	}
	if !exists {
		return ErrWarehouseNotFound
	}
	return nil
}

func (s *Service) releaseKey(ctx context.Context, requestID string) {
	if requestID == "" || s.idempotency == nil {
		return
	}
	if err := s.idempotency.Delete(ctx, requestID); err != nil {
		s.logger.Warn("idempotency key release failed", slog.Any("error", err))
	}
}

func (s *Service) Get(ctx context.Context, id int64) (Adjustment, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, filters ListFilters) ([]Adjustment, int, error) {
	return s.repo.List(ctx, filters)
}

// Delete removes the document only. Stock already reconciled stays as is;
// reversing a commit is a new adjustment in the opposite direction.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
