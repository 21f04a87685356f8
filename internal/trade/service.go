package trade

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/Gulfam-bhatti-del/Posly-Dashboard-sub001/internal/documents"
)

// DocumentInput is a document as submitted by the editor. Totals are never
// accepted from the client; the service recomputes them from the lines.
type DocumentInput struct {
	CounterpartyID  int64           `json:"counterparty_id" validate:"required,gt=0"`
	WarehouseID     int64           `json:"warehouse_id" validate:"required,gt=0"`
	Date            time.Time       `json:"date"`
	Status          string          `json:"status" validate:"omitempty,max=30"`
	OrderTaxPercent decimal.Decimal `json:"order_tax_percent"`
	DiscountAmount  decimal.Decimal `json:"discount_amount"`
	DiscountKind    string          `json:"discount_kind" validate:"omitempty,oneof=fixed percent"`
	ShippingAmount  decimal.Decimal `json:"shipping_amount"`
	PaidAmount      decimal.Decimal `json:"paid_amount"`
	Details         string          `json:"details" validate:"max=1000"`
	Lines           []LineInput     `json:"lines" validate:"required,min=1,dive"`
}

// LineInput is one editor row. Subtotal is ignored and rederived.
type LineInput struct {
	ProductID     int64           `json:"product_id" validate:"required,gt=0"`
	ProductCode   string          `json:"product_code" validate:"required,max=100"`
	ProductName   string          `json:"product_name" validate:"required,max=255"`
	StockSnapshot int64           `json:"stock_snapshot" validate:"gte=0"`
	Quantity      int64           `json:"quantity" validate:"required,gte=1"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	Discount      decimal.Decimal `json:"discount"`
	Tax           decimal.Decimal `json:"tax"`
}

// Service builds, totals and stores one kind of trade document.
type Service struct {
	spec     Spec
	repo     Repository
	logger   *slog.Logger
	validate *validator.Validate
}

func NewService(spec Spec, repo Repository, logger *slog.Logger) *Service {
	return &Service{
		spec:     spec,
		repo:     repo,
		logger:   logger,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (s *Service) Create(ctx context.Context, input DocumentInput) (Document, error) {
	doc, err := s.build(ctx, input)
	if err != nil {
		return Document{}, err
	}
	if err := s.repo.CreateWithLines(ctx, &doc); err != nil {
		return Document{}, err
	}
	s.logger.Info("document created",
		slog.String("kind", s.spec.Kind),
		slog.String("reference", doc.Reference))
	return doc, nil
}

func (s *Service) Update(ctx context.Context, id int64, input DocumentInput) (Document, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return Document{}, err
	}
	doc, err := s.build(ctx, input)
	if err != nil {
		return Document{}, err
	}
	doc.ID = existing.ID
	doc.Reference = existing.Reference
	doc.CreatedAt = existing.CreatedAt
	if err := s.repo.UpdateWithLines(ctx, &doc); err != nil {
		return Document{}, err
	}
	return doc, nil
}

func (s *Service) Get(ctx context.Context, id int64) (Document, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, filters ListFilters) ([]Document, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// build validates the input and derives every stored amount from it.
func (s *Service) build(ctx context.Context, input DocumentInput) (Document, error) {
	if err := s.validate.Struct(input); err != nil {
		return Document{}, err
	}
	if len(input.Lines) == 0 {
		return Document{}, ErrNoLines
	}
	if err := s.checkAmounts(input); err != nil {
		return Document{}, err
	}

	exists, err := s.repo.WarehouseExists(ctx, input.WarehouseID)
	if err != nil {
		return Document{}, err
	}
	if !exists {
		return Document{}, fmt.Errorf("trade: warehouse %d not found", input.WarehouseID)
	}

	discountKind := documents.DiscountKind(input.DiscountKind)
	if discountKind == "" {
		discountKind = documents.DiscountFixed
	}

	items := make([]documents.LineItem, 0, len(input.Lines))
	for _, in := range input.Lines {
		items = append(items, documents.LineItem{
			ProductID:    in.ProductID,
			Code:         in.ProductCode,
			Name:         in.ProductName,
			CurrentStock: in.StockSnapshot,
			Quantity:     in.Quantity,
			UnitPrice:    in.UnitPrice,
			Discount:     in.Discount,
			Tax:          in.Tax,
		})
	}

	totals := documents.ComputeTotals(items, documents.Header{
		OrderTaxPercent: input.OrderTaxPercent,
		DiscountAmount:  input.DiscountAmount,
		DiscountKind:    discountKind,
		Shipping:        input.ShippingAmount,
		Paid:            input.PaidAmount,
		HasPayment:      s.spec.HasPayment,
	})

	doc := Document{
		CounterpartyID:  input.CounterpartyID,
		WarehouseID:     input.WarehouseID,
		Date:            input.Date,
		Status:          input.Status,
		OrderTaxPercent: input.OrderTaxPercent,
		DiscountAmount:  input.DiscountAmount,
		DiscountKind:    string(discountKind),
		ShippingAmount:  input.ShippingAmount,
		Subtotal:        totals.Subtotal,
		OrderTax:        totals.OrderTax,
		Discount:        totals.Discount,
		GrandTotal:      totals.GrandTotal,
		Details:         input.Details,
		Lines:           make([]Line, 0, len(items)),
	}
	if doc.Date.IsZero() {
		doc.Date = time.Now()
	}
	if doc.Status == "" {
		doc.Status = "pending"
	}
	if s.spec.HasPayment {
		doc.PaidAmount = input.PaidAmount
		doc.Due = totals.Due
		doc.PaymentStatus = derivePaymentStatus(input.PaidAmount, totals.GrandTotal)
	}

	for _, item := range items {
		doc.Lines = append(doc.Lines, Line{
			ProductID:     item.ProductID,
			ProductCode:   item.Code,
			ProductName:   item.Name,
			StockSnapshot: item.CurrentStock,
			Quantity:      item.Quantity,
			UnitPrice:     item.UnitPrice,
			Discount:      item.Discount,
			Tax:           item.Tax,
			Subtotal:      documents.LineSubtotal(item),
		})
	}
	return doc, nil
}

func (s *Service) checkAmounts(input DocumentInput) error {
	if input.OrderTaxPercent.IsNegative() || input.DiscountAmount.IsNegative() ||
		input.ShippingAmount.IsNegative() {
		return documents.ErrNegativeAmount
	}
	if input.PaidAmount.IsNegative() {
		return documents.ErrNegativeAmount
	}
	if !s.spec.HasPayment && input.PaidAmount.GreaterThan(decimal.Zero) {
		return documents.ErrNoPayment
	}
	for _, line := range input.Lines {
		if line.UnitPrice.IsNegative() || line.Discount.IsNegative() || line.Tax.IsNegative() {
			return documents.ErrNegativeAmount
		}
	}
	return nil
}
