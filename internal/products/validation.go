package products

import (
	"errors"
	"strings"
)

func (s *Service) validate(p Product) error {
	if strings.TrimSpace(p.Code) == "" {
		return errors.New("product code is required")
	}
	if strings.TrimSpace(p.Name) == "" {
		return errors.New("product name is required")
	}
	if p.Price.IsNegative() || p.Cost.IsNegative() {
		return errors.New("price and cost must be >= 0")
	}
	if p.Quantity < 0 || p.AlertQuantity < 0 {
		return errors.New("quantities must be >= 0")
	}
	return nil
}
