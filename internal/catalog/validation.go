package catalog

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/currency"

	"github.com/stockroom-app/stockroom/internal/platform/httpx"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

func (s *Service) validateCreate(req CreateProductRequest) error {
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}
	if !req.Category.Valid() {
		return fmt.Errorf("%w: unknown category code %d", httpx.ErrValidation, req.Category)
	}
	if err := validateCurrencies(req.RetailCurrency, req.WholesaleCurrency); err != nil {
		return err
	}
	return nil
}

func (s *Service) validateUpdate(req UpdateProductRequest) error {
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}
	if err := validateCurrencies(req.RetailCurrency, req.WholesaleCurrency); err != nil {
		return err
	}
	return nil
}

// validateCurrencies checks that any provided code is a real ISO 4217 unit.
func validateCurrencies(codes ...string) error {
	for _, code := range codes {
		if code == "" {
			continue
		}
		if _, err := currency.ParseISO(code); err != nil {
			return fmt.Errorf("%w: invalid currency code %q", httpx.ErrValidation, code)
		}
	}
	return nil
}
