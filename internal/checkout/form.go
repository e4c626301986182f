package checkout

import (
	"regexp"
	"unicode/utf8"

	"github.com/jcmexdev/storefront/internal/core/domain/entity"
)

// Form carries the shipping and payment fields of one checkout attempt.
// The card fields are validated structurally and stored nowhere: no
// external payment authorization is performed.
type Form struct {
	Address    string
	City       string
	PostalCode string
	CardNumber string
	CardName   string
	Expiry     string
	CVV        string
}

var (
	cardNumberRe = regexp.MustCompile(`^\d{16}$`)
	expiryRe     = regexp.MustCompile(`^\d{2}/\d{2}$`)
	cvvRe        = regexp.MustCompile(`^\d{3,4}$`)
)

// Validate checks the fixed structural rules in field order and reports
// the first violation. A non-nil result means no persistence was
// attempted.
func (f Form) Validate() *entity.FieldError {
	if n := utf8.RuneCountInString(f.Address); n < 10 || n > 200 {
		return &entity.FieldError{Field: "address", Message: "address must be 10-200 characters"}
	}
	if n := utf8.RuneCountInString(f.City); n < 2 || n > 100 {
		return &entity.FieldError{Field: "city", Message: "city must be 2-100 characters"}
	}
	if n := len(f.PostalCode); n < 5 || n > 10 {
		return &entity.FieldError{Field: "postal_code", Message: "postal code must be 5-10 characters"}
	}
	if !cardNumberRe.MatchString(f.CardNumber) {
		return &entity.FieldError{Field: "card_number", Message: "card number must be 16 digits"}
	}
	if n := utf8.RuneCountInString(f.CardName); n < 3 || n > 100 {
		return &entity.FieldError{Field: "card_name", Message: "cardholder name must be 3-100 characters"}
	}
	if !expiryRe.MatchString(f.Expiry) {
		return &entity.FieldError{Field: "expiry", Message: "expiry must match MM/YY"}
	}
	if !cvvRe.MatchString(f.CVV) {
		return &entity.FieldError{Field: "cvv", Message: "CVV must be 3-4 digits"}
	}
	return nil
}
