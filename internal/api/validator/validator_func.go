package validator

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

const (
	amountRegex = `^\d+(\.\d{1,2})?$`
)

const (
	AmountTag = "amount"
)

var valid = map[string]func(fl validator.FieldLevel) bool{
	AmountTag: ValidateAmount,
}

// ValidateAmount accepts a non-negative decimal string with at most two
// fraction digits, the only amount format the payment flow works in.
func ValidateAmount(fl validator.FieldLevel) bool {
	amount := fl.Field().String()
	return regexp.MustCompile(amountRegex).MatchString(amount)
}
