// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"fintrack/internal/models"
)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		RegisterOn(v)
	}
}

// RegisterOn adds the fintrack tags to an arbitrary validator instance.
func RegisterOn(v *validator.Validate) {
	_ = v.RegisterValidation("transaction_kind", validateTransactionKind)
	_ = v.RegisterValidation("expense_category", validateExpenseCategory)
}

func validateTransactionKind(fl validator.FieldLevel) bool {
	return models.TransactionKind(fl.Field().String()).IsValid()
}

func validateExpenseCategory(fl validator.FieldLevel) bool {
	return models.ExpenseCategory(fl.Field().String()).IsValid()
}
