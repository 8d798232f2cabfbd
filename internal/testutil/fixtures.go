package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"fintrack/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// TestPassword is the plain-text password of every fixture user.
const TestPassword = "password123"

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates an active regular user with a unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	return createUser(t, db, fmt.Sprintf("user%d@test.com", nextID()), models.UserRoleUser)
}

// CreateTestAdmin creates an active admin with a unique email.
func CreateTestAdmin(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	return createUser(t, db, fmt.Sprintf("admin%d@test.com", nextID()), models.UserRoleAdmin)
}

// CreateTestUserWithEmail creates an active regular user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	return createUser(t, db, email, models.UserRoleUser)
}

// CreateInactiveUser creates a deactivated regular user.
func CreateInactiveUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	user := createUser(t, db, fmt.Sprintf("inactive%d@test.com", nextID()), models.UserRoleUser)
	// gorm skips false on create because of the column default.
	if err := db.Model(user).Update("is_active", false).Error; err != nil {
		t.Fatalf("failed to deactivate test user: %v", err)
	}
	user.IsActive = false
	return user
}

func createUser(t *testing.T, db *gorm.DB, email string, role models.UserRole) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Name:     fmt.Sprintf("Test User %d", nextID()),
		Email:    email,
		Password: string(hash),
		Role:     role,
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestTransaction creates a transaction of the given kind and amount dated now.
func CreateTestTransaction(t *testing.T, db *gorm.DB, userID string, kind models.TransactionKind, amount string) *models.Transaction {
	t.Helper()
	return CreateTestTransactionAt(t, db, userID, kind, amount, time.Now().UTC().Truncate(time.Second))
}

// CreateTestTransactionAt creates a transaction with an explicit date.
func CreateTestTransactionAt(t *testing.T, db *gorm.DB, userID string, kind models.TransactionKind, amount string, date time.Time) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		Date:        date,
		Amount:      decimal.RequireFromString(amount),
		Kind:        kind,
		Description: fmt.Sprintf("Test transaction %d", nextID()),
		CreatedBy:   userID,
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return tx
}

// CreateTestExpense creates an expense in the given category.
func CreateTestExpense(t *testing.T, db *gorm.DB, userID string, category models.ExpenseCategory, amount string, date time.Time) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		Date:            date,
		Amount:          decimal.RequireFromString(amount),
		Kind:            models.TransactionKindExpense,
		ExpenseCategory: category,
		Description:     fmt.Sprintf("Test expense %d", nextID()),
		CreatedBy:       userID,
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test expense: %v", err)
	}
	return tx
}

// CreateTestSettings stores the settings singleton with the given starting balance.
func CreateTestSettings(t *testing.T, db *gorm.DB, startingBalance string) *models.Settings {
	t.Helper()

	settings := models.NewDefaultSettings(time.Now())
	settings.StartingBalance = decimal.RequireFromString(startingBalance)
	if err := db.Create(settings).Error; err != nil {
		t.Fatalf("failed to create test settings: %v", err)
	}
	return settings
}
