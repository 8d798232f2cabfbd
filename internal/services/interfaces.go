package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/models"
	"fintrack/internal/pagination"
	"fintrack/internal/storage"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(ctx context.Context, name, email, password string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	AttemptLogin(ctx context.Context, email, password string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	SetRole(ctx context.Context, email string, role models.UserRole) (*models.User, error)
}

// FileUpload is a document received with a create or update request.
type FileUpload struct {
	Payload      []byte
	OriginalName string
	ContentType  string
}

// Size returns the payload length in bytes.
func (f *FileUpload) Size() int64 {
	return int64(len(f.Payload))
}

// CreateTransactionInput carries the fields of a new transaction. Nil means
// the field was not sent; Date, Amount, Kind and Description are required.
type CreateTransactionInput struct {
	Date            *time.Time
	Amount          *decimal.Decimal
	Kind            *models.TransactionKind
	ExpenseCategory *models.ExpenseCategory
	Description     *string
	Notes           *string
}

// TransactionUpdate is a partial update. Only non-nil fields change, so an
// explicit empty Notes clears the notes while a nil Notes leaves them alone.
// A new file replaces the attachment; RemoveAttachment without a file clears it.
type TransactionUpdate struct {
	Date             *time.Time
	Amount           *decimal.Decimal
	Kind             *models.TransactionKind
	ExpenseCategory  *models.ExpenseCategory
	Description      *string
	Notes            *string
	RemoveAttachment bool
}

// IsEmpty reports whether the update changes nothing.
func (u TransactionUpdate) IsEmpty() bool {
	return u.Date == nil && u.Amount == nil && u.Kind == nil && u.ExpenseCategory == nil &&
		u.Description == nil && u.Notes == nil && !u.RemoveAttachment
}

// TransactionFilter holds optional filter parameters for listing transactions.
type TransactionFilter struct {
	Kind            *models.TransactionKind
	ExpenseCategory *models.ExpenseCategory
	DateRange
	Search string
}

// DateRange bounds queries by transaction date. Both ends are inclusive and optional.
type DateRange struct {
	From *time.Time
	To   *time.Time
}

// TransactionServicer defines the contract for the transaction store and the
// attachment lifecycle around it.
type TransactionServicer interface {
	CreateTransaction(ctx context.Context, userID string, input CreateTransactionInput, file *FileUpload) (*models.Transaction, error)
	GetTransactionByID(ctx context.Context, id string) (*models.Transaction, error)
	ListTransactions(ctx context.Context, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	UpdateTransaction(ctx context.Context, id string, update TransactionUpdate, file *FileUpload) (*models.Transaction, error)
	DeleteTransaction(ctx context.Context, id string) error
}

// AttachmentServicer keeps attachment descriptors and stored blobs consistent.
type AttachmentServicer interface {
	// Validate rejects payloads that are too large or of the wrong type.
	Validate(file *FileUpload) error
	// Store uploads a validated payload and returns its descriptor.
	Store(ctx context.Context, file *FileUpload) (models.Attachment, error)
	// Release deletes the blob behind att. Failures are logged and reported
	// as orphans, never returned; the result tells whether the blob is gone.
	Release(ctx context.Context, transactionID string, att models.Attachment) bool
}

// SettingsUpdate is a partial update of the settings singleton.
type SettingsUpdate struct {
	StartingBalance *decimal.Decimal
	EffectiveSince  *time.Time
	Description     *string
}

// SettingsServicer defines the contract for the settings singleton.
type SettingsServicer interface {
	GetOrCreate(ctx context.Context) (*models.Settings, error)
	Update(ctx context.Context, update SettingsUpdate) (*models.Settings, error)
}

// CategoryTotal is the expense total of one category.
type CategoryTotal struct {
	Category models.ExpenseCategory `json:"category"`
	Total    decimal.Decimal        `json:"total"`
}

// MonthlyTotal is the total of one kind within one calendar month (UTC).
type MonthlyTotal struct {
	Year  int                    `json:"year"`
	Month int                    `json:"month"`
	Kind  models.TransactionKind `json:"kind"`
	Total decimal.Decimal        `json:"total"`
}

// Summary is the dashboard balance overview.
type Summary struct {
	StartingBalance    decimal.Decimal `json:"startingBalance"`
	TotalIncome        decimal.Decimal `json:"totalIncome"`
	TotalExpense       decimal.Decimal `json:"totalExpense"`
	Balance            decimal.Decimal `json:"balance"`
	ExpensesByCategory []CategoryTotal `json:"expensesByCategory"`
	MonthlyTotals      []MonthlyTotal  `json:"monthlyTotals"`
}

// Statistics are counts, averages and extremes per kind.
type Statistics struct {
	TotalTransactions int64               `json:"totalTransactions"`
	IncomeCount       int64               `json:"incomeCount"`
	ExpenseCount      int64               `json:"expenseCount"`
	AverageIncome     decimal.Decimal     `json:"averageIncome"`
	AverageExpense    decimal.Decimal     `json:"averageExpense"`
	LargestIncome     *models.Transaction `json:"largestIncome"`
	LargestExpense    *models.Transaction `json:"largestExpense"`
}

// DashboardServicer defines the contract for read-only aggregation.
type DashboardServicer interface {
	Summary(ctx context.Context, r DateRange) (*Summary, error)
	Statistics(ctx context.Context, r DateRange) (*Statistics, error)
}

// Audit actions and resource types recorded by the handlers.
const (
	AuditCreateTransaction = "CREATE_TRANSACTION"
	AuditUpdateTransaction = "UPDATE_TRANSACTION"
	AuditDeleteTransaction = "DELETE_TRANSACTION"
	AuditUpdateSettings    = "UPDATE_SETTINGS"

	AuditResourceTransaction = "transaction"
	AuditResourceSettings    = "settings"
)

// AuditEntry is one mutating operation to record.
type AuditEntry struct {
	UserID       string
	Action       string
	ResourceType string
	ResourceID   string
	IPAddress    string
	Changes      map[string]any
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	// Log records entry. Failures are logged, never returned.
	Log(ctx context.Context, entry AuditEntry)
	// History returns the entries of one resource, oldest first.
	History(ctx context.Context, resourceType, resourceID string) ([]models.AuditLog, error)
}

// OrphanReporter is told about blobs that could not be deleted.
type OrphanReporter interface {
	ReportOrphan(ctx context.Context, blob storage.OrphanedBlob)
}
