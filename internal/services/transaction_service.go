package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/pagination"
	"fintrack/internal/uuid"
)

// transactionService handles transaction-related business logic.
type transactionService struct {
	db          *gorm.DB
	attachments AttachmentServicer
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(db *gorm.DB, attachments AttachmentServicer) TransactionServicer {
	return &transactionService{
		db:          db,
		attachments: attachments,
	}
}

// CreateTransaction validates the input, uploads the optional document and
// persists the transaction. If the insert fails the fresh blob is released.
func (s *transactionService) CreateTransaction(ctx context.Context, userID string, input CreateTransactionInput, file *FileUpload) (*models.Transaction, error) {
	if input.Date == nil || input.Amount == nil || input.Kind == nil ||
		input.Description == nil || strings.TrimSpace(*input.Description) == "" {
		return nil, apperrors.ErrMissingFields
	}
	if userID == "" {
		return nil, apperrors.ErrUnauthorized
	}

	transaction := &models.Transaction{
		Date:        *input.Date,
		Amount:      *input.Amount,
		Kind:        *input.Kind,
		Description: *input.Description,
		CreatedBy:   userID,
	}
	if input.ExpenseCategory != nil {
		transaction.ExpenseCategory = *input.ExpenseCategory
	}
	if input.Notes != nil {
		transaction.Notes = *input.Notes
	}

	if err := validateTransaction(transaction); err != nil {
		return nil, err
	}
	if err := s.attachments.Validate(file); err != nil {
		return nil, err
	}

	if file != nil {
		att, err := s.attachments.Store(ctx, file)
		if err != nil {
			return nil, err
		}
		transaction.Attachment = att
	}

	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(transaction).Error; err != nil {
		s.attachments.Release(ctx, transaction.ID, transaction.Attachment)
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return s.GetTransactionByID(ctx, transaction.ID)
}

// GetTransactionByID retrieves a transaction with its author.
func (s *transactionService) GetTransactionByID(ctx context.Context, id string) (*models.Transaction, error) {
	if !uuid.IsValid(id) {
		return nil, apperrors.ErrTransactionNotFound
	}
	var transaction models.Transaction
	if err := s.db.WithContext(ctx).Preload("Author").Where("id = ?", id).First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &transaction, nil
}

// ListTransactions retrieves a filtered page ordered by date, newest first.
// Rows sharing a date are ordered by id so pages never overlap.
func (s *transactionService) ListTransactions(ctx context.Context, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	page.Defaults()

	base := applyTransactionFilters(s.db.WithContext(ctx).Model(&models.Transaction{}), filter).
		Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.Transaction
	if err := base.Preload("Author").
		Order("date DESC").
		Order("id DESC").
		Scopes(pagination.Paginate(page)).
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(transactions, page.Page, page.PageSize, total)
	return &result, nil
}

func applyTransactionFilters(q *gorm.DB, f TransactionFilter) *gorm.DB {
	if f.Kind != nil {
		q = q.Where("kind = ?", *f.Kind)
	}
	if f.ExpenseCategory != nil && *f.ExpenseCategory != "" && *f.ExpenseCategory != models.ExpenseCategoryNotApplicable {
		q = q.Where("expense_category = ?", *f.ExpenseCategory)
	}
	q = applyDateRange(q, f.DateRange)
	if search := strings.TrimSpace(f.Search); search != "" {
		q = q.Where(`LOWER(description) LIKE ? ESCAPE '\'`, "%"+escapeLike(strings.ToLower(search))+"%")
	}
	return q
}

func applyDateRange(q *gorm.DB, r DateRange) *gorm.DB {
	if r.From != nil {
		q = q.Where("date >= ?", r.From.UTC())
	}
	if r.To != nil {
		q = q.Where("date <= ?", r.To.UTC())
	}
	return q
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes user input match literally inside a LIKE pattern.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// UpdateTransaction applies a partial update. A new document is uploaded
// before the record changes and the previous blob is released only after the
// record no longer points at it.
func (s *transactionService) UpdateTransaction(ctx context.Context, id string, update TransactionUpdate, file *FileUpload) (*models.Transaction, error) {
	if !uuid.IsValid(id) {
		return nil, apperrors.ErrTransactionNotFound
	}
	var transaction models.Transaction
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if update.Date != nil {
		transaction.Date = *update.Date
	}
	if update.Amount != nil {
		transaction.Amount = *update.Amount
	}
	if update.Kind != nil {
		transaction.Kind = *update.Kind
	}
	if update.ExpenseCategory != nil {
		transaction.ExpenseCategory = *update.ExpenseCategory
	}
	if update.Description != nil {
		if strings.TrimSpace(*update.Description) == "" {
			return nil, apperrors.WithMessage(apperrors.ErrValidation, "description cannot be empty")
		}
		transaction.Description = *update.Description
	}
	if update.Notes != nil {
		transaction.Notes = *update.Notes
	}

	if err := validateTransaction(&transaction); err != nil {
		return nil, err
	}
	if err := s.attachments.Validate(file); err != nil {
		return nil, err
	}

	previous := transaction.Attachment
	switch {
	case file != nil:
		att, err := s.attachments.Store(ctx, file)
		if err != nil {
			return nil, err
		}
		transaction.Attachment = att
	case update.RemoveAttachment:
		transaction.Attachment = models.Attachment{}
	}

	// A plain UPDATE: if the row was deleted meanwhile nothing matches and the
	// transaction stays gone.
	result := s.db.WithContext(ctx).
		Model(&transaction).
		Where("id = ?", id).
		Select("*").
		Omit(clause.Associations).
		Updates(&transaction)
	if result.Error != nil || result.RowsAffected == 0 {
		if file != nil {
			s.attachments.Release(ctx, transaction.ID, transaction.Attachment)
		}
		if result.Error != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
		}
		return nil, apperrors.ErrTransactionNotFound
	}

	if !previous.IsZero() && previous.URL != transaction.Attachment.URL {
		s.attachments.Release(ctx, transaction.ID, previous)
	}

	return s.GetTransactionByID(ctx, transaction.ID)
}

// DeleteTransaction removes the record, then releases its blob.
func (s *transactionService) DeleteTransaction(ctx context.Context, id string) error {
	if !uuid.IsValid(id) {
		return apperrors.ErrTransactionNotFound
	}
	var transaction models.Transaction
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrTransactionNotFound
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Transaction{})
	if result.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrTransactionNotFound
	}

	s.attachments.Release(ctx, transaction.ID, transaction.Attachment)
	return nil
}

// validateTransaction checks the fields the database cannot.
func validateTransaction(t *models.Transaction) error {
	if !t.Kind.IsValid() {
		return apperrors.WithMessage(apperrors.ErrValidation, "kind must be income or expense")
	}
	if t.ExpenseCategory != "" && !t.ExpenseCategory.IsValid() {
		return apperrors.WithMessage(apperrors.ErrValidation, "unknown expense category")
	}
	if t.Amount.IsNegative() {
		return apperrors.WithMessage(apperrors.ErrValidation, "amount must be greater than or equal to zero")
	}
	if t.Date.IsZero() {
		return apperrors.WithMessage(apperrors.ErrValidation, "date is required")
	}
	return nil
}
