package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/pagination"
	"fintrack/internal/response"
	"fintrack/internal/services"
)

// documentField is the multipart field carrying the optional attachment.
const documentField = "document"

// TransactionHandler handles transaction-related requests.
type TransactionHandler struct {
	transactionService services.TransactionServicer
	auditService       services.AuditServicer
	maxUploadBytes     int64
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(transactionService services.TransactionServicer, auditService services.AuditServicer, maxUploadBytes int64) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
		auditService:       auditService,
		maxUploadBytes:     maxUploadBytes,
	}
}

// TransactionRequest is the create/update payload. It is read from
// multipart/form-data (with an optional `document` file) or from JSON.
// Absent fields stay nil.
type TransactionRequest struct {
	Date             *string                 `json:"date" form:"date"`
	Amount           *json.Number            `json:"amount" form:"amount" swaggertype:"number"`
	Kind             *models.TransactionKind `json:"kind" form:"kind" binding:"omitempty,transaction_kind"`
	ExpenseCategory  *models.ExpenseCategory `json:"expenseCategory" form:"expenseCategory" binding:"omitempty,expense_category"`
	Description      *string                 `json:"description" form:"description" binding:"omitempty,max=500"`
	Notes            *string                 `json:"notes" form:"notes" binding:"omitempty,max=2000"`
	RemoveAttachment bool                    `json:"removeAttachment" form:"removeAttachment"`
}

// ListTransactionsQuery holds the list filters.
type ListTransactionsQuery struct {
	pagination.PageRequest
	Kind            models.TransactionKind `form:"kind" binding:"omitempty,transaction_kind"`
	ExpenseCategory models.ExpenseCategory `form:"expenseCategory" binding:"omitempty,expense_category"`
	Search          string                 `form:"search" binding:"max=200"`
}

type parsedTransaction struct {
	date             *time.Time
	amount           *decimal.Decimal
	kind             *models.TransactionKind
	expenseCategory  *models.ExpenseCategory
	description      *string
	notes            *string
	removeAttachment bool
}

func (r *TransactionRequest) parse() (parsedTransaction, error) {
	p := parsedTransaction{
		kind:             r.Kind,
		expenseCategory:  r.ExpenseCategory,
		description:      r.Description,
		notes:            r.Notes,
		removeAttachment: r.RemoveAttachment,
	}
	if r.Date != nil && *r.Date != "" {
		d, _, err := parseFlexibleTime(*r.Date)
		if err != nil {
			return p, invalidInput(err)
		}
		p.date = &d
	}
	if r.Amount != nil && *r.Amount != "" {
		a, err := decimal.NewFromString(r.Amount.String())
		if err != nil {
			return p, apperrors.WithMessage(apperrors.ErrValidation, "amount must be a number")
		}
		p.amount = &a
	}
	return p, nil
}

// bindTransaction reads the payload and the optional document.
func (h *TransactionHandler) bindTransaction(c *gin.Context) (parsedTransaction, *services.FileUpload, error) {
	if h.maxUploadBytes > 0 {
		// Room for the form fields around the document.
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes+1<<20)
	}

	var req TransactionRequest
	if err := c.ShouldBind(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return parsedTransaction{}, nil, h.tooLarge()
		}
		return parsedTransaction{}, nil, invalidInput(err)
	}

	parsed, err := req.parse()
	if err != nil {
		return parsed, nil, err
	}

	file, err := h.readDocument(c)
	if err != nil {
		return parsed, nil, err
	}
	return parsed, file, nil
}

func (h *TransactionHandler) tooLarge() error {
	return apperrors.WithMessage(apperrors.ErrUnsupportedMediaType,
		fmt.Sprintf("File exceeds the maximum size of %d bytes", h.maxUploadBytes))
}

// readDocument returns nil when the request carries no document.
func (h *TransactionHandler) readDocument(c *gin.Context) (*services.FileUpload, error) {
	if c.Request.MultipartForm == nil || c.Request.MultipartForm.File == nil {
		return nil, nil
	}
	headers := c.Request.MultipartForm.File[documentField]
	switch len(headers) {
	case 0:
		return nil, nil
	case 1:
	default:
		return nil, apperrors.WithMessage(apperrors.ErrValidation, "only one document may be attached")
	}

	header := headers[0]
	if h.maxUploadBytes > 0 && header.Size > h.maxUploadBytes {
		return nil, h.tooLarge()
	}

	payload, err := readMultipartFile(header)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrValidation, err)
	}

	return &services.FileUpload{
		Payload:      payload,
		OriginalName: filepath.Base(header.Filename),
		ContentType:  documentContentType(header, payload),
	}, nil
}

func readMultipartFile(header *multipart.FileHeader) ([]byte, error) {
	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// documentContentType trusts the part header, then the extension, then sniffing.
func documentContentType(header *multipart.FileHeader, payload []byte) string {
	if ct := header.Header.Get("Content-Type"); ct != "" && ct != "application/octet-stream" {
		return ct
	}
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(header.Filename))); ct != "" {
		return ct
	}
	return http.DetectContentType(payload)
}

// CreateTransaction handles the creation of a new transaction
// @Summary     Create a transaction
// @Description Create an income or expense, optionally attaching one image or PDF as `document`
// @Tags        transactions
// @Accept      multipart/form-data
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       date            formData string true  "Transaction date (RFC3339 or YYYY-MM-DD)"
// @Param       amount          formData number true  "Amount, zero or more"
// @Param       kind            formData string true  "income or expense"
// @Param       expenseCategory formData string false "Expense category"
// @Param       description     formData string true  "Description"
// @Param       notes           formData string false "Notes"
// @Param       document        formData file   false "Receipt image or PDF"
// @Success     201 {object} response.Envelope{data=models.Transaction} "Transaction created"
// @Failure     400 {object} response.Envelope "Invalid input"
// @Failure     401 {object} response.Envelope "Unauthorized"
// @Failure     403 {object} response.Envelope "Admin only"
// @Failure     415 {object} response.Envelope "Unsupported document"
// @Failure     500 {object} response.Envelope "Storage or server error"
// @Router      /transactions [post]
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	req, file, err := h.bindTransaction(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactionService.CreateTransaction(c.Request.Context(), userID, services.CreateTransactionInput{
		Date:            req.date,
		Amount:          req.amount,
		Kind:            req.kind,
		ExpenseCategory: req.expenseCategory,
		Description:     req.description,
		Notes:           req.notes,
	}, file)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(c.Request.Context(), services.AuditEntry{
		UserID:       userID,
		Action:       services.AuditCreateTransaction,
		ResourceType: services.AuditResourceTransaction,
		ResourceID:   transaction.ID,
		IPAddress:    c.ClientIP(),
		Changes: map[string]any{
			"kind":       transaction.Kind,
			"amount":     transaction.Amount.String(),
			"attachment": transaction.Attachment.URL,
		},
	})

	response.Created(c, transaction)
}

// ListTransactions returns a filtered page of transactions
// @Summary     List transactions
// @Description Newest first. Filters combine with AND.
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       kind            query string false "income or expense"
// @Param       expenseCategory query string false "Expense category"
// @Param       from            query string false "Earliest date, inclusive"
// @Param       to              query string false "Latest date, inclusive"
// @Param       search          query string false "Case-insensitive description match"
// @Param       page            query int    false "Page number (default 1)"
// @Param       pageSize        query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Transaction]
// @Failure     400 {object} response.Envelope "Invalid filter"
// @Failure     401 {object} response.Envelope "Unauthorized"
// @Router      /transactions [get]
func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	var q ListTransactionsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	dates, err := parseDateRange(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	filter := services.TransactionFilter{DateRange: dates, Search: q.Search}
	if q.Kind != "" {
		filter.Kind = &q.Kind
	}
	if q.ExpenseCategory != "" {
		filter.ExpenseCategory = &q.ExpenseCategory
	}

	result, err := h.transactionService.ListTransactions(c.Request.Context(), q.PageRequest, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetTransactionByID returns one transaction
// @Summary     Get a transaction
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     200 {object} response.Envelope{data=models.Transaction}
// @Failure     401 {object} response.Envelope "Unauthorized"
// @Failure     404 {object} response.Envelope "Not found"
// @Router      /transactions/{id} [get]
func (h *TransactionHandler) GetTransactionByID(c *gin.Context) {
	transaction, err := h.transactionService.GetTransactionByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	response.OK(c, transaction)
}

// UpdateTransaction applies a partial update
// @Summary     Update a transaction
// @Description Only sent fields change. A new `document` replaces the attachment; `removeAttachment=true` without a document removes it. A request that changes nothing is rejected.
// @Tags        transactions
// @Accept      multipart/form-data
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id               path     string true  "Transaction ID"
// @Param       date             formData string false "Transaction date"
// @Param       amount           formData number false "Amount"
// @Param       kind             formData string false "income or expense"
// @Param       expenseCategory  formData string false "Expense category"
// @Param       description      formData string false "Description"
// @Param       notes            formData string false "Notes"
// @Param       removeAttachment formData bool   false "Remove the current document"
// @Param       document         formData file   false "Replacement image or PDF"
// @Success     200 {object} response.Envelope{data=models.Transaction}
// @Failure     400 {object} response.Envelope "Invalid input"
// @Failure     401 {object} response.Envelope "Unauthorized"
// @Failure     403 {object} response.Envelope "Admin only"
// @Failure     404 {object} response.Envelope "Not found"
// @Failure     415 {object} response.Envelope "Unsupported document"
// @Router      /transactions/{id} [put]
func (h *TransactionHandler) UpdateTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	req, file, err := h.bindTransaction(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	update := services.TransactionUpdate{
		Date:             req.date,
		Amount:           req.amount,
		Kind:             req.kind,
		ExpenseCategory:  req.expenseCategory,
		Description:      req.description,
		Notes:            req.notes,
		RemoveAttachment: req.removeAttachment,
	}
	if update.IsEmpty() && file == nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrValidation, "no fields to update"))
		return
	}

	transaction, err := h.transactionService.UpdateTransaction(c.Request.Context(), c.Param("id"), update, file)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(c.Request.Context(), services.AuditEntry{
		UserID:       userID,
		Action:       services.AuditUpdateTransaction,
		ResourceType: services.AuditResourceTransaction,
		ResourceID:   transaction.ID,
		IPAddress:    c.ClientIP(),
		Changes: map[string]any{
			"amount":            transaction.Amount.String(),
			"document_replaced": file != nil,
			"document_removed":  file == nil && req.removeAttachment,
		},
	})

	response.OK(c, transaction)
}

// DeleteTransaction removes a transaction and its document
// @Summary     Delete a transaction
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     200 {object} response.Envelope "Transaction deleted"
// @Failure     401 {object} response.Envelope "Unauthorized"
// @Failure     403 {object} response.Envelope "Admin only"
// @Failure     404 {object} response.Envelope "Not found"
// @Router      /transactions/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id := c.Param("id")
	if err := h.transactionService.DeleteTransaction(c.Request.Context(), id); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(c.Request.Context(), services.AuditEntry{
		UserID:       userID,
		Action:       services.AuditDeleteTransaction,
		ResourceType: services.AuditResourceTransaction,
		ResourceID:   id,
		IPAddress:    c.ClientIP(),
	})

	response.Message(c, "Transaction deleted")
}
