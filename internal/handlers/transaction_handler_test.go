package handlers

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/pagination"
	"fintrack/internal/services"
)

// --- mock transaction service ---

type mockTransactionService struct {
	createTransactionFn  func(ctx context.Context, userID string, input services.CreateTransactionInput, file *services.FileUpload) (*models.Transaction, error)
	getTransactionByIDFn func(ctx context.Context, id string) (*models.Transaction, error)
	listTransactionsFn   func(ctx context.Context, page pagination.PageRequest, filter services.TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	updateTransactionFn  func(ctx context.Context, id string, update services.TransactionUpdate, file *services.FileUpload) (*models.Transaction, error)
	deleteTransactionFn  func(ctx context.Context, id string) error
}

func (m *mockTransactionService) CreateTransaction(ctx context.Context, userID string, input services.CreateTransactionInput, file *services.FileUpload) (*models.Transaction, error) {
	if m.createTransactionFn != nil {
		return m.createTransactionFn(ctx, userID, input, file)
	}
	return newTestTransaction("tx-1"), nil
}

func (m *mockTransactionService) GetTransactionByID(ctx context.Context, id string) (*models.Transaction, error) {
	if m.getTransactionByIDFn != nil {
		return m.getTransactionByIDFn(ctx, id)
	}
	return newTestTransaction(id), nil
}

func (m *mockTransactionService) ListTransactions(ctx context.Context, page pagination.PageRequest, filter services.TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	if m.listTransactionsFn != nil {
		return m.listTransactionsFn(ctx, page, filter)
	}
	resp := pagination.NewPageResponse([]models.Transaction{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockTransactionService) UpdateTransaction(ctx context.Context, id string, update services.TransactionUpdate, file *services.FileUpload) (*models.Transaction, error) {
	if m.updateTransactionFn != nil {
		return m.updateTransactionFn(ctx, id, update, file)
	}
	return newTestTransaction(id), nil
}

func (m *mockTransactionService) DeleteTransaction(ctx context.Context, id string) error {
	if m.deleteTransactionFn != nil {
		return m.deleteTransactionFn(ctx, id)
	}
	return nil
}

var _ services.TransactionServicer = (*mockTransactionService)(nil)

func newTestTransaction(id string) *models.Transaction {
	tx := &models.Transaction{
		Date:            time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Amount:          decimal.RequireFromString("42.50"),
		Kind:            models.TransactionKindExpense,
		ExpenseCategory: models.ExpenseCategoryFood,
		Description:     "Groceries",
	}
	tx.ID = id
	return tx
}

func setupTransactionRouter(handler *TransactionHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectUserID("u-1"))
	auth.GET("/transactions", handler.ListTransactions)
	auth.GET("/transactions/:id", handler.GetTransactionByID)
	auth.POST("/transactions", handler.CreateTransaction)
	auth.PUT("/transactions/:id", handler.UpdateTransaction)
	auth.DELETE("/transactions/:id", handler.DeleteTransaction)
	return r
}

type formFile struct {
	name        string
	contentType string
	payload     []byte
}

// doMultipart sends fields and files as multipart/form-data; every file is
// sent under the document field.
func doMultipart(t *testing.T, r *gin.Engine, method, path string, fields map[string]string, files ...formFile) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="document"; filename="`+f.name+`"`)
		if f.contentType != "" {
			h.Set("Content-Type", f.contentType)
		}
		part, err := w.CreatePart(h)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		_, _ = part.Write(f.payload)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestTransactionHandler_CreateTransaction(t *testing.T) {
	validFields := map[string]string{
		"date":            "2024-03-01",
		"amount":          "42.50",
		"kind":            "expense",
		"expenseCategory": "food",
		"description":     "Groceries",
	}

	t.Run("returns 201 with document", func(t *testing.T) {
		var gotInput services.CreateTransactionInput
		var gotFile *services.FileUpload
		var gotUser string
		txSvc := &mockTransactionService{
			createTransactionFn: func(_ context.Context, userID string, input services.CreateTransactionInput, file *services.FileUpload) (*models.Transaction, error) {
				gotUser, gotInput, gotFile = userID, input, file
				return newTestTransaction("tx-1"), nil
			},
		}
		audit := &mockAuditService{}
		r := setupTransactionRouter(NewTransactionHandler(txSvc, audit, 1024))

		rec := doMultipart(t, r, http.MethodPost, "/transactions", validFields,
			formFile{name: "receipt.pdf", contentType: "application/pdf", payload: []byte("%PDF-1.4")})

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotUser != "u-1" {
			t.Errorf("expected creator u-1, got %q", gotUser)
		}
		if gotInput.Amount == nil || !gotInput.Amount.Equal(decimal.RequireFromString("42.5")) {
			t.Errorf("expected amount 42.50, got %v", gotInput.Amount)
		}
		if gotInput.Date == nil || !gotInput.Date.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("unexpected date %v", gotInput.Date)
		}
		if gotInput.Notes != nil {
			t.Error("expected absent notes to stay nil")
		}
		if gotFile == nil || gotFile.OriginalName != "receipt.pdf" || gotFile.ContentType != "application/pdf" {
			t.Errorf("unexpected file %+v", gotFile)
		}
		result := parseJSON(t, rec)
		if result["success"] != true {
			t.Errorf("expected success envelope, got %v", result)
		}
		if dataObject(t, result)["amount"].(float64) != 42.5 {
			t.Errorf("expected numeric amount, got %v", dataObject(t, result)["amount"])
		}
		if got := audit.actions(); len(got) != 1 || got[0] != "CREATE_TRANSACTION" {
			t.Errorf("expected audit entry, got %v", got)
		}
	})

	t.Run("accepts json without document", func(t *testing.T) {
		var gotFile *services.FileUpload
		var gotKind *models.TransactionKind
		txSvc := &mockTransactionService{
			createTransactionFn: func(_ context.Context, _ string, input services.CreateTransactionInput, file *services.FileUpload) (*models.Transaction, error) {
				gotFile, gotKind = file, input.Kind
				return newTestTransaction("tx-1"), nil
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(txSvc, &mockAuditService{}, 1024))

		rec := doRequest(r, http.MethodPost, "/transactions",
			`{"date":"2024-03-01T10:00:00Z","amount":1000,"kind":"income","description":"Salary"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotFile != nil {
			t.Error("expected no file")
		}
		if gotKind == nil || *gotKind != models.TransactionKindIncome {
			t.Errorf("unexpected kind %v", gotKind)
		}
	})

	t.Run("returns 400 on invalid kind", func(t *testing.T) {
		r := setupTransactionRouter(NewTransactionHandler(&mockTransactionService{}, &mockAuditService{}, 1024))
		fields := map[string]string{"date": "2024-03-01", "amount": "1", "kind": "transfer", "description": "x"}

		rec := doMultipart(t, r, http.MethodPost, "/transactions", fields)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "VALIDATION_ERROR")
	})

	t.Run("returns 400 on malformed amount", func(t *testing.T) {
		r := setupTransactionRouter(NewTransactionHandler(&mockTransactionService{}, &mockAuditService{}, 1024))
		fields := map[string]string{"date": "2024-03-01", "amount": "ten", "kind": "income", "description": "x"}

		rec := doMultipart(t, r, http.MethodPost, "/transactions", fields)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 400 on malformed date", func(t *testing.T) {
		r := setupTransactionRouter(NewTransactionHandler(&mockTransactionService{}, &mockAuditService{}, 1024))
		fields := map[string]string{"date": "03/01/2024", "amount": "1", "kind": "income", "description": "x"}

		rec := doMultipart(t, r, http.MethodPost, "/transactions", fields)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 400 on missing fields from service", func(t *testing.T) {
		txSvc := &mockTransactionService{
			createTransactionFn: func(_ context.Context, _ string, _ services.CreateTransactionInput, _ *services.FileUpload) (*models.Transaction, error) {
				return nil, apperrors.ErrMissingFields
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(txSvc, &mockAuditService{}, 1024))

		rec := doMultipart(t, r, http.MethodPost, "/transactions", map[string]string{"kind": "income"})

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "VALIDATION_ERROR")
	})

	t.Run("returns 400 on two documents", func(t *testing.T) {
		r := setupTransactionRouter(NewTransactionHandler(&mockTransactionService{}, &mockAuditService{}, 1024))

		rec := doMultipart(t, r, http.MethodPost, "/transactions", validFields,
			formFile{name: "a.pdf", contentType: "application/pdf", payload: []byte("a")},
			formFile{name: "b.pdf", contentType: "application/pdf", payload: []byte("b")})

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 415 on oversized document", func(t *testing.T) {
		called := false
		txSvc := &mockTransactionService{
			createTransactionFn: func(_ context.Context, _ string, _ services.CreateTransactionInput, _ *services.FileUpload) (*models.Transaction, error) {
				called = true
				return newTestTransaction("tx-1"), nil
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(txSvc, &mockAuditService{}, 8))

		rec := doMultipart(t, r, http.MethodPost, "/transactions", validFields,
			formFile{name: "big.pdf", contentType: "application/pdf", payload: bytes.Repeat([]byte("x"), 64)})

		if rec.Code != http.StatusUnsupportedMediaType {
			t.Fatalf("expected 415, got %d: %s", rec.Code, rec.Body.String())
		}
		if called {
			t.Error("expected service not to be called")
		}
	})

	t.Run("passes unsupported media type from service", func(t *testing.T) {
		txSvc := &mockTransactionService{
			createTransactionFn: func(_ context.Context, _ string, _ services.CreateTransactionInput, file *services.FileUpload) (*models.Transaction, error) {
				if file.ContentType != "text/plain" {
					t.Errorf("expected text/plain, got %s", file.ContentType)
				}
				return nil, apperrors.ErrUnsupportedMediaType
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(txSvc, &mockAuditService{}, 1024))

		rec := doMultipart(t, r, http.MethodPost, "/transactions", validFields,
			formFile{name: "notes.txt", contentType: "text/plain", payload: []byte("hello")})

		if rec.Code != http.StatusUnsupportedMediaType {
			t.Fatalf("expected 415, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "UNSUPPORTED_MEDIA_TYPE")
	})

	t.Run("infers content type from extension", func(t *testing.T) {
		var gotType string
		txSvc := &mockTransactionService{
			createTransactionFn: func(_ context.Context, _ string, _ services.CreateTransactionInput, file *services.FileUpload) (*models.Transaction, error) {
				gotType = file.ContentType
				return newTestTransaction("tx-1"), nil
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(txSvc, &mockAuditService{}, 1024))

		rec := doMultipart(t, r, http.MethodPost, "/transactions", validFields,
			formFile{name: "scan.pdf", contentType: "application/octet-stream", payload: []byte("%PDF-1.4")})

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d", rec.Code)
		}
		if gotType != "application/pdf" {
			t.Errorf("expected application/pdf, got %q", gotType)
		}
	})

	t.Run("returns 500 on storage failure", func(t *testing.T) {
		txSvc := &mockTransactionService{
			createTransactionFn: func(_ context.Context, _ string, _ services.CreateTransactionInput, _ *services.FileUpload) (*models.Transaction, error) {
				return nil, apperrors.ErrStorage
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(txSvc, &mockAuditService{}, 1024))

		rec := doMultipart(t, r, http.MethodPost, "/transactions", validFields,
			formFile{name: "a.png", contentType: "image/png", payload: []byte("png")})

		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "STORAGE_ERROR")
	})

	t.Run("returns 401 without auth", func(t *testing.T) {
		handler := NewTransactionHandler(&mockTransactionService{}, &mockAuditService{}, 1024)
		r := gin.New()
		r.POST("/transactions", handler.CreateTransaction)

		rec := doMultipart(t, r, http.MethodPost, "/transactions", validFields)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})
}

func TestTransactionHandler_ListTransactions(t *testing.T) {
	t.Run("maps query filters", func(t *testing.T) {
		var gotPage pagination.PageRequest
		var gotFilter services.TransactionFilter
		txSvc := &mockTransactionService{
			listTransactionsFn: func(_ context.Context, page pagination.PageRequest, filter services.TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
				gotPage, gotFilter = page, filter
				resp := pagination.NewPageResponse([]models.Transaction{*newTestTransaction("tx-1")}, 2, 5, 6)
				return &resp, nil
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(txSvc, &mockAuditService{}, 1024))

		rec := doRequest(r, http.MethodGet,
			"/transactions?kind=expense&expenseCategory=food&from=2024-01-01&to=2024-01-31&search=milk&page=2&pageSize=5", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotPage.Page != 2 || gotPage.PageSize != 5 {
			t.Errorf("unexpected page %+v", gotPage)
		}
		if gotFilter.Kind == nil || *gotFilter.Kind != models.TransactionKindExpense {
			t.Errorf("unexpected kind %v", gotFilter.Kind)
		}
		if gotFilter.ExpenseCategory == nil || *gotFilter.ExpenseCategory != models.ExpenseCategoryFood {
			t.Errorf("unexpected category %v", gotFilter.ExpenseCategory)
		}
		if gotFilter.Search != "milk" {
			t.Errorf("unexpected search %q", gotFilter.Search)
		}
		wantTo := time.Date(2024, 1, 31, 23, 59, 59, 999999999, time.UTC)
		if gotFilter.To == nil || !gotFilter.To.Equal(wantTo) {
			t.Errorf("expected bare to-date to cover the day, got %v", gotFilter.To)
		}

		result := parseJSON(t, rec)
		if result["success"] != true || result["count"].(float64) != 1 || result["total"].(float64) != 6 {
			t.Errorf("unexpected list envelope %v", result)
		}
		if result["totalPages"].(float64) != 2 || result["currentPage"].(float64) != 2 {
			t.Errorf("unexpected page metadata %v", result)
		}
	})

	t.Run("returns 400 on invalid kind", func(t *testing.T) {
		r := setupTransactionRouter(NewTransactionHandler(&mockTransactionService{}, &mockAuditService{}, 1024))

		rec := doRequest(r, http.MethodGet, "/transactions?kind=refund", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 400 on inverted range", func(t *testing.T) {
		r := setupTransactionRouter(NewTransactionHandler(&mockTransactionService{}, &mockAuditService{}, 1024))

		rec := doRequest(r, http.MethodGet, "/transactions?from=2024-02-01&to=2024-01-01", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 400 on page size above limit", func(t *testing.T) {
		r := setupTransactionRouter(NewTransactionHandler(&mockTransactionService{}, &mockAuditService{}, 1024))

		rec := doRequest(r, http.MethodGet, "/transactions?pageSize=1000", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestTransactionHandler_GetTransactionByID(t *testing.T) {
	t.Run("returns 200", func(t *testing.T) {
		r := setupTransactionRouter(NewTransactionHandler(&mockTransactionService{}, &mockAuditService{}, 1024))

		rec := doRequest(r, http.MethodGet, "/transactions/tx-9", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if dataObject(t, parseJSON(t, rec))["id"] != "tx-9" {
			t.Errorf("unexpected body %s", rec.Body.String())
		}
	})

	t.Run("returns 404 when not found", func(t *testing.T) {
		txSvc := &mockTransactionService{
			getTransactionByIDFn: func(_ context.Context, _ string) (*models.Transaction, error) {
				return nil, apperrors.ErrTransactionNotFound
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(txSvc, &mockAuditService{}, 1024))

		rec := doRequest(r, http.MethodGet, "/transactions/missing", "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "TRANSACTION_NOT_FOUND")
	})
}

func TestTransactionHandler_UpdateTransaction(t *testing.T) {
	t.Run("passes only sent fields", func(t *testing.T) {
		var gotUpdate services.TransactionUpdate
		var gotID string
		txSvc := &mockTransactionService{
			updateTransactionFn: func(_ context.Context, id string, update services.TransactionUpdate, _ *services.FileUpload) (*models.Transaction, error) {
				gotID, gotUpdate = id, update
				return newTestTransaction(id), nil
			},
		}
		audit := &mockAuditService{}
		r := setupTransactionRouter(NewTransactionHandler(txSvc, audit, 1024))

		rec := doMultipart(t, r, http.MethodPut, "/transactions/tx-1",
			map[string]string{"notes": "", "removeAttachment": "true"})

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotID != "tx-1" {
			t.Errorf("expected id tx-1, got %s", gotID)
		}
		if gotUpdate.Notes == nil || *gotUpdate.Notes != "" {
			t.Errorf("expected explicit empty notes, got %v", gotUpdate.Notes)
		}
		if gotUpdate.Amount != nil || gotUpdate.Description != nil || gotUpdate.Kind != nil {
			t.Errorf("expected absent fields to stay nil, got %+v", gotUpdate)
		}
		if !gotUpdate.RemoveAttachment {
			t.Error("expected removeAttachment flag")
		}
		if got := audit.actions(); len(got) != 1 || got[0] != "UPDATE_TRANSACTION" {
			t.Errorf("expected audit entry, got %v", got)
		}
	})

	t.Run("forwards replacement document", func(t *testing.T) {
		var gotFile *services.FileUpload
		txSvc := &mockTransactionService{
			updateTransactionFn: func(_ context.Context, id string, _ services.TransactionUpdate, file *services.FileUpload) (*models.Transaction, error) {
				gotFile = file
				return newTestTransaction(id), nil
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(txSvc, &mockAuditService{}, 1024))

		rec := doMultipart(t, r, http.MethodPut, "/transactions/tx-1", nil,
			formFile{name: "new photo.jpg", contentType: "image/jpeg", payload: []byte("jpg")})

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if gotFile == nil || gotFile.OriginalName != "new photo.jpg" || string(gotFile.Payload) != "jpg" {
			t.Errorf("unexpected file %+v", gotFile)
		}
	})

	t.Run("rejects an update that changes nothing", func(t *testing.T) {
		called := false
		txSvc := &mockTransactionService{
			updateTransactionFn: func(_ context.Context, id string, _ services.TransactionUpdate, _ *services.FileUpload) (*models.Transaction, error) {
				called = true
				return newTestTransaction(id), nil
			},
		}
		audit := &mockAuditService{}
		r := setupTransactionRouter(NewTransactionHandler(txSvc, audit, 1024))

		for _, body := range []string{`{}`, `{"removeAttachment": false}`} {
			rec := doRequest(r, http.MethodPut, "/transactions/tx-1", body)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("%s: expected 400, got %d", body, rec.Code)
			}
			assertErrorCode(t, parseJSON(t, rec), "VALIDATION_ERROR")
		}
		if called {
			t.Error("expected the service not to be called")
		}
		if got := audit.actions(); len(got) != 0 {
			t.Errorf("expected no audit entries, got %v", got)
		}
	})

	t.Run("returns 404 when not found", func(t *testing.T) {
		txSvc := &mockTransactionService{
			updateTransactionFn: func(_ context.Context, _ string, _ services.TransactionUpdate, _ *services.FileUpload) (*models.Transaction, error) {
				return nil, apperrors.ErrTransactionNotFound
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(txSvc, &mockAuditService{}, 1024))

		rec := doRequest(r, http.MethodPut, "/transactions/missing", `{"notes":"x"}`)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}

func TestTransactionHandler_DeleteTransaction(t *testing.T) {
	t.Run("returns 200 with message", func(t *testing.T) {
		audit := &mockAuditService{}
		r := setupTransactionRouter(NewTransactionHandler(&mockTransactionService{}, audit, 1024))

		rec := doRequest(r, http.MethodDelete, "/transactions/tx-1", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		result := parseJSON(t, rec)
		if result["success"] != true || result["message"] == "" {
			t.Errorf("unexpected body %v", result)
		}
		if got := audit.actions(); len(got) != 1 || got[0] != "DELETE_TRANSACTION" {
			t.Errorf("expected audit entry, got %v", got)
		}
	})

	t.Run("returns 404 when not found", func(t *testing.T) {
		txSvc := &mockTransactionService{
			deleteTransactionFn: func(_ context.Context, _ string) error {
				return apperrors.ErrTransactionNotFound
			},
		}
		audit := &mockAuditService{}
		r := setupTransactionRouter(NewTransactionHandler(txSvc, audit, 1024))

		rec := doRequest(r, http.MethodDelete, "/transactions/missing", "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		if len(audit.actions()) != 0 {
			t.Error("expected no audit entry for a failed delete")
		}
	})
}
