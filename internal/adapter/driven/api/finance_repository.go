package api

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/diillson/finance-dashboard-go/internal/domain/entity"
	"github.com/diillson/finance-dashboard-go/internal/shared/types"
)

// FinanceRepository implements repository.FinanceRepository over the summary,
// transaction and category endpoints.
type FinanceRepository struct {
	client *Client
}

// NewFinanceRepository creates a new finance repository.
func NewFinanceRepository(client *Client) *FinanceRepository {
	return &FinanceRepository{client: client}
}

// GetSummary retrieves the account totals.
func (r *FinanceRepository) GetSummary(ctx context.Context, cred entity.Credential) (entity.SummarySnapshot, error) {
	var summary entity.SummarySnapshot
	if err := r.client.getJSON(ctx, "/summary", nil, cred.Token, &summary); err != nil {
		return entity.SummarySnapshot{}, err
	}
	return summary, nil
}

// GetSummaryByCategory retrieves the server-side totals per category and type.
func (r *FinanceRepository) GetSummaryByCategory(ctx context.Context, cred entity.Credential) ([]entity.CategoryTotal, error) {
	var totals []entity.CategoryTotal
	if err := r.client.getJSON(ctx, "/summary/by-category", nil, cred.Token, &totals); err != nil {
		return nil, err
	}
	return totals, nil
}

// GetSummaryByDay retrieves the daily income/expense series.
func (r *FinanceRepository) GetSummaryByDay(ctx context.Context, cred entity.Credential) ([]entity.DailyAggregate, error) {
	var days []entity.DailyAggregate
	if err := r.client.getJSON(ctx, "/summary/by-day", nil, cred.Token, &days); err != nil {
		return nil, err
	}
	return days, nil
}

// ListTransactions retrieves one page of transactions, optionally restricted to a date range.
func (r *FinanceRepository) ListTransactions(ctx context.Context, cred entity.Credential, page, size int, filter entity.TransactionFilter) (entity.TransactionPage, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("size", strconv.Itoa(size))
	if filter.From != "" {
		query.Set("startDate", filter.From)
	}
	if filter.To != "" {
		query.Set("endDate", filter.To)
	}

	var resp transactionPageResponse
	if err := r.client.getJSON(ctx, "/transactions", query, cred.Token, &resp); err != nil {
		return entity.TransactionPage{}, err
	}
	if resp.Content == nil {
		return entity.TransactionPage{}, types.NewError(types.KindMalformedResponse, "transactions response has no content", nil)
	}

	result := entity.TransactionPage{Content: *resp.Content}
	if resp.TotalPages != nil {
		if *resp.TotalPages < 0 {
			return entity.TransactionPage{}, types.NewError(types.KindMalformedResponse, "transactions response has a negative page count", nil)
		}
		result.TotalPages = *resp.TotalPages
		result.TotalKnown = true
	}
	return result, nil
}

// CreateTransaction submits a validated draft and returns the stored record.
func (r *FinanceRepository) CreateTransaction(ctx context.Context, cred entity.Credential, draft entity.TransactionDraft) (entity.TransactionRecord, error) {
	var record entity.TransactionRecord
	if err := r.client.postJSON(ctx, "/transactions", cred.Token, types.KindAuthExpired, newTransactionRequest(draft), &record); err != nil {
		return entity.TransactionRecord{}, err
	}
	return record, nil
}

// UploadReceipt sends a receipt for extraction. A response that reports failure,
// or that extracted nothing at all, is an ExtractionError.
func (r *FinanceRepository) UploadReceipt(ctx context.Context, cred entity.Credential, file entity.ReceiptFile) (entity.ReceiptExtraction, error) {
	var resp receiptResponse
	err := r.client.postMultipart(ctx, "/transactions/upload-receipt", cred.Token, "file", file.Name, file.ContentType, file.Data, &resp)
	if err != nil {
		return entity.ReceiptExtraction{}, err
	}
	return extractionFrom(resp)
}

func extractionFrom(resp receiptResponse) (entity.ReceiptExtraction, error) {
	if resp.Success != nil && !*resp.Success {
		msg := firstNonEmpty(resp.ErrorMessage, resp.Message, "failed to process receipt")
		return entity.ReceiptExtraction{}, types.NewError(types.KindExtraction, msg, nil)
	}

	ext := entity.ReceiptExtraction{
		Description: strings.TrimSpace(resp.Description),
		Amount:      resp.Amount,
		Date:        resp.Date,
		Message:     resp.Message,
	}
	if len(resp.ParsedTransactions) > 0 {
		first := resp.ParsedTransactions[0]
		ext.Description = strings.TrimSpace(first.Description)
		ext.Amount = first.Amount
		ext.Date = first.Date
	}

	if ext.Description == "" && !ext.Amount.Valid && ext.Date == "" {
		msg := firstNonEmpty(resp.ErrorMessage, resp.Message, "no transaction data found in receipt")
		return entity.ReceiptExtraction{}, types.NewError(types.KindExtraction, msg, nil)
	}
	return ext, nil
}

// ListCategories retrieves the user's categories.
func (r *FinanceRepository) ListCategories(ctx context.Context, cred entity.Credential) ([]entity.Category, error) {
	var categories []entity.Category
	if err := r.client.getJSON(ctx, "/categories", nil, cred.Token, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// CreateCategory creates a category by name.
func (r *FinanceRepository) CreateCategory(ctx context.Context, cred entity.Credential, name string) (entity.Category, error) {
	var category entity.Category
	if err := r.client.postJSON(ctx, "/categories", cred.Token, types.KindAuthExpired, categoryRequest{Name: name}, &category); err != nil {
		return entity.Category{}, err
	}
	return category, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
