package repository

import (
	"context"

	"github.com/diillson/finance-dashboard-go/internal/domain/entity"
)

// FinanceRepository defines the authenticated calls made against the finance service.
// Every method attaches the given credential and maps failures to the shared error taxonomy.
type FinanceRepository interface {
	// Aggregates
	GetSummary(ctx context.Context, cred entity.Credential) (entity.SummarySnapshot, error)
	GetSummaryByCategory(ctx context.Context, cred entity.Credential) ([]entity.CategoryTotal, error)
	GetSummaryByDay(ctx context.Context, cred entity.Credential) ([]entity.DailyAggregate, error)

	// Transactions
	ListTransactions(ctx context.Context, cred entity.Credential, page, size int, filter entity.TransactionFilter) (entity.TransactionPage, error)
	CreateTransaction(ctx context.Context, cred entity.Credential, draft entity.TransactionDraft) (entity.TransactionRecord, error)
	UploadReceipt(ctx context.Context, cred entity.Credential, file entity.ReceiptFile) (entity.ReceiptExtraction, error)

	// Categories
	ListCategories(ctx context.Context, cred entity.Credential) ([]entity.Category, error)
	CreateCategory(ctx context.Context, cred entity.Credential, name string) (entity.Category, error)
}
