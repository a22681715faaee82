package api

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/diillson/finance-dashboard-go/internal/domain/entity"
)

type authRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type googleAuthRequest struct {
	Token string `json:"token"`
}

type authResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Message  string `json:"message"`
}

// transactionPageResponse keeps pointers so a missing field is distinguishable from an empty one.
type transactionPageResponse struct {
	Content    *[]entity.TransactionRecord `json:"content"`
	TotalPages *int                        `json:"totalPages"`
}

type transactionRequest struct {
	Description string      `json:"description"`
	Amount      json.Number `json:"amount"`
	Type        string      `json:"type"`
	Date        string      `json:"date"`
	CategoryID  *int64      `json:"categoryId,omitempty"`
}

func newTransactionRequest(d entity.TransactionDraft) transactionRequest {
	return transactionRequest{
		Description: d.Description,
		Amount:      json.Number(d.Amount.Decimal.String()),
		Type:        string(d.Type),
		Date:        d.Date,
		CategoryID:  d.CategoryID,
	}
}

// receiptResponse accepts both the flat extraction shape and the upload envelope
// ({success, message, errorMessage, parsedTransactions}).
type receiptResponse struct {
	Description string              `json:"description"`
	Amount      decimal.NullDecimal `json:"amount"`
	Date        string              `json:"date"`

	Success            *bool             `json:"success"`
	Message            string            `json:"message"`
	ErrorMessage       string            `json:"errorMessage"`
	ParsedTransactions []parsedReceiptTx `json:"parsedTransactions"`
}

type parsedReceiptTx struct {
	Description string              `json:"description"`
	Amount      decimal.NullDecimal `json:"amount"`
	Date        string              `json:"date"`
}

type categoryRequest struct {
	Name string `json:"name"`
}
