package entity

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ReceiptFile is an uploaded receipt image or document.
type ReceiptFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// ReceiptExtraction holds the fields the service extracted from a receipt.
type ReceiptExtraction struct {
	Description string              `json:"description,omitempty"`
	Amount      decimal.NullDecimal `json:"amount"`
	Date        string              `json:"date,omitempty"`
	Message     string              `json:"message,omitempty"`
}

// Complete reports whether enough was extracted to create a transaction automatically.
func (e ReceiptExtraction) Complete() bool {
	return strings.TrimSpace(e.Description) != "" && e.Amount.Valid && e.Amount.Decimal.IsPositive()
}

// Draft turns the extraction into an EXPENSE draft. Date defaulting happens in Normalize.
func (e ReceiptExtraction) Draft() TransactionDraft {
	return TransactionDraft{
		Description: e.Description,
		Amount:      e.Amount,
		Type:        Expense,
		Date:        e.Date,
	}
}

// ReceiptStatus summarizes how far the receipt pipeline got.
type ReceiptStatus int

const (
	// ReceiptExtractedOnly: extraction succeeded but returned too little to create an expense.
	ReceiptExtractedOnly ReceiptStatus = iota
	ReceiptAdded
	// ReceiptNotAdded: extraction succeeded, automatic creation failed.
	ReceiptNotAdded
	// ReceiptAddedNotRefreshed: expense created, trailing resync failed.
	ReceiptAddedNotRefreshed
)

func (s ReceiptStatus) String() string {
	switch s {
	case ReceiptAdded:
		return "added"
	case ReceiptNotAdded:
		return "processed but not added"
	case ReceiptAddedNotRefreshed:
		return "added but not refreshed"
	default:
		return "extracted only"
	}
}

// ReceiptOutcome is returned for every receipt whose extraction succeeded.
type ReceiptOutcome struct {
	Extraction ReceiptExtraction
	Record     *TransactionRecord
	Status     ReceiptStatus
	ResyncErr  error
}

// EntryOutcome is returned for a committed manual entry.
type EntryOutcome struct {
	Record    TransactionRecord
	ResyncErr error
}

// SubmissionState is the entry pipeline state machine.
type SubmissionState int

const (
	SubmissionIdle SubmissionState = iota
	SubmissionSubmitting
	SubmissionSucceeded
	SubmissionFailed
)

func (s SubmissionState) String() string {
	switch s {
	case SubmissionSubmitting:
		return "submitting"
	case SubmissionSucceeded:
		return "succeeded"
	case SubmissionFailed:
		return "failed"
	default:
		return "idle"
	}
}
