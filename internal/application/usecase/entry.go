package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/diillson/finance-dashboard-go/internal/domain/entity"
	"github.com/diillson/finance-dashboard-go/internal/domain/repository"
	"github.com/diillson/finance-dashboard-go/internal/shared/types"
)

// Resyncer refreshes the dashboard at its current page.
type Resyncer interface {
	Refresh(ctx context.Context) (entity.SyncOutcome, error)
}

// EntryPipeline submits manual entries and receipts. One submission runs at a time:
// Idle -> Submitting -> Succeeded | Failed, and a new one may start once the last settled.
type EntryPipeline struct {
	session *SessionStore
	finance repository.FinanceRepository
	resync  Resyncer
	now     func() time.Time
	log     zerolog.Logger

	mu    sync.Mutex
	state entity.SubmissionState
}

// NewEntryPipeline creates an entry pipeline.
func NewEntryPipeline(session *SessionStore, finance repository.FinanceRepository, resync Resyncer, log zerolog.Logger) *EntryPipeline {
	return &EntryPipeline{
		session: session,
		finance: finance,
		resync:  resync,
		now:     time.Now,
		log:     log.With().Str("component", "entry").Logger(),
	}
}

// State returns the state of the most recent submission.
func (e *EntryPipeline) State() entity.SubmissionState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *EntryPipeline) begin() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == entity.SubmissionSubmitting {
		return types.ErrSubmissionInProgress
	}
	e.state = entity.SubmissionSubmitting
	return nil
}

func (e *EntryPipeline) settle(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err != nil {
		e.state = entity.SubmissionFailed
	} else {
		e.state = entity.SubmissionSucceeded
	}
}

// SubmitManualEntry validates and creates a transaction, then resyncs. A resync failure
// is reported in the outcome and does not undo the committed entry.
func (e *EntryPipeline) SubmitManualEntry(ctx context.Context, draft entity.TransactionDraft) (outcome entity.EntryOutcome, err error) {
	if err := e.begin(); err != nil {
		return entity.EntryOutcome{}, err
	}
	defer func() { e.settle(err) }()

	draft = draft.Normalize(e.now())
	if verr := draft.Validate(); verr != nil {
		return entity.EntryOutcome{}, types.NewError(types.KindValidation, verr.Error(), verr)
	}

	cred, gen, ok := e.session.Current()
	if !ok {
		return entity.EntryOutcome{}, types.ErrNotAuthenticated
	}

	record, err := e.finance.CreateTransaction(ctx, cred, draft)
	if err != nil {
		e.checkAuth(gen, err)
		return entity.EntryOutcome{}, err
	}
	e.log.Info().Int64("id", record.ID).Str("type", string(record.Type)).Msg("transaction created")

	outcome = entity.EntryOutcome{Record: record}
	if _, rerr := e.resync.Refresh(ctx); rerr != nil {
		e.log.Warn().Err(rerr).Msg("resync after manual entry failed")
		outcome.ResyncErr = rerr
	}
	return outcome, nil
}

// SubmitReceipt uploads a receipt (phase A) and, when a description and a positive amount
// were extracted, creates an EXPENSE from them (phase B), then resyncs.
//
// Once extraction succeeds the outcome always carries the extracted fields, even when
// the returned error is a PartialPipelineFailure, so the caller can retry by hand.
func (e *EntryPipeline) SubmitReceipt(ctx context.Context, file entity.ReceiptFile) (outcome entity.ReceiptOutcome, err error) {
	if err := e.begin(); err != nil {
		return entity.ReceiptOutcome{}, err
	}
	defer func() { e.settle(err) }()

	if len(file.Data) == 0 {
		return entity.ReceiptOutcome{}, types.NewError(types.KindValidation, types.ErrEmptyReceipt.Error(), types.ErrEmptyReceipt)
	}

	cred, gen, ok := e.session.Current()
	if !ok {
		return entity.ReceiptOutcome{}, types.ErrNotAuthenticated
	}

	// Phase A
	extraction, err := e.finance.UploadReceipt(ctx, cred, file)
	if err != nil {
		if e.checkAuth(gen, err) {
			return entity.ReceiptOutcome{}, err
		}
		if types.KindOf(err) == types.KindExtraction {
			return entity.ReceiptOutcome{}, err
		}
		return entity.ReceiptOutcome{}, types.NewError(types.KindExtraction, "failed to process receipt", err)
	}
	e.log.Debug().Str("file", file.Name).Bool("complete", extraction.Complete()).Msg("receipt extracted")

	outcome = entity.ReceiptOutcome{Extraction: extraction, Status: entity.ReceiptExtractedOnly}
	if !extraction.Complete() {
		if _, rerr := e.resync.Refresh(ctx); rerr != nil {
			outcome.ResyncErr = rerr
		}
		return outcome, nil
	}

	// Phase B
	draft := extraction.Draft().Normalize(e.now())
	outcome.Extraction.Date = draft.Date
	if verr := draft.Validate(); verr != nil {
		outcome.Status = entity.ReceiptNotAdded
		return outcome, types.NewPartialFailure(types.StageCreate, types.NewError(types.KindValidation, verr.Error(), verr))
	}

	record, err := e.finance.CreateTransaction(ctx, cred, draft)
	if err != nil {
		e.checkAuth(gen, err)
		outcome.Status = entity.ReceiptNotAdded
		return outcome, types.NewPartialFailure(types.StageCreate, err)
	}
	outcome.Record = &record
	outcome.Status = entity.ReceiptAdded
	e.log.Info().Int64("id", record.ID).Msg("expense created from receipt")

	if _, rerr := e.resync.Refresh(ctx); rerr != nil {
		outcome.Status = entity.ReceiptAddedNotRefreshed
		outcome.ResyncErr = rerr
		return outcome, types.NewPartialFailure(types.StageResync, rerr)
	}
	return outcome, nil
}

// checkAuth signs out when err is an authorization failure for generation gen.
func (e *EntryPipeline) checkAuth(gen uint64, err error) bool {
	if !types.IsAuthExpired(err) {
		return false
	}
	if e.session.Invalidate(gen) {
		e.log.Warn().Err(err).Msg("authorization failed during submission, signed out")
	}
	return true
}
