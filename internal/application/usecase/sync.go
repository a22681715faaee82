package usecase

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/diillson/finance-dashboard-go/internal/domain/entity"
	"github.com/diillson/finance-dashboard-go/internal/domain/repository"
	"github.com/diillson/finance-dashboard-go/internal/shared/types"
)

// SyncOrchestrator gathers summary, category totals, the daily series and one page
// of transactions into a single SyncResult. A cycle either fully succeeds or leaves
// the last result untouched (or cleared, on authorization failure).
type SyncOrchestrator struct {
	session  *SessionStore
	finance  repository.FinanceRepository
	pageSize int
	log      zerolog.Logger
	flights  singleflight.Group

	mu      sync.Mutex
	filter  entity.TransactionFilter
	last    *entity.SyncResult
	state   entity.ViewState
	lastErr error
}

// NewSyncOrchestrator creates an orchestrator. pageSize is fixed for the life of the process.
func NewSyncOrchestrator(session *SessionStore, finance repository.FinanceRepository, pageSize int, log zerolog.Logger) *SyncOrchestrator {
	if pageSize <= 0 {
		pageSize = types.DefaultPageSize
	}
	o := &SyncOrchestrator{
		session:  session,
		finance:  finance,
		pageSize: pageSize,
		log:      log.With().Str("component", "sync").Logger(),
	}
	session.OnChange(func(signedIn bool) {
		o.mu.Lock()
		defer o.mu.Unlock()
		o.last = nil
		o.lastErr = nil
		o.state = entity.ViewUnauthenticated
	})
	return o
}

// SetFilter restricts the transaction listing of later cycles to a date range.
func (o *SyncOrchestrator) SetFilter(filter entity.TransactionFilter) error {
	if err := filter.Validate(); err != nil {
		return types.NewError(types.KindValidation, err.Error(), err)
	}
	o.mu.Lock()
	o.filter = filter
	o.mu.Unlock()
	return nil
}

// Last returns the current view state, the latest complete result (nil unless ready
// or error-with-prior-data), and the error of the last failed cycle.
func (o *SyncOrchestrator) Last() (entity.SyncOutcome, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return entity.SyncOutcome{State: o.state, Result: o.last}, o.lastErr
}

// cycleResult is what one flight hands to every caller that joined it.
type cycleResult struct {
	result *entity.SyncResult
	stale  bool
}

// SyncAll runs one cycle for page. Without a credential it returns an Unauthenticated
// outcome and issues no request. A second call for a page whose cycle is in flight
// joins that cycle instead of issuing new requests; the joined cycle runs under the
// first caller's ctx, so cancelling it fails every caller that joined.
func (o *SyncOrchestrator) SyncAll(ctx context.Context, page int) (entity.SyncOutcome, error) {
	if page < 0 {
		return entity.SyncOutcome{}, types.NewError(types.KindValidation, "page must not be negative", nil)
	}

	cred, gen, ok := o.session.Current()
	if !ok {
		o.mu.Lock()
		o.last = nil
		o.state = entity.ViewUnauthenticated
		o.mu.Unlock()
		return entity.SyncOutcome{State: entity.ViewUnauthenticated}, nil
	}

	o.mu.Lock()
	filter := o.filter
	o.mu.Unlock()

	key := strconv.FormatUint(gen, 10) + ":" + strconv.Itoa(page) + ":" + filter.From + ":" + filter.To
	v, err, shared := o.flights.Do(key, func() (interface{}, error) {
		return o.runCycle(ctx, cred, gen, page, filter)
	})
	if err != nil {
		return entity.SyncOutcome{State: o.viewState()}, err
	}

	cr := v.(cycleResult)
	if cr.stale {
		// The session changed while the cycle was in flight; its data and its
		// failures belong to nobody.
		if !o.session.IsAuthenticated() {
			return entity.SyncOutcome{State: entity.ViewUnauthenticated}, nil
		}
		return o.SyncAll(ctx, page)
	}
	return entity.SyncOutcome{State: entity.ViewReady, Result: cr.result, Shared: shared}, nil
}

func (o *SyncOrchestrator) viewState() entity.ViewState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

func (o *SyncOrchestrator) runCycle(ctx context.Context, cred entity.Credential, gen uint64, page int, filter entity.TransactionFilter) (cycleResult, error) {
	log := o.log.With().Int("page", page).Uint64("generation", gen).Logger()
	log.Debug().Msg("sync cycle started")

	var (
		wg      sync.WaitGroup
		errChan = make(chan error, 4)

		summary entity.SummarySnapshot
		totals  []entity.CategoryTotal
		daily   []entity.DailyAggregate
		txPage  entity.TransactionPage
	)

	wg.Add(4)
	go func() {
		defer wg.Done()
		var err error
		if summary, err = o.finance.GetSummary(ctx, cred); err != nil {
			errChan <- fmt.Errorf("fetch summary: %w", err)
		}
	}()
	go func() {
		defer wg.Done()
		var err error
		if totals, err = o.finance.GetSummaryByCategory(ctx, cred); err != nil {
			errChan <- fmt.Errorf("fetch category summary: %w", err)
		}
	}()
	go func() {
		defer wg.Done()
		var err error
		if daily, err = o.finance.GetSummaryByDay(ctx, cred); err != nil {
			errChan <- fmt.Errorf("fetch daily summary: %w", err)
		}
	}()
	go func() {
		defer wg.Done()
		var err error
		if txPage, err = o.finance.ListTransactions(ctx, cred, page, o.pageSize, filter); err != nil {
			errChan <- fmt.Errorf("fetch transactions: %w", err)
		}
	}()
	wg.Wait()
	close(errChan)

	if err := pickCycleError(errChan); err != nil {
		return o.fail(gen, err, log)
	}

	result := o.buildResult(cred, page, summary, totals, daily, txPage)

	committed := o.session.IfCurrent(gen, func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		o.last = result
		o.state = entity.ViewReady
		o.lastErr = nil
	})
	if !committed {
		log.Debug().Msg("discarding sync result for a session that is no longer current")
		return cycleResult{stale: true}, nil
	}

	if result.Identity != entity.DefaultIdentity {
		o.session.SetIdentity(gen, result.Identity)
	}
	log.Debug().Int("transactions", len(result.Transactions)).Msg("sync cycle completed")
	return cycleResult{result: result}, nil
}

// pickCycleError prefers an authorization failure so it always reaches the session.
func pickCycleError(errs <-chan error) error {
	var chosen error
	for err := range errs {
		if chosen == nil || (types.IsAuthExpired(err) && !types.IsAuthExpired(chosen)) {
			chosen = err
		}
	}
	return chosen
}

func (o *SyncOrchestrator) fail(gen uint64, err error, log zerolog.Logger) (cycleResult, error) {
	if types.IsAuthExpired(err) {
		// Invalidate resets the view through the session listener. It refuses once gen
		// is gone, whether a sibling cycle already signed out or the user signed out
		// or in again; either way this failure no longer speaks for the session.
		if !o.session.Invalidate(gen) {
			log.Debug().Err(err).Msg("discarding authorization failure for a session that is no longer current")
			return cycleResult{stale: true}, nil
		}
		log.Warn().Err(err).Msg("authorization failed during sync, signed out")
		o.mu.Lock()
		o.lastErr = err
		o.mu.Unlock()
		return cycleResult{}, err
	}

	current := o.session.IfCurrent(gen, func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		o.state = entity.ViewError
		o.lastErr = err
	})
	if !current {
		log.Debug().Err(err).Msg("discarding sync failure for a session that is no longer current")
		return cycleResult{stale: true}, nil
	}
	log.Debug().Err(err).Msg("sync cycle failed")
	return cycleResult{}, err
}

func (o *SyncOrchestrator) buildResult(
	cred entity.Credential,
	page int,
	summary entity.SummarySnapshot,
	totals []entity.CategoryTotal,
	daily []entity.DailyAggregate,
	txPage entity.TransactionPage,
) *entity.SyncResult {
	categories := CategoryDistribution(txPage.Content)
	if totals == nil {
		totals = []entity.CategoryTotal{}
	}
	if daily == nil {
		daily = []entity.DailyAggregate{}
	}
	transactions := txPage.Content
	if transactions == nil {
		transactions = []entity.TransactionRecord{}
	}

	return &entity.SyncResult{
		Identity:               ResolveIdentity(summary, cred, o.log),
		Summary:                summary,
		Categories:             categories,
		MeaningfulDistribution: HasMeaningfulDistribution(categories),
		CategoryTotals:         totals,
		Daily:                  daily,
		Transactions:           transactions,
		Pagination: entity.PaginationState{
			Page:       page,
			TotalPages: txPage.TotalPages,
			TotalKnown: txPage.TotalKnown,
		},
	}
}
