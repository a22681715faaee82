package usecase

import (
	"context"
	"sync"

	"github.com/diillson/finance-dashboard-go/internal/domain/entity"
	"github.com/diillson/finance-dashboard-go/internal/shared/types"
)

// Syncer runs a sync cycle for a page.
type Syncer interface {
	SyncAll(ctx context.Context, page int) (entity.SyncOutcome, error)
}

// PaginationController tracks the requested page and the last known page count.
type PaginationController struct {
	syncer Syncer

	mu    sync.Mutex
	state entity.PaginationState
}

// NewPaginationController starts at page 0 with an unknown page count.
func NewPaginationController(syncer Syncer) *PaginationController {
	return &PaginationController{syncer: syncer}
}

// State returns a copy of the pagination state.
func (p *PaginationController) State() entity.PaginationState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// RequestPage moves one page forward (+1) or back (-1). With a known page count the
// target is clamped to [0, totalPages-1]; otherwise forward is unbounded and back stops
// at 0. It reports whether the page changed; only then is a sync cycle run.
func (p *PaginationController) RequestPage(ctx context.Context, delta int) (entity.SyncOutcome, bool, error) {
	if delta != 1 && delta != -1 {
		return entity.SyncOutcome{}, false, types.NewError(types.KindValidation, types.ErrInvalidPageDelta.Error(), types.ErrInvalidPageDelta)
	}

	p.mu.Lock()
	target := clampPage(p.state, p.state.Page+delta)
	if target == p.state.Page {
		p.mu.Unlock()
		return entity.SyncOutcome{}, false, nil
	}
	p.state.Page = target
	p.mu.Unlock()

	outcome, err := p.sync(ctx, target)
	return outcome, true, err
}

// GoTo jumps to page and syncs it unconditionally.
func (p *PaginationController) GoTo(ctx context.Context, page int) (entity.SyncOutcome, error) {
	if page < 0 {
		page = 0
	}
	p.mu.Lock()
	p.state.Page = page
	p.mu.Unlock()
	return p.sync(ctx, page)
}

// Refresh re-syncs the current page.
func (p *PaginationController) Refresh(ctx context.Context) (entity.SyncOutcome, error) {
	return p.sync(ctx, p.State().Page)
}

func (p *PaginationController) sync(ctx context.Context, page int) (entity.SyncOutcome, error) {
	outcome, err := p.syncer.SyncAll(ctx, page)
	if err == nil && outcome.State == entity.ViewReady && outcome.Result != nil {
		p.mu.Lock()
		// A later navigation may have moved on; only the page count is response-derived.
		p.state.TotalPages = outcome.Result.Pagination.TotalPages
		p.state.TotalKnown = outcome.Result.Pagination.TotalKnown
		p.mu.Unlock()
	}
	return outcome, err
}

func clampPage(state entity.PaginationState, target int) int {
	if target < 0 {
		target = 0
	}
	if state.TotalKnown {
		last := state.TotalPages - 1
		if last < 0 {
			last = 0
		}
		if target > last {
			target = last
		}
	}
	return target
}
