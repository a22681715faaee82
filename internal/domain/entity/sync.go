package entity

// PaginationState tracks the requested page and the page count last reported by the server.
// TotalPages is meaningful only when TotalKnown is true and may lag one cycle behind Page.
type PaginationState struct {
	Page       int  `json:"page"`
	TotalPages int  `json:"totalPages"`
	TotalKnown bool `json:"totalKnown"`
}

// SyncResult is the combined view-model produced by one sync cycle.
type SyncResult struct {
	Identity               string              `json:"identity"`
	Summary                SummarySnapshot     `json:"summary"`
	Categories             []CategoryAggregate `json:"categories"`
	MeaningfulDistribution bool                `json:"meaningfulDistribution"`
	CategoryTotals         []CategoryTotal     `json:"categoryTotals"`
	Daily                  []DailyAggregate    `json:"daily"`
	Transactions           []TransactionRecord `json:"transactions"`
	Pagination             PaginationState     `json:"pagination"`
}

// ViewState is what presentation should show.
type ViewState int

const (
	ViewUnauthenticated ViewState = iota
	ViewReady
	ViewError
)

func (s ViewState) String() string {
	switch s {
	case ViewReady:
		return "ready"
	case ViewError:
		return "error"
	default:
		return "unauthenticated"
	}
}

// SyncOutcome is the result of SyncAll. Result is set only when State is ViewReady.
type SyncOutcome struct {
	State  ViewState
	Result *SyncResult
	// Shared is true when the cycle was already in flight for the same page and was joined.
	Shared bool
}
