package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/diillson/finance-dashboard-go/internal/domain/entity"
	"github.com/diillson/finance-dashboard-go/internal/domain/repository"
	"github.com/diillson/finance-dashboard-go/internal/shared/types"
	"github.com/diillson/finance-dashboard-go/pkg/console"
)

// Browse actions accepted by the interactive pager.
const (
	BrowseNext     = "next"
	BrowsePrevious = "previous"
	BrowseRefresh  = "refresh"
	BrowseQuit     = "quit"
)

// DashboardUseCase wires the session, sync, pagination and entry components to the console.
type DashboardUseCase struct {
	session    *SessionStore
	sync       *SyncOrchestrator
	pager      *PaginationController
	entries    *EntryPipeline
	finance    repository.FinanceRepository
	exportRepo repository.ExportRepository
	console    types.ConsoleInterface
	currency   string
	log        zerolog.Logger
}

// NewDashboardUseCase builds the component graph and restores any persisted session.
func NewDashboardUseCase(
	auth repository.AuthRepository,
	finance repository.FinanceRepository,
	credentials repository.CredentialRepository,
	exportRepo repository.ExportRepository,
	out types.ConsoleInterface,
	cfg types.Config,
	log zerolog.Logger,
) *DashboardUseCase {
	session := NewSessionStore(auth, credentials, log)
	session.Restore()

	orchestrator := NewSyncOrchestrator(session, finance, cfg.PageSize, log)
	pager := NewPaginationController(orchestrator)

	return &DashboardUseCase{
		session:    session,
		sync:       orchestrator,
		pager:      pager,
		entries:    NewEntryPipeline(session, finance, pager, log),
		finance:    finance,
		exportRepo: exportRepo,
		console:    out,
		currency:   cfg.Currency,
		log:        log,
	}
}

// Login signs in with proof.
func (uc *DashboardUseCase) Login(ctx context.Context, proof entity.IdentityProof) error {
	status := uc.console.Status("Signing in...")
	cred, err := uc.session.SignIn(ctx, proof)
	status.Stop()
	if err != nil {
		return err
	}
	uc.console.LogSuccess("Signed in as %s", uc.identityOf(cred))
	return nil
}

// Register creates an account and signs in with it.
func (uc *DashboardUseCase) Register(ctx context.Context, username, email, password string) error {
	status := uc.console.Status("Creating account...")
	cred, err := uc.session.Register(ctx, username, email, password)
	status.Stop()
	if err != nil {
		return err
	}
	uc.console.LogSuccess("Account created. Signed in as %s", uc.identityOf(cred))
	return nil
}

// Logout signs out. It never fails.
func (uc *DashboardUseCase) Logout() {
	wasSignedIn := uc.session.IsAuthenticated()
	uc.session.SignOut()
	if wasSignedIn {
		uc.console.LogSuccess("Signed out")
	} else {
		uc.console.LogInfo("Already signed out")
	}
}

// Status reports whether a session is held and for whom.
func (uc *DashboardUseCase) Status() bool {
	cred, _, ok := uc.session.Current()
	if !ok {
		uc.console.LogInfo("Not signed in")
		return false
	}
	uc.console.LogInfo("Signed in as %s", uc.identityOf(cred))
	return true
}

func (uc *DashboardUseCase) identityOf(cred entity.Credential) string {
	return ResolveIdentity(entity.SummarySnapshot{}, cred, uc.log)
}

// RunDashboard syncs the requested page and renders every panel, then writes any requested reports.
func (uc *DashboardUseCase) RunDashboard(ctx context.Context, args *types.CLIArgs) error {
	if err := uc.sync.SetFilter(entity.TransactionFilter{From: args.From, To: args.To}); err != nil {
		return err
	}

	result, err := uc.load(ctx, args.Page)
	if err != nil {
		return err
	}

	uc.renderDashboard(result)

	if args.ReportName != "" && len(args.ReportType) > 0 {
		uc.export(*result, args)
	}
	return nil
}

// ShowTransactions renders one page of the transaction list.
func (uc *DashboardUseCase) ShowTransactions(ctx context.Context, args *types.CLIArgs) error {
	if err := uc.sync.SetFilter(entity.TransactionFilter{From: args.From, To: args.To}); err != nil {
		return err
	}
	result, err := uc.load(ctx, args.Page)
	if err != nil {
		return err
	}
	uc.renderTransactions(result)
	return nil
}

// Browse pages through transactions interactively. next returns the chosen action;
// the loop ends on BrowseQuit, on an error from next, or when the session is lost.
func (uc *DashboardUseCase) Browse(ctx context.Context, args *types.CLIArgs, next func() (string, error)) error {
	if err := uc.ShowTransactions(ctx, args); err != nil {
		return err
	}

	for {
		action, err := next()
		if err != nil {
			return err
		}

		var (
			outcome entity.SyncOutcome
			changed = true
		)
		switch action {
		case BrowseQuit:
			return nil
		case BrowseNext:
			outcome, changed, err = uc.pager.RequestPage(ctx, 1)
		case BrowsePrevious:
			outcome, changed, err = uc.pager.RequestPage(ctx, -1)
		case BrowseRefresh:
			outcome, err = uc.pager.Refresh(ctx)
		default:
			uc.console.LogWarning("Unknown action %q", action)
			continue
		}

		if err != nil {
			uc.Report(err)
			if !uc.session.IsAuthenticated() {
				return err
			}
			continue
		}
		if !changed {
			uc.console.LogInfo("Already on page %d", uc.pager.State().Page+1)
			continue
		}
		if outcome.State == entity.ViewUnauthenticated || outcome.Result == nil {
			return types.ErrNotAuthenticated
		}
		uc.renderTransactions(outcome.Result)
	}
}

// AddTransaction submits a manual entry and refreshes the dashboard.
func (uc *DashboardUseCase) AddTransaction(ctx context.Context, draft entity.TransactionDraft) error {
	status := uc.console.Status("Saving transaction...")
	outcome, err := uc.entries.SubmitManualEntry(ctx, draft)
	status.Stop()
	if err != nil {
		return err
	}

	uc.console.LogSuccess("%s of %s added (#%d, %s)",
		titleCase(string(outcome.Record.Type)),
		uc.amount(outcome.Record.AmountOrZero()),
		outcome.Record.ID,
		outcome.Record.Date)
	if outcome.ResyncErr != nil {
		uc.console.LogWarning("The dashboard could not be refreshed: %s", NoticeFor(outcome.ResyncErr).Message)
		return nil
	}
	if last, _ := uc.sync.Last(); last.Result != nil {
		uc.renderSummary(last.Result)
	}
	return nil
}

// UploadReceipt runs the two-phase receipt flow. Extracted fields are always shown
// once extraction succeeds, so a failed automatic add can be repeated by hand.
func (uc *DashboardUseCase) UploadReceipt(ctx context.Context, file entity.ReceiptFile) error {
	status := uc.console.Status(fmt.Sprintf("Processing receipt %s...", file.Name))
	outcome, err := uc.entries.SubmitReceipt(ctx, file)
	status.Stop()

	if err != nil && types.KindOf(err) != types.KindPartialPipelineFailure {
		return err
	}

	uc.renderExtraction(outcome)
	switch outcome.Status {
	case entity.ReceiptAdded:
		uc.console.LogSuccess("Receipt processed and expense added successfully!")
	case entity.ReceiptExtractedOnly:
		msg := outcome.Extraction.Message
		if msg == "" {
			msg = "Not enough details were found to add an expense automatically"
		}
		uc.console.LogInfo("Receipt processed. %s", msg)
	}
	if outcome.ResyncErr != nil && err == nil {
		uc.console.LogWarning("The dashboard could not be refreshed: %s", NoticeFor(outcome.ResyncErr).Message)
	}
	return err
}

// ListCategories prints the user's categories.
func (uc *DashboardUseCase) ListCategories(ctx context.Context) error {
	var categories []entity.Category
	err := uc.authorized(func(cred entity.Credential) (err error) {
		categories, err = uc.finance.ListCategories(ctx, cred)
		return err
	})
	if err != nil {
		return err
	}

	if len(categories) == 0 {
		uc.console.LogInfo("No categories yet. Create one with 'categories add NAME'.")
		return nil
	}
	table := uc.console.CreateTable()
	table.AddColumn("ID")
	table.AddColumn("Name")
	for _, c := range categories {
		table.AddRow(c.ID, c.Name)
	}
	uc.console.Print(table.Render())
	return nil
}

// AddCategory creates a category.
func (uc *DashboardUseCase) AddCategory(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return types.NewError(types.KindValidation, "category name is required", nil)
	}

	var created entity.Category
	err := uc.authorized(func(cred entity.Credential) (err error) {
		created, err = uc.finance.CreateCategory(ctx, cred, name)
		return err
	})
	if err != nil {
		return err
	}
	uc.console.LogSuccess("Category %q created (#%d)", created.Name, created.ID)
	return nil
}

// authorized runs fn with the current credential and signs out on an authorization failure.
func (uc *DashboardUseCase) authorized(fn func(cred entity.Credential) error) error {
	cred, gen, ok := uc.session.Current()
	if !ok {
		return types.ErrNotAuthenticated
	}
	err := fn(cred)
	if types.IsAuthExpired(err) {
		uc.session.Invalidate(gen)
	}
	return err
}

// Report shows err to the user as a notice.
func (uc *DashboardUseCase) Report(err error) {
	n := NoticeFor(err)
	if n.Message == "" {
		return
	}
	switch n.Level {
	case NoticeInfo:
		uc.console.LogInfo("%s", n.Message)
	case NoticeWarning:
		uc.console.LogWarning("%s", n.Message)
	default:
		uc.console.LogError("%s", n.Message)
	}
	uc.log.Debug().Err(err).Str("kind", types.KindOf(err).String()).Msg("reported error")
}

func (uc *DashboardUseCase) load(ctx context.Context, page int) (*entity.SyncResult, error) {
	if !uc.session.IsAuthenticated() {
		return nil, types.ErrNotAuthenticated
	}

	status := uc.console.Status("Loading your finances...")
	outcome, err := uc.pager.GoTo(ctx, page)
	status.Stop()
	if err != nil {
		return nil, err
	}
	if outcome.State != entity.ViewReady || outcome.Result == nil {
		return nil, types.ErrNotAuthenticated
	}
	return outcome.Result, nil
}

func (uc *DashboardUseCase) export(result entity.SyncResult, args *types.CLIArgs) {
	for _, reportType := range args.ReportType {
		var (
			path string
			err  error
		)
		switch reportType {
		case "csv":
			path, err = uc.exportRepo.ExportToCSV(result, args.ReportName, args.Dir)
		case "json":
			path, err = uc.exportRepo.ExportToJSON(result, args.ReportName, args.Dir)
		case "pdf":
			path, err = uc.exportRepo.ExportToPDF(result, args.ReportName, args.Dir)
		default:
			uc.console.LogWarning("Unsupported report type %q", reportType)
			continue
		}
		if err != nil {
			uc.console.LogError("Failed to export to %s: %s", strings.ToUpper(reportType), err)
		} else {
			uc.console.LogSuccess("Successfully exported to %s: %s", strings.ToUpper(reportType), path)
		}
	}
}

func (uc *DashboardUseCase) renderDashboard(result *entity.SyncResult) {
	uc.console.LogInfo("Welcome, %s", result.Identity)
	uc.renderSummary(result)

	days := make([]types.DailyBar, 0, len(result.Daily))
	for _, d := range result.Daily {
		days = append(days, types.DailyBar{
			Date:    d.Date,
			Income:  entity.OrZero(d.TotalIncome).InexactFloat64(),
			Expense: entity.OrZero(d.TotalExpense).InexactFloat64(),
		})
	}
	uc.console.DisplayDailyBars(days, uc.currency)

	if result.MeaningfulDistribution {
		slices := make([]types.DistributionSlice, 0, len(result.Categories))
		for _, c := range result.Categories {
			slices = append(slices, types.DistributionSlice{Name: c.Name, Value: c.Value.InexactFloat64()})
		}
		uc.console.DisplayDistribution(slices, uc.currency)
	} else {
		uc.console.LogInfo("Add expenses in more than one category to see the distribution chart")
	}

	if len(result.CategoryTotals) > 0 {
		table := uc.console.CreateTable()
		table.AddColumn("Category")
		table.AddColumn("Type")
		table.AddColumn("Total")
		for _, c := range result.CategoryTotals {
			table.AddRow(c.CategoryName, c.Type, uc.amount(entity.OrZero(c.TotalAmount)))
		}
		uc.console.Println("\nTotals by category (all time)")
		uc.console.Print(table.Render())
	}

	uc.renderTransactions(result)
}

func (uc *DashboardUseCase) renderSummary(result *entity.SyncResult) {
	table := uc.console.CreateTable()
	table.AddColumn("Total Income")
	table.AddColumn("Total Expense")
	table.AddColumn("Balance")

	balance := entity.OrZero(result.Summary.Balance)
	balanceText := uc.amount(balance)
	if balance.IsNegative() {
		balanceText = console.BrightRed(balanceText)
	} else {
		balanceText = console.BrightGreen(balanceText)
	}
	table.AddRow(
		uc.amount(entity.OrZero(result.Summary.TotalIncome)),
		uc.amount(entity.OrZero(result.Summary.TotalExpense)),
		balanceText,
	)
	uc.console.Print(table.Render())
}

func (uc *DashboardUseCase) renderTransactions(result *entity.SyncResult) {
	if len(result.Transactions) == 0 {
		uc.console.LogInfo("No transactions found.")
	} else {
		table := uc.console.CreateTable()
		for _, col := range []string{"ID", "Date", "Type", "Description", "Category", "Amount"} {
			table.AddColumn(col)
		}
		for _, tx := range result.Transactions {
			category := tx.CategoryName()
			if category == "" {
				category = "-"
			}
			amount := uc.amount(tx.AmountOrZero())
			if tx.Type == entity.Income {
				amount = console.BrightGreen("+" + amount)
			} else {
				amount = console.BrightRed("-" + amount)
			}
			table.AddRow(tx.ID, tx.Date, tx.Type, tx.Description, category, amount)
		}
		uc.console.Print(table.Render())
	}

	p := result.Pagination
	if p.TotalKnown {
		uc.console.Printf("Page %d of %d\n", p.Page+1, max(p.TotalPages, 1))
	} else {
		uc.console.Printf("Page %d\n", p.Page+1)
	}
}

func (uc *DashboardUseCase) renderExtraction(outcome entity.ReceiptOutcome) {
	table := uc.console.CreateTable()
	table.AddColumn("Field")
	table.AddColumn("Extracted")

	e := outcome.Extraction
	amount := "-"
	if e.Amount.Valid {
		amount = uc.amount(e.Amount.Decimal)
	}
	table.AddRow("Description", orDash(e.Description))
	table.AddRow("Amount", amount)
	table.AddRow("Date", orDash(e.Date))
	table.AddRow("Status", outcome.Status)
	uc.console.Print(table.Render())
}

func (uc *DashboardUseCase) amount(d decimal.Decimal) string {
	return console.FormatAmount(d, uc.currency)
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
