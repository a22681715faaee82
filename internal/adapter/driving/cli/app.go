package cli

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/diillson/finance-dashboard-go/internal/application/usecase"
	"github.com/diillson/finance-dashboard-go/internal/domain/entity"
	"github.com/diillson/finance-dashboard-go/internal/domain/repository"
	"github.com/diillson/finance-dashboard-go/internal/logger"
	"github.com/diillson/finance-dashboard-go/internal/shared/types"
	"github.com/diillson/finance-dashboard-go/pkg/version"
)

// Builder assembles the dashboard use case for a resolved configuration. The returned
// function releases whatever the use case holds open.
type Builder func(cfg types.Config, log zerolog.Logger) (*usecase.DashboardUseCase, func() error, error)

// ReportedError marks an error whose notice was already shown to the user.
type ReportedError struct {
	Err error
}

func (e *ReportedError) Error() string { return e.Err.Error() }
func (e *ReportedError) Unwrap() error { return e.Err }

// IsReported reports whether err was already shown to the user.
func IsReported(err error) bool {
	var reported *ReportedError
	return errors.As(err, &reported)
}

// CLIApp represents the command-line interface application.
type CLIApp struct {
	rootCmd    *cobra.Command
	configRepo repository.ConfigRepository
	build      Builder
	version    string

	// Prompts are swappable so commands can run without a terminal.
	promptPassword func(label string) (string, error)
	promptBrowse   func() (string, error)

	cfg     types.Config
	log     zerolog.Logger
	useCase *usecase.DashboardUseCase
	release func() error
}

// NewCLIApp creates the CLI application.
func NewCLIApp(versionStr string, configRepo repository.ConfigRepository, build Builder) *CLIApp {
	app := &CLIApp{
		configRepo:     configRepo,
		build:          build,
		version:        versionStr,
		promptPassword: promptPassword,
		promptBrowse:   promptBrowse,
	}

	rootCmd := &cobra.Command{
		Use:               "finance-dashboard",
		Short:             "Personal finance dashboard CLI",
		Version:           version.FormatVersion(),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: app.setup,
		RunE:              app.runDashboard,
	}
	rootCmd.SetVersionTemplate(`{{printf "Finance Dashboard version: %s\n" .Version}}`)
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringP("config-file", "C", "", "Path to a TOML, YAML, or JSON configuration file")
	rootCmd.PersistentFlags().String("api-url", "", "Base URL of the finance service (default http://localhost:8080/api)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log diagnostic details to stderr")
	addDashboardFlags(rootCmd)

	dashboardCmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show totals, charts and one page of transactions",
		Args:  cobra.NoArgs,
		RunE:  app.runDashboard,
	}
	addDashboardFlags(dashboardCmd)

	rootCmd.AddCommand(
		app.loginCommand(),
		app.registerCommand(),
		app.logoutCommand(),
		app.statusCommand(),
		dashboardCmd,
		app.transactionsCommand(),
		app.browseCommand(),
		app.addCommand(),
		app.uploadReceiptCommand(),
		app.categoriesCommand(),
	)

	app.rootCmd = rootCmd
	return app
}

// Execute runs the CLI application.
func (app *CLIApp) Execute() error {
	return app.rootCmd.Execute()
}

// ExecuteContext runs the CLI application with ctx, so an interrupt cancels in-flight requests.
func (app *CLIApp) ExecuteContext(ctx context.Context) error {
	return app.rootCmd.ExecuteContext(ctx)
}

// SetArgs overrides the command-line arguments, for tests and embedding.
func (app *CLIApp) SetArgs(args []string) {
	app.rootCmd.SetArgs(args)
}

func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().String("from", "", "Only list transactions on or after this date (YYYY-MM-DD)")
	cmd.Flags().String("to", "", "Only list transactions on or before this date (YYYY-MM-DD)")
}

func addDashboardFlags(cmd *cobra.Command) {
	cmd.Flags().IntP("page", "p", 1, "Transaction page to show, starting at 1")
	addFilterFlags(cmd)
	cmd.Flags().StringP("report-name", "n", "", "Specify the base name for the report file (without extension)")
	cmd.Flags().StringSliceP("report-type", "y", []string{"csv"}, "Specify report types: csv, json, pdf")
	cmd.Flags().StringP("dir", "d", "", "Directory to save the report files (default: current directory)")
}

// parseArgs reads the flags of cmd into a CLIArgs struct. Flags a command does not
// define read as their zero value.
func parseArgs(cmd *cobra.Command, cfg types.Config) (*types.CLIArgs, error) {
	flags := cmd.Flags()
	configFile, _ := flags.GetString("config-file")
	apiURL, _ := flags.GetString("api-url")
	verbose, _ := flags.GetBool("verbose")
	page, _ := flags.GetInt("page")
	from, _ := flags.GetString("from")
	to, _ := flags.GetString("to")
	reportName, _ := flags.GetString("report-name")
	reportType, _ := flags.GetStringSlice("report-type")
	dir, _ := flags.GetString("dir")

	if page < 1 {
		page = 1
	}
	if reportName == "" {
		reportName = cfg.ReportName
	}
	if !flags.Changed("report-type") && len(cfg.ReportType) > 0 {
		reportType = cfg.ReportType
	}
	if dir == "" {
		dir = cfg.Dir
	}

	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		dir = cwd
	} else {
		absDir, err := filepath.Abs(dir)
		if err != nil {
			return nil, err
		}
		dir = absDir
	}

	return &types.CLIArgs{
		ConfigFile: configFile,
		APIBaseURL: apiURL,
		Verbose:    verbose,
		Page:       page - 1,
		From:       from,
		To:         to,
		ReportName: reportName,
		ReportType: reportType,
		Dir:        dir,
	}, nil
}

// loadConfig layers defaults, the config file, the environment and finally flags.
func (app *CLIApp) loadConfig(cmd *cobra.Command) (types.Config, error) {
	cfg := types.DefaultConfig()

	configFile, _ := cmd.Flags().GetString("config-file")
	if configFile != "" {
		fileCfg, err := app.configRepo.LoadConfigFile(configFile)
		if err != nil {
			return cfg, err
		}
		cfg.Merge(*fileCfg)
	}

	if err := app.configRepo.ApplyEnv(&cfg); err != nil {
		return cfg, err
	}

	if apiURL, _ := cmd.Flags().GetString("api-url"); apiURL != "" {
		cfg.APIBaseURL = apiURL
	}
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		cfg.LogLevel = "debug"
	}

	return cfg, cfg.Validate()
}

func (app *CLIApp) setup(cmd *cobra.Command, args []string) error {
	if cmd.Name() == "help" {
		return nil
	}
	cfg, err := app.loadConfig(cmd)
	if err != nil {
		return err
	}
	app.cfg = cfg
	app.log = logger.New(cfg.LogLevel)

	useCase, release, err := app.build(cfg, app.log)
	if err != nil {
		return fmt.Errorf("initialize dashboard: %w", err)
	}
	app.useCase = useCase
	app.release = release

	app.log.Debug().
		Str("command", cmd.CommandPath()).
		Str("api", cfg.APIBaseURL).
		Str("session_backend", cfg.SessionBackend).
		Msg("configuration loaded")
	return nil
}

// Close releases what the last command opened. It is safe to call more than once.
func (app *CLIApp) Close() error {
	if app.release == nil {
		return nil
	}
	release := app.release
	app.release = nil
	return release()
}

// run executes fn with a request-scoped logger and shows any failure as a notice.
func (app *CLIApp) run(cmd *cobra.Command, fn func(ctx context.Context) error) error {
	ctx := logger.WithContext(cmd.Context(), app.log.With().Str("command", cmd.CommandPath()).Logger())
	if err := fn(ctx); err != nil {
		app.useCase.Report(err)
		return &ReportedError{Err: err}
	}
	return nil
}

func (app *CLIApp) runDashboard(cmd *cobra.Command, args []string) error {
	displayWelcomeBanner(app.version)
	go version.CheckLatestVersion(app.version)

	cliArgs, err := parseArgs(cmd, app.cfg)
	if err != nil {
		return err
	}
	return app.run(cmd, func(ctx context.Context) error {
		return app.useCase.RunDashboard(ctx, cliArgs)
	})
}

func (app *CLIApp) loginCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with a username and password or with Google",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			google, _ := cmd.Flags().GetBool("google")
			googleToken, _ := cmd.Flags().GetString("google-token")
			username, _ := cmd.Flags().GetString("username")
			password, _ := cmd.Flags().GetString("password")

			proof := entity.GoogleProof(googleToken)
			if !google {
				if password == "" && username != "" {
					var err error
					if password, err = app.promptPassword("Password"); err != nil {
						return err
					}
				}
				proof = entity.PasswordProof(username, password)
			}
			return app.run(cmd, func(ctx context.Context) error {
				return app.useCase.Login(ctx, proof)
			})
		},
	}
	cmd.Flags().StringP("username", "u", "", "Account username")
	cmd.Flags().String("password", "", "Account password (prompted when omitted)")
	cmd.Flags().Bool("google", false, "Sign in with Google instead of a password")
	cmd.Flags().String("google-token", "", "Google ID token (the service's mock token when omitted)")
	return cmd
}

func (app *CLIApp) registerCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			username, _ := cmd.Flags().GetString("username")
			email, _ := cmd.Flags().GetString("email")
			password, _ := cmd.Flags().GetString("password")
			if password == "" && username != "" {
				var err error
				if password, err = app.promptPassword("Choose a password"); err != nil {
					return err
				}
			}
			return app.run(cmd, func(ctx context.Context) error {
				return app.useCase.Register(ctx, username, email, password)
			})
		},
	}
	cmd.Flags().StringP("username", "u", "", "Account username")
	cmd.Flags().StringP("email", "e", "", "Account email")
	cmd.Flags().String("password", "", "Account password (prompted when omitted)")
	return cmd
}

func (app *CLIApp) logoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app.useCase.Logout()
			return nil
		},
	}
}

func (app *CLIApp) statusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether you are signed in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app.useCase.Status()
			return nil
		},
	}
}

func (app *CLIApp) transactionsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transactions",
		Short: "List one page of transactions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliArgs, err := parseArgs(cmd, app.cfg)
			if err != nil {
				return err
			}
			return app.run(cmd, func(ctx context.Context) error {
				return app.useCase.ShowTransactions(ctx, cliArgs)
			})
		},
	}
	cmd.Flags().IntP("page", "p", 1, "Page to show, starting at 1")
	addFilterFlags(cmd)
	return cmd
}

func (app *CLIApp) browseCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Page through transactions interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliArgs, err := parseArgs(cmd, app.cfg)
			if err != nil {
				return err
			}
			return app.run(cmd, func(ctx context.Context) error {
				return app.useCase.Browse(ctx, cliArgs, app.promptBrowse)
			})
		},
	}
	cmd.Flags().IntP("page", "p", 1, "Page to start on, starting at 1")
	addFilterFlags(cmd)
	return cmd
}

func (app *CLIApp) addCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an income or expense",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			description, _ := cmd.Flags().GetString("description")
			amountText, _ := cmd.Flags().GetString("amount")
			txType, _ := cmd.Flags().GetString("type")
			date, _ := cmd.Flags().GetString("date")
			categoryID, _ := cmd.Flags().GetInt64("category-id")

			return app.run(cmd, func(ctx context.Context) error {
				draft, err := buildDraft(description, amountText, txType, date, categoryID)
				if err != nil {
					return err
				}
				return app.useCase.AddTransaction(ctx, draft)
			})
		},
	}
	cmd.Flags().StringP("description", "m", "", "What the transaction was for")
	cmd.Flags().StringP("amount", "a", "", "Amount, greater than 0")
	cmd.Flags().StringP("type", "t", string(entity.Expense), "INCOME or EXPENSE")
	cmd.Flags().String("date", "", "Date as YYYY-MM-DD (default: today)")
	cmd.Flags().Int64("category-id", 0, "Category to file the transaction under")
	return cmd
}

// buildDraft converts flag text into a draft. Field rules are checked by the entry pipeline.
func buildDraft(description, amountText, txType, date string, categoryID int64) (entity.TransactionDraft, error) {
	draft := entity.TransactionDraft{
		Description: description,
		Type:        entity.TransactionType(strings.ToUpper(strings.TrimSpace(txType))),
		Date:        strings.TrimSpace(date),
	}
	if amountText = strings.TrimSpace(amountText); amountText != "" {
		d, err := decimal.NewFromString(amountText)
		if err != nil {
			return draft, types.NewError(types.KindValidation, fmt.Sprintf("amount %q is not a number", amountText), entity.ErrInvalidAmount)
		}
		draft.Amount = decimal.NewNullDecimal(d)
	}
	if categoryID > 0 {
		draft.CategoryID = &categoryID
	}
	return draft, nil
}

func (app *CLIApp) uploadReceiptCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "upload-receipt FILE",
		Short: "Extract an expense from a receipt image or PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := readReceipt(args[0])
			if err != nil {
				return err
			}
			return app.run(cmd, func(ctx context.Context) error {
				return app.useCase.UploadReceipt(ctx, file)
			})
		},
	}
}

func readReceipt(path string) (entity.ReceiptFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return entity.ReceiptFile{}, fmt.Errorf("read receipt: %w", err)
	}
	contentType := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	return entity.ReceiptFile{Name: filepath.Base(path), ContentType: contentType, Data: data}, nil
}

func (app *CLIApp) categoriesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "List or create transaction categories",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List your categories",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return app.run(cmd, app.useCase.ListCategories)
			},
		},
		&cobra.Command{
			Use:   "add NAME",
			Short: "Create a category",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return app.run(cmd, func(ctx context.Context) error {
					return app.useCase.AddCategory(ctx, args[0])
				})
			},
		},
	)
	return cmd
}

func promptPassword(label string) (string, error) {
	return pterm.DefaultInteractiveTextInput.WithMask("*").Show(label)
}

func promptBrowse() (string, error) {
	return pterm.DefaultInteractiveSelect.
		WithOptions([]string{usecase.BrowseNext, usecase.BrowsePrevious, usecase.BrowseRefresh, usecase.BrowseQuit}).
		WithDefaultOption(usecase.BrowseNext).
		Show("Navigate")
}
