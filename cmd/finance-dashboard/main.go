package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/rs/zerolog"

	"github.com/diillson/finance-dashboard-go/internal/adapter/driven/api"
	"github.com/diillson/finance-dashboard-go/internal/adapter/driven/config"
	"github.com/diillson/finance-dashboard-go/internal/adapter/driven/export"
	"github.com/diillson/finance-dashboard-go/internal/adapter/driven/session"
	"github.com/diillson/finance-dashboard-go/internal/adapter/driving/cli"
	"github.com/diillson/finance-dashboard-go/internal/application/usecase"
	"github.com/diillson/finance-dashboard-go/internal/shared/types"
	"github.com/diillson/finance-dashboard-go/pkg/console"
	"github.com/diillson/finance-dashboard-go/pkg/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	app := cli.NewCLIApp(version.Version, config.NewConfigRepository(), build)
	err := app.ExecuteContext(ctx)
	if cerr := app.Close(); cerr != nil && err == nil {
		err = cerr
	}
	stop()

	if err != nil {
		if !cli.IsReported(err) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

// build wires the adapters for cfg into the dashboard use case.
func build(cfg types.Config, log zerolog.Logger) (*usecase.DashboardUseCase, func() error, error) {
	credentials, err := session.Open(cfg)
	if err != nil {
		return nil, nil, err
	}
	release := func() error {
		if closer, ok := credentials.(io.Closer); ok {
			return closer.Close()
		}
		return nil
	}

	client := api.NewClient(cfg.APIBaseURL, cfg.Timeout(), log)

	dashboardUseCase := usecase.NewDashboardUseCase(
		api.NewAuthRepository(client),
		api.NewFinanceRepository(client),
		credentials,
		export.NewExportRepository(cfg.Currency),
		console.NewConsole(),
		cfg,
		log,
	)
	return dashboardUseCase, release, nil
}
