package main

import (
	"context"
	"fmt"
	"os"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	accountpersistence "github.com/sanjaithai/backoffice/modules/account/infrastructure/persistence"
	loggingpersistence "github.com/sanjaithai/backoffice/modules/logging/infrastructure/persistence"
	memberpersistence "github.com/sanjaithai/backoffice/modules/member/infrastructure/persistence"
	transferpersistence "github.com/sanjaithai/backoffice/modules/transfer/infrastructure/persistence"
	"github.com/sanjaithai/backoffice/modules/transfer/services"
	"github.com/sanjaithai/backoffice/pkg/composables"
	"github.com/sanjaithai/backoffice/pkg/configuration"
	"github.com/sanjaithai/backoffice/pkg/secrets"
)

// backend is what the commands run against.
type backend struct {
	importer *services.ImportService
	exporter *services.ExportService
	close    func()
}

// openBackend connects to the configured database. The returned context
// carries the pool so repositories outside a transaction can use it.
var openBackend = func(ctx context.Context) (context.Context, *backend, error) {
	conf := configuration.Use()
	pool, err := pgxpool.New(ctx, conf.Database.Opts)
	if err != nil {
		return ctx, nil, errors.Wrap(err, "connect database")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return ctx, nil, errors.Wrap(err, "ping database")
	}

	accounts := accountpersistence.NewAccountRepository()
	reporter := services.NewReporter(loggingpersistence.NewTransferLogRepository())
	b := &backend{
		importer: services.NewImportService(
			memberpersistence.NewMemberRepository(),
			accounts,
			secrets.NewBcryptHasher(conf.Auth.BcryptCost),
			composables.NewPoolTransactor(pool),
			reporter,
			conf.Import.AllowDerivedSecrets,
		),
		exporter: services.NewExportService(transferpersistence.NewTransferRepository(), accounts, reporter),
		close:    pool.Close,
	}
	ctx = composables.WithLogger(ctx, conf.Logger().WithField("component", "member-data"))
	return composables.WithPool(ctx, pool), b, nil
}

func connect(ctx context.Context) (context.Context, *backend, error) {
	ctx, b, err := openBackend(ctx)
	if err != nil {
		return ctx, nil, withCode(exitDB, err)
	}
	return ctx, b, nil
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "member-data",
		Short:         "Member roster spreadsheet import/export tool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newImportCmd())
	cmd.AddCommand(newExportCmd())
	cmd.AddCommand(newFiltersCmd())
	cmd.AddCommand(newMigrateCmd())
	return cmd
}

func Execute() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		code := exitCode(err)
		if code == 1 {
			// flag parsing and unknown commands come straight from cobra
			code = exitUsage
		}
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(code)
	}
}
