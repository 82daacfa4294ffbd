package transfer

import (
	accountpersistence "github.com/sanjaithai/backoffice/modules/account/infrastructure/persistence"
	loggingpersistence "github.com/sanjaithai/backoffice/modules/logging/infrastructure/persistence"
	memberpersistence "github.com/sanjaithai/backoffice/modules/member/infrastructure/persistence"
	"github.com/sanjaithai/backoffice/modules/transfer/infrastructure/persistence"
	"github.com/sanjaithai/backoffice/modules/transfer/presentation/controllers"
	"github.com/sanjaithai/backoffice/modules/transfer/services"
	"github.com/sanjaithai/backoffice/pkg/application"
	"github.com/sanjaithai/backoffice/pkg/composables"
	"github.com/sanjaithai/backoffice/pkg/configuration"
	"github.com/sanjaithai/backoffice/pkg/middleware"
	"github.com/sanjaithai/backoffice/pkg/secrets"
)

func NewModule() application.Module {
	return &Module{}
}

type Module struct {
}

func (m *Module) Register(app application.Application) error {
	conf := configuration.Use()
	accounts := accountpersistence.NewAccountRepository()
	reporter := services.NewReporter(loggingpersistence.NewTransferLogRepository())

	app.RegisterServices(
		services.NewImportService(
			memberpersistence.NewMemberRepository(),
			accounts,
			secrets.NewBcryptHasher(conf.Auth.BcryptCost),
			composables.NewPoolTransactor(app.DB()),
			reporter,
			conf.Import.AllowDerivedSecrets,
		),
		services.NewExportService(persistence.NewTransferRepository(), accounts, reporter),
	)
	app.RegisterControllers(
		controllers.NewDataController(app,
			controllers.UploadOptions{Dir: conf.UploadsPath, MaxSize: conf.MaxUploadSize},
			middleware.Authorize(conf.Auth.JWTSecret),
		),
	)
	return nil
}

func (m *Module) Name() string {
	return "transfer"
}
