package account

import (
	memberpersistence "github.com/sanjaithai/backoffice/modules/member/infrastructure/persistence"

	"github.com/sanjaithai/backoffice/modules/account/infrastructure/persistence"
	"github.com/sanjaithai/backoffice/modules/account/presentation/controllers"
	"github.com/sanjaithai/backoffice/modules/account/services"
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
	app.RegisterServices(
		services.NewAccountService(
			persistence.NewAccountRepository(),
			memberpersistence.NewMemberRepository(),
			secrets.NewBcryptHasher(conf.Auth.BcryptCost),
			composables.NewPoolTransactor(app.DB()),
		),
	)
	auth := middleware.Authorize(conf.Auth.JWTSecret)
	app.RegisterControllers(
		controllers.NewAccountAPIController(app, conf.PageSize, conf.MaxPageSize, auth),
		controllers.NewMeController(app, auth),
		controllers.NewSettingsController(app, auth),
	)
	return nil
}

func (m *Module) Name() string {
	return "account"
}
