package logging

import (
	"github.com/sanjaithai/backoffice/modules/logging/infrastructure/persistence"
	"github.com/sanjaithai/backoffice/modules/logging/presentation/controllers"
	"github.com/sanjaithai/backoffice/modules/logging/services"
	"github.com/sanjaithai/backoffice/pkg/application"
	"github.com/sanjaithai/backoffice/pkg/configuration"
	"github.com/sanjaithai/backoffice/pkg/middleware"
)

func NewModule() application.Module {
	return &Module{}
}

type Module struct {
}

func (m *Module) Register(app application.Application) error {
	conf := configuration.Use()
	app.RegisterServices(
		services.NewLogsService(persistence.NewTransferLogRepository()),
	)
	app.RegisterControllers(
		controllers.NewLogsController(app, conf.PageSize, conf.MaxPageSize,
			middleware.Authorize(conf.Auth.JWTSecret),
		),
	)
	return nil
}

func (m *Module) Name() string {
	return "logging"
}
