package activity

import (
	"github.com/sanjaithai/backoffice/modules/activity/infrastructure/persistence"
	"github.com/sanjaithai/backoffice/modules/activity/presentation/controllers"
	"github.com/sanjaithai/backoffice/modules/activity/services"
	loggingpersistence "github.com/sanjaithai/backoffice/modules/logging/infrastructure/persistence"
	memberpersistence "github.com/sanjaithai/backoffice/modules/member/infrastructure/persistence"
	"github.com/sanjaithai/backoffice/pkg/application"
	"github.com/sanjaithai/backoffice/pkg/composables"
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
		services.NewActivityService(
			persistence.NewActivityRepository(),
			memberpersistence.NewMemberRepository(),
			composables.NewPoolTransactor(app.DB()),
			loggingpersistence.NewTransferLogRepository(),
		),
	)
	auth := middleware.Authorize(conf.Auth.JWTSecret)
	app.RegisterControllers(
		controllers.NewActivityController(app, auth),
		controllers.NewPointsController(app, auth),
		controllers.NewMyActivityController(app, auth),
		controllers.NewMyPointsController(app, auth),
	)
	return nil
}

func (m *Module) Name() string {
	return "activity"
}
