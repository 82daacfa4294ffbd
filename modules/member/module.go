package member

import (
	"github.com/sanjaithai/backoffice/modules/member/infrastructure/persistence"
	"github.com/sanjaithai/backoffice/modules/member/presentation/controllers"
	"github.com/sanjaithai/backoffice/modules/member/services"
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
		services.NewMemberService(
			persistence.NewMemberRepository(),
			composables.NewPoolTransactor(app.DB()),
		),
		services.NewDashboardService(persistence.NewStatsRepository()),
	)
	auth := middleware.Authorize(conf.Auth.JWTSecret)
	app.RegisterControllers(
		controllers.NewMemberAPIController(app, conf.PageSize, conf.MaxPageSize, auth),
		controllers.NewDashboardController(app, auth),
	)
	return nil
}

func (m *Module) Name() string {
	return "member"
}
