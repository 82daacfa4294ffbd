package document

import (
	"path/filepath"

	"github.com/sanjaithai/backoffice/modules/document/infrastructure/persistence"
	"github.com/sanjaithai/backoffice/modules/document/infrastructure/storage"
	"github.com/sanjaithai/backoffice/modules/document/presentation/controllers"
	"github.com/sanjaithai/backoffice/modules/document/services"
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
		services.NewDocumentService(
			persistence.NewDocumentRepository(),
			memberpersistence.NewMemberRepository(),
			storage.NewDiskStorage(filepath.Join(conf.UploadsPath, "documents")),
			composables.NewPoolTransactor(app.DB()),
		),
	)
	auth := middleware.Authorize(conf.Auth.JWTSecret)
	app.RegisterControllers(
		controllers.NewDocumentController(app, conf.DocumentMaxSize, auth),
		controllers.NewMyDocumentController(app, auth),
	)
	return nil
}

func (m *Module) Name() string {
	return "document"
}
