package leadimport

import (
	"embed"

	"github.com/vantagecrm/vantage/modules/crm/infrastructure/persistence"
	importpersistence "github.com/vantagecrm/vantage/modules/leadimport/infrastructure/persistence"
	"github.com/vantagecrm/vantage/modules/leadimport/presentation/controllers"
	"github.com/vantagecrm/vantage/modules/leadimport/services"
	"github.com/vantagecrm/vantage/pkg/application"
)

//go:embed infrastructure/persistence/schema/leadimport-schema.sql
var migrationFiles embed.FS

func NewModule() application.Module {
	return &Module{}
}

type Module struct{}

func (m *Module) Register(app application.Application) error {
	app.Migrations().RegisterSchema(&migrationFiles)

	app.RegisterServices(
		services.NewImportService(
			importpersistence.NewSessionRepository(),
			persistence.NewLeadRepository(),
			app.RBAC(),
			app.EventPublisher(),
		),
		services.NewTemplateService(
			importpersistence.NewTemplateRepository(),
			app.RBAC(),
		),
	)

	// templates first so /lead-import/templates is not swallowed by the
	// {session_id} routes
	app.RegisterControllers(
		controllers.NewTemplateController(app),
		controllers.NewImportController(app),
	)

	return nil
}

func (m *Module) Name() string {
	return "leadimport"
}
