package crm

import (
	"embed"

	"github.com/vantagecrm/vantage/modules/crm/infrastructure/persistence"
	"github.com/vantagecrm/vantage/modules/crm/presentation/controllers"
	"github.com/vantagecrm/vantage/modules/crm/services"
	"github.com/vantagecrm/vantage/pkg/application"
)

//go:embed infrastructure/persistence/schema/crm-schema.sql
var migrationFiles embed.FS

func NewModule() application.Module {
	return &Module{}
}

type Module struct{}

func (m *Module) Register(app application.Application) error {
	app.Migrations().RegisterSchema(&migrationFiles)

	app.RegisterServices(
		services.NewLeadService(persistence.NewLeadRepository(), app.EventPublisher()),
	)

	app.RegisterControllers(
		controllers.NewLeadAPIController(app),
	)

	return nil
}

func (m *Module) Name() string {
	return "crm"
}
