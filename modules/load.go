package modules

import (
	"github.com/vantagecrm/vantage/modules/crm"
	"github.com/vantagecrm/vantage/modules/leadimport"
	"github.com/vantagecrm/vantage/pkg/application"
)

var BuiltInModules = []application.Module{
	crm.NewModule(),
	leadimport.NewModule(),
}

func Load(app application.Application, externalModules ...application.Module) error {
	for _, module := range externalModules {
		if err := module.Register(app); err != nil {
			return err
		}
	}
	return nil
}
