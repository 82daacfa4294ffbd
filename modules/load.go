package modules

import (
	"github.com/sanjaithai/backoffice/modules/account"
	"github.com/sanjaithai/backoffice/modules/activity"
	"github.com/sanjaithai/backoffice/modules/document"
	"github.com/sanjaithai/backoffice/modules/logging"
	"github.com/sanjaithai/backoffice/modules/member"
	"github.com/sanjaithai/backoffice/modules/transfer"
	"github.com/sanjaithai/backoffice/pkg/application"
)

var BuiltInModules = []application.Module{
	member.NewModule(),
	account.NewModule(),
	logging.NewModule(),
	transfer.NewModule(),
	activity.NewModule(),
	document.NewModule(),
}

func Load(app application.Application, externalModules ...application.Module) error {
	for _, module := range externalModules {
		if err := module.Register(app); err != nil {
			return err
		}
		app.Logger().WithField("module", module.Name()).Debug("module loaded")
	}
	return nil
}
