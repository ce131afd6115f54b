// file: internals/features/sync/reconcile/route/reconcile_route.go
package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	reconcileCtrl "absensiku_backend/internals/features/sync/reconcile/controller"
	"absensiku_backend/internals/features/sync/identity"
)

func ReconcileAgentRoutes(r fiber.Router, db *gorm.DB, src identity.Source) {
	ctl := reconcileCtrl.NewReconcileController(db, src)
	r.Post("/sync/contacts", ctl.ReconcileBatch)
}

func ReconcileUserRoutes(r fiber.Router, db *gorm.DB, src identity.Source) {
	ctl := reconcileCtrl.NewReconcileController(db, src)
	r.Get("/sync/contacts/lookup", ctl.LookupContact)
}
