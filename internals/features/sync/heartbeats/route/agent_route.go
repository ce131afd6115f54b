// file: internals/features/sync/heartbeats/route/agent_route.go
package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	hbCtrl "absensiku_backend/internals/features/sync/heartbeats/controller"
)

// SyncHeartbeatAgentRoutes: ingress heartbeat untuk agent on-prem.
func SyncHeartbeatAgentRoutes(r fiber.Router, db *gorm.DB) {
	ctl := hbCtrl.NewSyncHeartbeatController(db)
	r.Post("/sync/heartbeats", ctl.ReportHeartbeat)
}

// SyncHeartbeatUserRoutes: read API monitoring untuk dashboard.
func SyncHeartbeatUserRoutes(r fiber.Router, db *gorm.DB) {
	ctl := hbCtrl.NewSyncHeartbeatController(db)
	r.Get("/sync/status", ctl.GetFleetStatus)
	r.Get("/sync/status/:school_id", ctl.GetSiteStatus)
}
