// file: internals/features/attendance/events/route/attendance_event_route.go
package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	eventCtrl "absensiku_backend/internals/features/attendance/events/controller"
	eventService "absensiku_backend/internals/features/attendance/events/service"
)

// AttendanceEventAgentRoutes: ingress scan dari agent on-prem.
func AttendanceEventAgentRoutes(r fiber.Router, db *gorm.DB, pipeline *eventService.PipelineService) {
	ctl := eventCtrl.NewAttendanceEventController(db, pipeline)
	r.Post("/attendance/events", ctl.SubmitEvent)
}

// AttendanceEventUserRoutes: timeline + redispatch untuk dashboard.
func AttendanceEventUserRoutes(r fiber.Router, db *gorm.DB, pipeline *eventService.PipelineService) {
	ctl := eventCtrl.NewAttendanceEventController(db, pipeline)
	r.Get("/attendance/events", ctl.ListEvents)
	r.Get("/attendance/events/:id", ctl.GetEvent)
	r.Post("/attendance/events/:id/redispatch", ctl.RedispatchEvent)
}
