// file: internals/features/sync/heartbeats/controller/sync_heartbeat_controller.go
package controller

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	hbDTO "absensiku_backend/internals/features/sync/heartbeats/dto"
	hbService "absensiku_backend/internals/features/sync/heartbeats/service"
	helper "absensiku_backend/internals/helpers"
	authagent "absensiku_backend/internals/middlewares/auth_agent"
)

var validate = validator.New()

type SyncHeartbeatController struct {
	Monitor *hbService.MonitorService
}

func NewSyncHeartbeatController(db *gorm.DB) *SyncHeartbeatController {
	return &SyncHeartbeatController{Monitor: hbService.NewMonitorService(db)}
}

// POST /api/a/sync/heartbeats — dipanggil periodik oleh agent on-prem.
func (ctrl *SyncHeartbeatController) ReportHeartbeat(c *fiber.Ctx) error {
	schoolID, err := authagent.SchoolIDFromToken(c)
	if err != nil {
		return helper.JsonError(c, err.(*fiber.Error).Code, err.Error())
	}

	var req hbDTO.ReportHeartbeatRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := validate.Struct(&req); err != nil {
		fieldErrors := map[string][]string{}
		if ve, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range ve {
				fieldErrors[fe.Field()] = append(fieldErrors[fe.Field()], fe.Tag())
			}
		}
		return helper.JsonValidationError(c, fieldErrors)
	}

	saved, err := ctrl.Monitor.ReportHeartbeat(c.UserContext(), schoolID, req.ToReport())
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "Heartbeat tercatat", saved)
}

// GET /api/u/sync/status — ringkasan seluruh site.
func (ctrl *SyncHeartbeatController) GetFleetStatus(c *fiber.Ctx) error {
	sum, err := ctrl.Monitor.FleetStatus(c.UserContext())
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "", sum)
}

// GET /api/u/sync/status/:school_id — status satu site.
func (ctrl *SyncHeartbeatController) GetSiteStatus(c *fiber.Ctx) error {
	schoolID, err := uuid.Parse(c.Params("school_id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "school_id tidak valid")
	}

	st, err := ctrl.Monitor.SiteStatus(c.UserContext(), schoolID)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "", st)
}
