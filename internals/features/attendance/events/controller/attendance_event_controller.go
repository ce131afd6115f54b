// file: internals/features/attendance/events/controller/attendance_event_controller.go
package controller

import (
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	eventDTO "absensiku_backend/internals/features/attendance/events/dto"
	eventModel "absensiku_backend/internals/features/attendance/events/model"
	eventService "absensiku_backend/internals/features/attendance/events/service"
	helper "absensiku_backend/internals/helpers"
	authagent "absensiku_backend/internals/middlewares/auth_agent"
	authuser "absensiku_backend/internals/middlewares/auth_user"
)

var validate = validator.New()

type AttendanceEventController struct {
	Pipeline *eventService.PipelineService
	Ingest   *eventService.IngestService
}

func NewAttendanceEventController(db *gorm.DB, pipeline *eventService.PipelineService) *AttendanceEventController {
	return &AttendanceEventController{
		Pipeline: pipeline,
		Ingest:   eventService.NewIngestService(db),
	}
}

// POST /api/a/attendance/events — scan masuk dari agent, langsung lewat
// pipeline penuh (ingest → resolve kontak → notifikasi).
// 201 untuk event baru, 200 untuk duplikat scan yang sama.
func (ctrl *AttendanceEventController) SubmitEvent(c *fiber.Ctx) error {
	schoolID, err := authagent.SchoolIDFromToken(c)
	if err != nil {
		return helper.JsonError(c, err.(*fiber.Error).Code, err.Error())
	}

	var req eventDTO.SubmitEventRequest
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

	result, err := ctrl.Pipeline.Process(
		c.UserContext(),
		schoolID,
		req.StudentID,
		eventModel.AttendanceDirection(req.Direction),
		req.CapturedAt,
	)
	if err != nil {
		return helper.JsonAppError(c, err)
	}

	if result.Created {
		return helper.JsonCreated(c, "Attendance event tercatat", result)
	}
	return helper.JsonOK(c, "Scan duplikat, event sudah tercatat", result)
}

// GET /api/u/attendance/events — timeline event untuk dashboard.
func (ctrl *AttendanceEventController) ListEvents(c *fiber.Ctx) error {
	schoolID, err := authuser.SchoolIDFromToken(c)
	if err != nil {
		return helper.JsonError(c, err.(*fiber.Error).Code, err.Error())
	}

	page, _ := strconv.Atoi(c.Query("page", "1"))
	perPage, _ := strconv.Atoi(c.Query("per_page", "20"))
	if page <= 0 {
		page = 1
	}
	if perPage <= 0 || perPage > 100 {
		perPage = 20
	}

	rows, total, err := ctrl.Ingest.ListEvents(c.UserContext(), schoolID, (page-1)*perPage, perPage)
	if err != nil {
		return helper.JsonAppError(c, err)
	}

	pagination := helper.BuildPaginationFromPage(total, page, perPage)
	return helper.JsonList(c, "", rows, &pagination)
}

// GET /api/u/attendance/events/:id — detail satu event (termasuk notify_result).
func (ctrl *AttendanceEventController) GetEvent(c *fiber.Ctx) error {
	schoolID, err := authuser.SchoolIDFromToken(c)
	if err != nil {
		return helper.JsonError(c, err.(*fiber.Error).Code, err.Error())
	}
	eventID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "id event tidak valid")
	}

	ev, err := ctrl.Ingest.GetEvent(c.UserContext(), schoolID, eventID)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "", ev)
}

// POST /api/u/attendance/events/:id/redispatch — kirim ulang notifikasi
// untuk event yang belum pernah diproses. Event yang sudah processed = no-op.
func (ctrl *AttendanceEventController) RedispatchEvent(c *fiber.Ctx) error {
	schoolID, err := authuser.SchoolIDFromToken(c)
	if err != nil {
		return helper.JsonError(c, err.(*fiber.Error).Code, err.Error())
	}
	eventID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "id event tidak valid")
	}

	result, err := ctrl.Pipeline.Redispatch(c.UserContext(), schoolID, eventID)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	if result.Outcome == nil {
		return helper.JsonOK(c, "Event sudah diproses, tidak dikirim ulang", result)
	}
	return helper.JsonOK(c, "Notifikasi dikirim ulang", result)
}
