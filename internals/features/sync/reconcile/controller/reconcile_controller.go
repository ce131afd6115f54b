// file: internals/features/sync/reconcile/controller/reconcile_controller.go
package controller

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"absensiku_backend/internals/features/sync/identity"
	reconcileDTO "absensiku_backend/internals/features/sync/reconcile/dto"
	reconcileService "absensiku_backend/internals/features/sync/reconcile/service"
	helper "absensiku_backend/internals/helpers"
	authagent "absensiku_backend/internals/middlewares/auth_agent"
	authuser "absensiku_backend/internals/middlewares/auth_user"
)

var validate = validator.New()

type ReconcileController struct {
	Reconciler *reconcileService.ReconcileService
	Identity   identity.Source // boleh nil kalau tidak dikonfigurasi
}

func NewReconcileController(db *gorm.DB, src identity.Source) *ReconcileController {
	return &ReconcileController{
		Reconciler: reconcileService.NewReconcileService(db),
		Identity:   src,
	}
}

// POST /api/a/sync/contacts — batch identity record dari agent.
// Tiap record direkonsiliasi independen; satu record gagal tidak
// menggagalkan sisanya.
func (ctrl *ReconcileController) ReconcileBatch(c *fiber.Ctx) error {
	schoolID, err := authagent.SchoolIDFromToken(c)
	if err != nil {
		return helper.JsonError(c, err.(*fiber.Error).Code, err.Error())
	}

	var req reconcileDTO.ReconcileBatchRequest
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

	resp := reconcileDTO.ReconcileBatchResponse{Total: len(req.Records)}
	for _, rec := range req.Records {
		item := reconcileDTO.ReconcileResultItem{IdentityExternalID: rec.IdentityExternalID}

		contact, err := ctrl.Reconciler.Reconcile(c.UserContext(), rec.ToRecord(), schoolID,
			reconcileService.ReconcileOpts{AutoCreate: true, RequireChannel: req.RequireChannel})
		if err != nil {
			msg := err.Error()
			item.Error = &msg
			resp.Failed++
		} else {
			item.Ok = true
			item.Contact = contact
			resp.Success++
		}
		resp.Results = append(resp.Results, item)
	}

	return helper.JsonOK(c, "Rekonsiliasi selesai", resp)
}

// GET /api/u/sync/contacts/lookup?name= — pure lookup, tanpa auto-create.
// Menarik record dari identity source on-prem lalu merge ke kontak yang ada.
func (ctrl *ReconcileController) LookupContact(c *fiber.Ctx) error {
	schoolID, err := authuser.SchoolIDFromToken(c)
	if err != nil {
		return helper.JsonError(c, err.(*fiber.Error).Code, err.Error())
	}

	name := strings.TrimSpace(c.Query("name"))
	if name == "" {
		return helper.JsonError(c, fiber.StatusBadRequest, "Query name wajib diisi")
	}

	if ctrl.Identity == nil {
		return helper.JsonError(c, fiber.StatusServiceUnavailable, "Identity source tidak dikonfigurasi")
	}

	rec, err := ctrl.Identity.FindByName(c.UserContext(), name)
	if err != nil {
		return helper.JsonAppError(c, err)
	}

	contact, err := ctrl.Reconciler.Reconcile(c.UserContext(), *rec, schoolID,
		reconcileService.ReconcileOpts{AutoCreate: false})
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "", contact)
}
