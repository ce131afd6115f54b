// file: internals/features/school/guardians/controller/guardian_controller.go
package controller

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	guardianDTO "absensiku_backend/internals/features/school/guardians/dto"
	guardianService "absensiku_backend/internals/features/school/guardians/service"
	helper "absensiku_backend/internals/helpers"
	authuser "absensiku_backend/internals/middlewares/auth_user"
)

var validate = validator.New()

type GuardianController struct {
	Service *guardianService.GuardianService
}

func NewGuardianController(db *gorm.DB) *GuardianController {
	return &GuardianController{Service: guardianService.NewGuardianService(db)}
}

// POST /api/u/guardians/password — set password portal wali.
// Kontak dibuat lazy kalau rekonsiliasi belum pernah jalan untuk student ini.
func (ctrl *GuardianController) SetPassword(c *fiber.Ctx) error {
	schoolID, err := authuser.SchoolIDFromToken(c)
	if err != nil {
		return helper.JsonError(c, err.(*fiber.Error).Code, err.Error())
	}

	var req guardianDTO.SetPasswordRequest
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

	contact, err := ctrl.Service.SetPassword(c.UserContext(), schoolID, req.StudentID, req.GuardianName, req.Password)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonUpdated(c, "Password portal wali tersimpan", contact)
}
