// file: internals/features/school/guardians/route/guardian_route.go
package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	guardianCtrl "absensiku_backend/internals/features/school/guardians/controller"
)

// GuardianUserRoutes: aksi portal wali dari dashboard.
func GuardianUserRoutes(r fiber.Router, db *gorm.DB) {
	ctl := guardianCtrl.NewGuardianController(db)
	r.Post("/guardians/password", ctl.SetPassword)
}
