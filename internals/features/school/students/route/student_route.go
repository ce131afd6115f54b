// file: internals/features/school/students/route/student_route.go
package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	studentCtrl "absensiku_backend/internals/features/school/students/controller"
)

// StudentUserRoutes: administrasi student dari dashboard.
func StudentUserRoutes(r fiber.Router, db *gorm.DB) {
	ctl := studentCtrl.NewStudentController(db)
	r.Get("/students", ctl.ListStudents)
	r.Get("/students/:id", ctl.GetStudent)
	r.Delete("/students/:id", ctl.DeleteStudent)
}
