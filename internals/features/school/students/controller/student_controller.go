// file: internals/features/school/students/controller/student_controller.go
package controller

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	studentService "absensiku_backend/internals/features/school/students/service"
	helper "absensiku_backend/internals/helpers"
	authuser "absensiku_backend/internals/middlewares/auth_user"
)

type StudentController struct {
	Service *studentService.StudentService
}

func NewStudentController(db *gorm.DB) *StudentController {
	return &StudentController{Service: studentService.NewStudentService(db)}
}

// GET /api/u/students
func (ctrl *StudentController) ListStudents(c *fiber.Ctx) error {
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

	rows, total, err := ctrl.Service.List(c.UserContext(), schoolID, (page-1)*perPage, perPage)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	pagination := helper.BuildPaginationFromPage(total, page, perPage)
	return helper.JsonList(c, "", rows, &pagination)
}

// GET /api/u/students/:id
func (ctrl *StudentController) GetStudent(c *fiber.Ctx) error {
	schoolID, err := authuser.SchoolIDFromToken(c)
	if err != nil {
		return helper.JsonError(c, err.(*fiber.Error).Code, err.Error())
	}
	studentID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "id student tidak valid")
	}

	student, err := ctrl.Service.GetByID(c.UserContext(), schoolID, studentID)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "", student)
}

// DELETE /api/u/students/:id — default deactivate; ?hard=true hapus
// permanen berikut kontak dan seluruh event (cascade dalam transaksi).
func (ctrl *StudentController) DeleteStudent(c *fiber.Ctx) error {
	schoolID, err := authuser.SchoolIDFromToken(c)
	if err != nil {
		return helper.JsonError(c, err.(*fiber.Error).Code, err.Error())
	}
	studentID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "id student tidak valid")
	}

	if c.QueryBool("hard", false) {
		if err := ctrl.Service.HardDelete(c.UserContext(), schoolID, studentID); err != nil {
			return helper.JsonAppError(c, err)
		}
		return helper.JsonDeleted(c, "Student dihapus permanen", fiber.Map{"student_id": studentID})
	}

	student, err := ctrl.Service.Deactivate(c.UserContext(), schoolID, studentID)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonUpdated(c, "Student dinonaktifkan", student)
}
