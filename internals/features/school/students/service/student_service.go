// file: internals/features/school/students/service/student_service.go
package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	eventModel "absensiku_backend/internals/features/attendance/events/model"
	guardianModel "absensiku_backend/internals/features/school/guardians/model"
	studentModel "absensiku_backend/internals/features/school/students/model"
	"absensiku_backend/internals/helpers/errs"
)

type StudentService struct {
	DB *gorm.DB
}

func NewStudentService(db *gorm.DB) *StudentService {
	return &StudentService{DB: db}
}

func (s *StudentService) GetByID(ctx context.Context, schoolID, studentID uuid.UUID) (*studentModel.StudentModel, error) {
	var student studentModel.StudentModel
	err := s.DB.WithContext(ctx).
		Where("student_id = ? AND student_school_id = ?", studentID, schoolID).
		First(&student).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NotFound("student tidak ditemukan")
	}
	if err != nil {
		return nil, errs.Wrap(errs.KindDependencyUnavailable, "gagal baca student", err)
	}
	return &student, nil
}

func (s *StudentService) List(ctx context.Context, schoolID uuid.UUID, offset, limit int) ([]studentModel.StudentModel, int64, error) {
	var total int64
	q := s.DB.WithContext(ctx).
		Model(&studentModel.StudentModel{}).
		Where("student_school_id = ?", schoolID)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, errs.Wrap(errs.KindDependencyUnavailable, "gagal hitung students", err)
	}

	var rows []studentModel.StudentModel
	if err := q.Order("student_name ASC").
		Offset(offset).Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, 0, errs.Wrap(errs.KindDependencyUnavailable, "gagal baca students", err)
	}
	return rows, total, nil
}

// Deactivate menonaktifkan student (default path). Scan berikutnya untuk
// student ini ditolak di ingest; histori event dan kontak tetap utuh.
func (s *StudentService) Deactivate(ctx context.Context, schoolID, studentID uuid.UUID) (*studentModel.StudentModel, error) {
	student, err := s.GetByID(ctx, schoolID, studentID)
	if err != nil {
		return nil, err
	}

	if err := s.DB.WithContext(ctx).
		Model(student).
		Updates(map[string]interface{}{
			"student_is_active":  false,
			"student_updated_at": gorm.Expr("now()"),
		}).Error; err != nil {
		return nil, errs.Wrap(errs.KindDependencyUnavailable, "gagal nonaktifkan student", err)
	}
	student.StudentIsActive = false
	return student, nil
}

// HardDelete menghapus student beserta kontak dan seluruh event-nya dalam
// satu transaksi. Dipakai untuk permintaan penghapusan data permanen;
// tidak ada jalan kembali.
func (s *StudentService) HardDelete(ctx context.Context, schoolID, studentID uuid.UUID) error {
	if _, err := s.GetByID(ctx, schoolID, studentID); err != nil {
		return err
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().
			Where("attendance_event_student_id = ?", studentID).
			Delete(&eventModel.AttendanceEventModel{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().
			Where("guardian_contact_student_id = ?", studentID).
			Delete(&guardianModel.GuardianContactModel{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().
			Where("student_id = ?", studentID).
			Delete(&studentModel.StudentModel{}).Error
	})
	if err != nil {
		return errs.Wrap(errs.KindDependencyUnavailable, "gagal hapus student", err)
	}
	return nil
}
