// file: internals/features/school/guardians/service/guardian_service.go
package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	guardianModel "absensiku_backend/internals/features/school/guardians/model"
	studentModel "absensiku_backend/internals/features/school/students/model"
	"absensiku_backend/internals/helpers/errs"
)

type GuardianService struct {
	DB *gorm.DB
}

func NewGuardianService(db *gorm.DB) *GuardianService {
	return &GuardianService{DB: db}
}

// SetPassword menyimpan password portal wali (bcrypt). Kontak dibuat lazy
// jika belum ada untuk student tsb; rekonsiliasi berikutnya hanya akan
// melengkapi channel lewat merge, tidak menimpa password.
func (s *GuardianService) SetPassword(ctx context.Context, schoolID, studentID uuid.UUID, guardianName, plainPassword string) (*guardianModel.GuardianContactModel, error) {
	if len(plainPassword) < 8 {
		return nil, errs.Validation("password minimal 8 karakter")
	}

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

	hash, err := bcrypt.GenerateFromPassword([]byte(plainPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, errs.Wrap(errs.KindDependencyUnavailable, "gagal hash password", err)
	}
	hashStr := string(hash)

	name := guardianName
	if name == "" {
		name = student.StudentName
	}

	row := guardianModel.GuardianContactModel{
		GuardianContactSchoolID:     schoolID,
		GuardianContactStudentID:    studentID,
		GuardianContactName:         name,
		GuardianContactIsPrimary:    true,
		GuardianContactPasswordHash: &hashStr,
	}

	// Upsert keyed by student_id: kontak hasil rekonsiliasi di-update
	// password-nya saja, channel yang sudah ada tidak disentuh.
	err = s.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "guardian_contact_student_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"guardian_contact_password_hash": hashStr,
				"guardian_contact_updated_at":    gorm.Expr("now()"),
			}),
		}).
		Create(&row).Error
	if err != nil {
		return nil, errs.Wrap(errs.KindDependencyUnavailable, "gagal simpan password wali", err)
	}

	var saved guardianModel.GuardianContactModel
	if err := s.DB.WithContext(ctx).
		Where("guardian_contact_student_id = ?", studentID).
		First(&saved).Error; err != nil {
		return nil, errs.Wrap(errs.KindDependencyUnavailable, "gagal baca guardian contact", err)
	}
	return &saved, nil
}

// VerifyPassword mencocokkan password portal terhadap hash tersimpan.
func (s *GuardianService) VerifyPassword(ctx context.Context, studentID uuid.UUID, plainPassword string) error {
	var contact guardianModel.GuardianContactModel
	err := s.DB.WithContext(ctx).
		Where("guardian_contact_student_id = ?", studentID).
		First(&contact).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errs.NotFound("guardian contact tidak ditemukan")
	}
	if err != nil {
		return errs.Wrap(errs.KindDependencyUnavailable, "gagal baca guardian contact", err)
	}
	if contact.GuardianContactPasswordHash == nil {
		return errs.Validation("password portal belum di-set")
	}
	if bcrypt.CompareHashAndPassword([]byte(*contact.GuardianContactPasswordHash), []byte(plainPassword)) != nil {
		return errs.Validation("password salah")
	}
	return nil
}
