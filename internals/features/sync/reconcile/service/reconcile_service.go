// file: internals/features/sync/reconcile/service/reconcile_service.go
package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	guardianModel "absensiku_backend/internals/features/school/guardians/model"
	studentModel "absensiku_backend/internals/features/school/students/model"
	"absensiku_backend/internals/helpers/errs"
)

/* =========================
   Identity record (on-prem)
========================= */

// IdentityRecord adalah baris identitas dari store biometrik on-prem.
// ID-nya numerik scoped ke store lokal; kita tidak pernah menulis balik.
type IdentityRecord struct {
	IdentityExternalID int64    `json:"identity_external_id"`
	IdentityName       string   `json:"identity_name"`
	IdentityEmail      *string  `json:"identity_email,omitempty"`
	IdentityPhones     []string `json:"identity_phones,omitempty"`
}

// BestChannels memilih channel terbaik dari field mentah:
// email langsung kalau ada, phone pertama yang non-kosong jadi primary,
// sisanya disimpan sebagai alt. Tidak pernah mengembalikan string kosong.
func BestChannels(rec IdentityRecord) (email *string, phone *string, altPhones []string) {
	if rec.IdentityEmail != nil {
		if v := strings.TrimSpace(*rec.IdentityEmail); v != "" {
			email = &v
		}
	}
	for _, p := range rec.IdentityPhones {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if phone == nil {
			v := p
			phone = &v
			continue
		}
		altPhones = append(altPhones, p)
	}
	return email, phone, altPhones
}

/* =========================
   Service
========================= */

type ReconcileOpts struct {
	// AutoCreate false → pure lookup; nama yang tak cocok = NotFound.
	AutoCreate bool
	// RequireChannel true → ValidationError jika kontak final tetap
	// tanpa email maupun phone.
	RequireChannel bool
}

type ReconcileService struct {
	DB *gorm.DB
}

func NewReconcileService(db *gorm.DB) *ReconcileService {
	return &ReconcileService{DB: db}
}

// Reconcile memetakan satu identity record ke GuardianContact kanonik.
// Student di-resolve exact by (name, school); kontak di-upsert keyed by
// student_id dengan merge non-destruktif (COALESCE di SQL, jadi aman
// dipanggil concurrent dari dua instance pipeline).
func (s *ReconcileService) Reconcile(ctx context.Context, rec IdentityRecord, schoolID uuid.UUID, opts ReconcileOpts) (*guardianModel.GuardianContactModel, error) {
	name := strings.TrimSpace(rec.IdentityName)
	if name == "" {
		return nil, errs.Validation("nama identity record kosong")
	}

	student, err := s.resolveStudent(ctx, name, schoolID, opts.AutoCreate)
	if err != nil {
		return nil, err
	}

	email, phone, altPhones := BestChannels(rec)

	row := guardianModel.GuardianContactModel{
		GuardianContactSchoolID:  schoolID,
		GuardianContactStudentID: student.StudentID,
		GuardianContactName:      name,
		GuardianContactEmail:     email,
		GuardianContactPhone:     phone,
		GuardianContactAltPhones: pq.StringArray(altPhones),
		GuardianContactIsPrimary: true,
	}

	err = s.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "guardian_contact_student_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				// Field non-null dari sumber menang; nilai tersimpan tidak
				// pernah ditimpa null.
				"guardian_contact_email":      gorm.Expr("COALESCE(EXCLUDED.guardian_contact_email, guardian_contacts.guardian_contact_email)"),
				"guardian_contact_phone":      gorm.Expr("COALESCE(EXCLUDED.guardian_contact_phone, guardian_contacts.guardian_contact_phone)"),
				"guardian_contact_alt_phones": gorm.Expr("COALESCE(EXCLUDED.guardian_contact_alt_phones, guardian_contacts.guardian_contact_alt_phones)"),
				"guardian_contact_updated_at": gorm.Expr("now()"),
			}),
		}).
		Create(&row).Error
	if err != nil {
		return nil, errs.Wrap(errs.KindDependencyUnavailable, "gagal upsert guardian contact", err)
	}

	// Baca baris final — hasil merge, bukan nilai yang barusan dikirim.
	var saved guardianModel.GuardianContactModel
	if err := s.DB.WithContext(ctx).
		Where("guardian_contact_student_id = ?", student.StudentID).
		First(&saved).Error; err != nil {
		return nil, errs.Wrap(errs.KindDependencyUnavailable, "gagal baca guardian contact", err)
	}

	if opts.RequireChannel && !saved.HasChannel() {
		return nil, errs.Validation("kontak tidak punya email maupun phone")
	}
	return &saved, nil
}

// ResolveForStudent mengambil kontak kanonik milik satu student.
// Dipakai pipeline event: kontak harus sudah ada (hasil rekonsiliasi
// sebelumnya atau aksi password-set); tidak ada auto-create di path ini.
func (s *ReconcileService) ResolveForStudent(ctx context.Context, studentID uuid.UUID) (*guardianModel.GuardianContactModel, error) {
	var contact guardianModel.GuardianContactModel
	err := s.DB.WithContext(ctx).
		Where("guardian_contact_student_id = ?", studentID).
		First(&contact).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NotFound("guardian contact belum ter-rekonsiliasi untuk student ini")
	}
	if err != nil {
		return nil, errs.Wrap(errs.KindDependencyUnavailable, "gagal baca guardian contact", err)
	}
	return &contact, nil
}

func (s *ReconcileService) resolveStudent(ctx context.Context, name string, schoolID uuid.UUID, autoCreate bool) (*studentModel.StudentModel, error) {
	var student studentModel.StudentModel
	err := s.DB.WithContext(ctx).
		Where("student_school_id = ? AND student_name = ?", schoolID, name).
		First(&student).Error
	if err == nil {
		return &student, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.Wrap(errs.KindDependencyUnavailable, "gagal baca student", err)
	}
	if !autoCreate {
		return nil, errs.NotFound("student dengan nama tersebut tidak ditemukan")
	}

	// Insert idempotent pada unique (school, name); kalau kalah race,
	// DoNothing lalu baca baris milik pemenang.
	row := studentModel.StudentModel{
		StudentSchoolID: schoolID,
		StudentName:     name,
		StudentIsActive: true,
	}
	if err := s.DB.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&row).Error; err != nil {
		return nil, errs.Wrap(errs.KindDependencyUnavailable, "gagal buat student", err)
	}

	if err := s.DB.WithContext(ctx).
		Where("student_school_id = ? AND student_name = ?", schoolID, name).
		First(&student).Error; err != nil {
		return nil, errs.Wrap(errs.KindDependencyUnavailable, "gagal baca student", err)
	}
	return &student, nil
}
