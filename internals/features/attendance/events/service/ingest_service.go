// file: internals/features/attendance/events/service/ingest_service.go
package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	eventModel "absensiku_backend/internals/features/attendance/events/model"
	studentModel "absensiku_backend/internals/features/school/students/model"
	"absensiku_backend/internals/helpers/errs"
)

type IngestService struct {
	DB *gorm.DB

	// Now dapat dioverride di test
	Now func() time.Time
}

func NewIngestService(db *gorm.DB) *IngestService {
	return &IngestService{DB: db, Now: time.Now}
}

// ActiveStudent memvalidasi student aktif dalam school ybs.
func (s *IngestService) ActiveStudent(ctx context.Context, schoolID, studentID uuid.UUID) (*studentModel.StudentModel, error) {
	if studentID == uuid.Nil {
		return nil, errs.Validation("student_id wajib diisi")
	}
	var student studentModel.StudentModel
	err := s.DB.WithContext(ctx).
		Where("student_id = ? AND student_school_id = ? AND student_is_active = ?", studentID, schoolID, true).
		First(&student).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NotFound("student aktif tidak ditemukan di school ini")
	}
	if err != nil {
		return nil, errs.Wrap(errs.KindDependencyUnavailable, "gagal baca student", err)
	}
	return &student, nil
}

// Ingest menyimpan satu scan tepat sekali. Kunci idempotensi
// (school, student, captured_at) ditegakkan oleh unique index di DB —
// bukan read-then-write — jadi dua submit concurrent untuk scan fisik
// yang sama tetap menghasilkan satu baris. Duplikat mengembalikan baris
// lama tanpa error (created=false).
func (s *IngestService) Ingest(ctx context.Context, schoolID, studentID uuid.UUID, direction eventModel.AttendanceDirection, capturedAt *time.Time) (*eventModel.AttendanceEventModel, bool, error) {
	if !direction.Valid() {
		return nil, false, errs.Validation("direction harus IN atau OUT")
	}
	if _, err := s.ActiveStudent(ctx, schoolID, studentID); err != nil {
		return nil, false, err
	}

	ts := s.Now()
	if capturedAt != nil {
		ts = *capturedAt
	}

	row := eventModel.AttendanceEventModel{
		AttendanceEventSchoolID:   schoolID,
		AttendanceEventStudentID:  studentID,
		AttendanceEventDirection:  direction,
		AttendanceEventCapturedAt: ts,
		AttendanceEventIngestedAt: s.Now(),
	}

	res := s.DB.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&row)
	if res.Error != nil {
		// Race sempit: constraint menang walau OnConflict; treat as duplikat.
		if !errs.IsUniqueViolation(res.Error) {
			return nil, false, errs.Wrap(errs.KindDependencyUnavailable, "gagal simpan attendance event", res.Error)
		}
		res.RowsAffected = 0
	}

	if res.RowsAffected > 0 {
		return &row, true, nil
	}

	// Duplikat → baris existing apa adanya (id sama untuk scan yang sama).
	var existing eventModel.AttendanceEventModel
	if err := s.DB.WithContext(ctx).
		Where("attendance_event_school_id = ? AND attendance_event_student_id = ? AND attendance_event_captured_at = ?",
			schoolID, studentID, ts).
		First(&existing).Error; err != nil {
		return nil, false, errs.Wrap(errs.KindDependencyUnavailable, "gagal baca attendance event duplikat", err)
	}
	return &existing, false, nil
}

// MarkProcessed menulis hasil notifikasi ke baris event (best-effort).
func (s *IngestService) MarkProcessed(ctx context.Context, eventID uuid.UUID, processedAt time.Time, notifyResult []byte) error {
	return s.DB.WithContext(ctx).
		Model(&eventModel.AttendanceEventModel{}).
		Where("attendance_event_id = ?", eventID).
		Updates(map[string]interface{}{
			"attendance_event_processed_at":  processedAt,
			"attendance_event_notify_result": notifyResult,
		}).Error
}

// GetEvent mengambil satu event by id, scoped ke school pemilik.
// Event milik school lain = NotFound, bukan bocor lintas tenant.
func (s *IngestService) GetEvent(ctx context.Context, schoolID, eventID uuid.UUID) (*eventModel.AttendanceEventModel, error) {
	var ev eventModel.AttendanceEventModel
	err := s.DB.WithContext(ctx).
		Where("attendance_event_id = ? AND attendance_event_school_id = ?", eventID, schoolID).
		First(&ev).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NotFound("attendance event tidak ditemukan")
	}
	if err != nil {
		return nil, errs.Wrap(errs.KindDependencyUnavailable, "gagal baca attendance event", err)
	}
	return &ev, nil
}

// ListEvents untuk dashboard; filter by school, urut terbaru.
func (s *IngestService) ListEvents(ctx context.Context, schoolID uuid.UUID, offset, limit int) ([]eventModel.AttendanceEventModel, int64, error) {
	var total int64
	q := s.DB.WithContext(ctx).
		Model(&eventModel.AttendanceEventModel{}).
		Where("attendance_event_school_id = ?", schoolID)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, errs.Wrap(errs.KindDependencyUnavailable, "gagal hitung events", err)
	}

	var rows []eventModel.AttendanceEventModel
	if err := q.Order("attendance_event_captured_at DESC").
		Offset(offset).Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, 0, errs.Wrap(errs.KindDependencyUnavailable, "gagal baca events", err)
	}
	return rows, total, nil
}
