package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

/* =========================
   Enums (selaras dgn DB)
========================= */

type AttendanceDirection string

const (
	DirectionIn  AttendanceDirection = "IN"
	DirectionOut AttendanceDirection = "OUT"
)

func (d AttendanceDirection) Valid() bool {
	return d == DirectionIn || d == DirectionOut
}

/* =========================================
   Model: attendance_events
   Unique (school, student, captured_at) = kunci idempotensi ingest;
   scan fisik yang sama tidak pernah jadi dua baris.
========================================= */

type AttendanceEventModel struct {
	// PK
	AttendanceEventID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey;column:attendance_event_id" json:"attendance_event_id"`

	// Tenant & relasi
	AttendanceEventSchoolID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_attendance_events_scan;column:attendance_event_school_id" json:"attendance_event_school_id"`
	AttendanceEventStudentID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_attendance_events_scan;column:attendance_event_student_id" json:"attendance_event_student_id"`

	AttendanceEventDirection AttendanceDirection `gorm:"type:varchar(3);not null;column:attendance_event_direction" json:"attendance_event_direction"`

	// Waktu scan di device; immutable setelah tersimpan
	AttendanceEventCapturedAt time.Time `gorm:"type:timestamptz;not null;uniqueIndex:uq_attendance_events_scan;column:attendance_event_captured_at" json:"attendance_event_captured_at"`
	AttendanceEventIngestedAt time.Time `gorm:"type:timestamptz;not null;default:now();column:attendance_event_ingested_at" json:"attendance_event_ingested_at"`

	// Diisi pipeline setelah dispatch notifikasi (best-effort)
	AttendanceEventProcessedAt  *time.Time     `gorm:"type:timestamptz;column:attendance_event_processed_at" json:"attendance_event_processed_at,omitempty"`
	AttendanceEventNotifyResult datatypes.JSON `gorm:"type:jsonb;column:attendance_event_notify_result" json:"attendance_event_notify_result,omitempty"`
}

func (AttendanceEventModel) TableName() string { return "attendance_events" }
