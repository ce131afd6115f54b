package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

/* =========================================
   Model: students
   Catatan: unique (school_id, name) menopang upsert rekonsiliasi —
   identitas on-prem dicocokkan exact by name per site, tanpa fuzzy match.
========================================= */

type StudentModel struct {
	// PK
	StudentID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey;column:student_id" json:"student_id"`

	// Tenant
	StudentSchoolID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_students_school_name;column:student_school_id" json:"student_school_id"`

	StudentName  string  `gorm:"type:varchar(160);not null;uniqueIndex:uq_students_school_name;column:student_name" json:"student_name"`
	StudentGrade *string `gorm:"type:varchar(32);column:student_grade" json:"student_grade,omitempty"`

	// Kode badge eksternal dari device capture (opsional)
	StudentBadgeCode *string `gorm:"type:varchar(64);column:student_badge_code" json:"student_badge_code,omitempty"`

	StudentIsActive bool `gorm:"not null;default:true;column:student_is_active" json:"student_is_active"`

	// Audit
	StudentCreatedAt time.Time      `gorm:"type:timestamptz;not null;default:now();column:student_created_at" json:"student_created_at"`
	StudentUpdatedAt time.Time      `gorm:"type:timestamptz;not null;default:now();column:student_updated_at" json:"student_updated_at"`
	StudentDeletedAt gorm.DeletedAt `gorm:"column:student_deleted_at;index" json:"student_deleted_at,omitempty"`
}

func (StudentModel) TableName() string { return "students" }
