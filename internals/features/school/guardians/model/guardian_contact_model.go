package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

/* =========================================
   Model: guardian_contacts
   1:1 dengan students (unique student_id) → "paling banyak satu
   kontak primary per student" dijaga di level constraint, bukan kode.
========================================= */

type GuardianContactModel struct {
	// PK
	GuardianContactID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey;column:guardian_contact_id" json:"guardian_contact_id"`

	// Tenant & relasi
	GuardianContactSchoolID  uuid.UUID `gorm:"type:uuid;not null;column:guardian_contact_school_id" json:"guardian_contact_school_id"`
	GuardianContactStudentID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_guardian_contacts_student;column:guardian_contact_student_id" json:"guardian_contact_student_id"`

	GuardianContactName string `gorm:"type:varchar(160);not null;column:guardian_contact_name" json:"guardian_contact_name"`

	// Channel ternormalisasi; null = channel tidak tersedia
	GuardianContactEmail *string `gorm:"type:varchar(160);column:guardian_contact_email" json:"guardian_contact_email,omitempty"`
	GuardianContactPhone *string `gorm:"type:varchar(32);column:guardian_contact_phone" json:"guardian_contact_phone,omitempty"`

	// Nomor mentah tambahan dari sumber identitas on-prem (tidak dinormalisasi)
	GuardianContactAltPhones pq.StringArray `gorm:"type:text[];column:guardian_contact_alt_phones" json:"guardian_contact_alt_phones,omitempty"`

	GuardianContactIsPrimary bool `gorm:"not null;default:true;column:guardian_contact_is_primary" json:"guardian_contact_is_primary"`

	// Password portal wali (di-set lewat aksi password-set; bcrypt)
	GuardianContactPasswordHash *string `gorm:"type:varchar(100);column:guardian_contact_password_hash" json:"-"`

	// Audit
	GuardianContactCreatedAt time.Time `gorm:"type:timestamptz;not null;default:now();column:guardian_contact_created_at" json:"guardian_contact_created_at"`
	GuardianContactUpdatedAt time.Time `gorm:"type:timestamptz;not null;default:now();column:guardian_contact_updated_at" json:"guardian_contact_updated_at"`
}

func (GuardianContactModel) TableName() string { return "guardian_contacts" }

// HasChannel: apakah kontak punya minimal satu channel notifikasi.
func (m *GuardianContactModel) HasChannel() bool {
	return (m.GuardianContactEmail != nil && *m.GuardianContactEmail != "") ||
		(m.GuardianContactPhone != nil && *m.GuardianContactPhone != "")
}
