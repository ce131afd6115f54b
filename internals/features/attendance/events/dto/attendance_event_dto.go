// file: internals/features/attendance/events/dto/attendance_event_dto.go
package dto

import (
	"time"

	"github.com/google/uuid"
)

// SubmitEventRequest: satu scan dari agent on-prem.
// captured_at optional; kosong = waktu server saat diterima.
type SubmitEventRequest struct {
	StudentID  uuid.UUID  `json:"student_id" validate:"required"`
	Direction  string     `json:"direction" validate:"required,oneof=IN OUT"`
	CapturedAt *time.Time `json:"captured_at" validate:"omitempty"`
}
