// file: internals/features/school/guardians/dto/guardian_dto.go
package dto

import "github.com/google/uuid"

type SetPasswordRequest struct {
	StudentID    uuid.UUID `json:"student_id" validate:"required"`
	GuardianName string    `json:"guardian_name" validate:"omitempty,max=160"`
	Password     string    `json:"password" validate:"required,min=8,max=72"`
}
