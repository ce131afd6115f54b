// file: internals/features/sync/reconcile/dto/reconcile_dto.go
package dto

import (
	guardianModel "absensiku_backend/internals/features/school/guardians/model"
	"absensiku_backend/internals/features/sync/reconcile/service"
)

/* ===================== Requests ===================== */

type IdentityRecordPayload struct {
	IdentityExternalID int64    `json:"identity_external_id" validate:"required"`
	IdentityName       string   `json:"identity_name" validate:"required"`
	IdentityEmail      *string  `json:"identity_email" validate:"omitempty,email"`
	IdentityPhones     []string `json:"identity_phones" validate:"omitempty,dive,min=3"`
}

func (p *IdentityRecordPayload) ToRecord() service.IdentityRecord {
	return service.IdentityRecord{
		IdentityExternalID: p.IdentityExternalID,
		IdentityName:       p.IdentityName,
		IdentityEmail:      p.IdentityEmail,
		IdentityPhones:     p.IdentityPhones,
	}
}

type ReconcileBatchRequest struct {
	Records []IdentityRecordPayload `json:"records" validate:"required,min=1,max=500,dive"`

	// true → record yang hasil akhirnya tanpa email maupun phone dihitung
	// gagal (validation), supaya agent bisa lapor kontak yang mustahil dinotifikasi.
	RequireChannel bool `json:"require_channel"`
}

/* ===================== Responses ===================== */

type ReconcileResultItem struct {
	IdentityExternalID int64                               `json:"identity_external_id"`
	Ok                 bool                                `json:"ok"`
	Error              *string                             `json:"error,omitempty"`
	Contact            *guardianModel.GuardianContactModel `json:"contact,omitempty"`
}

type ReconcileBatchResponse struct {
	Total   int                   `json:"total"`
	Success int                   `json:"success"`
	Failed  int                   `json:"failed"`
	Results []ReconcileResultItem `json:"results"`
}
