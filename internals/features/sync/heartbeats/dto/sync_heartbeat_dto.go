// file: internals/features/sync/heartbeats/dto/sync_heartbeat_dto.go
package dto

import (
	"time"

	hbModel "absensiku_backend/internals/features/sync/heartbeats/model"
	"absensiku_backend/internals/features/sync/heartbeats/service"
)

/* ===================== Requests ===================== */

type ReportHeartbeatRequest struct {
	SyncHeartbeatStatus        string     `json:"sync_heartbeat_status" validate:"required,oneof=running stopped crashed error"`
	SyncHeartbeatStartupAt     *time.Time `json:"sync_heartbeat_startup_at"`
	SyncHeartbeatProcessID     *int       `json:"sync_heartbeat_process_id"`
	SyncHeartbeatTotalSynced   int64      `json:"sync_heartbeat_total_synced" validate:"gte=0"`
	SyncHeartbeatTotalErrors   int64      `json:"sync_heartbeat_total_errors" validate:"gte=0"`
	SyncHeartbeatUptimeHours   float64    `json:"sync_heartbeat_uptime_hours" validate:"gte=0"`
	SyncHeartbeatMemoryUsageMb float64    `json:"sync_heartbeat_memory_usage_mb" validate:"gte=0"`
}

func (r *ReportHeartbeatRequest) ToReport() service.HeartbeatReport {
	return service.HeartbeatReport{
		Status:        hbModel.AgentStatus(r.SyncHeartbeatStatus),
		StartupAt:     r.SyncHeartbeatStartupAt,
		ProcessID:     r.SyncHeartbeatProcessID,
		TotalSynced:   r.SyncHeartbeatTotalSynced,
		TotalErrors:   r.SyncHeartbeatTotalErrors,
		UptimeHours:   r.SyncHeartbeatUptimeHours,
		MemoryUsageMb: r.SyncHeartbeatMemoryUsageMb,
	}
}
