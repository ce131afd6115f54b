package model

import (
	"time"

	"github.com/google/uuid"
)

/* =========================
   Enums (selaras dgn DB)
========================= */

type AgentStatus string

const (
	AgentStatusRunning AgentStatus = "running"
	AgentStatusStopped AgentStatus = "stopped"
	AgentStatusCrashed AgentStatus = "crashed"
	AgentStatusError   AgentStatus = "error"
)

func (s AgentStatus) Valid() bool {
	switch s {
	case AgentStatusRunning, AgentStatusStopped, AgentStatusCrashed, AgentStatusError:
		return true
	}
	return false
}

/* =========================================
   Model: sync_heartbeats
   Satu baris per school, di-upsert in place oleh laporan periodik
   agent on-prem. Cloud hanya membaca; tidak pernah dihapus selama
   school-nya masih ada.
========================================= */

type SyncHeartbeatModel struct {
	// PK
	SyncHeartbeatID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey;column:sync_heartbeat_id" json:"sync_heartbeat_id"`

	SyncHeartbeatSchoolID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_sync_heartbeats_school;column:sync_heartbeat_school_id" json:"sync_heartbeat_school_id"`

	SyncHeartbeatStatus AgentStatus `gorm:"type:varchar(16);not null;column:sync_heartbeat_status" json:"sync_heartbeat_status"`

	SyncHeartbeatLastHeartbeatAt time.Time  `gorm:"type:timestamptz;not null;column:sync_heartbeat_last_heartbeat_at" json:"sync_heartbeat_last_heartbeat_at"`
	SyncHeartbeatStartupAt       *time.Time `gorm:"type:timestamptz;column:sync_heartbeat_startup_at" json:"sync_heartbeat_startup_at,omitempty"`

	SyncHeartbeatProcessID *int `gorm:"column:sync_heartbeat_process_id" json:"sync_heartbeat_process_id,omitempty"`

	// Counter kumulatif dari agent
	SyncHeartbeatTotalSynced int64 `gorm:"not null;default:0;column:sync_heartbeat_total_synced" json:"sync_heartbeat_total_synced"`
	SyncHeartbeatTotalErrors int64 `gorm:"not null;default:0;column:sync_heartbeat_total_errors" json:"sync_heartbeat_total_errors"`

	SyncHeartbeatUptimeHours   float64 `gorm:"not null;default:0;column:sync_heartbeat_uptime_hours" json:"sync_heartbeat_uptime_hours"`
	SyncHeartbeatMemoryUsageMb float64 `gorm:"not null;default:0;column:sync_heartbeat_memory_usage_mb" json:"sync_heartbeat_memory_usage_mb"`

	// Audit
	SyncHeartbeatCreatedAt time.Time `gorm:"type:timestamptz;not null;default:now();column:sync_heartbeat_created_at" json:"sync_heartbeat_created_at"`
	SyncHeartbeatUpdatedAt time.Time `gorm:"type:timestamptz;not null;default:now();column:sync_heartbeat_updated_at" json:"sync_heartbeat_updated_at"`
}

func (SyncHeartbeatModel) TableName() string { return "sync_heartbeats" }

// ErrorRate = totalErrors / (totalSynced + totalErrors); 0 saat denominator 0.
func (m *SyncHeartbeatModel) ErrorRate() float64 {
	den := m.SyncHeartbeatTotalSynced + m.SyncHeartbeatTotalErrors
	if den == 0 {
		return 0
	}
	return float64(m.SyncHeartbeatTotalErrors) / float64(den)
}
