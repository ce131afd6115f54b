// file: internals/features/sync/heartbeats/service/monitor_service.go
package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	hbModel "absensiku_backend/internals/features/sync/heartbeats/model"
	schoolModel "absensiku_backend/internals/features/school/schools/model"
	"absensiku_backend/internals/configs"
	"absensiku_backend/internals/helpers/errs"
)

/* =========================
   Connection state
========================= */

type ConnectionState string

const (
	StateOnline         ConnectionState = "online"
	StateWarning        ConnectionState = "warning"
	StateOffline        ConnectionState = "offline"
	StateNeverConnected ConnectionState = "never_connected"
)

// Threshold & bobot penalti. Nilainya mengikuti perilaku agent lama
// (10/30 menit); bisa dioverride lewat env, jangan dianggap konstanta mati.
const (
	DefaultOnlineWithin  = 10 * time.Minute
	DefaultWarningWithin = 30 * time.Minute

	penaltyOffline        = 50
	penaltyNeverConnected = 30
	penaltyWarning        = 20

	penaltyErrorRateHigh = 30 // > 10%
	penaltyErrorRateMid  = 15 // > 5%
	penaltyErrorRateLow  = 5  // > 1%
)

/* =========================
   Service
========================= */

type MonitorService struct {
	DB *gorm.DB

	OnlineWithin  time.Duration
	WarningWithin time.Duration

	// Now dapat dioverride di test
	Now func() time.Time
}

func NewMonitorService(db *gorm.DB) *MonitorService {
	return &MonitorService{
		DB:            db,
		OnlineWithin:  configs.GetEnvDuration("HEARTBEAT_ONLINE_WITHIN", DefaultOnlineWithin),
		WarningWithin: configs.GetEnvDuration("HEARTBEAT_WARNING_WITHIN", DefaultWarningWithin),
		Now:           time.Now,
	}
}

/* =========================
   Heartbeat ingest (upsert in place)
========================= */

type HeartbeatReport struct {
	Status        hbModel.AgentStatus
	StartupAt     *time.Time
	ProcessID     *int
	TotalSynced   int64
	TotalErrors   int64
	UptimeHours   float64
	MemoryUsageMb float64
}

// ReportHeartbeat meng-upsert baris heartbeat milik satu school.
// Satu agent per site = single writer; tidak perlu locking lintas site.
func (s *MonitorService) ReportHeartbeat(ctx context.Context, schoolID uuid.UUID, rep HeartbeatReport) (*hbModel.SyncHeartbeatModel, error) {
	if !rep.Status.Valid() {
		return nil, errs.Validation("status heartbeat tidak dikenal")
	}

	var exists int64
	if err := s.DB.WithContext(ctx).
		Model(&schoolModel.SchoolModel{}).
		Where("school_id = ?", schoolID).
		Count(&exists).Error; err != nil {
		return nil, errs.Wrap(errs.KindDependencyUnavailable, "gagal cek school", err)
	}
	if exists == 0 {
		return nil, errs.NotFound("school tidak ditemukan")
	}

	now := s.Now()
	row := hbModel.SyncHeartbeatModel{
		SyncHeartbeatSchoolID:        schoolID,
		SyncHeartbeatStatus:          rep.Status,
		SyncHeartbeatLastHeartbeatAt: now,
		SyncHeartbeatStartupAt:       rep.StartupAt,
		SyncHeartbeatProcessID:       rep.ProcessID,
		SyncHeartbeatTotalSynced:     rep.TotalSynced,
		SyncHeartbeatTotalErrors:     rep.TotalErrors,
		SyncHeartbeatUptimeHours:     rep.UptimeHours,
		SyncHeartbeatMemoryUsageMb:   rep.MemoryUsageMb,
	}

	err := s.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "sync_heartbeat_school_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"sync_heartbeat_status",
				"sync_heartbeat_last_heartbeat_at",
				"sync_heartbeat_startup_at",
				"sync_heartbeat_process_id",
				"sync_heartbeat_total_synced",
				"sync_heartbeat_total_errors",
				"sync_heartbeat_uptime_hours",
				"sync_heartbeat_memory_usage_mb",
				"sync_heartbeat_updated_at",
			}),
		}).
		Create(&row).Error
	if err != nil {
		return nil, errs.Wrap(errs.KindDependencyUnavailable, "gagal simpan heartbeat", err)
	}

	// Ambil baris final (Create di path conflict tidak mengembalikan kolom lama)
	var saved hbModel.SyncHeartbeatModel
	if err := s.DB.WithContext(ctx).
		Where("sync_heartbeat_school_id = ?", schoolID).
		First(&saved).Error; err != nil {
		return nil, errs.Wrap(errs.KindDependencyUnavailable, "gagal baca heartbeat", err)
	}
	return &saved, nil
}

/* =========================
   Classification & health
========================= */

// Classify murni dari umur heartbeat; hb nil = belum pernah konek.
func (s *MonitorService) Classify(hb *hbModel.SyncHeartbeatModel) ConnectionState {
	if hb == nil {
		return StateNeverConnected
	}
	age := s.Now().Sub(hb.SyncHeartbeatLastHeartbeatAt)
	switch {
	case age < s.OnlineWithin:
		return StateOnline
	case age < s.WarningWithin:
		return StateWarning
	default:
		return StateOffline
	}
}

// HealthScore mulai dari 100, penalti state koneksi + penalti error rate
// dijumlahkan independen, lalu di-clamp ke [0, 100].
func (s *MonitorService) HealthScore(hb *hbModel.SyncHeartbeatModel) int {
	score := 100

	switch s.Classify(hb) {
	case StateOffline:
		score -= penaltyOffline
	case StateNeverConnected:
		score -= penaltyNeverConnected
	case StateWarning:
		score -= penaltyWarning
	}

	if hb != nil {
		switch rate := hb.ErrorRate(); {
		case rate > 0.10:
			score -= penaltyErrorRateHigh
		case rate > 0.05:
			score -= penaltyErrorRateMid
		case rate > 0.01:
			score -= penaltyErrorRateLow
		}
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}

/* =========================
   Read model
========================= */

type SiteStatus struct {
	SchoolID    uuid.UUID                   `json:"school_id"`
	State       ConnectionState             `json:"state"`
	HealthScore int                         `json:"health_score"`
	ErrorRate   float64                     `json:"error_rate"`
	Heartbeat   *hbModel.SyncHeartbeatModel `json:"heartbeat,omitempty"`
}

func (s *MonitorService) SiteStatus(ctx context.Context, schoolID uuid.UUID) (*SiteStatus, error) {
	var exists int64
	if err := s.DB.WithContext(ctx).
		Model(&schoolModel.SchoolModel{}).
		Where("school_id = ?", schoolID).
		Count(&exists).Error; err != nil {
		return nil, errs.Wrap(errs.KindDependencyUnavailable, "gagal cek school", err)
	}
	if exists == 0 {
		return nil, errs.NotFound("school tidak ditemukan")
	}

	var hb hbModel.SyncHeartbeatModel
	err := s.DB.WithContext(ctx).
		Where("sync_heartbeat_school_id = ?", schoolID).
		First(&hb).Error

	var row *hbModel.SyncHeartbeatModel
	switch {
	case err == nil:
		row = &hb
	case errors.Is(err, gorm.ErrRecordNotFound):
		row = nil // belum pernah konek
	default:
		return nil, errs.Wrap(errs.KindDependencyUnavailable, "gagal baca heartbeat", err)
	}

	st := &SiteStatus{
		SchoolID:    schoolID,
		State:       s.Classify(row),
		HealthScore: s.HealthScore(row),
		Heartbeat:   row,
	}
	if row != nil {
		st.ErrorRate = row.ErrorRate()
	}
	return st, nil
}

type FleetSummary struct {
	Sites          []SiteStatus `json:"sites"`
	TotalSites     int          `json:"total_sites"`
	Online         int          `json:"online"`
	Warning        int          `json:"warning"`
	Offline        int          `json:"offline"`
	NeverConnected int          `json:"never_connected"`
	AvgHealthScore float64      `json:"avg_health_score"`
}

// FleetStatus mengagregasi kondisi seluruh site aktif.
func (s *MonitorService) FleetStatus(ctx context.Context) (*FleetSummary, error) {
	var schools []schoolModel.SchoolModel
	if err := s.DB.WithContext(ctx).
		Where("school_is_active = ?", true).
		Find(&schools).Error; err != nil {
		return nil, errs.Wrap(errs.KindDependencyUnavailable, "gagal baca schools", err)
	}

	var beats []hbModel.SyncHeartbeatModel
	if err := s.DB.WithContext(ctx).Find(&beats).Error; err != nil {
		return nil, errs.Wrap(errs.KindDependencyUnavailable, "gagal baca heartbeats", err)
	}
	bySchool := make(map[uuid.UUID]*hbModel.SyncHeartbeatModel, len(beats))
	for i := range beats {
		bySchool[beats[i].SyncHeartbeatSchoolID] = &beats[i]
	}

	sum := &FleetSummary{TotalSites: len(schools)}
	totalScore := 0
	for _, sc := range schools {
		hb := bySchool[sc.SchoolID]
		st := SiteStatus{
			SchoolID:    sc.SchoolID,
			State:       s.Classify(hb),
			HealthScore: s.HealthScore(hb),
			Heartbeat:   hb,
		}
		if hb != nil {
			st.ErrorRate = hb.ErrorRate()
		}
		sum.Sites = append(sum.Sites, st)
		totalScore += st.HealthScore

		switch st.State {
		case StateOnline:
			sum.Online++
		case StateWarning:
			sum.Warning++
		case StateOffline:
			sum.Offline++
		case StateNeverConnected:
			sum.NeverConnected++
		}
	}
	if len(schools) > 0 {
		sum.AvgHealthScore = float64(totalScore) / float64(len(schools))
	}
	return sum, nil
}
