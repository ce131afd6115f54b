package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	hbModel "absensiku_backend/internals/features/sync/heartbeats/model"
)

func newTestMonitor(now time.Time) *MonitorService {
	return &MonitorService{
		OnlineWithin:  DefaultOnlineWithin,
		WarningWithin: DefaultWarningWithin,
		Now:           func() time.Time { return now },
	}
}

func hbAt(last time.Time, synced, errors int64) *hbModel.SyncHeartbeatModel {
	return &hbModel.SyncHeartbeatModel{
		SyncHeartbeatStatus:          hbModel.AgentStatusRunning,
		SyncHeartbeatLastHeartbeatAt: last,
		SyncHeartbeatTotalSynced:     synced,
		SyncHeartbeatTotalErrors:     errors,
	}
}

func TestClassifyThresholds(t *testing.T) {
	now := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	s := newTestMonitor(now)

	assert.Equal(t, StateOnline, s.Classify(hbAt(now.Add(-9*time.Minute), 0, 0)))
	assert.Equal(t, StateWarning, s.Classify(hbAt(now.Add(-15*time.Minute), 0, 0)))
	assert.Equal(t, StateOffline, s.Classify(hbAt(now.Add(-45*time.Minute), 0, 0)))
	assert.Equal(t, StateNeverConnected, s.Classify(nil))

	// batas persis 10m bukan online lagi
	assert.Equal(t, StateWarning, s.Classify(hbAt(now.Add(-10*time.Minute), 0, 0)))
	assert.Equal(t, StateOffline, s.Classify(hbAt(now.Add(-30*time.Minute), 0, 0)))
}

func TestErrorRate(t *testing.T) {
	assert.Equal(t, float64(0), hbAt(time.Now(), 0, 0).ErrorRate())
	assert.InDelta(t, 0.5, hbAt(time.Now(), 10, 10).ErrorRate(), 1e-9)
	assert.InDelta(t, 0.2, hbAt(time.Now(), 80, 20).ErrorRate(), 1e-9)
}

func TestHealthScore(t *testing.T) {
	now := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	s := newTestMonitor(now)

	// online, tanpa error
	assert.Equal(t, 100, s.HealthScore(hbAt(now.Add(-1*time.Minute), 100, 0)))

	// online, error rate > 10%
	assert.Equal(t, 70, s.HealthScore(hbAt(now.Add(-1*time.Minute), 80, 20)))

	// warning + error rate > 5%
	assert.Equal(t, 65, s.HealthScore(hbAt(now.Add(-15*time.Minute), 93, 7)))

	// offline + error rate > 1%
	assert.Equal(t, 45, s.HealthScore(hbAt(now.Add(-2*time.Hour), 98, 2)))

	// never connected
	assert.Equal(t, 70, s.HealthScore(nil))
}

// Menambah totalErrors (synced tetap) tidak pernah menaikkan skor.
func TestHealthScoreMonotonicOnErrors(t *testing.T) {
	now := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	s := newTestMonitor(now)

	prev := 101
	for errors := int64(0); errors <= 50; errors++ {
		score := s.HealthScore(hbAt(now.Add(-1*time.Minute), 100, errors))
		assert.LessOrEqual(t, score, prev, "errors=%d", errors)
		prev = score
	}
}

func TestHealthScoreClamped(t *testing.T) {
	now := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	s := newTestMonitor(now)

	// offline (−50) + error rate tinggi (−30) → 20, masih dalam [0,100]
	score := s.HealthScore(hbAt(now.Add(-2*time.Hour), 0, 100))
	assert.GreaterOrEqual(t, score, 0)
	assert.LessOrEqual(t, score, 100)
	assert.Equal(t, 20, score)
}
