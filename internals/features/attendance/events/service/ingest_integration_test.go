//go:build integration

package service

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	eventModel "absensiku_backend/internals/features/attendance/events/model"
	schoolModel "absensiku_backend/internals/features/school/schools/model"
	studentModel "absensiku_backend/internals/features/school/students/model"
	"absensiku_backend/internals/helpers/errs"
)

func getTestDB(t *testing.T) *gorm.DB {
	getenv := func(k, def string) string {
		if v := os.Getenv(k); v != "" {
			return v
		}
		return def
	}
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		getenv("TEST_DB_USER", "postgres"),
		getenv("TEST_DB_PASSWORD", "postgres"),
		getenv("TEST_DB_HOST", "localhost"),
		getenv("TEST_DB_PORT", "5432"),
		getenv("TEST_DB_NAME", "absensiku_test"),
		getenv("TEST_DB_SSLMODE", "disable"),
	)

	db, err := gorm.Open(postgres.New(postgres.Config{DSN: dsn, PreferSimpleProtocol: true}), &gorm.Config{})
	if err != nil {
		t.Skipf("Skipping integration test: cannot connect to database: %v", err)
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil || sqlDB.Ping() != nil {
		t.Skipf("Skipping integration test: cannot ping database")
		return nil
	}

	require.NoError(t, db.AutoMigrate(
		&schoolModel.SchoolModel{},
		&studentModel.StudentModel{},
		&eventModel.AttendanceEventModel{},
	))
	return db
}

func seedStudent(t *testing.T, db *gorm.DB) (*schoolModel.SchoolModel, *studentModel.StudentModel) {
	sc := schoolModel.SchoolModel{SchoolName: "SD Test Ingest"}
	require.NoError(t, db.Create(&sc).Error)
	st := studentModel.StudentModel{
		StudentSchoolID: sc.SchoolID,
		StudentName:     "Kofi Mensah",
		StudentIsActive: true,
	}
	require.NoError(t, db.Create(&st).Error)
	t.Cleanup(func() {
		db.Unscoped().Where("attendance_event_school_id = ?", sc.SchoolID).Delete(&eventModel.AttendanceEventModel{})
		db.Unscoped().Where("student_school_id = ?", sc.SchoolID).Delete(&studentModel.StudentModel{})
		db.Unscoped().Delete(&sc)
	})
	return &sc, &st
}

// Dua submit untuk scan fisik yang sama harus jadi satu baris dengan id sama.
func TestIngestIdempotent(t *testing.T) {
	db := getTestDB(t)
	sc, st := seedStudent(t, db)
	svc := NewIngestService(db)
	ctx := context.Background()

	ts := time.Date(2024, 3, 4, 7, 30, 0, 0, time.UTC)

	ev1, created1, err := svc.Ingest(ctx, sc.SchoolID, st.StudentID, eventModel.DirectionIn, &ts)
	require.NoError(t, err)
	assert.True(t, created1)

	ev2, created2, err := svc.Ingest(ctx, sc.SchoolID, st.StudentID, eventModel.DirectionIn, &ts)
	require.NoError(t, err)
	assert.False(t, created2)
	assert.Equal(t, ev1.AttendanceEventID, ev2.AttendanceEventID)

	var count int64
	require.NoError(t, db.Model(&eventModel.AttendanceEventModel{}).
		Where("attendance_event_school_id = ? AND attendance_event_student_id = ?", sc.SchoolID, st.StudentID).
		Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

// capture_at beda = scan beda, walau student dan arah sama.
func TestIngestDistinctTimestamps(t *testing.T) {
	db := getTestDB(t)
	sc, st := seedStudent(t, db)
	svc := NewIngestService(db)
	ctx := context.Background()

	t1 := time.Date(2024, 3, 4, 7, 30, 0, 0, time.UTC)
	t2 := t1.Add(6 * time.Hour)

	_, created1, err := svc.Ingest(ctx, sc.SchoolID, st.StudentID, eventModel.DirectionIn, &t1)
	require.NoError(t, err)
	_, created2, err := svc.Ingest(ctx, sc.SchoolID, st.StudentID, eventModel.DirectionOut, &t2)
	require.NoError(t, err)
	assert.True(t, created1)
	assert.True(t, created2)
}

func TestIngestRejectsInactiveStudent(t *testing.T) {
	db := getTestDB(t)
	sc, st := seedStudent(t, db)
	require.NoError(t, db.Model(&studentModel.StudentModel{}).
		Where("student_id = ?", st.StudentID).
		Update("student_is_active", false).Error)

	svc := NewIngestService(db)
	_, _, err := svc.Ingest(context.Background(), sc.SchoolID, st.StudentID, eventModel.DirectionIn, nil)
	require.Error(t, err)
	assert.Equal(t, errs.KindNotFound, errs.KindOf(err))
}

// Event milik school lain tidak boleh terbaca lewat id-nya.
func TestGetEventScopedToSchool(t *testing.T) {
	db := getTestDB(t)
	sc, st := seedStudent(t, db)
	svc := NewIngestService(db)
	ctx := context.Background()

	ev, _, err := svc.Ingest(ctx, sc.SchoolID, st.StudentID, eventModel.DirectionIn, nil)
	require.NoError(t, err)

	other := schoolModel.SchoolModel{SchoolName: "SD Test Lain"}
	require.NoError(t, db.Create(&other).Error)
	t.Cleanup(func() { db.Unscoped().Delete(&other) })

	_, err = svc.GetEvent(ctx, other.SchoolID, ev.AttendanceEventID)
	require.Error(t, err)
	assert.Equal(t, errs.KindNotFound, errs.KindOf(err))

	got, err := svc.GetEvent(ctx, sc.SchoolID, ev.AttendanceEventID)
	require.NoError(t, err)
	assert.Equal(t, ev.AttendanceEventID, got.AttendanceEventID)
}

func TestMarkProcessedPersists(t *testing.T) {
	db := getTestDB(t)
	sc, st := seedStudent(t, db)
	svc := NewIngestService(db)
	ctx := context.Background()

	ev, _, err := svc.Ingest(ctx, sc.SchoolID, st.StudentID, eventModel.DirectionIn, nil)
	require.NoError(t, err)

	now := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, svc.MarkProcessed(ctx, ev.AttendanceEventID, now, []byte(`{"attempted":true}`)))

	got, err := svc.GetEvent(ctx, sc.SchoolID, ev.AttendanceEventID)
	require.NoError(t, err)
	require.NotNil(t, got.AttendanceEventProcessedAt)
	assert.JSONEq(t, `{"attempted":true}`, string(got.AttendanceEventNotifyResult))
}
