//go:build integration

package service

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	guardianModel "absensiku_backend/internals/features/school/guardians/model"
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
		&guardianModel.GuardianContactModel{},
	))
	return db
}

func seedSchool(t *testing.T, db *gorm.DB) *schoolModel.SchoolModel {
	sc := schoolModel.SchoolModel{SchoolName: "SD Test Reconcile"}
	require.NoError(t, db.Create(&sc).Error)
	t.Cleanup(func() {
		db.Unscoped().Where("guardian_contact_school_id = ?", sc.SchoolID).Delete(&guardianModel.GuardianContactModel{})
		db.Unscoped().Where("student_school_id = ?", sc.SchoolID).Delete(&studentModel.StudentModel{})
		db.Unscoped().Delete(&sc)
	})
	return &sc
}

func TestReconcileCreatesStudentAndContact(t *testing.T) {
	db := getTestDB(t)
	sc := seedSchool(t, db)
	svc := NewReconcileService(db)
	ctx := context.Background()

	rec := IdentityRecord{
		IdentityExternalID: 42,
		IdentityName:       "Ama Owusu",
		IdentityPhones:     []string{"+233555"},
	}

	contact, err := svc.Reconcile(ctx, rec, sc.SchoolID, ReconcileOpts{AutoCreate: true})
	require.NoError(t, err)
	assert.Nil(t, contact.GuardianContactEmail)
	assert.Equal(t, "+233555", *contact.GuardianContactPhone)

	// student ikut terbuat, tepat satu
	var students []studentModel.StudentModel
	require.NoError(t, db.Where("student_school_id = ? AND student_name = ?", sc.SchoolID, "Ama Owusu").Find(&students).Error)
	require.Len(t, students, 1)
	assert.True(t, students[0].StudentIsActive)
}

func TestReconcileNonDestructiveMerge(t *testing.T) {
	db := getTestDB(t)
	sc := seedSchool(t, db)
	svc := NewReconcileService(db)
	ctx := context.Background()

	first := IdentityRecord{
		IdentityName:  "Yaw Boateng",
		IdentityEmail: strPtr("yaw@example.com"),
	}
	c1, err := svc.Reconcile(ctx, first, sc.SchoolID, ReconcileOpts{AutoCreate: true})
	require.NoError(t, err)
	require.Equal(t, "yaw@example.com", *c1.GuardianContactEmail)
	require.Nil(t, c1.GuardianContactPhone)

	// sumber baru: email null, phone baru → email lama harus bertahan
	second := IdentityRecord{
		IdentityName:   "Yaw Boateng",
		IdentityPhones: []string{"+233999"},
	}
	c2, err := svc.Reconcile(ctx, second, sc.SchoolID, ReconcileOpts{AutoCreate: true})
	require.NoError(t, err)
	assert.Equal(t, c1.GuardianContactID, c2.GuardianContactID)
	assert.Equal(t, "yaw@example.com", *c2.GuardianContactEmail)
	assert.Equal(t, "+233999", *c2.GuardianContactPhone)

	// tetap satu baris kontak untuk student tsb
	var count int64
	require.NoError(t, db.Model(&guardianModel.GuardianContactModel{}).
		Where("guardian_contact_student_id = ?", c1.GuardianContactStudentID).
		Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestReconcileLookupOnlyNotFound(t *testing.T) {
	db := getTestDB(t)
	sc := seedSchool(t, db)
	svc := NewReconcileService(db)

	_, err := svc.Reconcile(context.Background(),
		IdentityRecord{IdentityName: "Tidak Ada"},
		sc.SchoolID,
		ReconcileOpts{AutoCreate: false},
	)
	require.Error(t, err)
	assert.Equal(t, errs.KindNotFound, errs.KindOf(err))
}

func TestReconcileRequireChannel(t *testing.T) {
	db := getTestDB(t)
	sc := seedSchool(t, db)
	svc := NewReconcileService(db)

	_, err := svc.Reconcile(context.Background(),
		IdentityRecord{IdentityName: "Tanpa Kontak"},
		sc.SchoolID,
		ReconcileOpts{AutoCreate: true, RequireChannel: true},
	)
	require.Error(t, err)
	assert.Equal(t, errs.KindValidation, errs.KindOf(err))
}
