package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	eventModel "absensiku_backend/internals/features/attendance/events/model"
	notifService "absensiku_backend/internals/features/attendance/notifications/service"
	guardianModel "absensiku_backend/internals/features/school/guardians/model"
	studentModel "absensiku_backend/internals/features/school/students/model"
	"absensiku_backend/internals/helpers/errs"
)

/* ===================== fakes ===================== */

type fakeIngestor struct {
	student       *studentModel.StudentModel
	studentErr    error
	event         *eventModel.AttendanceEventModel
	created       bool
	ingestErr     error
	markErr       error
	markedWith    []byte
	markCalled    int
	getEventValue  *eventModel.AttendanceEventModel
	getEventErr    error
	getEventSchool uuid.UUID
}

func (f *fakeIngestor) ActiveStudent(ctx context.Context, schoolID, studentID uuid.UUID) (*studentModel.StudentModel, error) {
	if f.studentErr != nil {
		return nil, f.studentErr
	}
	return f.student, nil
}

func (f *fakeIngestor) Ingest(ctx context.Context, schoolID, studentID uuid.UUID, direction eventModel.AttendanceDirection, capturedAt *time.Time) (*eventModel.AttendanceEventModel, bool, error) {
	if f.ingestErr != nil {
		return nil, false, f.ingestErr
	}
	return f.event, f.created, nil
}

func (f *fakeIngestor) MarkProcessed(ctx context.Context, eventID uuid.UUID, processedAt time.Time, notifyResult []byte) error {
	f.markCalled++
	f.markedWith = notifyResult
	return f.markErr
}

func (f *fakeIngestor) GetEvent(ctx context.Context, schoolID, eventID uuid.UUID) (*eventModel.AttendanceEventModel, error) {
	f.getEventSchool = schoolID
	if f.getEventErr != nil {
		return nil, f.getEventErr
	}
	return f.getEventValue, nil
}

type fakeResolver struct {
	contact *guardianModel.GuardianContactModel
	err     error
}

func (f *fakeResolver) ResolveForStudent(ctx context.Context, studentID uuid.UUID) (*guardianModel.GuardianContactModel, error) {
	return f.contact, f.err
}

type fakeNotifier struct {
	outcome notifService.NotificationOutcome
	calls   int
}

func (f *fakeNotifier) Dispatch(ctx context.Context, ev *eventModel.AttendanceEventModel, contact *guardianModel.GuardianContactModel, studentName string) notifService.NotificationOutcome {
	f.calls++
	return f.outcome
}

type fakeGuard struct {
	allow    bool
	acquired int
	released int
}

func (f *fakeGuard) TryAcquire(ctx context.Context, eventID uuid.UUID) bool {
	f.acquired++
	return f.allow
}

func (f *fakeGuard) Release(ctx context.Context, eventID uuid.UUID) { f.released++ }

/* ===================== helpers ===================== */

func strPtr(s string) *string { return &s }

func baseFixtures() (*fakeIngestor, *fakeResolver, *fakeNotifier) {
	studentID := uuid.New()
	ing := &fakeIngestor{
		student: &studentModel.StudentModel{
			StudentID:   studentID,
			StudentName: "Ama Owusu",
		},
		event: &eventModel.AttendanceEventModel{
			AttendanceEventID:         uuid.New(),
			AttendanceEventStudentID:  studentID,
			AttendanceEventDirection:  eventModel.DirectionIn,
			AttendanceEventCapturedAt: time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC),
		},
		created: true,
	}
	res := &fakeResolver{
		contact: &guardianModel.GuardianContactModel{
			GuardianContactStudentID: studentID,
			GuardianContactPhone:     strPtr("+233555"),
		},
	}
	not := &fakeNotifier{
		outcome: notifService.NotificationOutcome{
			Attempted: true,
			Sms:       notifService.ChannelOutcome{Attempted: true, Succeeded: true},
		},
	}
	return ing, res, not
}

func newPipeline(ing *fakeIngestor, res *fakeResolver, not *fakeNotifier, guard DispatchGuard) *PipelineService {
	return &PipelineService{
		Ingestor:   ing,
		Reconciler: res,
		Dispatcher: not,
		Guard:      guard,
		Now:        func() time.Time { return time.Date(2024, 1, 1, 8, 0, 5, 0, time.UTC) },
	}
}

/* ===================== tests ===================== */

func TestPipelineHappyPath(t *testing.T) {
	ing, res, not := baseFixtures()
	p := newPipeline(ing, res, not, nil)

	result, err := p.Process(context.Background(), uuid.New(), ing.student.StudentID, eventModel.DirectionIn, nil)
	require.NoError(t, err)

	assert.True(t, result.Created)
	require.NotNil(t, result.Outcome)
	assert.True(t, result.Outcome.Sms.Succeeded)
	assert.Equal(t, 1, not.calls)
	assert.Equal(t, 1, ing.markCalled)
	assert.Contains(t, string(ing.markedWith), `"attempted":true`)
	assert.NotNil(t, result.Event.AttendanceEventProcessedAt)
}

// Gagal ingest = fatal; dispatch tidak boleh terjadi.
func TestPipelineIngestFailureAborts(t *testing.T) {
	ing, res, not := baseFixtures()
	ing.studentErr = errs.NotFound("student aktif tidak ditemukan di school ini")
	p := newPipeline(ing, res, not, nil)

	_, err := p.Process(context.Background(), uuid.New(), uuid.New(), eventModel.DirectionIn, nil)
	require.Error(t, err)
	assert.Equal(t, errs.KindNotFound, errs.KindOf(err))
	assert.Equal(t, 0, not.calls)
	assert.Equal(t, 0, ing.markCalled)
}

// Kontak gagal di-resolve → event tetap tercatat, outcome skipped dengan alasan.
func TestPipelineReconcileFailureDegrades(t *testing.T) {
	ing, res, not := baseFixtures()
	res.contact = nil
	res.err = errs.NotFound("guardian contact belum ter-rekonsiliasi untuk student ini")
	p := newPipeline(ing, res, not, nil)

	result, err := p.Process(context.Background(), uuid.New(), ing.student.StudentID, eventModel.DirectionIn, nil)
	require.NoError(t, err)

	require.NotNil(t, result.Outcome)
	assert.False(t, result.Outcome.Attempted)
	assert.False(t, result.Outcome.Email.Attempted)
	assert.False(t, result.Outcome.Sms.Attempted)
	assert.Contains(t, *result.Outcome.Email.Reason, "kontak gagal di-resolve")
	assert.Equal(t, 0, not.calls)
	assert.Equal(t, 1, ing.markCalled) // outcome tetap ditulis
}

// Duplikat yang sudah diproses tidak dinotifikasi ulang.
func TestPipelineSkipsAlreadyProcessed(t *testing.T) {
	ing, res, not := baseFixtures()
	processed := time.Date(2024, 1, 1, 8, 0, 1, 0, time.UTC)
	ing.event.AttendanceEventProcessedAt = &processed
	ing.created = false
	p := newPipeline(ing, res, not, nil)

	result, err := p.Process(context.Background(), uuid.New(), ing.student.StudentID, eventModel.DirectionIn, nil)
	require.NoError(t, err)

	assert.False(t, result.Created)
	assert.Nil(t, result.Outcome)
	assert.Equal(t, 0, not.calls)
	assert.Equal(t, 0, ing.markCalled)
}

// Gagal tulis outcome = log saja; caller tetap dapat event tersimpan.
func TestPipelineOutcomeWriteFailureIsNonFatal(t *testing.T) {
	ing, res, not := baseFixtures()
	ing.markErr = assert.AnError
	p := newPipeline(ing, res, not, nil)

	result, err := p.Process(context.Background(), uuid.New(), ing.student.StudentID, eventModel.DirectionIn, nil)
	require.NoError(t, err)
	require.NotNil(t, result.Outcome)
	assert.Nil(t, result.Event.AttendanceEventProcessedAt)
}

// Guard menolak → dispatch di-skip, tanpa error.
func TestPipelineGuardDenied(t *testing.T) {
	ing, res, not := baseFixtures()
	guard := &fakeGuard{allow: false}
	p := newPipeline(ing, res, not, guard)

	result, err := p.Process(context.Background(), uuid.New(), ing.student.StudentID, eventModel.DirectionIn, nil)
	require.NoError(t, err)
	assert.Nil(t, result.Outcome)
	assert.Equal(t, 0, not.calls)
	assert.Equal(t, 1, guard.acquired)
	assert.Equal(t, 0, guard.released)
}

func TestPipelineGuardReleasedAfterDispatch(t *testing.T) {
	ing, res, not := baseFixtures()
	guard := &fakeGuard{allow: true}
	p := newPipeline(ing, res, not, guard)

	_, err := p.Process(context.Background(), uuid.New(), ing.student.StudentID, eventModel.DirectionIn, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, not.calls)
	assert.Equal(t, 1, guard.released)
}

// Redispatch: hanya event dengan processed_at null yang dikirim ulang.
func TestRedispatchPolicy(t *testing.T) {
	ing, res, not := baseFixtures()
	ing.getEventValue = ing.event
	p := newPipeline(ing, res, not, nil)

	schoolID := uuid.New()
	result, err := p.Redispatch(context.Background(), schoolID, ing.event.AttendanceEventID)
	require.NoError(t, err)
	require.NotNil(t, result.Outcome)
	assert.Equal(t, 1, not.calls)
	assert.Equal(t, schoolID, ing.getEventSchool) // lookup selalu scoped ke school caller

	// kedua kali: sudah processed → no-op
	result2, err := p.Redispatch(context.Background(), schoolID, ing.event.AttendanceEventID)
	require.NoError(t, err)
	assert.Nil(t, result2.Outcome)
	assert.Equal(t, 1, not.calls)
}
