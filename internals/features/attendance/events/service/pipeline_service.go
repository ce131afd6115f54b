// file: internals/features/attendance/events/service/pipeline_service.go
package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	eventModel "absensiku_backend/internals/features/attendance/events/model"
	notifService "absensiku_backend/internals/features/attendance/notifications/service"
	guardianModel "absensiku_backend/internals/features/school/guardians/model"
	studentModel "absensiku_backend/internals/features/school/students/model"
	reconcileService "absensiku_backend/internals/features/sync/reconcile/service"
)

/* =========================
   Dependencies (interface, supaya bisa di-fake di test)
========================= */

type EventIngestor interface {
	ActiveStudent(ctx context.Context, schoolID, studentID uuid.UUID) (*studentModel.StudentModel, error)
	Ingest(ctx context.Context, schoolID, studentID uuid.UUID, direction eventModel.AttendanceDirection, capturedAt *time.Time) (*eventModel.AttendanceEventModel, bool, error)
	MarkProcessed(ctx context.Context, eventID uuid.UUID, processedAt time.Time, notifyResult []byte) error
	GetEvent(ctx context.Context, schoolID, eventID uuid.UUID) (*eventModel.AttendanceEventModel, error)
}

type ContactResolver interface {
	ResolveForStudent(ctx context.Context, studentID uuid.UUID) (*guardianModel.GuardianContactModel, error)
}

type Notifier interface {
	Dispatch(ctx context.Context, event *eventModel.AttendanceEventModel, contact *guardianModel.GuardianContactModel, studentName string) notifService.NotificationOutcome
}

/* =========================
   Pipeline
========================= */

// PipelineService mengorkestrasi: ingest → resolve kontak → dispatch →
// tulis balik outcome. State machine per event:
// Captured → Ingested → ContactResolved → Notified → Recorded.
type PipelineService struct {
	Ingestor   EventIngestor
	Reconciler ContactResolver
	Dispatcher Notifier
	Guard      DispatchGuard // nil = tanpa guard lintas instance

	Now func() time.Time
}

func NewPipelineService(db *gorm.DB, dispatcher Notifier, guard DispatchGuard) *PipelineService {
	return &PipelineService{
		Ingestor:   NewIngestService(db),
		Reconciler: reconcileService.NewReconcileService(db),
		Dispatcher: dispatcher,
		Guard:      guard,
		Now:        time.Now,
	}
}

type PipelineResult struct {
	Event   *eventModel.AttendanceEventModel  `json:"event"`
	Created bool                              `json:"created"`
	Outcome *notifService.NotificationOutcome `json:"outcome,omitempty"`
}

// Process menjalankan pipeline penuh untuk satu scan.
// Gagal ingest = fatal untuk call ini, tidak ada state parsial.
// Gagal resolve kontak = degradasi (outcome skipped), event tetap tercatat.
// Gagal tulis outcome = dicatat di log saja; event sudah committed.
func (p *PipelineService) Process(ctx context.Context, schoolID, studentID uuid.UUID, direction eventModel.AttendanceDirection, capturedAt *time.Time) (*PipelineResult, error) {
	student, err := p.Ingestor.ActiveStudent(ctx, schoolID, studentID)
	if err != nil {
		return nil, err
	}

	ev, created, err := p.Ingestor.Ingest(ctx, schoolID, studentID, direction, capturedAt)
	if err != nil {
		return nil, err
	}

	// Kebijakan redispatch: event yang sudah punya processed_at tidak
	// dinotifikasi ulang — resend hanya lewat Redispatch eksplisit.
	if ev.AttendanceEventProcessedAt != nil {
		return &PipelineResult{Event: ev, Created: created}, nil
	}

	outcome := p.notify(ctx, ev, student)
	return &PipelineResult{Event: ev, Created: created, Outcome: outcome}, nil
}

// Redispatch menjalankan ulang tahap notifikasi untuk event yang belum
// pernah diproses. Event dengan processed_at terisi ditolak sebagai no-op
// supaya wali tidak menerima pesan dobel.
func (p *PipelineService) Redispatch(ctx context.Context, schoolID, eventID uuid.UUID) (*PipelineResult, error) {
	ev, err := p.Ingestor.GetEvent(ctx, schoolID, eventID)
	if err != nil {
		return nil, err
	}
	if ev.AttendanceEventProcessedAt != nil {
		return &PipelineResult{Event: ev}, nil
	}

	student, err := p.Ingestor.ActiveStudent(ctx, schoolID, ev.AttendanceEventStudentID)
	if err != nil {
		return nil, err
	}

	outcome := p.notify(ctx, ev, student)
	return &PipelineResult{Event: ev, Outcome: outcome}, nil
}

func (p *PipelineService) notify(ctx context.Context, ev *eventModel.AttendanceEventModel, student *studentModel.StudentModel) *notifService.NotificationOutcome {
	if p.Guard != nil {
		if !p.Guard.TryAcquire(ctx, ev.AttendanceEventID) {
			log.Printf("[INFO] dispatch event %s di-skip: instance lain sedang memproses", ev.AttendanceEventID)
			return nil
		}
		defer p.Guard.Release(ctx, ev.AttendanceEventID)
	}

	var outcome notifService.NotificationOutcome
	contact, rerr := p.Reconciler.ResolveForStudent(ctx, student.StudentID)
	if rerr != nil {
		// Event tetap tercatat; jangan diam-diam hilang.
		outcome = notifService.Skipped("kontak gagal di-resolve: " + rerr.Error())
	} else {
		outcome = p.Dispatcher.Dispatch(ctx, ev, contact, student.StudentName)
	}

	now := p.Now()
	payload, err := json.Marshal(outcome)
	if err != nil {
		log.Printf("[ERROR] marshal notify outcome event %s: %v", ev.AttendanceEventID, err)
		payload = []byte(`{}`)
	}
	if err := p.Ingestor.MarkProcessed(ctx, ev.AttendanceEventID, now, payload); err != nil {
		// Best-effort: kegagalan tulis outcome tidak membatalkan event
		// yang sudah committed.
		log.Printf("[ERROR] tulis outcome event %s gagal: %v", ev.AttendanceEventID, err)
	} else {
		ev.AttendanceEventProcessedAt = &now
		ev.AttendanceEventNotifyResult = payload
	}
	return &outcome
}
