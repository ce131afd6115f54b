// file: internals/features/attendance/notifications/service/dispatcher_service.go
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	eventModel "absensiku_backend/internals/features/attendance/events/model"
	"absensiku_backend/internals/features/attendance/notifications/transport"
	guardianModel "absensiku_backend/internals/features/school/guardians/model"
	"absensiku_backend/internals/configs"
)

/* =========================
   Outcome types
========================= */

type ChannelOutcome struct {
	Attempted bool    `json:"attempted"`
	Succeeded bool    `json:"succeeded"`
	Error     *string `json:"error,omitempty"`
	Reason    *string `json:"reason,omitempty"` // kenapa channel tidak di-attempt
}

type NotificationOutcome struct {
	Attempted bool           `json:"attempted"` // attempted(email) OR attempted(sms)
	Email     ChannelOutcome `json:"email"`
	Sms       ChannelOutcome `json:"sms"`
}

// Skipped: outcome untuk event yang tidak bisa dinotifikasi sama sekali
// (mis. kontak gagal di-resolve) — attempted=false, bukan failure.
func Skipped(reason string) NotificationOutcome {
	return NotificationOutcome{
		Email: ChannelOutcome{Reason: &reason},
		Sms:   ChannelOutcome{Reason: &reason},
	}
}

/* =========================
   Dispatcher
========================= */

const DefaultChannelTimeout = 10 * time.Second

type DispatcherService struct {
	Email transport.EmailSender // nil = channel tidak tersedia
	Sms   transport.SmsSender

	// Timeout per panggilan transport; channel lambat tidak boleh
	// menahan channel sebelahnya atau orchestrator.
	ChannelTimeout time.Duration
}

func NewDispatcherService(email transport.EmailSender, sms transport.SmsSender) *DispatcherService {
	return &DispatcherService{
		Email:          email,
		Sms:            sms,
		ChannelTimeout: configs.GetEnvDuration("NOTIFY_CHANNEL_TIMEOUT", DefaultChannelTimeout),
	}
}

// Dispatch menjalankan kedua channel secara independen dan paralel.
// Tidak pernah mengembalikan error: kegagalan transport ditangkap per
// channel sebagai teks. Tidak ada retry di layer ini.
func (d *DispatcherService) Dispatch(ctx context.Context, event *eventModel.AttendanceEventModel, contact *guardianModel.GuardianContactModel, studentName string) NotificationOutcome {
	if contact == nil {
		return Skipped("guardian contact tidak ter-resolve")
	}

	subject, body := composeMessage(event, studentName)

	var out NotificationOutcome
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		switch {
		case contact.GuardianContactEmail == nil || *contact.GuardianContactEmail == "":
			out.Email = notAttempted("kontak tidak punya email")
		case d.Email == nil:
			out.Email = notAttempted("transport email tidak dikonfigurasi")
		default:
			out.Email = d.attempt(ctx, func(cctx context.Context) error {
				return d.Email.SendEmail(cctx, *contact.GuardianContactEmail, subject, body)
			})
		}
	}()

	go func() {
		defer wg.Done()
		switch {
		case contact.GuardianContactPhone == nil || *contact.GuardianContactPhone == "":
			out.Sms = notAttempted("kontak tidak punya phone")
		case d.Sms == nil:
			out.Sms = notAttempted("transport sms tidak dikonfigurasi")
		default:
			out.Sms = d.attempt(ctx, func(cctx context.Context) error {
				return d.Sms.SendSms(cctx, *contact.GuardianContactPhone, body)
			})
		}
	}()

	wg.Wait()
	out.Attempted = out.Email.Attempted || out.Sms.Attempted
	return out
}

func notAttempted(reason string) ChannelOutcome {
	return ChannelOutcome{Attempted: false, Reason: &reason}
}

// attempt membungkus satu panggilan transport: timeout sendiri + recover,
// supaya panic/error transport tidak merembet ke channel sebelah.
func (d *DispatcherService) attempt(ctx context.Context, send func(context.Context) error) (out ChannelOutcome) {
	out.Attempted = true

	timeout := d.ChannelTimeout
	if timeout <= 0 {
		timeout = DefaultChannelTimeout
	}
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("transport panic: %v", r)
			}
		}()
		done <- send(cctx)
	}()

	var err error
	select {
	case err = <-done:
	case <-cctx.Done():
		err = cctx.Err()
	}

	if err != nil {
		msg := err.Error()
		out.Error = &msg
		return out
	}
	out.Succeeded = true
	return out
}

func composeMessage(event *eventModel.AttendanceEventModel, studentName string) (subject, body string) {
	when := event.AttendanceEventCapturedAt.Format("02 Jan 2006 15:04")
	if event.AttendanceEventDirection == eventModel.DirectionIn {
		subject = fmt.Sprintf("Kehadiran: %s sudah tiba di sekolah", studentName)
		body = fmt.Sprintf("%s tercatat MASUK pada %s.", studentName, when)
	} else {
		subject = fmt.Sprintf("Kehadiran: %s sudah pulang dari sekolah", studentName)
		body = fmt.Sprintf("%s tercatat KELUAR pada %s.", studentName, when)
	}
	return subject, body
}
