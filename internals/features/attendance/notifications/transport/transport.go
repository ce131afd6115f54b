// file: internals/features/attendance/notifications/transport/transport.go
package transport

import "context"

// Dua capability independen. Implementasi konkret (gateway SMS, SMTP)
// adalah kolaborator eksternal; pipeline hanya peduli sukses/gagal.
// Instance nil = channel tidak dikonfigurasi (bukan error).

type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

type SmsSender interface {
	SendSms(ctx context.Context, to, body string) error
}
