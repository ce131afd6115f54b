// file: internals/helpers/errs/errs.go
package errs

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
)

/* =========================
   Error kinds (taksonomi)
========================= */

type Kind string

const (
	KindNotFound              Kind = "not_found"              // student/school yang dirujuk tidak ada
	KindValidation            Kind = "validation"             // input wajib hilang / tidak valid
	KindConflictIgnored       Kind = "conflict_ignored"       // duplikat ingest → bukan error, no-op sukses
	KindTransport             Kind = "transport"              // channel notifikasi gagal; tidak pernah dipropagasi
	KindDependencyUnavailable Kind = "dependency_unavailable" // store/upstream tidak bisa dihubungi
)

type AppError struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error { return e.Err }

func New(kind Kind, message string) *AppError {
	return &AppError{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *AppError {
	return &AppError{Kind: kind, Message: message, Err: err}
}

func NotFound(message string) *AppError   { return New(KindNotFound, message) }
func Validation(message string) *AppError { return New(KindValidation, message) }

/* =========================
   Inspectors
========================= */

func KindOf(err error) Kind {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return ""
}

func IsKind(err error, kind Kind) bool { return KindOf(err) == kind }

// IsUniqueViolation: deteksi pelanggaran unique Postgres (SQLSTATE 23505),
// kompatibel untuk lib/pq maupun pgx yang dibungkus gorm.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "sqlstate 23505") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint")
}

/* =========================
   HTTP mapping
========================= */

func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindNotFound:
		return fiber.StatusNotFound
	case KindValidation:
		return fiber.StatusBadRequest
	case KindConflictIgnored:
		return fiber.StatusOK // duplikat di-treat sebagai sukses no-op
	case KindDependencyUnavailable:
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}
