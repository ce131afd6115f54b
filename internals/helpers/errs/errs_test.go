package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	err := NotFound("student tidak ditemukan")
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.True(t, IsKind(err, KindNotFound))

	wrapped := fmt.Errorf("pipeline: %w", err)
	assert.Equal(t, KindNotFound, KindOf(wrapped))

	assert.Equal(t, Kind(""), KindOf(errors.New("plain")))
	assert.Equal(t, Kind(""), KindOf(nil))
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, fiber.StatusNotFound, HTTPStatus(NotFound("x")))
	assert.Equal(t, fiber.StatusBadRequest, HTTPStatus(Validation("x")))
	assert.Equal(t, fiber.StatusOK, HTTPStatus(New(KindConflictIgnored, "dup")))
	assert.Equal(t, fiber.StatusServiceUnavailable, HTTPStatus(New(KindDependencyUnavailable, "db down")))
	assert.Equal(t, fiber.StatusInternalServerError, HTTPStatus(errors.New("plain")))
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, IsUniqueViolation(errors.New(`ERROR: duplicate key value violates unique constraint "uq_attendance_events_scan" (SQLSTATE 23505)`)))
	assert.False(t, IsUniqueViolation(errors.New("connection refused")))
	assert.False(t, IsUniqueViolation(nil))
}
