// file: internals/middlewares/auth_agent/agent_jwt.go
package authagent

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

const (
	LocAgentSchoolID = "agent_school_id"
	LocAgentID       = "agent_id"
)

type AgentJWTOpts struct {
	Secret string
}

// AgentJWT memverifikasi token agent on-prem (HS256, shared secret per deployment).
// Claim wajib: scope="agent" dan school_id (UUID) sebagai scope site.
func AgentJWT(o AgentJWTOpts) fiber.Handler {
	secret := strings.TrimSpace(o.Secret)

	return func(c *fiber.Ctx) error {
		if secret == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Agent auth belum dikonfigurasi")
		}

		raw := ""
		if authz := strings.TrimSpace(c.Get(fiber.HeaderAuthorization)); strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			raw = strings.TrimSpace(authz[7:])
		}
		if raw == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
		}

		tok, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
			}
			return []byte(secret), nil
		})
		if err != nil || !tok.Valid {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid token")
		}

		claims, ok := tok.Claims.(jwt.MapClaims)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid token claims")
		}

		if scope, _ := claims["scope"].(string); scope != "agent" {
			return fiber.NewError(fiber.StatusForbidden, "Token bukan token agent")
		}

		sid, _ := claims["school_id"].(string)
		schoolID, err := uuid.Parse(strings.TrimSpace(sid))
		if err != nil || schoolID == uuid.Nil {
			return fiber.NewError(fiber.StatusForbidden, "Claim school_id tidak valid")
		}
		c.Locals(LocAgentSchoolID, schoolID)

		if aid, _ := claims["sub"].(string); aid != "" {
			c.Locals(LocAgentID, aid)
		}

		return c.Next()
	}
}

// SchoolIDFromToken mengambil scope site hasil AgentJWT.
func SchoolIDFromToken(c *fiber.Ctx) (uuid.UUID, error) {
	if v, ok := c.Locals(LocAgentSchoolID).(uuid.UUID); ok && v != uuid.Nil {
		return v, nil
	}
	return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "Scope school tidak ditemukan di token")
}
