// file: internals/route/index.go
package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"absensiku_backend/internals/configs"
	eventRoute "absensiku_backend/internals/features/attendance/events/route"
	eventService "absensiku_backend/internals/features/attendance/events/service"
	notifService "absensiku_backend/internals/features/attendance/notifications/service"
	"absensiku_backend/internals/features/attendance/notifications/transport"
	guardianRoute "absensiku_backend/internals/features/school/guardians/route"
	studentRoute "absensiku_backend/internals/features/school/students/route"
	hbRoute "absensiku_backend/internals/features/sync/heartbeats/route"
	"absensiku_backend/internals/features/sync/identity"
	reconcileRoute "absensiku_backend/internals/features/sync/reconcile/route"
	"absensiku_backend/internals/middlewares"
	authagent "absensiku_backend/internals/middlewares/auth_agent"
	authuser "absensiku_backend/internals/middlewares/auth_user"
)

// SetupRoutes merakit dua permukaan API:
//   /api/a — agent on-prem (JWT agent, rate limit lebih longgar karena
//            heartbeat + batch sync periodik)
//   /api/u — dashboard user (JWT user)
func SetupRoutes(app *fiber.App, db *gorm.DB) {
	// Transport notifikasi: nil = channel tidak tersedia, dispatcher
	// menandai channel itu sebagai not-attempted.
	emailSender := transport.NewSmtpEmailSender(
		configs.SmtpHost, configs.SmtpPort, configs.SmtpUser, configs.SmtpPass, configs.SmtpFrom,
	)
	smsSender := transport.NewSmsGateway(
		configs.SmsGatewayURL, configs.SmsGatewayKey, configs.SmsSenderID,
	)

	dispatcher := notifService.NewDispatcherService(nilIfEmptyEmail(emailSender), nilIfEmptySms(smsSender))

	var guard eventService.DispatchGuard
	if g := eventService.NewRedisDispatchGuard(configs.RedisAddr, configs.RedisPassword); g != nil {
		guard = g
	}

	pipeline := eventService.NewPipelineService(db, dispatcher, guard)

	var identitySrc identity.Source
	if src := identity.NewHTTPSource(configs.IdentitySourceURL, configs.IdentitySourceKey); src != nil {
		identitySrc = src
	}

	/* ===== Agent surface ===== */
	agentAPI := app.Group("/api/a",
		authagent.AgentJWT(authagent.AgentJWTOpts{Secret: configs.AgentJWTSecret}),
		middlewares.AgentRateLimiter(),
	)
	eventRoute.AttendanceEventAgentRoutes(agentAPI, db, pipeline)
	hbRoute.SyncHeartbeatAgentRoutes(agentAPI, db)
	reconcileRoute.ReconcileAgentRoutes(agentAPI, db, identitySrc)

	/* ===== User surface ===== */
	userAPI := app.Group("/api/u",
		authuser.AuthJWT(authuser.AuthJWTOpts{Secret: configs.JWTSecret, AllowCookieFallback: true}),
	)
	eventRoute.AttendanceEventUserRoutes(userAPI, db, pipeline)
	hbRoute.SyncHeartbeatUserRoutes(userAPI, db)
	reconcileRoute.ReconcileUserRoutes(userAPI, db, identitySrc)
	studentRoute.StudentUserRoutes(userAPI, db)
	guardianRoute.GuardianUserRoutes(userAPI, db)
}

// Interface bernilai pointer-nil bukan interface nil; konversi eksplisit
// supaya pengecekan `d.Email == nil` di dispatcher tetap benar.
func nilIfEmptyEmail(s *transport.SmtpEmailSender) transport.EmailSender {
	if s == nil {
		return nil
	}
	return s
}

func nilIfEmptySms(s *transport.SmsGateway) transport.SmsSender {
	if s == nil {
		return nil
	}
	return s
}
