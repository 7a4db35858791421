package seclog

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
)

// Security audit events. Every authentication or authorization failure
// goes through here so operators can trace abuse by IP and path.

// LoginAttempt records a login attempt outcome for an email address.
func LoginAttempt(c *fiber.Ctx, email string, success bool, reason string) {
	if success {
		log.Infow("login attempt",
			"event", "login_success",
			"email", email,
			"ip", c.IP(),
			"path", c.Path(),
		)
		return
	}
	log.Warnw("login attempt",
		"event", "login_failure",
		"email", email,
		"reason", reason,
		"ip", c.IP(),
		"path", c.Path(),
	)
}

// UnauthorizedAccess records a rejected request on a protected route.
func UnauthorizedAccess(c *fiber.Ctx, reason string) {
	log.Warnw("unauthorized access",
		"event", "unauthorized_access",
		"reason", reason,
		"ip", c.IP(),
		"path", c.Path(),
		"method", c.Method(),
	)
}

// SuspiciousActivity records anomalies worth a second look, like reuse of
// a revoked token or repeated lockouts.
func SuspiciousActivity(c *fiber.Ctx, activity string, details map[string]interface{}) {
	kv := []interface{}{
		"event", "suspicious_activity",
		"activity", activity,
		"ip", c.IP(),
		"path", c.Path(),
	}
	for k, v := range details {
		kv = append(kv, k, v)
	}
	log.Warnw("suspicious activity", kv...)
}

// RateLimitExceeded records an IP tripping the brute force limiter.
func RateLimitExceeded(c *fiber.Ctx, key string) {
	log.Warnw("rate limit exceeded",
		"event", "rate_limit_exceeded",
		"key", key,
		"ip", c.IP(),
		"path", c.Path(),
	)
}

// AccountLocked records an account entering a lockout window.
func AccountLocked(c *fiber.Ctx, email string) {
	log.Warnw("account locked",
		"event", "account_locked",
		"email", email,
		"ip", c.IP(),
		"path", c.Path(),
	)
}
