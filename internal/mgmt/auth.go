package mgmt

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
)

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	Mode      string // "jwt" or "none"
	JWTSecret string
}

// userIDKey is the fiber.Ctx local under which the authenticated user ID is
// stored for handlers.
const userIDKey = "user_id"

// devUserID stands in for the authenticated caller when auth mode is "none".
const devUserID = "local-dev"

// NewAuthMiddleware returns a middleware that verifies the bearer credential
// and resolves it to a stable user ID. The token itself never reaches the
// handlers; they only see the ID.
func NewAuthMiddleware(cfg AuthConfig, logger zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if cfg.Mode == "none" {
			c.Locals(userIDKey, devUserID)
			return c.Next()
		}

		// Probe endpoints stay open.
		path := c.Path()
		if path == "/healthz" || path == "/readyz" || path == "/metrics" {
			return c.Next()
		}

		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return errorResponse(c, fiber.StatusUnauthorized, "Authorization header is required")
		}
		if !strings.HasPrefix(authHeader, "Bearer ") {
			return errorResponse(c, fiber.StatusUnauthorized, "Authorization header must use Bearer scheme")
		}
		raw := strings.TrimPrefix(authHeader, "Bearer ")

		userID, err := verifyToken(raw, cfg.JWTSecret)
		if err != nil {
			logger.Warn().
				Err(err).
				Str("path", path).
				Str("method", c.Method()).
				Msg("unauthorized request")
			return errorResponse(c, fiber.StatusUnauthorized, "Invalid or expired token")
		}

		c.Locals(userIDKey, userID)
		return c.Next()
	}
}

// verifyToken parses an HS256 JWT and returns its subject claim. Expiry is
// enforced by the parser.
func verifyToken(raw, secret string) (string, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return "", err
	}

	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", fmt.Errorf("token has no subject")
	}
	return sub, nil
}

// callerID returns the authenticated user ID placed by the auth middleware.
func callerID(c *fiber.Ctx) string {
	id, _ := c.Locals(userIDKey).(string)
	return id
}
