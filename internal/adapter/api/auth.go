package api

import (
	"strings"

	"adforge/internal/domain/entity"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const ownerKey = "ownerID"

// AnonymousOwner owns every campaign when auth is not configured.
const AnonymousOwner = "anonymous"

// NewAuthMiddleware verifies HS256 bearer tokens and stores the subject as the
// owner id. An empty secret turns verification off: the owner then comes from
// X-User-Id, or AnonymousOwner.
func NewAuthMiddleware(secret, issuer string) fiber.Handler {
	if secret == "" {
		return func(c *fiber.Ctx) error {
			owner := strings.TrimSpace(c.Get("X-User-Id"))
			if owner == "" {
				owner = AnonymousOwner
			}
			c.Locals(ownerKey, owner)
			return c.Next()
		}
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	parser := jwt.NewParser(opts...)
	key := []byte(secret)

	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(tokenString) == "" {
			return unauthorized(c)
		}
		claims := &jwt.RegisteredClaims{}
		token, err := parser.ParseWithClaims(strings.TrimSpace(tokenString), claims, func(*jwt.Token) (interface{}, error) {
			return key, nil
		})
		if err != nil || !token.Valid || claims.Subject == "" {
			return unauthorized(c)
		}
		c.Locals(ownerKey, claims.Subject)
		return c.Next()
	}
}

func unauthorized(c *fiber.Ctx) error {
	status, body := statusFor(entity.ErrUnauthorized)
	return c.Status(status).JSON(body)
}

// OwnerID returns the owner set by the auth middleware, or "".
func OwnerID(c *fiber.Ctx) string {
	owner, _ := c.Locals(ownerKey).(string)
	return owner
}
