package middleware

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

const apiKeyHeader = "X-API-Key"

// APIKey authenticates requests against the shared secret. The secret is
// either the plaintext key (compared in constant time) or a bcrypt hash of
// it, so deployments can avoid keeping the plaintext key in the environment.
func APIKey(key, keyHash string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		presented := c.Get(apiKeyHeader)
		if presented == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing "+apiKeyHeader+" header")
		}

		if keyHash != "" {
			if err := bcrypt.CompareHashAndPassword([]byte(keyHash), []byte(presented)); err != nil {
				return fiber.NewError(fiber.StatusUnauthorized, "invalid API key")
			}
			return c.Next()
		}

		if subtle.ConstantTimeCompare([]byte(presented), []byte(key)) != 1 {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid API key")
		}
		return c.Next()
	}
}
