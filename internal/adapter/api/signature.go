package api

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"

	"github.com/gofiber/fiber/v2"
)

const signatureHeader = "X-Line-Signature"

// VerifySignature validates the webhook body against the channel secret.
// LINE signs the raw body with HMAC-SHA256 and sends the base64 digest in
// the X-Line-Signature header.
func VerifySignature(channelSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		signature := c.Get(signatureHeader)
		if signature == "" {
			return c.Status(fiber.StatusUnauthorized).SendString("missing signature")
		}

		decoded, err := base64.StdEncoding.DecodeString(signature)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).SendString("malformed signature")
		}

		mac := hmac.New(sha256.New, []byte(channelSecret))
		mac.Write(c.Body())
		if !hmac.Equal(decoded, mac.Sum(nil)) {
			return c.Status(fiber.StatusUnauthorized).SendString("invalid signature")
		}
		return c.Next()
	}
}
