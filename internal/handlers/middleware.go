package handlers

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"careercoach/api/internal/models"
	"careercoach/api/internal/services"
)

const (
	identityKey          = "identity"
	sessionCookie        = "__session"
	schedulerTokenHeader = "X-Scheduler-Token"
)

type AuthMiddleware struct {
	verifier services.TokenVerifier
	logger   *zap.Logger
}

func NewAuthMiddleware(verifier services.TokenVerifier, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		verifier: verifier,
		logger:   logger.Named("auth_middleware"),
	}
}

// RequireAuth rejects requests without a valid session token.
func (m *AuthMiddleware) RequireAuth(c *fiber.Ctx) error {
	identity, err := m.identify(c)
	if err != nil || identity == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
			"code":  fiber.StatusUnauthorized,
		})
	}

	c.Locals(identityKey, identity)
	return c.Next()
}

// OptionalAuth attaches the identity when a valid token is present and lets
// anonymous requests through.
func (m *AuthMiddleware) OptionalAuth(c *fiber.Ctx) error {
	identity, err := m.identify(c)
	if err == nil && identity != nil {
		c.Locals(identityKey, identity)
	}
	return c.Next()
}

func (m *AuthMiddleware) identify(c *fiber.Ctx) (*models.Identity, error) {
	token := bearerToken(c.Get(fiber.HeaderAuthorization))
	if token == "" {
		token = c.Cookies(sessionCookie)
	}
	if token == "" {
		return nil, nil
	}

	identity, err := m.verifier.Verify(c.UserContext(), token)
	if err != nil {
		m.logger.Debug("rejected session token", zap.String("path", c.Path()), zap.Error(err))
		return nil, err
	}
	return identity, nil
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// identityFrom returns nil for anonymous requests.
func identityFrom(c *fiber.Ctx) *models.Identity {
	identity, _ := c.Locals(identityKey).(*models.Identity)
	return identity
}

// RequireSchedulerToken guards the internal refresh endpoints. An empty
// configured token disables them.
func RequireSchedulerToken(token string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		given := c.Get(schedulerTokenHeader)
		if token == "" || subtle.ConstantTimeCompare([]byte(given), []byte(token)) != 1 {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid scheduler token",
				"code":  fiber.StatusUnauthorized,
			})
		}
		return c.Next()
	}
}
