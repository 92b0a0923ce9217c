package middleware

import (
	"errors"

	"github.com/artsearch/backend/internal/models"
	"github.com/artsearch/backend/pkg/logger"
	"github.com/artsearch/backend/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"gorm.io/gorm"
)

const (
	currentUserKey = "currentUser"

	// SessionCookieName is the HTTP-only cookie carrying the signed
	// session token.
	SessionCookieName = "token"
)

type AuthMiddleware struct {
	DB *gorm.DB
}

func NewAuthMiddleware(db *gorm.DB) *AuthMiddleware {
	return &AuthMiddleware{DB: db}
}

func CORS() fiber.Handler {
	return cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000,http://127.0.0.1:3000",
		AllowHeaders:     "Origin, Content-Type, Accept",
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowCredentials: true,
	})
}

// RequireAuth resolves the session cookie to a user. Missing,
// malformed, expired and badly signed tokens are indistinguishable to
// the caller; a valid token whose user has since been deleted is the
// one case reported separately, as 404.
func (a *AuthMiddleware) RequireAuth(c *fiber.Ctx) error {
	tokenString := c.Cookies(SessionCookieName)
	if tokenString == "" {
		return utils.Error(c, fiber.StatusUnauthorized, "Not authenticated.")
	}

	claims, err := utils.ValidateToken(tokenString)
	if err != nil {
		logger.Warn("session_validation_failed", map[string]interface{}{
			"ip":   c.IP(),
			"path": c.Path(),
		})
		return utils.Error(c, fiber.StatusUnauthorized, "Invalid or expired token.")
	}

	var user models.User
	if err := a.DB.First(&user, "id = ?", claims.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.Error(c, fiber.StatusNotFound, "User not found.")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "Server error.")
	}

	c.Locals(currentUserKey, &user)
	return c.Next()
}

// OptionalAuth resolves the session cookie when present but never
// rejects the request; catalog browsing works logged out.
func (a *AuthMiddleware) OptionalAuth(c *fiber.Ctx) error {
	tokenString := c.Cookies(SessionCookieName)
	if tokenString == "" {
		return c.Next()
	}

	claims, err := utils.ValidateToken(tokenString)
	if err != nil {
		return c.Next()
	}

	var user models.User
	if err := a.DB.First(&user, "id = ?", claims.UserID).Error; err != nil {
		return c.Next()
	}

	c.Locals(currentUserKey, &user)
	return c.Next()
}

func GetCurrentUser(c *fiber.Ctx) *models.User {
	value := c.Locals(currentUserKey)
	if value == nil {
		return nil
	}
	user, ok := value.(*models.User)
	if !ok {
		return nil
	}
	return user
}
