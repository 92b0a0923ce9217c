package handlers

import (
	"errors"
	"strings"
	"time"

	"github.com/artsearch/backend/internal/middleware"
	"github.com/artsearch/backend/internal/models"
	"github.com/artsearch/backend/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func setSessionCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Expires:  time.Now().Add(utils.TokenTTL()),
		HTTPOnly: true,
		SameSite: "Lax",
		Path:     "/",
	})
}

func clearSessionCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		SameSite: "Lax",
		Path:     "/",
	})
}

// isDuplicateKeyError covers the translated GORM error plus the raw
// driver text for dialects without error translation (test sqlite).
func isDuplicateKeyError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}

// loadFavorites returns a user's favorites most-recent-first. The
// result is never nil so the wire shape stays a JSON array.
func loadFavorites(db *gorm.DB, userID uuid.UUID) ([]models.Favorite, error) {
	favorites := make([]models.Favorite, 0)
	err := db.
		Where("user_id = ?", userID).
		Order("added_at DESC").
		Find(&favorites).Error
	return favorites, err
}

func userResponse(user *models.User, favorites []models.Favorite) fiber.Map {
	if favorites == nil {
		favorites = make([]models.Favorite, 0)
	}
	return fiber.Map{
		"id":              user.ID,
		"fullname":        user.FullName,
		"email":           user.Email,
		"profileImageUrl": user.ProfileImageURL,
		"favorites":       favorites,
	}
}
