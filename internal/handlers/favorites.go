package handlers

import (
	"fmt"
	"strings"
	"time"

	"github.com/artsearch/backend/internal/middleware"
	"github.com/artsearch/backend/internal/models"
	"github.com/artsearch/backend/internal/services"
	"github.com/artsearch/backend/pkg/logger"
	"github.com/artsearch/backend/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type FavoritesHandler struct {
	DB    *gorm.DB
	Audit *services.AuditService
}

func NewFavoritesHandler(db *gorm.DB, audit *services.AuditService) *FavoritesHandler {
	return &FavoritesHandler{DB: db, Audit: audit}
}

type favoriteArtistPayload struct {
	ArtistID    string `json:"artistId"`
	Name        string `json:"name"`
	Thumbnail   string `json:"thumbnail"`
	Birthday    string `json:"birthday"`
	Deathday    string `json:"deathday"`
	Nationality string `json:"nationality"`
}

type updateFavoritesRequest struct {
	Action   string                 `json:"action"`
	Artist   *favoriteArtistPayload `json:"artist"`
	ArtistID string                 `json:"artistId"`
}

// Update applies one add or remove to the current user's favorites.
// Both directions are idempotent: adding an already-favorited artist
// and removing an absent one are silent no-ops that still succeed.
func (h *FavoritesHandler) Update(c *fiber.Ctx) error {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "Not authenticated.")
	}

	var req updateFavoritesRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "Invalid request body.")
	}

	var affectedArtistID string
	switch {
	case req.Action == "add" && req.Artist != nil && strings.TrimSpace(req.Artist.ArtistID) != "":
		affectedArtistID = strings.TrimSpace(req.Artist.ArtistID)
		if err := h.addFavorite(user, req.Artist, affectedArtistID); err != nil {
			logger.Error("favorite_add_failed", err, map[string]interface{}{
				"user_id":   user.ID.String(),
				"artist_id": affectedArtistID,
			})
			return utils.Error(c, fiber.StatusInternalServerError, "Server error.")
		}
		h.Audit.LogAsync(services.AuditEntry{
			UserID:    &user.ID,
			Action:    services.AuditActionFavoriteAdd,
			Details:   map[string]interface{}{"artist_id": affectedArtistID},
			IPAddress: c.IP(),
		})

	case req.Action == "remove" && strings.TrimSpace(req.ArtistID) != "":
		affectedArtistID = strings.TrimSpace(req.ArtistID)
		err := h.DB.
			Where("user_id = ? AND artist_id = ?", user.ID, affectedArtistID).
			Delete(&models.Favorite{}).Error
		if err != nil {
			logger.Error("favorite_remove_failed", err, map[string]interface{}{
				"user_id":   user.ID.String(),
				"artist_id": affectedArtistID,
			})
			return utils.Error(c, fiber.StatusInternalServerError, "Server error.")
		}
		h.Audit.LogAsync(services.AuditEntry{
			UserID:    &user.ID,
			Action:    services.AuditActionFavoriteRemove,
			Details:   map[string]interface{}{"artist_id": affectedArtistID},
			IPAddress: c.IP(),
		})

	default:
		return utils.Error(c, fiber.StatusBadRequest, "Invalid action or missing data.")
	}

	favorites, err := loadFavorites(h.DB, user.ID)
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "Server error.")
	}

	message := fmt.Sprintf("Artist %s removed from favorites.", affectedArtistID)
	if req.Action == "add" {
		message = fmt.Sprintf("Artist %s added to favorites.", affectedArtistID)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message":   message,
		"favorites": favorites,
	})
}

// addFavorite inserts the snapshot unless the artist is already in the
// list. The existence check is a linear scan of the user's favorites;
// lists are small and user-scoped, so no index is kept for this.
func (h *FavoritesHandler) addFavorite(user *models.User, artist *favoriteArtistPayload, artistID string) error {
	existing, err := loadFavorites(h.DB, user.ID)
	if err != nil {
		return err
	}
	for _, favorite := range existing {
		if favorite.ArtistID == artistID {
			return nil
		}
	}

	favorite := models.Favorite{
		UserID:      user.ID,
		ArtistID:    artistID,
		Name:        artist.Name,
		Thumbnail:   artist.Thumbnail,
		Birthday:    artist.Birthday,
		Deathday:    artist.Deathday,
		Nationality: artist.Nationality,
		AddedAt:     time.Now().UTC(),
	}
	return h.DB.Create(&favorite).Error
}
