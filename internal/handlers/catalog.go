package handlers

import (
	"strings"

	"github.com/artsearch/backend/internal/artsy"
	"github.com/artsearch/backend/internal/middleware"
	"github.com/artsearch/backend/internal/services"
	"github.com/artsearch/backend/pkg/logger"
	"github.com/artsearch/backend/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

// CatalogHandler fronts the five read-only Artsy passthroughs. Every
// call reaches the upstream API; results are not cached.
type CatalogHandler struct {
	Artsy *artsy.Client
	Audit *services.AuditService
}

func NewCatalogHandler(client *artsy.Client, audit *services.AuditService) *CatalogHandler {
	return &CatalogHandler{Artsy: client, Audit: audit}
}

func (h *CatalogHandler) upstreamError(c *fiber.Ctx, operation string, err error) error {
	logger.Error("catalog_upstream_failed", err, map[string]interface{}{
		"operation": operation,
	})
	return utils.Error(c, fiber.StatusInternalServerError, "Failed to reach the artist catalog.")
}

func (h *CatalogHandler) SearchArtists(c *fiber.Ctx) error {
	query := strings.TrimSpace(c.Query("query"))
	if query == "" {
		return utils.Error(c, fiber.StatusBadRequest, "Query parameter is required")
	}

	artists, err := h.Artsy.SearchArtists(c.Context(), query)
	if err != nil {
		return h.upstreamError(c, "search", err)
	}

	if user := middleware.GetCurrentUser(c); user != nil {
		h.Audit.LogAsync(services.AuditEntry{
			UserID:    &user.ID,
			Action:    services.AuditActionCatalogSearch,
			Details:   map[string]interface{}{"query": query},
			IPAddress: c.IP(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"artists": artists})
}

func (h *CatalogHandler) FetchArtistData(c *fiber.Ctx) error {
	artistID := strings.TrimSpace(c.Query("artistId"))
	if artistID == "" {
		return utils.Error(c, fiber.StatusBadRequest, "artistId parameter is required")
	}

	artist, err := h.Artsy.GetArtist(c.Context(), artistID)
	if err != nil {
		return h.upstreamError(c, "artist", err)
	}

	return c.Status(fiber.StatusOK).JSON(artist)
}

func (h *CatalogHandler) FetchArtworkData(c *fiber.Ctx) error {
	artistID := strings.TrimSpace(c.Query("artistId"))
	if artistID == "" {
		return utils.Error(c, fiber.StatusBadRequest, "artistId parameter is required")
	}

	artworks, err := h.Artsy.GetArtworks(c.Context(), artistID)
	if err != nil {
		return h.upstreamError(c, "artworks", err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"artistId": artistID,
		"artworks": artworks,
	})
}

func (h *CatalogHandler) FetchCategories(c *fiber.Ctx) error {
	artworkID := strings.TrimSpace(c.Query("artworkId"))
	if artworkID == "" {
		return utils.Error(c, fiber.StatusBadRequest, "artworkId parameter is required")
	}

	categories, err := h.Artsy.GetCategories(c.Context(), artworkID)
	if err != nil {
		return h.upstreamError(c, "categories", err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"artworkId":  artworkID,
		"categories": categories,
	})
}

func (h *CatalogHandler) GetSimilarArtistData(c *fiber.Ctx) error {
	artistID := strings.TrimSpace(c.Query("artistId"))
	if artistID == "" {
		return utils.Error(c, fiber.StatusBadRequest, "artistId parameter is required")
	}

	similar, err := h.Artsy.GetSimilarArtists(c.Context(), artistID)
	if err != nil {
		return h.upstreamError(c, "similar_artists", err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"artistId":       artistID,
		"similarArtists": similar,
	})
}
