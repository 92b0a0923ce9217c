package handlers

import (
	"strings"

	"github.com/artsearch/backend/internal/middleware"
	"github.com/artsearch/backend/internal/models"
	"github.com/artsearch/backend/internal/services"
	"github.com/artsearch/backend/pkg/logger"
	"github.com/artsearch/backend/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type AuthHandler struct {
	DB    *gorm.DB
	Audit *services.AuditService
}

func NewAuthHandler(db *gorm.DB, audit *services.AuditService) *AuthHandler {
	return &AuthHandler{DB: db, Audit: audit}
}

type registerRequest struct {
	FullName string `json:"fullname"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "Invalid request body.")
	}

	req.FullName = strings.TrimSpace(req.FullName)
	req.Email = strings.TrimSpace(req.Email)
	if req.FullName == "" || req.Email == "" || req.Password == "" {
		return utils.Error(c, fiber.StatusBadRequest, "All fields are required.")
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "Server error.")
	}

	user := models.User{
		FullName:        req.FullName,
		Email:           req.Email,
		PasswordHash:    hash,
		ProfileImageURL: utils.GravatarURL(req.Email),
	}

	// The unique index is the duplicate check; no read-then-write, so
	// racing registrations cannot both succeed.
	if err := h.DB.Create(&user).Error; err != nil {
		if isDuplicateKeyError(err) {
			return utils.Error(c, fiber.StatusConflict, "Email already in use.")
		}
		logger.Error("user_create_failed", err, nil)
		return utils.Error(c, fiber.StatusInternalServerError, "Server error.")
	}

	token, err := utils.GenerateToken(&user)
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "Server error.")
	}
	setSessionCookie(c, token)

	h.Audit.LogAsync(services.AuditEntry{
		UserID:    &user.ID,
		Action:    services.AuditActionRegister,
		IPAddress: c.IP(),
	})
	logger.InfoWithUser(user.ID.String(), "user_registered", map[string]interface{}{
		"email": user.Email,
	})

	return c.Status(fiber.StatusOK).JSON(userResponse(&user, nil))
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "Invalid request body.")
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		return utils.Error(c, fiber.StatusBadRequest, "Email and password are required.")
	}

	// Unknown email and wrong password answer identically so the
	// endpoint cannot be used to probe which emails are registered.
	var user models.User
	err := h.DB.First(&user, "email = ?", req.Email).Error
	if err != nil || !utils.CheckPassword(user.PasswordHash, req.Password) {
		return utils.Error(c, fiber.StatusUnauthorized, "Invalid email or password.")
	}

	token, err := utils.GenerateToken(&user)
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "Server error.")
	}
	setSessionCookie(c, token)

	favorites, err := loadFavorites(h.DB, user.ID)
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "Server error.")
	}

	h.Audit.LogAsync(services.AuditEntry{
		UserID:    &user.ID,
		Action:    services.AuditActionLogin,
		IPAddress: c.IP(),
	})

	return c.Status(fiber.StatusOK).JSON(userResponse(&user, favorites))
}

// Logout clears the cookie only. The signed token stays valid until
// its natural expiry; there is no server-side revocation list.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	clearSessionCookie(c)
	return utils.Message(c, "Logged out successfully")
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "Not authenticated.")
	}

	favorites, err := loadFavorites(h.DB, user.ID)
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "Server error.")
	}

	return c.Status(fiber.StatusOK).JSON(userResponse(user, favorites))
}

func (h *AuthHandler) DeleteUser(c *fiber.Ctx) error {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "Not authenticated.")
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.Favorite{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.User{}, "id = ?", user.ID).Error
	})
	if err != nil {
		logger.Error("user_delete_failed", err, map[string]interface{}{
			"user_id": user.ID.String(),
		})
		return utils.Error(c, fiber.StatusInternalServerError, "Server error.")
	}

	clearSessionCookie(c)

	h.Audit.LogAsync(services.AuditEntry{
		UserID:    &user.ID,
		Action:    services.AuditActionDeleteAccount,
		IPAddress: c.IP(),
	})
	logger.InfoWithUser(user.ID.String(), "user_deleted", nil)

	return utils.Message(c, "User deleted successfully.")
}
