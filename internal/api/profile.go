package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tastebook/backend/internal/middleware"
	"github.com/tastebook/backend/internal/service"
)

type ProfileHandler struct {
	profileService *service.ProfileService
	storageService *service.StorageService
}

func NewProfileHandler(profiles *service.ProfileService, storage *service.StorageService) *ProfileHandler {
	return &ProfileHandler{
		profileService: profiles,
		storageService: storage,
	}
}

// RegisterRoutes wires the profile endpoints. The caller provides the
// authenticated group for the /me routes and a public group for lookups.
func (h *ProfileHandler) RegisterRoutes(public, protected *gin.RouterGroup) {
	public.GET("/users/:username", h.GetByUsername)

	me := protected.Group("/me")
	{
		me.GET("", h.GetMe)
		me.PATCH("", h.UpdateMe)
		me.POST("/avatar", h.UploadAvatar)
	}
}

func (h *ProfileHandler) GetMe(c *gin.Context) {
	userID, _ := middleware.CurrentUserID(c)
	user, err := h.profileService.Get(c.Request.Context(), userID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *ProfileHandler) UpdateMe(c *gin.Context) {
	userID, _ := middleware.CurrentUserID(c)

	var in service.UpdateProfileInput
	if !bindJSON(c, &in) {
		return
	}

	user, err := h.profileService.Update(c.Request.Context(), userID, in)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *ProfileHandler) UploadAvatar(c *gin.Context) {
	userID, _ := middleware.CurrentUserID(c)

	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
		return
	}

	url, err := h.storageService.UploadAvatar(c.Request.Context(), userID, file)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	if err := h.profileService.SetAvatarURL(c.Request.Context(), userID, url); err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"avatar_url": url})
}

func (h *ProfileHandler) GetByUsername(c *gin.Context) {
	user, err := h.profileService.GetByUsername(c.Request.Context(), requesterID(c), c.Param("username"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
