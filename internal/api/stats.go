package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tastebook/backend/internal/middleware"
	"github.com/tastebook/backend/internal/service"
)

type StatsHandler struct {
	statsService *service.StatsService
}

func NewStatsHandler(stats *service.StatsService) *StatsHandler {
	return &StatsHandler{statsService: stats}
}

func (h *StatsHandler) RegisterRoutes(public, protected *gin.RouterGroup) {
	public.GET("/stats/overview", h.Overview)
	protected.GET("/stats/mine", h.Mine)
}

func (h *StatsHandler) Overview(c *gin.Context) {
	stats, err := h.statsService.Overview(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *StatsHandler) Mine(c *gin.Context) {
	userID, _ := middleware.CurrentUserID(c)
	stats, err := h.statsService.ForUser(c.Request.Context(), userID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
