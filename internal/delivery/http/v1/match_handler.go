package v1

import (
	"net/http"

	"go-matchmaking-backend/internal/domain"
	"go-matchmaking-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type MatchHandler struct {
	matchUC domain.MatchUsecase
}

func NewMatchHandler(r *gin.RouterGroup, matchUC domain.MatchUsecase) {
	handler := &MatchHandler{matchUC: matchUC}

	matches := r.Group("/matches")
	{
		matches.POST("/find", handler.FindMatches)
		matches.POST("/event", handler.RecordEvent)
		matches.GET("/seen", handler.SeenProfiles)
	}
}

// FindMatches returns the ranked, cached match set for a user.
//
// POST /api/v1/matches/find
// Body: {"userId": "...", "limit": 20, "excludeUserIds": ["..."]}
func (h *MatchHandler) FindMatches(c *gin.Context) {
	var req domain.FindMatchesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	resp, err := h.matchUC.FindMatches(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// RecordEvent stores one interaction (viewed/liked/passed/matched) in the
// event sink.
//
// POST /api/v1/matches/event
func (h *MatchHandler) RecordEvent(c *gin.Context) {
	var req domain.RecordEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	resp, err := h.matchUC.RecordEvent(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// SeenProfiles lists profile IDs already surfaced to a user, for client
// synchronization and debugging.
//
// GET /api/v1/matches/seen?userId={userId}
func (h *MatchHandler) SeenProfiles(c *gin.Context) {
	userID := c.Query("userId")

	resp, err := h.matchUC.SeenProfiles(c.Request.Context(), userID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
