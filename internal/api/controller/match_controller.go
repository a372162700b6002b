package controller

import (
	"ctchen222/Battleship/internal/api/models"
	"ctchen222/Battleship/internal/api/response"
	"ctchen222/Battleship/internal/api/service"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// MatchController handles the admin HTTP requests.
type MatchController struct {
	matchService service.MatchService
}

// NewMatchController creates a new MatchController.
func NewMatchController(matchService service.MatchService) *MatchController {
	return &MatchController{
		matchService: matchService,
	}
}

// Status reports the shared match.
func (mc *MatchController) Status(c *gin.Context) {
	response.SuccessResponse(c, mc.matchService.Status(c.Request.Context()))
}

// ListMatches handles the finished-match ledger endpoint.
func (mc *MatchController) ListMatches(c *gin.Context) {
	var req models.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	matches, err := mc.matchService.RecentMatches(c.Request.Context(), req.Limit)
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "Failed to list matches", "error", err)
		response.ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}
	response.SuccessResponseList(c, matches)
}

// ListEvents handles the recent lifecycle events endpoint.
func (mc *MatchController) ListEvents(c *gin.Context) {
	var req models.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	list, err := mc.matchService.RecentEvents(c.Request.Context(), req.Limit)
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "Failed to list events", "error", err)
		response.ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}
	response.SuccessResponseList(c, list)
}

// AddBot seats a bot opponent in the free slot.
func (mc *MatchController) AddBot(c *gin.Context) {
	var req models.BotRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	err := mc.matchService.AddBot(c.Request.Context(), req.Difficulty)
	switch {
	case err == nil:
		response.SuccessResponseContent(c, "bot joined")
	case errors.Is(err, service.ErrRoomFull):
		response.ErrorResponse(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrInvalidDifficulty):
		response.ErrorResponse(c, http.StatusBadRequest, err.Error())
	default:
		response.ErrorResponse(c, http.StatusInternalServerError, err.Error())
	}
}
