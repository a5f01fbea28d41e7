package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gcbaptista/resumatch/internal/logger"
)

// RankRequest is the body of POST /rank.
type RankRequest struct {
	Query string `json:"query" binding:"required"`
	Limit int    `json:"limit" binding:"min=0,max=1000"` // 0 returns every result
}

// RankHandler ranks the stored documents against a job description.
func (api *API) RankHandler(c *gin.Context) {
	var req RankRequest
	if result := ValidateJSONBinding(c, &req); result.HasErrors() {
		SendValidationError(c, result)
		return
	}

	result, err := api.service.Rank(c.Request.Context(), req.Query, req.Limit)
	if err != nil {
		api.logger.Warn("Ranking failed",
			zap.String("query", logger.TruncateForLog(req.Query, 80)),
			zap.Error(err))
		SendServiceError(c, "ranking", err)
		return
	}
	c.JSON(http.StatusOK, result)
}
