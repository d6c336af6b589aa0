package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"social-publisher/domain/dto"
	"social-publisher/domain/model"
	"social-publisher/infrastructure/logger"
	"social-publisher/usecase"
)

type ISuggestionHandler interface {
	Suggest(c *gin.Context)
}

type suggestionHandler struct {
	schedulingUsecase usecase.ISchedulingUsecase
}

func NewSuggestionHandler(schedulingUsecase usecase.ISchedulingUsecase) ISuggestionHandler {
	return &suggestionHandler{schedulingUsecase: schedulingUsecase}
}

// Suggest returns posting-time suggestions for the requested platforms, or all
// platforms when none are named.
func (h *suggestionHandler) Suggest(c *gin.Context) {
	var platforms []model.Platform
	if raw := c.Query("platforms"); raw != "" {
		for _, name := range strings.Split(raw, ",") {
			p, ok := model.ParsePlatform(name)
			if !ok {
				c.JSON(http.StatusBadRequest, dto.Res{ResponseCode: "400", ResponseMessage: "unsupported platform: " + name})
				return
			}
			platforms = append(platforms, p)
		}
	} else {
		platforms = model.AllPlatforms
	}

	suggestions, err := h.schedulingUsecase.Suggest(c.Request.Context(), c.GetString("user_id"), platforms)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while computing suggestions")
		c.JSON(http.StatusInternalServerError, dto.Res{ResponseCode: "500", ResponseMessage: "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, dto.Res{ResponseCode: "200", ResponseMessage: "OK", Data: suggestions})
}
