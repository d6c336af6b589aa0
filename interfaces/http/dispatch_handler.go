package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"social-publisher/domain/dto"
	"social-publisher/infrastructure/logger"
	"social-publisher/usecase"
)

type IDispatchHandler interface {
	Run(c *gin.Context)
}

type dispatchHandler struct {
	dispatchUsecase usecase.IDispatchUsecase
}

func NewDispatchHandler(dispatchUsecase usecase.IDispatchUsecase) IDispatchHandler {
	return &dispatchHandler{dispatchUsecase: dispatchUsecase}
}

// Run triggers a dispatch pass outside the ticker. Overlap with a ticker pass is
// safe; conditional updates make duplicate processing a no-op.
func (h *dispatchHandler) Run(c *gin.Context) {
	stats, err := h.dispatchUsecase.ProcessDuePosts(c.Request.Context())
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Manual dispatch pass failed")
		c.JSON(http.StatusInternalServerError, dto.Res{ResponseCode: "500", ResponseMessage: "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, dto.Res{ResponseCode: "200", ResponseMessage: "OK", Data: stats})
}
