package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"social-publisher/domain/dto"
	"social-publisher/domain/model"
	"social-publisher/infrastructure/logger"
	"social-publisher/usecase"
)

type ICredentialHandler interface {
	List(c *gin.Context)
	Disconnect(c *gin.Context)
}

type credentialHandler struct {
	credentialUsecase usecase.ICredentialUsecase
}

func NewCredentialHandler(credentialUsecase usecase.ICredentialUsecase) ICredentialHandler {
	return &credentialHandler{credentialUsecase: credentialUsecase}
}

func (h *credentialHandler) List(c *gin.Context) {
	creds, err := h.credentialUsecase.GetByUser(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while listing credentials")
		c.JSON(http.StatusInternalServerError, dto.Res{ResponseCode: "500", ResponseMessage: "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, dto.Res{ResponseCode: "200", ResponseMessage: "OK", Data: creds})
}

func (h *credentialHandler) Disconnect(c *gin.Context) {
	platform, ok := model.ParsePlatform(c.Param("platform"))
	if !ok {
		c.JSON(http.StatusBadRequest, dto.Res{ResponseCode: "400", ResponseMessage: "unsupported platform"})
		return
	}
	if err := h.credentialUsecase.Disconnect(c.Request.Context(), c.GetString("user_id"), platform); err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while disconnecting credential")
		c.JSON(http.StatusInternalServerError, dto.Res{ResponseCode: "500", ResponseMessage: "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, dto.Res{ResponseCode: "200", ResponseMessage: "OK"})
}
