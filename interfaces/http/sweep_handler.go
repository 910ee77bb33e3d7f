package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"tab-sweeper/domain/dto"
	"tab-sweeper/infrastructure/logger"
	"tab-sweeper/usecase"
)

// ISweepHandler defines the HTTP handlers for the sweep API.
type ISweepHandler interface {
	SweepDomain(ctx *gin.Context)
	SweepChannel(ctx *gin.Context)
	GetCachedVideos(ctx *gin.Context)
	ClearCache(ctx *gin.Context)
}

// SweepHandler implements the sweep HTTP handlers.
type SweepHandler struct {
	sweeperUseCase usecase.ISweeperUseCase
}

func NewSweepHandler(sweeperUseCase usecase.ISweeperUseCase) ISweepHandler {
	return &SweepHandler{sweeperUseCase: sweeperUseCase}
}

// SweepDomain handles POST /api/sweep/domain
func (h *SweepHandler) SweepDomain(ctx *gin.Context) {
	var req dto.SweepDomainRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": true, "message": "domain is required"})
		return
	}

	report, err := h.sweeperUseCase.CloseDomain(ctx.Request.Context(), req.Domain)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Domain sweep failed")
		ctx.JSON(http.StatusBadGateway, gin.H{"error": true, "message": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"error": false, "data": report})
}

// SweepChannel handles POST /api/sweep/channel
func (h *SweepHandler) SweepChannel(ctx *gin.Context) {
	var req dto.SweepChannelRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": true, "message": "video_url is required"})
		return
	}

	report, err := h.sweeperUseCase.CloseChannel(ctx.Request.Context(), req.VideoURL)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Channel sweep failed")
		switch {
		case errors.Is(err, usecase.ErrNotVideoURL):
			ctx.JSON(http.StatusBadRequest, gin.H{"error": true, "message": err.Error()})
		case errors.Is(err, usecase.ErrCredentialMissing):
			ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": true, "message": err.Error()})
		default:
			ctx.JSON(http.StatusBadGateway, gin.H{"error": true, "message": err.Error()})
		}
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"error": false, "data": report})
}

// GetCachedVideos handles GET /api/cache/videos
func (h *SweepHandler) GetCachedVideos(ctx *gin.Context) {
	resp, err := h.sweeperUseCase.CachedVideos(ctx.Request.Context())
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Cache listing failed")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": true, "message": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"error": false, "data": resp})
}

// ClearCache handles DELETE /api/cache/videos
func (h *SweepHandler) ClearCache(ctx *gin.Context) {
	if err := h.sweeperUseCase.ClearCache(ctx.Request.Context()); err != nil {
		logger.GetLogger().WithField("error", err).Error("Cache clear failed")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": true, "message": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"error": false, "message": "cache cleared"})
}
