package controller

import (
	"docdot_backend/internal/service"

	"github.com/gin-gonic/gin"
)

type EventController struct {
	Hub *service.EventHub
}

func NewEventController(hub *service.EventHub) *EventController {
	return &EventController{Hub: hub}
}

// @Summary Live events
// @Description Websocket stream of badge unlocks, timer updates and lecture progress. Browsers pass the token as a query parameter
// @Tags Events
// @Security ApiKeyAuth
// @Param token query string false "Access token"
// @Router /ws [get]
func (c *EventController) Connect(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	service.ServeEvents(c.Hub, ctx.Writer, ctx.Request, userID)
}
