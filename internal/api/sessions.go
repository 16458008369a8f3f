package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Spok95/spa-clinic/internal/domain/sessions"
)

func (h *Handler) CreateSession(c *gin.Context) {
	var in sessions.CreateInput
	if !bindJSON(c, &in) {
		return
	}
	s, err := h.Sessions.Create(c.Request.Context(), in)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": s})
}

func (h *Handler) GetSession(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	s, err := h.Sessions.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": s})
}

func (h *Handler) UpdateSession(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var in sessions.UpdateInput
	if !bindJSON(c, &in) {
		return
	}
	s, err := h.Sessions.Update(c.Request.Context(), id, in)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": s})
}
