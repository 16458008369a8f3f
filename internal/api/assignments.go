package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Spok95/spa-clinic/internal/domain/assignments"
)

func (h *Handler) CreateAssignment(c *gin.Context) {
	var in assignments.CreateInput
	if !bindJSON(c, &in) {
		return
	}
	a, err := h.Assignments.Create(c.Request.Context(), in)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": a})
}

func (h *Handler) PreviewAssignment(c *gin.Context) {
	var in assignments.CreateInput
	if !bindJSON(c, &in) {
		return
	}
	p, err := h.Assignments.Preview(c.Request.Context(), in)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": p})
}

func (h *Handler) GetAssignment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	a, err := h.Assignments.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": a})
}

func (h *Handler) CompleteAssignment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	a, err := h.Assignments.Complete(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": a})
}

func (h *Handler) ListAssignmentSessions(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	list, err := h.Sessions.List(c.Request.Context(), id, c.Query("component"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list})
}
