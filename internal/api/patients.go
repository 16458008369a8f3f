package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Spok95/spa-clinic/internal/domain/patients"
)

func (h *Handler) ListPatients(c *gin.Context) {
	list, err := h.Patients.List(c.Request.Context(), c.Query("search"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list})
}

func (h *Handler) CreatePatient(c *gin.Context) {
	var in patients.Input
	if !bindJSON(c, &in) {
		return
	}
	if err := in.Validate(); err != nil {
		AbortWithError(c, err)
		return
	}
	p, err := h.Patients.Create(c.Request.Context(), in)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": p})
}

func (h *Handler) GetPatient(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	p, err := h.Patients.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": p})
}

func (h *Handler) UpdatePatient(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var in patients.Input
	if !bindJSON(c, &in) {
		return
	}
	if err := in.Validate(); err != nil {
		AbortWithError(c, err)
		return
	}
	p, err := h.Patients.Update(c.Request.Context(), id, in)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": p})
}

func (h *Handler) DeletePatient(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.Patients.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ListPatientAssignments(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	list, err := h.Assignments.ListByPatient(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list})
}
