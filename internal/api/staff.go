package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/Spok95/spa-clinic/internal/domain/commissions"
	"github.com/Spok95/spa-clinic/internal/domain/staff"
	"github.com/Spok95/spa-clinic/internal/domain/validation"
)

func (h *Handler) ListStaff(c *gin.Context) {
	list, err := h.Staff.List(c.Request.Context(), c.Query("active") == "true")
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list})
}

func (h *Handler) CreateStaff(c *gin.Context) {
	var in staff.Input
	if !bindJSON(c, &in) {
		return
	}
	if err := in.Validate(); err != nil {
		AbortWithError(c, err)
		return
	}
	m, err := h.Staff.Create(c.Request.Context(), in)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": m})
}

func (h *Handler) GetStaff(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	m, err := h.Staff.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": m})
}

func (h *Handler) UpdateStaff(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var in staff.Input
	if !bindJSON(c, &in) {
		return
	}
	if err := in.Validate(); err != nil {
		AbortWithError(c, err)
		return
	}
	m, err := h.Staff.Update(c.Request.Context(), id, in)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": m})
}

type activeRequest struct {
	Active *bool `json:"active"`
}

func (h *Handler) SetStaffActive(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req activeRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Active == nil {
		AbortWithError(c, validation.New("active", "required", "is required"))
		return
	}
	m, err := h.Staff.SetActive(c.Request.Context(), id, *req.Active)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": m})
}

func (h *Handler) StaffCommissions(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if _, err := h.Staff.GetByID(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}
	entries, bal, err := h.Commissions.Ledger(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"entries": entries, "balance": bal}})
}

type payoutRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Detail string          `json:"detail"`
}

func (h *Handler) CreatePayout(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req payoutRequest
	if !bindJSON(c, &req) {
		return
	}
	e, err := h.Commissions.Payout(c.Request.Context(), commissions.PayoutInput{
		StaffID: id,
		Amount:  req.Amount,
		Detail:  req.Detail,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": e})
}
