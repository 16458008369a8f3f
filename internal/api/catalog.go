package api

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Spok95/spa-clinic/internal/domain/catalog"
	"github.com/Spok95/spa-clinic/internal/domain/validation"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	maxPriceListMB  = 10
)

func (h *Handler) ListTreatments(c *gin.Context) {
	list, err := h.Catalog.ListTreatments(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list})
}

func (h *Handler) CreateTreatment(c *gin.Context) {
	var in catalog.TreatmentInput
	if !bindJSON(c, &in) {
		return
	}
	if err := in.Validate(); err != nil {
		AbortWithError(c, err)
		return
	}
	t, err := h.Catalog.CreateTreatment(c.Request.Context(), in)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": t})
}

func (h *Handler) GetTreatment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	t, err := h.Catalog.GetTreatment(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": t})
}

func (h *Handler) UpdateTreatment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var in catalog.TreatmentInput
	if !bindJSON(c, &in) {
		return
	}
	if err := in.Validate(); err != nil {
		AbortWithError(c, err)
		return
	}
	t, err := h.Catalog.UpdateTreatment(c.Request.Context(), id, in)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": t})
}

func (h *Handler) DeleteTreatment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.Catalog.DeleteTreatment(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) CreatePromotion(c *gin.Context) {
	var in catalog.PromotionInput
	if !bindJSON(c, &in) {
		return
	}
	if err := in.Validate(); err != nil {
		AbortWithError(c, err)
		return
	}
	t, err := h.Catalog.CreatePromotion(c.Request.Context(), in)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": t})
}

func (h *Handler) GetPromotion(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	t, err := h.Catalog.GetPromotion(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": t})
}

func (h *Handler) ExportPriceList(c *gin.Context) {
	data, err := catalog.ExportPriceList(c.Request.Context(), h.Catalog)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	name := fmt.Sprintf("price-list-%s.xlsx", time.Now().Format("20060102"))
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, xlsxContentType, data)
}

// ImportPriceList принимает xlsx в поле формы "file".
func (h *Handler) ImportPriceList(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		AbortWithError(c, validation.New("file", "required", "xlsx file is required"))
		return
	}
	if fh.Size > maxPriceListMB<<20 {
		AbortWithError(c, validation.New("file", "max", fmt.Sprintf("must be at most %d MB", maxPriceListMB)))
		return
	}
	f, err := fh.Open()
	if err != nil {
		AbortWithError(c, err)
		return
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(f)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	res, err := catalog.ImportPriceList(c.Request.Context(), h.Catalog, data)
	if err != nil {
		AbortWithError(c, validation.New("file", "xlsx", err.Error()))
		return
	}
	h.Log.Info("price list imported", "rows", res.Rows, "updated", res.Updated, "errors", len(res.Errors))
	c.JSON(http.StatusOK, gin.H{"data": res})
}
