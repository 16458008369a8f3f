package api

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Spok95/spa-clinic/internal/domain/assignments"
	"github.com/Spok95/spa-clinic/internal/domain/catalog"
	"github.com/Spok95/spa-clinic/internal/domain/commissions"
	"github.com/Spok95/spa-clinic/internal/domain/patients"
	"github.com/Spok95/spa-clinic/internal/domain/reports"
	"github.com/Spok95/spa-clinic/internal/domain/sessions"
	"github.com/Spok95/spa-clinic/internal/domain/staff"
	"github.com/Spok95/spa-clinic/internal/domain/validation"
)

type PatientStore interface {
	Create(ctx context.Context, in patients.Input) (*patients.Patient, error)
	GetByID(ctx context.Context, id int64) (*patients.Patient, error)
	Update(ctx context.Context, id int64, in patients.Input) (*patients.Patient, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, search string) ([]patients.Patient, error)
}

type StaffStore interface {
	Create(ctx context.Context, in staff.Input) (*staff.Member, error)
	GetByID(ctx context.Context, id int64) (*staff.Member, error)
	Update(ctx context.Context, id int64, in staff.Input) (*staff.Member, error)
	SetActive(ctx context.Context, id int64, active bool) (*staff.Member, error)
	List(ctx context.Context, onlyActive bool) ([]staff.WithBalance, error)
}

type CatalogStore interface {
	catalog.PriceStore
	CreateTreatment(ctx context.Context, in catalog.TreatmentInput) (*catalog.Treatment, error)
	UpdateTreatment(ctx context.Context, id int64, in catalog.TreatmentInput) (*catalog.Treatment, error)
	DeleteTreatment(ctx context.Context, id int64) error
	GetTreatment(ctx context.Context, id int64) (*catalog.Treatment, error)
	CreatePromotion(ctx context.Context, in catalog.PromotionInput) (*catalog.Treatment, error)
	GetPromotion(ctx context.Context, id int64) (*catalog.Treatment, error)
}

type AssignmentService interface {
	Create(ctx context.Context, in assignments.CreateInput) (*assignments.Assignment, error)
	Preview(ctx context.Context, in assignments.CreateInput) (*assignments.Preview, error)
	Get(ctx context.Context, id int64) (*assignments.Assignment, error)
	ListByPatient(ctx context.Context, patientID int64) ([]assignments.Assignment, error)
	Complete(ctx context.Context, id int64) (*assignments.Assignment, error)
}

type SessionService interface {
	Create(ctx context.Context, in sessions.CreateInput) (*sessions.Session, error)
	Update(ctx context.Context, id int64, in sessions.UpdateInput) (*sessions.Session, error)
	Get(ctx context.Context, id int64) (*sessions.Session, error)
	List(ctx context.Context, assignmentID int64, component string) ([]sessions.Session, error)
}

type ReportService interface {
	Assignments(ctx context.Context, f reports.Filter) (*reports.Report, error)
	Sessions(ctx context.Context, assignmentID int64) ([]sessions.Session, error)
}

type CommissionService interface {
	Payout(ctx context.Context, in commissions.PayoutInput) (*commissions.Entry, error)
	Ledger(ctx context.Context, staffID int64) ([]commissions.Entry, commissions.Balance, error)
}

// Handler — HTTP-обработчики /api/v1. Зависимости приходят из cmd.
type Handler struct {
	Patients    PatientStore
	Staff       StaffStore
	Catalog     CatalogStore
	Assignments AssignmentService
	Sessions    SessionService
	Reports     ReportService
	Commissions CommissionService
	Log         *slog.Logger

	// Location — часовой пояс клиники для дат в запросах; nil — UTC.
	Location *time.Location
}

func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.Use(ErrorHandlingMiddleware(h.Log))

	p := rg.Group("/patients")
	p.GET("", h.ListPatients)
	p.POST("", h.CreatePatient)
	p.GET("/:id", h.GetPatient)
	p.PUT("/:id", h.UpdatePatient)
	p.DELETE("/:id", h.DeletePatient)
	p.GET("/:id/assignments", h.ListPatientAssignments)

	s := rg.Group("/staff")
	s.GET("", h.ListStaff)
	s.POST("", h.CreateStaff)
	s.GET("/:id", h.GetStaff)
	s.PUT("/:id", h.UpdateStaff)
	s.PUT("/:id/active", h.SetStaffActive)
	s.GET("/:id/commissions", h.StaffCommissions)
	s.POST("/:id/payouts", h.CreatePayout)

	t := rg.Group("/treatments")
	t.GET("", h.ListTreatments)
	t.POST("", h.CreateTreatment)
	t.GET("/:id", h.GetTreatment)
	t.PUT("/:id", h.UpdateTreatment)
	t.DELETE("/:id", h.DeleteTreatment)

	rg.POST("/promotions", h.CreatePromotion)
	rg.GET("/promotions/:id", h.GetPromotion)

	rg.GET("/catalog/price-list", h.ExportPriceList)
	rg.POST("/catalog/price-list", h.ImportPriceList)

	a := rg.Group("/assignments")
	a.POST("", h.CreateAssignment)
	a.POST("/preview", h.PreviewAssignment)
	a.GET("/:id", h.GetAssignment)
	a.POST("/:id/complete", h.CompleteAssignment)
	a.GET("/:id/sessions", h.ListAssignmentSessions)

	rg.POST("/sessions", h.CreateSession)
	rg.GET("/sessions/:id", h.GetSession)
	rg.PUT("/sessions/:id", h.UpdateSession)

	rg.GET("/reports/assignments", h.AssignmentsReport)
	rg.GET("/reports/assignments/:id/sessions", h.AssignmentSessionsReport)
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		AbortWithError(c, validation.New(name, "id", "must be a positive integer"))
		return 0, false
	}
	return id, true
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		AbortWithError(c, errInvalidRequest)
		return false
	}
	return true
}
