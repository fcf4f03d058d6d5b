package newborn

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/medreg/registry/internal/domain/asset"
	"github.com/medreg/registry/internal/platform/auth"
	"github.com/medreg/registry/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	read := api.Group("", auth.RequireRole("admin", "physician", "registrar"))
	read.GET("/newborn-assets", h.List)
	read.GET("/newborn-assets/:id", h.GetByID)

	write := api.Group("", auth.RequireRole("admin", "physician", "registrar"))
	write.POST("/newborn-assets", h.Create)
	write.POST("/patients/:patient_id/newborn-assets", h.CreateByPatientID)
	write.PATCH("/newborn-assets/:id", h.Update)
	write.POST("/newborn-assets/:id/confirm", h.Confirm)
	write.POST("/newborn-assets/:id/refuse", h.Refuse)
	write.POST("/newborn-assets/:id/cancel", h.Cancel)
	write.POST("/newborn-assets/:id/transfer", h.Transfer)

	admin := api.Group("", auth.RequireRole("admin"))
	admin.DELETE("/newborn-assets/:id", h.Delete)
}

func (h *Handler) GetByID(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	a, err := h.svc.GetByID(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) List(c echo.Context) error {
	pg, err := pagination.FromContext(c)
	if err != nil {
		return err
	}
	filter, err := parseFilter(c)
	if err != nil {
		return err
	}
	items, total, err := h.svc.List(c.Request().Context(), filter, pg)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg))
}

func parseFilter(c echo.Context) (ListFilter, error) {
	var f ListFilter
	if v := c.QueryParam("patient_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return f, echo.NewHTTPError(http.StatusBadRequest, "invalid patient_id")
		}
		f.PatientID = id
	}
	f.Status = asset.Status(c.QueryParam("status"))
	f.DeliveryStatus = asset.DeliveryStatus(c.QueryParam("delivery_status"))
	for param, dst := range map[string]**time.Time{
		"born_from": &f.BornFrom,
		"born_to":   &f.BornTo,
	} {
		if v := c.QueryParam(param); v != "" {
			t, err := time.Parse("2006-01-02", v)
			if err != nil {
				return f, echo.NewHTTPError(http.StatusBadRequest, "invalid "+param)
			}
			*dst = &t
		}
	}
	return f, nil
}

func (h *Handler) Create(c echo.Context) error {
	var req CreateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	a, err := h.svc.Create(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, a.listItem())
}

func (h *Handler) CreateByPatientID(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("patient_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	var req CreateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	a, err := h.svc.CreateByPatientID(c.Request().Context(), patientID, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, a.listItem())
}

func (h *Handler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req UpdateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	a, err := h.svc.Update(c.Request().Context(), id, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, a)
}

type noteBody struct {
	Note *string `json:"note"`
}

func (h *Handler) Confirm(c echo.Context) error {
	return h.outcome(c, h.svc.Confirm)
}

func (h *Handler) Refuse(c echo.Context) error {
	return h.outcome(c, h.svc.Refuse)
}

func (h *Handler) outcome(c echo.Context, op func(ctx context.Context, id uuid.UUID, note *string) (*Asset, error)) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var body noteBody
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	a, err := op(c.Request().Context(), id, body.Note)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) Cancel(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	a, err := h.svc.Cancel(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) Transfer(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req TransferRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	a, err := h.svc.Transfer(c.Request().Context(), id, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
