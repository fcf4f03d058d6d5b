package diagnosis

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/medreg/registry/internal/platform/auth"
	"github.com/medreg/registry/internal/platform/middleware"
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
	read.GET("/diagnoses", h.List)
	read.GET("/diagnoses/code/:code", h.GetByCode)
	read.GET("/diagnoses/:id", h.GetByID)

	write := api.Group("", auth.RequireRole("admin", "registrar"))
	write.POST("/diagnoses", h.Create)
	write.PATCH("/diagnoses/:id", h.Update)
	write.DELETE("/diagnoses/:id", h.Delete)
}

func (h *Handler) GetByID(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	view, err := h.svc.GetByID(c.Request().Context(), id,
		middleware.LocaleFromEcho(c), c.QueryParam("include_all_locales") == "true")
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, view)
}

func (h *Handler) GetByCode(c echo.Context) error {
	d, err := h.svc.GetByCode(c.Request().Context(), c.Param("code"))
	if err != nil {
		return err
	}
	view := d.view(middleware.LocaleFromEcho(c), c.QueryParam("include_all_locales") == "true")
	return c.JSON(http.StatusOK, view)
}

func (h *Handler) List(c echo.Context) error {
	pg, err := pagination.FromContext(c)
	if err != nil {
		return err
	}
	views, total, err := h.svc.List(c.Request().Context(), middleware.LocaleFromEcho(c), pg)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(views, total, pg))
}

func (h *Handler) Create(c echo.Context) error {
	var req CreateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	d, err := h.svc.Create(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, d)
}

func (h *Handler) Update(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req UpdateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	d, err := h.svc.Update(c.Request().Context(), id, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
