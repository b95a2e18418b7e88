package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/absentee/core"
	"github.com/trezcool/absentee/core/absence"
)

type absenceApi struct {
	svc *absence.Service
}

type absenceDefaults struct {
	Date core.Date `json:"date"`
}

func registerAbsenceAPI(g *echo.Group, svc *absence.Service) {
	api := absenceApi{svc: svc}

	g.GET("/teachers", api.queryTeachers)
	g.POST("/teachers/refresh", api.refreshTeachers)

	ag := g.Group("/absences")
	ag.GET("/defaults", api.defaults)
	ag.POST("", api.create)
}

// Handlers

func (api *absenceApi) queryTeachers(ctx echo.Context) error {
	teachers, err := api.svc.Teachers(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, teachers)
}

func (api *absenceApi) refreshTeachers(ctx echo.Context) error {
	teachers, err := api.svc.RefreshTeachers(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, teachers)
}

func (api *absenceApi) defaults(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, absenceDefaults{Date: api.svc.DefaultDate()})
}

// create answers 201 when tasks were written and 200 when there was nobody to notify.
func (api *absenceApi) create(ctx echo.Context) error {
	var data absence.NewAbsence
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAbsence")
	}
	if data.Date.IsZero() {
		data.Date = api.svc.DefaultDate()
	}

	report, err := api.svc.CreateTasks(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	if report.Created() {
		return ctx.JSON(http.StatusCreated, report)
	}
	return ctx.JSON(http.StatusOK, report)
}
