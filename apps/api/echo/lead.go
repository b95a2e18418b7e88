package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/absentee/core/lead"
)

type leadApi struct {
	svc *lead.Service
}

func registerLeadAPI(g *echo.Group, svc *lead.Service) {
	api := leadApi{svc: svc}
	g.POST("/leads", api.submit)
}

func (api *leadApi) submit(ctx echo.Context) error {
	var data lead.Lead
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Lead")
	}
	if err := api.svc.Submit(ctx.Request().Context(), data); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"success": lead.SuccessMessage})
}
