package echoapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/quadbase/ocms/core/analytics"
)

const dateParamLayout = "2006-01-02"

type analyticsApi struct {
	svc *analytics.Service
}

func registerAnalyticsAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *analytics.Service) {
	api := analyticsApi{svc: svc}

	ag := g.Group("/analytics", jwt)
	ag.GET("", api.report)
	ag.GET("/matrix", api.matrix)
}

func (api *analyticsApi) report(ctx echo.Context) error {
	filter, err := bindAnalyticsFilter(ctx)
	if err != nil {
		return err
	}

	report, err := api.svc.Report(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "building analytics report")
	}
	return ctx.JSON(http.StatusOK, report)
}

func (api *analyticsApi) matrix(ctx echo.Context) error {
	matrix, err := api.svc.Matrix(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "building grade matrix")
	}
	return ctx.JSON(http.StatusOK, matrix)
}

func bindAnalyticsFilter(ctx echo.Context) (analytics.Filter, error) {
	filter := analytics.Filter{
		ProgramType: ctx.QueryParam("programType"),
		View:        analytics.View(ctx.QueryParam("view")),
	}

	if val := ctx.QueryParam("courseId"); val != "" {
		id, err := strconv.Atoi(val)
		if err != nil {
			return filter, echo.NewHTTPError(http.StatusBadRequest, "courseId must be an integer")
		}
		filter.CourseID = id
	}
	if val := ctx.QueryParam("startDate"); val != "" {
		t, err := time.Parse(dateParamLayout, val)
		if err != nil {
			return filter, echo.NewHTTPError(http.StatusBadRequest, "startDate must be YYYY-MM-DD")
		}
		filter.StartDate = t
	}
	if val := ctx.QueryParam("endDate"); val != "" {
		t, err := time.Parse(dateParamLayout, val)
		if err != nil {
			return filter, echo.NewHTTPError(http.StatusBadRequest, "endDate must be YYYY-MM-DD")
		}
		filter.EndDate = t
	}

	switch filter.View {
	case "", analytics.ViewCourse:
		filter.View = analytics.ViewCourse
	case analytics.ViewStudent:
	default:
		return filter, echo.NewHTTPError(http.StatusBadRequest, "view must be course or student")
	}
	return filter, nil
}
