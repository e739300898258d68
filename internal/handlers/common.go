package handlers

import (
	"net/http"
	"strconv"

	"github.com/anonto42/future-media/backend/internal/apperrors"
	"github.com/anonto42/future-media/backend/internal/auth"
	"github.com/anonto42/future-media/backend/internal/middleware"
	"github.com/anonto42/future-media/backend/internal/pagination"
	"github.com/labstack/echo/v4"
)

func getCaller(c echo.Context) auth.Caller {
	return middleware.CallerFrom(c)
}

// bindAndValidate decodes the request into req and runs struct validation.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return apperrors.BadRequest("invalid request payload")
	}
	if err := c.Validate(req); err != nil {
		return err
	}
	return nil
}

// pageParams reads ?limit= and ?cursor= from the query string.
func pageParams(c echo.Context) (pagination.Params, error) {
	var limit *int
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return pagination.Params{}, apperrors.BadRequest("limit must be a number")
		}
		limit = &n
	}
	return pagination.New(limit, c.QueryParam("cursor"))
}

func respond(c echo.Context, status int, data interface{}) error {
	return c.JSON(status, echo.Map{"success": true, "data": data})
}

func respondOK(c echo.Context, data interface{}) error {
	return respond(c, http.StatusOK, data)
}

func respondCreated(c echo.Context, data interface{}) error {
	return respond(c, http.StatusCreated, data)
}
