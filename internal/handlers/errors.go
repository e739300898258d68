package handlers

import (
	"errors"
	"net/http"

	"github.com/anonto42/future-media/backend/internal/apperrors"
	"github.com/anonto42/future-media/backend/internal/metrics"
	"github.com/anonto42/future-media/backend/internal/middleware"
	"github.com/anonto42/future-media/backend/pkg/logger"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Code    apperrors.Code `json:"code"`
	Message string         `json:"message"`
}

// NewHTTPErrorHandler renders errors as {code, message}. Server errors are logged at
// error level with their cause and reported with a generic message; client errors are
// logged at warn. m may be nil.
func NewHTTPErrorHandler(m *metrics.Metrics) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		appErr := toAppError(err)
		status := appErr.Code.Status()
		fields := []zap.Field{
			logger.WithRequestID(middleware.RequestIDFrom(c)),
			zap.String("method", c.Request().Method),
			zap.String("path", c.Path()),
			zap.String("code", string(appErr.Code)),
			zap.Error(err),
		}
		body := ErrorResponse{Code: appErr.Code, Message: appErr.Message}
		if status >= http.StatusInternalServerError {
			logger.Log.Error("request failed", fields...)
			body.Message = "internal server error"
		} else {
			logger.Log.Warn("request rejected", fields...)
		}
		if m != nil {
			m.ErrorsTotal.WithLabelValues(string(appErr.Code)).Inc()
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, body)
		}
		if err != nil {
			logger.Log.Error("failed to write error response", zap.Error(err))
		}
	}
}

// toAppError maps echo's own errors (unknown route, bad method, oversized body) onto the
// taxonomy.
func toAppError(err error) *apperrors.Error {
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg := http.StatusText(he.Code)
		if s, ok := he.Message.(string); ok {
			msg = s
		}
		switch {
		case he.Code == http.StatusUnauthorized:
			return apperrors.Unauthorized(msg)
		case he.Code == http.StatusForbidden:
			return apperrors.Forbidden(msg)
		case he.Code == http.StatusNotFound:
			return &apperrors.Error{Code: apperrors.CodeNotFound, Message: msg}
		case he.Code >= 400 && he.Code < 500:
			return apperrors.BadRequest(msg)
		}
		return apperrors.Internal(msg, err)
	}
	return apperrors.Internal("internal server error", err)
}
