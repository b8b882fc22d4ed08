package middleware

import (
	"net/http"

	"github.com/deppfellow/tutorial-service/internal/errs"
	"github.com/deppfellow/tutorial-service/internal/server"
	"github.com/deppfellow/tutorial-service/internal/sqlerr"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// GlobalMiddlewares groups the middleware applied to every route and the
// global error handler.
type GlobalMiddlewares struct {
	server *server.Server
}

func NewGlobalMiddlewares(s *server.Server) *GlobalMiddlewares {
	return &GlobalMiddlewares{
		server: s,
	}
}

// CORS allows the origins in server.cors_allowed_origins, trace headers
// included.
func (global *GlobalMiddlewares) CORS() echo.MiddlewareFunc {
	return middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: global.server.Config.Server.CORSAllowedOrigins,
		AllowHeaders: []string{
			echo.HeaderOrigin,
			echo.HeaderContentType,
			echo.HeaderAccept,
			RequestIDHeader,
			ClientMessageIDHeader,
			TransactionIDHeader,
		},
		ExposeHeaders: []string{RequestIDHeader},
	})
}

// RequestLogger writes one "API" line per request at a level picked from
// the final status.
func (global *GlobalMiddlewares) RequestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:     true,
		LogStatus:  true,
		LogError:   true,
		LogLatency: true,
		LogHost:    true,
		LogMethod:  true,
		LogURIPath: true,

		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			statusCode := v.Status

			// The error handler has not written the response yet when a
			// handler fails, so the status comes from the error.
			// See https://github.com/labstack/echo/issues/2310#issuecomment-1288196898
			if v.Error != nil {
				statusCode = statusFromError(v.Error)
			}

			logger := GetLogger(c)

			var e *zerolog.Event
			switch {
			case statusCode >= 500:
				e = logger.Error().Err(v.Error)
			case statusCode >= 400:
				e = logger.Warn()
			default:
				e = logger.Info()
			}

			e.
				Dur("latency", v.Latency).
				Int("status", statusCode).
				Str("method", v.Method).
				Str("uri", v.URI).
				Str("host", v.Host).
				Str("ip", c.RealIP()).
				Str("user_agent", c.Request().UserAgent()).
				Msg("API")

			return nil
		},
	})
}

func (global *GlobalMiddlewares) Recover() echo.MiddlewareFunc {
	return middleware.Recover()
}

func (global *GlobalMiddlewares) Secure() echo.MiddlewareFunc {
	return middleware.Secure()
}

// statusFromError mirrors the status GlobalErrorHandler will write for err.
func statusFromError(err error) int {
	var statusErr *errs.StatusError
	var httpErr *errs.HTTPError
	var echoErr *echo.HTTPError

	switch {
	case errors.As(err, &statusErr):
		return statusErr.Status
	case errs.IsMissingHeader(err):
		return http.StatusBadRequest
	case errors.As(err, &httpErr):
		return httpErr.Status
	case errors.As(err, &echoErr):
		return echoErr.Code
	default:
		var mapped *errs.HTTPError
		if errors.As(sqlerr.HandleError(err), &mapped) {
			return mapped.Status
		}
		return http.StatusInternalServerError
	}
}

// GlobalErrorHandler is where every returned error ends up.
//
// A *errs.StatusError answers with its status and no body. Everything else
// answers with an errs.ErrorMessage. The original error is always logged
// with the request-scoped logger.
func (global *GlobalMiddlewares) GlobalErrorHandler(err error, c echo.Context) {
	logger := *GetLogger(c)
	path := c.Request().URL.Path

	var statusErr *errs.StatusError
	if errors.As(err, &statusErr) {
		logStatusError(logger, err, statusErr.Status)
		if !c.Response().Committed {
			_ = c.NoContent(statusErr.Status)
		}
		return
	}

	body := errorMessageFor(err, path)
	logStatusError(logger, err, body.Status)

	if !c.Response().Committed {
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(body.Status)
			return
		}
		_ = c.JSON(body.Status, body)
	}
}

func errorMessageFor(err error, path string) errs.ErrorMessage {
	var missingHeader *errs.MissingHeaderError
	if errors.As(err, &missingHeader) {
		return errs.NewErrorMessage(http.StatusBadRequest, missingHeader.Error(), path)
	}

	var httpErr *errs.HTTPError
	if !errors.As(err, &httpErr) {
		var echoErr *echo.HTTPError
		if errors.As(err, &echoErr) {
			if echoErr.Code == http.StatusNotFound {
				return errs.NewErrorMessage(http.StatusNotFound, "Route not found", path)
			}

			message, ok := echoErr.Message.(string)
			if !ok {
				message = http.StatusText(echoErr.Code)
			}
			return errs.NewErrorMessage(echoErr.Code, message, path)
		}

		// Likely a store error that escaped the handlers.
		errors.As(sqlerr.HandleError(err), &httpErr)
	}

	if httpErr == nil {
		return errs.NewErrorMessage(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError), path)
	}

	body := errs.NewErrorMessage(httpErr.Status, httpErr.Message, path)
	body.Errors = httpErr.Errors
	return body
}

func logStatusError(logger zerolog.Logger, err error, status int) {
	var e *zerolog.Event
	if status >= http.StatusInternalServerError {
		e = logger.Error().Stack()
	} else {
		e = logger.Warn()
	}

	e.Err(err).
		Int("status", status).
		Str("error_code", errs.MakeUpperCaseWithUnderscores(http.StatusText(status))).
		Msg("request failed")
}
