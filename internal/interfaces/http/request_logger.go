package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/jhoicas/flota-crm-api/pkg/logger"
)

const localLogger = "logger"

// RequestLogger asigna un X-Request-ID y registra cada petición con zerolog.
// Los handlers recuperan el sublogger con el request_id desde c.Locals.
func RequestLogger(log *logger.Logger) []fiber.Handler {
	return []fiber.Handler{
		requestid.New(),
		func(c *fiber.Ctx) error {
			start := time.Now()
			reqID, _ := c.Locals(requestid.ConfigDefault.ContextKey).(string)
			reqLog := log.Component("http").WithStr("request_id", reqID)
			c.Locals(localLogger, reqLog)

			err := c.Next()
			if err != nil {
				// Deja que el ErrorHandler fije el status antes de registrar.
				if herr := c.App().ErrorHandler(c, err); herr != nil {
					return herr
				}
			}
			status := c.Response().StatusCode()
			ev := reqLog.Info()
			if status >= fiber.StatusInternalServerError {
				ev = reqLog.Error()
			} else if status >= fiber.StatusBadRequest {
				ev = reqLog.Warn()
			}
			ev.Str("method", c.Method()).
				Str("path", c.Path()).
				Int("status", status).
				Dur("latency", time.Since(start)).
				Str("user_id", GetUserID(c)).
				Msg("request")
			return nil
		},
	}
}
