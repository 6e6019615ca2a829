package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/jhoicas/Inventario-minero/pkg/logger"
)

// RequestLogger deja en el contexto de la petición un logger con empresa, usuario y request id,
// y registra método, ruta, estado y duración al terminar.
func RequestLogger(log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		reqID, _ := c.Locals(requestid.ConfigDefault.ContextKey).(string)
		l := log.WithFields(GetCompanyID(c), GetUserID(c), reqID)
		c.SetUserContext(logger.WithContext(c.UserContext(), l))

		err := c.Next()

		ev := l.Info()
		if c.Response().StatusCode() >= fiber.StatusInternalServerError {
			ev = l.Error()
		}
		ev.Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", c.Response().StatusCode()).
			Dur("duration", time.Since(start)).
			Msg("petición HTTP")
		return err
	}
}
