package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"weather-dashboard/internal/repository"
	"weather-dashboard/internal/session"
)

const ctxKeyLog = "log"

// requestLogger tags every request with an id and logs its outcome.
func requestLogger(logger logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := uuid.NewString()
		start := time.Now()

		log := logger.WithFields(logrus.Fields{
			"http.req.path":   c.Request.URL.Path,
			"http.req.method": c.Request.Method,
			"http.req.id":     requestID,
		})
		c.Set(ctxKeyLog, log)
		log.Debug("request started")

		c.Next()

		log.WithFields(logrus.Fields{
			"http.resp.took_ms": int64(time.Since(start) / time.Millisecond),
			"http.resp.status":  c.Writer.Status(),
			"http.resp.bytes":   c.Writer.Size(),
		}).Info("request complete")
	}
}

// requestLog returns the request scoped logger, falling back to fallback.
func requestLog(c *gin.Context, fallback logrus.FieldLogger) logrus.FieldLogger {
	if v, ok := c.Get(ctxKeyLog); ok {
		if log, ok := v.(logrus.FieldLogger); ok {
			return log
		}
	}
	return fallback
}

// loadSession attaches the cookie identity to the request context.
// A cookie that fails verification, or names a user that no longer exists,
// is dropped and the request continues anonymously.
func (h *Handler) loadSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok, err := h.sessions.Load(c)
		if err != nil {
			requestLog(c, h.logger).WithError(err).Info("discarding invalid session cookie")
			h.sessions.Clear(c)
		}
		if ok {
			user, err := h.users.GetByID(c.Request.Context(), id.UserID)
			switch {
			case errors.Is(err, repository.ErrNotFound):
				requestLog(c, h.logger).WithField("user_id", id.UserID).Info("discarding session of unknown user")
				h.sessions.Clear(c)
			case err != nil:
				h.internalError(c, err)
				c.Abort()
				return
			default:
				c.Request = c.Request.WithContext(session.WithIdentity(c.Request.Context(), session.FromUser(user)))
			}
		}
		c.Next()
	}
}

func requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := session.FromContext(c.Request.Context()); !ok {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

func requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := session.FromContext(c.Request.Context())
		if !ok || !id.IsAdmin() {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

func currentIdentity(c *gin.Context) (session.Identity, bool) {
	return session.FromContext(c.Request.Context())
}
