package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"weather-dashboard/internal/service"
	"weather-dashboard/internal/session"
	"weather-dashboard/internal/weather"
)

// Handler wires HTTP routes to domain services.
type Handler struct {
	users    service.UserService
	cities   service.CityService
	weather  weather.Client
	sessions *session.Manager
	logger   logrus.FieldLogger
}

func NewHandler(users service.UserService, cities service.CityService, client weather.Client, sessions *session.Manager, logger logrus.FieldLogger) *Handler {
	if logger == nil {
		logger = logrus.New()
	}
	return &Handler{
		users:    users,
		cities:   cities,
		weather:  client,
		sessions: sessions,
		logger:   logger,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.SetHTMLTemplate(pageTemplates)
	router.Use(requestLogger(h.logger), h.loadSession())

	router.GET("/", h.home)
	router.GET("/login", h.loginPage)
	router.POST("/login", h.login)
	router.GET("/register", h.registerPage)
	router.POST("/register", h.register)
	router.GET("/logout", h.logout)

	authed := router.Group("/", requireAuth())
	{
		authed.GET("/dashboard", h.dashboard)
		authed.POST("/add", h.addCity)
		authed.GET("/delete/:id", h.deleteCity)
	}

	router.GET("/admin", requireAdmin(), h.admin)

	api := router.Group("/api")
	{
		api.GET("/weather", h.weatherLookup)
		api.GET("/health", func(ctx *gin.Context) {
			ctx.JSON(http.StatusOK, gin.H{"ok": "ok"})
		})
	}
}

// WeatherResponse is the public JSON view of a lookup. Error is null on success.
type WeatherResponse struct {
	weather.Snapshot
	Error *string `json:"error"`
}

func (h *Handler) weatherLookup(c *gin.Context) {
	city := strings.TrimSpace(c.Query("city"))
	country := strings.TrimSpace(c.Query("country"))
	if city == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing parameter: city"})
		return
	}

	snap, err := h.weather.Current(c.Request.Context(), city, country)
	if err != nil {
		var lookupErr *weather.LookupError
		if errors.As(err, &lookupErr) {
			c.JSON(http.StatusOK, gin.H{"error": lookupErr.Error()})
			return
		}
		requestLog(c, h.logger).WithError(err).Error("weather lookup")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, WeatherResponse{Snapshot: snap})
}
