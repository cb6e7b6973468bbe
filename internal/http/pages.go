package http

import (
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"weather-dashboard/internal/service"
	"weather-dashboard/internal/session"
	"weather-dashboard/internal/weather"
)

//go:embed templates/*.html
var templatesFS embed.FS

var pageTemplates = template.Must(template.New("").ParseFS(templatesFS, "templates/*.html"))

var registrationMessages = map[error]string{
	service.ErrUsernameTooShort:  "Username must be at least 3 characters.",
	service.ErrPasswordTooShort:  "Password must be at least 6 characters.",
	service.ErrUserAlreadyExists: "That username is already taken.",
}

const msgWrongCredentials = "Wrong username or password."

var pageTitles = map[string]string{
	"home.html":      "Welcome",
	"login.html":     "Log in",
	"register.html":  "Register",
	"dashboard.html": "Dashboard",
	"admin.html":     "Admin",
}

// cityCard is one rendered dashboard entry.
type cityCard struct {
	ID      int64
	Name    string
	Country string
	Weather weather.Snapshot
	Error   string
}

func (h *Handler) render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["Title"] = pageTitles[name]
	if _, ok := data["Username"]; !ok {
		data["Username"] = ""
	}
	if id, ok := currentIdentity(c); ok {
		data["User"] = id
	}
	c.HTML(status, name, data)
}

func (h *Handler) internalError(c *gin.Context, err error) {
	requestLog(c, h.logger).WithError(err).Error("request failed")
	c.String(http.StatusInternalServerError, "Internal server error")
}

func (h *Handler) home(c *gin.Context) {
	if _, ok := currentIdentity(c); ok {
		c.Redirect(http.StatusFound, "/dashboard")
		return
	}
	h.render(c, http.StatusOK, "home.html", nil)
}

func (h *Handler) loginPage(c *gin.Context) {
	h.render(c, http.StatusOK, "login.html", nil)
}

func (h *Handler) login(c *gin.Context) {
	username := strings.TrimSpace(c.PostForm("username"))
	password := c.PostForm("password")

	user, err := h.users.Authenticate(c.Request.Context(), username, password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			h.render(c, http.StatusOK, "login.html", gin.H{"Error": msgWrongCredentials, "Username": username})
			return
		}
		h.internalError(c, err)
		return
	}

	if err := h.sessions.Establish(c, session.FromUser(user)); err != nil {
		h.internalError(c, err)
		return
	}
	requestLog(c, h.logger).WithField("user", user.Username).Info("login")
	c.Redirect(http.StatusFound, "/dashboard")
}

func (h *Handler) registerPage(c *gin.Context) {
	h.render(c, http.StatusOK, "register.html", nil)
}

func (h *Handler) register(c *gin.Context) {
	username := c.PostForm("username")
	user, err := h.users.Register(c.Request.Context(), username, c.PostForm("password"))
	if err != nil {
		for target, msg := range registrationMessages {
			if errors.Is(err, target) {
				h.render(c, http.StatusOK, "register.html", gin.H{"Error": msg, "Username": strings.TrimSpace(username)})
				return
			}
		}
		h.internalError(c, err)
		return
	}

	if err := h.sessions.Establish(c, session.FromUser(user)); err != nil {
		h.internalError(c, err)
		return
	}
	requestLog(c, h.logger).WithField("user", user.Username).Info("registered")
	c.Redirect(http.StatusFound, "/dashboard")
}

func (h *Handler) logout(c *gin.Context) {
	h.sessions.Clear(c)
	c.Redirect(http.StatusFound, "/")
}

func (h *Handler) dashboard(c *gin.Context) {
	h.renderDashboard(c, "")
}

func (h *Handler) renderDashboard(c *gin.Context, errMsg string) {
	id, _ := currentIdentity(c)
	rows, err := h.cities.Dashboard(c.Request.Context(), id.UserID)
	if err != nil {
		h.internalError(c, err)
		return
	}

	cards := make([]cityCard, len(rows))
	for i, row := range rows {
		cards[i] = cityCard{
			ID:      row.City.ID,
			Name:    row.City.Name,
			Country: row.City.Country,
			Weather: row.Snapshot,
		}
		if row.Err != nil {
			cards[i].Error = row.Err.Error()
		}
	}

	data := gin.H{"Cards": cards}
	if errMsg != "" {
		data["Error"] = errMsg
	}
	h.render(c, http.StatusOK, "dashboard.html", data)
}

func (h *Handler) addCity(c *gin.Context) {
	id, _ := currentIdentity(c)
	_, err := h.cities.AddCity(c.Request.Context(), id.UserID, c.PostForm("name"), c.PostForm("country"))
	if err != nil {
		var lookupErr *weather.LookupError
		switch {
		case errors.Is(err, service.ErrEmptyCityName):
		case errors.As(err, &lookupErr):
			h.renderDashboard(c, lookupErr.Error())
			return
		default:
			h.internalError(c, err)
			return
		}
	}
	c.Redirect(http.StatusFound, "/dashboard")
}

func (h *Handler) deleteCity(c *gin.Context) {
	cityID, err := strconv.ParseUint(c.Param("id"), 10, 63)
	if err != nil {
		c.AbortWithStatus(http.StatusNotFound)
		return
	}

	id, _ := currentIdentity(c)
	if _, err := h.cities.DeleteCity(c.Request.Context(), int64(cityID), id.UserID); err != nil {
		h.internalError(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/dashboard")
}

func (h *Handler) admin(c *gin.Context) {
	summary, err := h.cities.Summary(c.Request.Context())
	if err != nil {
		h.internalError(c, err)
		return
	}
	h.render(c, http.StatusOK, "admin.html", gin.H{
		"Users":       summary.Users,
		"TotalCities": summary.TotalCities,
	})
}
