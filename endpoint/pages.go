package endpoint

import (
	"net/http"

	"github.com/ariebrainware/clinic-care/middleware"
	"github.com/ariebrainware/clinic-care/util"
	"github.com/ariebrainware/clinic-care/views"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// page renders a template that needs nothing beyond the view context.
func page(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		render(c, name, viewContext(c))
	}
}

var (
	Home        = page(views.Home)
	HealthTips  = page(views.HealthTips)
	LoginPage   = page(views.Login)
	SignupPage  = page(views.Signup)
	About       = page(views.About)
	Contact     = page(views.Contact)
	Appointment = page(views.Appointment)
)

const dashboardActivityLimit = 10

// Dashboard greets the signed-in user and lists recent account activity.
func Dashboard(c *gin.Context) {
	pageData := views.DashboardPage{ViewContext: viewContext(c)}
	if user, ok := middleware.CurrentUser(c); ok {
		activity, err := util.RecentSecurityEvents(user.ID.Hex(), dashboardActivityLimit)
		if err != nil {
			log.Warn().Err(err).Str("user_id", user.ID.Hex()).Msg("could not load account activity")
		}
		pageData.Activity = activity
	}
	render(c, views.Dashboard, pageData)
}

// Healthz reports whether the document store answers a ping.
func Healthz(c *gin.Context) {
	st, ok := getStoreOrRespond(c)
	if !ok {
		return
	}
	if err := st.Ping(c.Request.Context()); err != nil {
		log.Warn().Err(err).Msg("health check failed")
		c.String(http.StatusServiceUnavailable, "unavailable")
		return
	}
	c.String(http.StatusOK, "ok")
}
