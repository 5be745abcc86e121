package endpoint

import (
	"fmt"
	"html/template"

	"github.com/ariebrainware/clinic-care/middleware"
	"github.com/ariebrainware/clinic-care/store"
	"github.com/ariebrainware/clinic-care/util"
	"github.com/ariebrainware/clinic-care/views"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterOptions carries the collaborators the HTTP layer is built from.
type RouterOptions struct {
	Store       store.Store
	Sessions    util.SessionStore
	Templates   *template.Template
	Logger      zerolog.Logger
	CORSOrigins []string
	// TrustedProxies are the only peers whose X-Forwarded-For is believed.
	TrustedProxies []string
	RateLimit      middleware.RateLimitConfig
}

// SetupRouter builds the gin engine with every page and form handler.
func SetupRouter(opts RouterOptions) (*gin.Engine, error) {
	r := gin.New()
	if err := r.SetTrustedProxies(opts.TrustedProxies); err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}
	r.SetHTMLTemplate(opts.Templates)

	r.Use(
		middleware.Recovery(opts.Logger),
		middleware.RequestID(),
		middleware.RequestLogger(opts.Logger),
		middleware.CORSMiddleware(opts.CORSOrigins),
		middleware.StoreMiddleware(opts.Store),
		middleware.SessionStoreMiddleware(opts.Sessions),
		middleware.LoadIdentity(),
		middleware.LoadFlash(),
	)

	r.StaticFS("/static", views.Static())
	r.GET("/healthz", Healthz)

	r.GET("/", Home)
	r.GET("/healthTips", HealthTips)
	r.GET("/about", About)
	r.GET("/contact", Contact)
	r.GET("/appointment", Appointment)
	r.GET("/login", LoginPage)
	r.GET("/signup", SignupPage)
	r.GET("/logout", Logout)

	limiter := middleware.RateLimiter(opts.RateLimit)
	r.POST("/login", limiter, Login)
	r.POST("/signup", limiter, Signup)

	authed := r.Group("/", middleware.RequireAuthenticated())
	authed.GET("/dashboard", Dashboard)
	authed.GET("/patient/:id", PatientDetail)
	authed.GET("/patient/:id/medicines", PatientMedicines)

	doctor := r.Group("/doctor", middleware.RequireAuthenticated(), middleware.RequireDoctorRole())
	doctor.GET("/dashboard", DoctorDashboard)
	doctor.POST("/medicine/:id/update", UpdateMedicine)
	doctor.POST("/medicine/:id/delete", DeleteMedicine)

	assigned := doctor.Group("/patient/:id", middleware.RequireAssignedPatient())
	assigned.GET("/medicines", DoctorMedicines)
	assigned.POST("/medicines", CreateMedicine)
	assigned.GET("/prescriptions", Prescriptions)
	assigned.POST("/prescriptions", CreatePrescription)
	assigned.GET("/ai-insights", AIInsights)

	return r, nil
}
