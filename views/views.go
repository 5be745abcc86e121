// Package views holds the embedded HTML templates and stylesheet.
package views

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/ariebrainware/clinic-care/insight"
	"github.com/ariebrainware/clinic-care/model"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

// Template names rendered by the handlers.
const (
	Home             = "home.html"
	HealthTips       = "healthTips.html"
	Login            = "login.html"
	Signup           = "signup.html"
	About            = "about.html"
	Contact          = "contact.html"
	Appointment      = "appointment.html"
	Dashboard        = "dashboard.html"
	PatientDetail    = "patient.html"
	PatientMedicines = "patient_medicines.html"
	DoctorDashboard  = "doctor_dashboard.html"
	DoctorMedicines  = "doctor_medicines.html"
	Prescriptions    = "prescriptions.html"
	AIInsights       = "ai_insights.html"
)

var funcs = template.FuncMap{
	"date": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("2006-01-02")
	},
	"join": strings.Join,
}

// Load parses every page and partial into one template set.
func Load() (*template.Template, error) {
	return template.New("views").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
}

// Static serves the embedded stylesheet under /static.
func Static() http.FileSystem {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}

// ViewContext is the per-request state every page receives.
type ViewContext struct {
	AppName string
	User    *model.User
	Flash   string
	Year    int
}

// NewViewContext builds the context for one render.
func NewViewContext(appName string, user *model.User, flash string) ViewContext {
	return ViewContext{AppName: appName, User: user, Flash: flash, Year: time.Now().Year()}
}

// LoggedIn reports whether a user is attached to the request.
func (v ViewContext) LoggedIn() bool { return v.User != nil }

// IsDoctor reports whether the current user is a doctor.
func (v ViewContext) IsDoctor() bool { return v.User.IsDoctor() }

// DashboardPage lists recent account activity when an audit log is kept.
type DashboardPage struct {
	ViewContext
	Activity []model.SecurityLog
}

type PatientPage struct {
	ViewContext
	Patient *model.Patient
}

type MedicinesPage struct {
	ViewContext
	Patient   *model.Patient
	Medicines []model.Medicine
}

// DoctorDashboardPage renders an empty state when Patient is nil.
type DoctorDashboardPage struct {
	ViewContext
	Patient   *model.Patient
	Medicines []model.Medicine
	// SharedCare is set when the patient is assigned to a different doctor.
	SharedCare bool
}

type PrescriptionsPage struct {
	ViewContext
	Patient       *model.Patient
	Prescriptions []model.Prescription
}

type InsightsPage struct {
	ViewContext
	Patient           *model.Patient
	PrescriptionCount int64
	Report            insight.Report
}
