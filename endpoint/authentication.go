package endpoint

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/ariebrainware/clinic-care/config"
	"github.com/ariebrainware/clinic-care/middleware"
	"github.com/ariebrainware/clinic-care/model"
	"github.com/ariebrainware/clinic-care/store"
	"github.com/ariebrainware/clinic-care/util"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type LoginForm struct {
	Email    string `form:"email"`
	Password string `form:"password"`
}

type SignupForm struct {
	Email     string `form:"email"`
	Password  string `form:"password"`
	Role      string `form:"role"`
	Name      string `form:"name"`
	PatientID string `form:"patientId"`
}

// Login checks the submitted credentials, opens a session and redirects by role.
func Login(c *gin.Context) {
	var form LoginForm
	_ = c.ShouldBind(&form)

	st, ok := getStoreOrRespond(c)
	if !ok {
		return
	}
	sessions, ok := getSessionStoreOrRespond(c)
	if !ok {
		return
	}

	ip, agent := c.ClientIP(), c.Request.UserAgent()
	email := util.NormalizeEmail(form.Email)

	user, err := authenticate(c.Request.Context(), st, email, form.Password)
	if errors.Is(err, ErrInvalidCredentials) {
		util.LogLoginFailure(email, ip, agent, "invalid credentials")
		util.RedirectWithFlash(c, "/login", "Invalid email or password")
		return
	}
	if err != nil {
		util.LogLoginFailure(email, ip, agent, "store error")
		util.CallServerError(c, err)
		return
	}

	// Drop any session this browser already had.
	if sid := middleware.SessionID(c); sid != "" {
		_ = sessions.Delete(c.Request.Context(), sid)
	}

	ttl := config.LoadConfig().SessionTTL
	sid, err := sessions.Create(c.Request.Context(), user.ID.Hex(), ttl)
	if err != nil {
		util.CallServerError(c, fmt.Errorf("create session: %w", err))
		return
	}
	token, err := util.SignSessionID(sid, ttl)
	if err != nil {
		_ = sessions.Delete(c.Request.Context(), sid)
		util.CallServerError(c, fmt.Errorf("sign session: %w", err))
		return
	}
	middleware.SetSessionCookie(c, token, ttl)
	util.LogLoginSuccess(user.ID.Hex(), user.Email, ip, agent)

	c.Redirect(http.StatusFound, loginRedirect(user))
}

func authenticate(ctx context.Context, st store.Store, email, password string) (*model.User, error) {
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	user, err := st.FindUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	match, err := util.VerifyPassword(password, user.Password)
	if err != nil {
		log.Warn().Err(err).Str("user_id", user.ID.Hex()).Msg("stored password hash unreadable")
		return nil, ErrInvalidCredentials
	}
	if !match {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func loginRedirect(user *model.User) string {
	switch {
	case user.IsDoctor():
		return "/doctor/dashboard"
	case user.Role == model.RolePatient && user.Patient != nil:
		return "/patient/" + user.PatientHex()
	default:
		return "/dashboard"
	}
}

// Signup registers a patient (creating their record) or a doctor (linked to
// an existing patient record).
func Signup(c *gin.Context) {
	var form SignupForm
	_ = c.ShouldBind(&form)

	st, ok := getStoreOrRespond(c)
	if !ok {
		return
	}

	user, err := registerUser(c.Request.Context(), st, form)
	email := util.NormalizeEmail(form.Email)
	if err != nil {
		msg, known := signupFailureMessage(err)
		util.LogSignup("", email, form.Role, c.ClientIP(), err.Error())
		if !known {
			util.ReportError(err, "signup failed")
		}
		util.RedirectWithFlash(c, "/signup", msg)
		return
	}

	util.LogSignup(user.ID.Hex(), user.Email, user.Role, c.ClientIP(), "")
	util.RedirectWithFlash(c, "/login", "Signup successful, please log in")
}

func signupFailureMessage(err error) (string, bool) {
	switch {
	case errors.Is(err, ErrDuplicateEmail):
		return "Email already registered", true
	case errors.Is(err, ErrDuplicatePatientCode):
		return "Patient ID already exists", true
	case errors.Is(err, ErrPatientNotFound):
		return "Patient ID not found", true
	case errors.Is(err, ErrInvalidSignup):
		return "Invalid signup details", true
	default:
		return "Signup failed.", false
	}
}

func registerUser(ctx context.Context, st store.Store, form SignupForm) (*model.User, error) {
	email := util.NormalizeEmail(form.Email)
	if email == "" || form.Password == "" || !model.ValidRole(form.Role) {
		return nil, ErrInvalidSignup
	}

	_, err := st.FindUserByEmail(ctx, email)
	if err == nil {
		return nil, ErrDuplicateEmail
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("check email: %w", err)
	}

	hash, err := util.HashPassword(form.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	code := strings.TrimSpace(form.PatientID)
	var created *model.Patient
	var patientRef primitive.ObjectID

	switch form.Role {
	case model.RolePatient:
		created, err = createPatientRecord(ctx, st, code, util.NormalizeName(form.Name))
		if err != nil {
			return nil, err
		}
		patientRef = created.ID
	case model.RoleDoctor:
		if code == "" {
			return nil, ErrPatientNotFound
		}
		patient, err := st.FindPatientByCode(ctx, code)
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrPatientNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("find patient: %w", err)
		}
		patientRef = patient.ID
	}

	user := &model.User{
		Email:    email,
		Password: hash,
		Role:     form.Role,
		Patient:  &patientRef,
	}
	if err := st.CreateUser(ctx, user); err != nil {
		if created != nil {
			if derr := st.DeletePatient(ctx, created.ID); derr != nil {
				log.Error().Err(derr).Str("patient_id", created.ID.Hex()).Msg("failed to remove orphaned patient")
			}
		}
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func createPatientRecord(ctx context.Context, st store.Store, code, name string) (*model.Patient, error) {
	if code != "" {
		_, err := st.FindPatientByCode(ctx, code)
		if err == nil {
			return nil, ErrDuplicatePatientCode
		}
		if !errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("check patient code: %w", err)
		}
	}
	patient, err := model.NewPatient(code, name)
	if err != nil {
		return nil, fmt.Errorf("new patient: %w", err)
	}
	if err := st.CreatePatient(ctx, &patient); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrDuplicatePatientCode
		}
		return nil, fmt.Errorf("create patient: %w", err)
	}
	return &patient, nil
}

// Logout ends the current session and returns to the home page. With
// ?all=1 every session of the user is ended.
func Logout(c *gin.Context) {
	user, loggedIn := middleware.CurrentUser(c)
	everywhere := loggedIn && c.Query("all") == "1"
	if sessions, ok := middleware.GetSessionStore(c); ok {
		ctx := c.Request.Context()
		if everywhere {
			if err := sessions.InvalidateUser(ctx, user.ID.Hex()); err != nil {
				log.Warn().Err(err).Str("user_id", user.ID.Hex()).Msg("failed to end user sessions")
			}
		} else if sid := middleware.SessionID(c); sid != "" {
			if err := sessions.Delete(ctx, sid); err != nil {
				log.Warn().Err(err).Msg("failed to delete session")
			}
		}
	}
	if loggedIn {
		util.LogLogout(user.ID.Hex(), user.Email, c.ClientIP(), c.Request.UserAgent())
	}
	middleware.ClearSessionCookie(c)
	c.Redirect(http.StatusFound, "/")
}
