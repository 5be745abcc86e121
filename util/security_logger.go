package util

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/ariebrainware/clinic-care/model"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SecurityEventType represents different types of security events
type SecurityEventType string

const (
	EventLoginSuccess       SecurityEventType = "LOGIN_SUCCESS"
	EventLoginFailure       SecurityEventType = "LOGIN_FAILURE"
	EventSignupSuccess      SecurityEventType = "SIGNUP_SUCCESS"
	EventSignupFailure      SecurityEventType = "SIGNUP_FAILURE"
	EventLogout             SecurityEventType = "LOGOUT"
	EventUnauthorizedAccess SecurityEventType = "UNAUTHORIZED_ACCESS"
	EventRateLimitExceeded  SecurityEventType = "RATE_LIMIT_EXCEEDED"
	EventSuspiciousActivity SecurityEventType = "SUSPICIOUS_ACTIVITY"
)

// SecurityEvent represents a security event to be logged
type SecurityEvent struct {
	EventType SecurityEventType
	UserID    string
	Email     string
	IP        string
	UserAgent string
	Message   string
	Details   map[string]interface{}
}

var (
	securityMu     sync.RWMutex
	securityLogger = zerolog.New(os.Stdout).With().Timestamp().Str("component", "security").Logger()
	securityDB     *gorm.DB
)

// SetSecurityLogger replaces the logger security events are written to.
func SetSecurityLogger(logger zerolog.Logger) {
	securityMu.Lock()
	defer securityMu.Unlock()
	securityLogger = logger
}

// SetSecurityLoggerDB sets the audit database. Call it during startup after
// the database is opened; nil disables persistence.
func SetSecurityLoggerDB(db *gorm.DB) {
	securityMu.Lock()
	defer securityMu.Unlock()
	securityDB = db
}

func currentSecuritySinks() (zerolog.Logger, *gorm.DB) {
	securityMu.RLock()
	defer securityMu.RUnlock()
	return securityLogger, securityDB
}

// sanitizeLogValue removes newlines and other characters that could break log parsing
func sanitizeLogValue(value string) string {
	value = strings.NewReplacer("\n", " ", "\r", " ", "\t", " ").Replace(value)
	if len(value) > 200 {
		value = value[:200] + "..."
	}
	return value
}

// LogSecurityEvent logs a security event and, when an audit database is set,
// persists it. Persistence failures are logged and otherwise ignored.
func LogSecurityEvent(event SecurityEvent) {
	logger, db := currentSecuritySinks()

	city, country := GetIPLocation(event.IP)
	location := joinLocation(city, country)

	evt := logger.Info()
	if event.EventType == EventUnauthorizedAccess || event.EventType == EventLoginFailure || event.EventType == EventRateLimitExceeded {
		evt = logger.Warn()
	}
	evt.Str("event", string(event.EventType)).
		Str("user_id", sanitizeLogValue(event.UserID)).
		Str("email", sanitizeLogValue(event.Email)).
		Str("ip", sanitizeLogValue(event.IP)).
		Str("user_agent", sanitizeLogValue(event.UserAgent))
	if len(event.Details) > 0 {
		evt = evt.Fields(map[string]interface{}{"details": event.Details})
	}
	if location != "" {
		evt = evt.Str("location", location)
	}
	evt.Msg(sanitizeLogValue(event.Message))

	if db == nil {
		return
	}

	var details datatypes.JSON
	if event.Details != nil {
		if b, err := json.Marshal(event.Details); err == nil {
			details = datatypes.JSON(b)
		}
	}
	entry := model.SecurityLog{
		EventType: string(event.EventType),
		UserID:    sanitizeLogValue(event.UserID),
		Email:     sanitizeLogValue(event.Email),
		IP:        sanitizeLogValue(event.IP),
		Location:  sanitizeLogValue(location),
		UserAgent: sanitizeLogValue(event.UserAgent),
		Message:   sanitizeLogValue(event.Message),
		Details:   details,
	}
	if err := db.Create(&entry).Error; err != nil {
		logger.Error().Err(err).Msg("failed to persist security event")
	}
}

// RecentSecurityEvents returns the user's newest audit entries. It returns
// nil without error when no audit database is configured.
func RecentSecurityEvents(userID string, limit int) ([]model.SecurityLog, error) {
	_, db := currentSecuritySinks()
	if db == nil {
		return nil, nil
	}
	return model.RecentSecurityLogs(db, userID, limit)
}

func joinLocation(city, country string) string {
	switch {
	case city != "" && country != "":
		return city + "/" + country
	case country != "":
		return country
	default:
		return city
	}
}

// LogLoginSuccess logs a successful login event
func LogLoginSuccess(userID, email, ip, userAgent string) {
	LogSecurityEvent(SecurityEvent{
		EventType: EventLoginSuccess,
		UserID:    userID,
		Email:     email,
		IP:        ip,
		UserAgent: userAgent,
		Message:   "User logged in successfully",
	})
}

// LogLoginFailure logs a failed login attempt
func LogLoginFailure(email, ip, userAgent, reason string) {
	LogSecurityEvent(SecurityEvent{
		EventType: EventLoginFailure,
		Email:     email,
		IP:        ip,
		UserAgent: userAgent,
		Message:   fmt.Sprintf("Login failed: %s", reason),
	})
}

// LogSignup logs the outcome of a signup attempt. An empty reason means success.
func LogSignup(userID, email, role, ip, reason string) {
	event := SecurityEvent{
		EventType: EventSignupSuccess,
		UserID:    userID,
		Email:     email,
		IP:        ip,
		Message:   "User signed up",
		Details:   map[string]interface{}{"role": role},
	}
	if reason != "" {
		event.EventType = EventSignupFailure
		event.Message = fmt.Sprintf("Signup failed: %s", reason)
	}
	LogSecurityEvent(event)
}

// LogLogout logs a logout event
func LogLogout(userID, email, ip, userAgent string) {
	LogSecurityEvent(SecurityEvent{
		EventType: EventLogout,
		UserID:    userID,
		Email:     email,
		IP:        ip,
		UserAgent: userAgent,
		Message:   "User logged out",
	})
}

// LogUnauthorizedAccess logs unauthorized access attempts
func LogUnauthorizedAccess(userID, email, ip, resource, reason string) {
	LogSecurityEvent(SecurityEvent{
		EventType: EventUnauthorizedAccess,
		UserID:    userID,
		Email:     email,
		IP:        ip,
		Message:   fmt.Sprintf("Unauthorized access to %s: %s", resource, reason),
	})
}

// LogRateLimitExceeded logs when rate limit is exceeded
func LogRateLimitExceeded(ip, endpoint string) {
	LogSecurityEvent(SecurityEvent{
		EventType: EventRateLimitExceeded,
		IP:        ip,
		Message:   fmt.Sprintf("Rate limit exceeded for endpoint: %s", endpoint),
	})
}
