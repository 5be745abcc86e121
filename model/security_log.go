package model

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SecurityLog is a persisted audit entry for authentication and access events.
// Clinical data lives in MongoDB; the audit trail is kept in MySQL.
type SecurityLog struct {
	gorm.Model
	EventType string `json:"event_type" gorm:"column:event_type;type:varchar(64);index"`
	// UserID is the hex ObjectID of the acting user, empty for anonymous events.
	UserID string `json:"user_id" gorm:"column:user_id;type:varchar(24);index"`
	Email  string `json:"email" gorm:"column:email;type:varchar(191);index"`
	IP     string `json:"ip" gorm:"column:ip;type:varchar(45)"`
	// Location stores "City/Country" when a GeoIP database is configured.
	Location  string         `json:"location" gorm:"column:location;type:varchar(255)"`
	UserAgent string         `json:"user_agent" gorm:"column:user_agent;type:varchar(512)"`
	Message   string         `json:"message" gorm:"column:message;type:text"`
	Details   datatypes.JSON `json:"details" gorm:"column:details;type:json"`
}

// RecentSecurityLogs returns the newest entries for a user, newest first.
func RecentSecurityLogs(db *gorm.DB, userID string, limit int) ([]SecurityLog, error) {
	var logs []SecurityLog
	query := db.Where("user_id = ?", userID).Order("created_at DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&logs).Error
	return logs, err
}
