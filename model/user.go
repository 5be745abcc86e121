package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is an account that can log in. For a doctor the Patient reference is the
// single patient the doctor is assigned to; for a patient it is their own record.
type User struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Email     string              `bson:"email" json:"email"`
	Password  string              `bson:"password" json:"-"`
	Role      string              `bson:"role" json:"role"`
	Patient   *primitive.ObjectID `bson:"patient,omitempty" json:"patient,omitempty"`
	CreatedAt time.Time           `bson:"createdAt" json:"createdAt"`
}

// IsDoctor reports whether the user signed up as a doctor.
func (u *User) IsDoctor() bool {
	return u != nil && u.Role == RoleDoctor
}

// PatientHex returns the hex form of the patient reference, or "" when unset.
func (u *User) PatientHex() string {
	if u == nil || u.Patient == nil {
		return ""
	}
	return u.Patient.Hex()
}
