package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ScheduleEntry is a planned visit or procedure for a patient.
type ScheduleEntry struct {
	Date   time.Time `bson:"date" json:"date"`
	Type   string    `bson:"type" json:"type"`
	Status string    `bson:"status" json:"status"`
}

// Notification is a message shown on the patient's page.
type Notification struct {
	Message string    `bson:"message" json:"message"`
	Date    time.Time `bson:"date" json:"date"`
}

// Vitals are recorded as free text, exactly as typed by clinic staff.
type Vitals struct {
	BP          string `bson:"bp" json:"bp"`
	Sugar       string `bson:"sugar" json:"sugar"`
	Weight      string `bson:"weight" json:"weight"`
	Temperature string `bson:"temperature" json:"temperature"`
}

type Patient struct {
	ID             primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	PatientCode    string               `bson:"patientCode" json:"patientCode"`
	Name           string               `bson:"name" json:"name"`
	Age            int                  `bson:"age" json:"age"`
	Gender         string               `bson:"gender" json:"gender"`
	BloodGroup     string               `bson:"bloodGroup" json:"bloodGroup"`
	Phone          string               `bson:"phone" json:"phone"`
	Hospital       string               `bson:"hospital" json:"hospital"`
	Medicines      []primitive.ObjectID `bson:"medicines" json:"medicines"`
	Schedule       []ScheduleEntry      `bson:"schedule" json:"schedule"`
	Notifications  []Notification       `bson:"notifications" json:"notifications"`
	Vitals         Vitals               `bson:"vitals" json:"vitals"`
	AssignedDoctor *primitive.ObjectID  `bson:"assignedDoctor,omitempty" json:"assignedDoctor,omitempty"`
	Image          string               `bson:"image,omitempty" json:"image,omitempty"`
}

// NewPatient returns a patient with the given code and name. A blank code is
// replaced with a random one.
func NewPatient(code, name string) (Patient, error) {
	if code == "" {
		generated, err := GeneratePatientCode()
		if err != nil {
			return Patient{}, err
		}
		code = generated
	}
	return Patient{
		PatientCode:   code,
		Name:          name,
		Medicines:     []primitive.ObjectID{},
		Schedule:      []ScheduleEntry{},
		Notifications: []Notification{},
	}, nil
}
