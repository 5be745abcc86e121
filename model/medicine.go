package model

import "go.mongodb.org/mongo-driver/bson/primitive"

type Medicine struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name           string             `bson:"name" json:"name"`
	DosesRemaining int                `bson:"dosesRemaining" json:"dosesRemaining"`
	Frequency      string             `bson:"frequency" json:"frequency"`
	Reason         string             `bson:"reason" json:"reason"`
	Patient        primitive.ObjectID `bson:"patient" json:"patient"`
}

// MedicineForm is the form body for creating or updating a medicine.
type MedicineForm struct {
	Name           string `form:"name" binding:"required"`
	DosesRemaining int    `form:"dosesRemaining"`
	Frequency      string `form:"frequency"`
	Reason         string `form:"reason"`
}

// Apply overwrites the mutable fields of m with the form values.
func (f MedicineForm) Apply(m *Medicine) {
	m.Name = f.Name
	m.DosesRemaining = f.DosesRemaining
	m.Frequency = f.Frequency
	m.Reason = f.Reason
}
