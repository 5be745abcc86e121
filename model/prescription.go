package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PrescriptionLine is one medicine entry embedded in a prescription.
type PrescriptionLine struct {
	Name   string `bson:"name" json:"name"`
	Dosage string `bson:"dosage" json:"dosage"`
	Days   int    `bson:"days" json:"days"`
}

type Prescription struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Patient   primitive.ObjectID `bson:"patient" json:"patient"`
	Doctor    primitive.ObjectID `bson:"doctor" json:"doctor"`
	Medicines []PrescriptionLine `bson:"medicines" json:"medicines"`
	Notes     string             `bson:"notes" json:"notes"`
	Date      time.Time          `bson:"date" json:"date"`
}
