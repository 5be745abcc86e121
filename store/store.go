// Package store persists the clinic's documents: users, patients, medicines
// and prescriptions.
package store

import (
	"context"
	"errors"

	"github.com/ariebrainware/clinic-care/model"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// ErrNotFound is returned when a lookup by id or unique key matches nothing.
	ErrNotFound = errors.New("store: not found")
	// ErrDuplicate is returned when an insert violates a unique index.
	ErrDuplicate = errors.New("store: duplicate key")
)

// Store is the persistence surface the handlers depend on.
type Store interface {
	Ping(ctx context.Context) error

	FindUserByID(ctx context.Context, id primitive.ObjectID) (*model.User, error)
	FindUserByEmail(ctx context.Context, email string) (*model.User, error)
	CreateUser(ctx context.Context, user *model.User) error

	FindPatientByID(ctx context.Context, id primitive.ObjectID) (*model.Patient, error)
	FindPatientByCode(ctx context.Context, code string) (*model.Patient, error)
	CreatePatient(ctx context.Context, patient *model.Patient) error
	DeletePatient(ctx context.Context, id primitive.ObjectID) error
	// AssignDoctor sets the patient's assigned doctor only if none is set yet.
	AssignDoctor(ctx context.Context, patientID, doctorID primitive.ObjectID) error

	// ListMedicines returns the patient's medicines, newest first when newestFirst is set.
	ListMedicines(ctx context.Context, patientID primitive.ObjectID, newestFirst bool) ([]model.Medicine, error)
	FindMedicineByID(ctx context.Context, id primitive.ObjectID) (*model.Medicine, error)
	CreateMedicine(ctx context.Context, medicine *model.Medicine) error
	UpdateMedicine(ctx context.Context, medicine *model.Medicine) error
	DeleteMedicine(ctx context.Context, id primitive.ObjectID) error

	// ListPrescriptions returns the patient's prescriptions, most recent date first.
	ListPrescriptions(ctx context.Context, patientID primitive.ObjectID) ([]model.Prescription, error)
	CountPrescriptions(ctx context.Context, patientID primitive.ObjectID) (int64, error)
	CreatePrescription(ctx context.Context, prescription *model.Prescription) error
}

// ParseID parses a hex ObjectID, returning ErrNotFound for malformed input so
// callers can treat a bad id like a missing document.
func ParseID(hex string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, ErrNotFound
	}
	return id, nil
}
