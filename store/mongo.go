package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ariebrainware/clinic-care/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names.
const (
	UsersCollection         = "users"
	PatientsCollection      = "patients"
	MedicinesCollection     = "medicines"
	PrescriptionsCollection = "prescriptions"
)

// MongoStore implements Store on a MongoDB database.
type MongoStore struct {
	db            *mongo.Database
	users         *mongo.Collection
	patients      *mongo.Collection
	medicines     *mongo.Collection
	prescriptions *mongo.Collection
	timeout       time.Duration
}

var _ Store = (*MongoStore)(nil)

// NewMongoStore wraps db. Every call is bounded by timeout; zero means 5s.
func NewMongoStore(db *mongo.Database, timeout time.Duration) *MongoStore {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &MongoStore{
		db:            db,
		users:         db.Collection(UsersCollection),
		patients:      db.Collection(PatientsCollection),
		medicines:     db.Collection(MedicinesCollection),
		prescriptions: db.Collection(PrescriptionsCollection),
		timeout:       timeout,
	}
}

func (s *MongoStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

// EnsureIndexes creates the unique and lookup indexes the store relies on.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	indexes := map[*mongo.Collection][]mongo.IndexModel{
		s.users: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		s.patients: {
			{Keys: bson.D{{Key: "patientCode", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		s.medicines: {
			{Keys: bson.D{{Key: "patient", Value: 1}}},
		},
		s.prescriptions: {
			{Keys: bson.D{{Key: "patient", Value: 1}, {Key: "date", Value: -1}}},
		},
	}
	for coll, models := range indexes {
		if _, err := coll.Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", coll.Name(), err)
		}
	}
	return nil
}

func (s *MongoStore) Ping(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.db.Client().Ping(ctx, nil)
}

func findOne[T any](ctx context.Context, coll *mongo.Collection, filter interface{}) (*T, error) {
	var out T
	err := coll.FindOne(ctx, filter).Decode(&out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find in %s: %w", coll.Name(), err)
	}
	return &out, nil
}

func findAll[T any](ctx context.Context, coll *mongo.Collection, filter interface{}, opts ...*options.FindOptions) ([]T, error) {
	cursor, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, fmt.Errorf("find in %s: %w", coll.Name(), err)
	}
	defer cursor.Close(ctx)

	out := []T{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", coll.Name(), err)
	}
	return out, nil
}

func insert(ctx context.Context, coll *mongo.Collection, doc interface{}) error {
	if _, err := coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("insert into %s: %w", coll.Name(), ErrDuplicate)
		}
		return fmt.Errorf("insert into %s: %w", coll.Name(), err)
	}
	return nil
}

func (s *MongoStore) FindUserByID(ctx context.Context, id primitive.ObjectID) (*model.User, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return findOne[model.User](ctx, s.users, bson.M{"_id": id})
}

func (s *MongoStore) FindUserByEmail(ctx context.Context, email string) (*model.User, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return findOne[model.User](ctx, s.users, bson.M{"email": email})
}

func (s *MongoStore) CreateUser(ctx context.Context, user *model.User) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	return insert(ctx, s.users, user)
}

func (s *MongoStore) FindPatientByID(ctx context.Context, id primitive.ObjectID) (*model.Patient, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return findOne[model.Patient](ctx, s.patients, bson.M{"_id": id})
}

func (s *MongoStore) FindPatientByCode(ctx context.Context, code string) (*model.Patient, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return findOne[model.Patient](ctx, s.patients, bson.M{"patientCode": code})
}

func (s *MongoStore) CreatePatient(ctx context.Context, patient *model.Patient) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	if patient.ID.IsZero() {
		patient.ID = primitive.NewObjectID()
	}
	return insert(ctx, s.patients, patient)
}

func (s *MongoStore) DeletePatient(ctx context.Context, id primitive.ObjectID) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	res, err := s.patients.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete patient: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) AssignDoctor(ctx context.Context, patientID, doctorID primitive.ObjectID) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	filter := bson.M{
		"_id": patientID,
		"$or": bson.A{
			bson.M{"assignedDoctor": bson.M{"$exists": false}},
			bson.M{"assignedDoctor": nil},
		},
	}
	if _, err := s.patients.UpdateOne(ctx, filter, bson.M{"$set": bson.M{"assignedDoctor": doctorID}}); err != nil {
		return fmt.Errorf("assign doctor: %w", err)
	}
	return nil
}

func (s *MongoStore) ListMedicines(ctx context.Context, patientID primitive.ObjectID, newestFirst bool) ([]model.Medicine, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	opts := options.Find()
	if newestFirst {
		opts.SetSort(bson.D{{Key: "_id", Value: -1}})
	}
	return findAll[model.Medicine](ctx, s.medicines, bson.M{"patient": patientID}, opts)
}

func (s *MongoStore) FindMedicineByID(ctx context.Context, id primitive.ObjectID) (*model.Medicine, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return findOne[model.Medicine](ctx, s.medicines, bson.M{"_id": id})
}

// CreateMedicine inserts the medicine and appends its id to the patient's list.
func (s *MongoStore) CreateMedicine(ctx context.Context, medicine *model.Medicine) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	if medicine.ID.IsZero() {
		medicine.ID = primitive.NewObjectID()
	}
	if err := insert(ctx, s.medicines, medicine); err != nil {
		return err
	}
	update := bson.M{"$push": bson.M{"medicines": medicine.ID}}
	if _, err := s.patients.UpdateOne(ctx, bson.M{"_id": medicine.Patient}, update); err != nil {
		return fmt.Errorf("link medicine to patient: %w", err)
	}
	return nil
}

func (s *MongoStore) UpdateMedicine(ctx context.Context, medicine *model.Medicine) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	update := bson.M{"$set": bson.M{
		"name":           medicine.Name,
		"dosesRemaining": medicine.DosesRemaining,
		"frequency":      medicine.Frequency,
		"reason":         medicine.Reason,
	}}
	res, err := s.medicines.UpdateOne(ctx, bson.M{"_id": medicine.ID}, update)
	if err != nil {
		return fmt.Errorf("update medicine: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteMedicine removes the medicine and pulls it from its patient's list.
func (s *MongoStore) DeleteMedicine(ctx context.Context, id primitive.ObjectID) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	var removed model.Medicine
	err := s.medicines.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&removed)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("delete medicine: %w", err)
	}
	update := bson.M{"$pull": bson.M{"medicines": id}}
	if _, err := s.patients.UpdateOne(ctx, bson.M{"_id": removed.Patient}, update); err != nil {
		return fmt.Errorf("unlink medicine from patient: %w", err)
	}
	return nil
}

func (s *MongoStore) ListPrescriptions(ctx context.Context, patientID primitive.ObjectID) ([]model.Prescription, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	return findAll[model.Prescription](ctx, s.prescriptions, bson.M{"patient": patientID}, opts)
}

func (s *MongoStore) CountPrescriptions(ctx context.Context, patientID primitive.ObjectID) (int64, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	n, err := s.prescriptions.CountDocuments(ctx, bson.M{"patient": patientID})
	if err != nil {
		return 0, fmt.Errorf("count prescriptions: %w", err)
	}
	return n, nil
}

func (s *MongoStore) CreatePrescription(ctx context.Context, prescription *model.Prescription) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	if prescription.ID.IsZero() {
		prescription.ID = primitive.NewObjectID()
	}
	if prescription.Date.IsZero() {
		prescription.Date = time.Now().UTC()
	}
	if prescription.Medicines == nil {
		prescription.Medicines = []model.PrescriptionLine{}
	}
	return insert(ctx, s.prescriptions, prescription)
}
