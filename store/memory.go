package store

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ariebrainware/clinic-care/model"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryStore is an in-process Store with the same uniqueness rules as the
// MongoDB indexes (user email, patient code). It backs `serve --memory` and the
// handler tests.
type MemoryStore struct {
	mu            sync.RWMutex
	users         map[primitive.ObjectID]model.User
	patients      map[primitive.ObjectID]model.Patient
	medicines     map[primitive.ObjectID]model.Medicine
	prescriptions map[primitive.ObjectID]model.Prescription
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:         make(map[primitive.ObjectID]model.User),
		patients:      make(map[primitive.ObjectID]model.Patient),
		medicines:     make(map[primitive.ObjectID]model.Medicine),
		prescriptions: make(map[primitive.ObjectID]model.Prescription),
	}
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *MemoryStore) FindUserByID(_ context.Context, id primitive.ObjectID) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (s *MemoryStore) FindUserByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) CreateUser(_ context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == user.Email {
			return fmt.Errorf("insert into %s: %w", UsersCollection, ErrDuplicate)
		}
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	s.users[user.ID] = *user
	return nil
}

func (s *MemoryStore) FindPatientByID(_ context.Context, id primitive.ObjectID) (*model.Patient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.patients[id]
	if !ok {
		return nil, ErrNotFound
	}
	return clonePatient(p), nil
}

func (s *MemoryStore) FindPatientByCode(_ context.Context, code string) (*model.Patient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.patients {
		if p.PatientCode == code {
			return clonePatient(p), nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) CreatePatient(_ context.Context, patient *model.Patient) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.patients {
		if p.PatientCode == patient.PatientCode {
			return fmt.Errorf("insert into %s: %w", PatientsCollection, ErrDuplicate)
		}
	}
	if patient.ID.IsZero() {
		patient.ID = primitive.NewObjectID()
	}
	s.patients[patient.ID] = *clonePatient(*patient)
	return nil
}

func (s *MemoryStore) DeletePatient(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.patients[id]; !ok {
		return ErrNotFound
	}
	delete(s.patients, id)
	return nil
}

func (s *MemoryStore) AssignDoctor(_ context.Context, patientID, doctorID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.patients[patientID]
	if !ok || p.AssignedDoctor != nil {
		return nil
	}
	p.AssignedDoctor = &doctorID
	s.patients[patientID] = p
	return nil
}

func (s *MemoryStore) ListMedicines(_ context.Context, patientID primitive.ObjectID, newestFirst bool) ([]model.Medicine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []model.Medicine{}
	for _, m := range s.medicines {
		if m.Patient == patientID {
			out = append(out, m)
		}
	}
	// Map order is random; ascending id stands in for natural insertion order.
	sort.Slice(out, func(i, j int) bool {
		c := bytes.Compare(out[i].ID[:], out[j].ID[:])
		if newestFirst {
			return c > 0
		}
		return c < 0
	})
	return out, nil
}

func (s *MemoryStore) FindMedicineByID(_ context.Context, id primitive.ObjectID) (*model.Medicine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.medicines[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &m, nil
}

func (s *MemoryStore) CreateMedicine(_ context.Context, medicine *model.Medicine) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if medicine.ID.IsZero() {
		medicine.ID = primitive.NewObjectID()
	}
	s.medicines[medicine.ID] = *medicine
	if p, ok := s.patients[medicine.Patient]; ok {
		p.Medicines = append(append([]primitive.ObjectID{}, p.Medicines...), medicine.ID)
		s.patients[p.ID] = p
	}
	return nil
}

func (s *MemoryStore) UpdateMedicine(_ context.Context, medicine *model.Medicine) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.medicines[medicine.ID]
	if !ok {
		return ErrNotFound
	}
	existing.Name = medicine.Name
	existing.DosesRemaining = medicine.DosesRemaining
	existing.Frequency = medicine.Frequency
	existing.Reason = medicine.Reason
	s.medicines[medicine.ID] = existing
	return nil
}

func (s *MemoryStore) DeleteMedicine(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.medicines[id]
	if !ok {
		return ErrNotFound
	}
	delete(s.medicines, id)
	if p, ok := s.patients[m.Patient]; ok {
		kept := make([]primitive.ObjectID, 0, len(p.Medicines))
		for _, ref := range p.Medicines {
			if ref != id {
				kept = append(kept, ref)
			}
		}
		p.Medicines = kept
		s.patients[p.ID] = p
	}
	return nil
}

func (s *MemoryStore) ListPrescriptions(_ context.Context, patientID primitive.ObjectID) ([]model.Prescription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []model.Prescription{}
	for _, p := range s.prescriptions {
		if p.Patient == patientID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return bytes.Compare(out[i].ID[:], out[j].ID[:]) > 0
	})
	return out, nil
}

func (s *MemoryStore) CountPrescriptions(_ context.Context, patientID primitive.ObjectID) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, p := range s.prescriptions {
		if p.Patient == patientID {
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) CreatePrescription(_ context.Context, prescription *model.Prescription) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if prescription.ID.IsZero() {
		prescription.ID = primitive.NewObjectID()
	}
	if prescription.Date.IsZero() {
		prescription.Date = time.Now().UTC()
	}
	if prescription.Medicines == nil {
		prescription.Medicines = []model.PrescriptionLine{}
	}
	s.prescriptions[prescription.ID] = *prescription
	return nil
}

func clonePatient(p model.Patient) *model.Patient {
	p.Medicines = append([]primitive.ObjectID{}, p.Medicines...)
	p.Schedule = append([]model.ScheduleEntry{}, p.Schedule...)
	p.Notifications = append([]model.Notification{}, p.Notifications...)
	return &p
}
