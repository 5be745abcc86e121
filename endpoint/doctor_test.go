package endpoint

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/ariebrainware/clinic-care/middleware"
	"github.com/ariebrainware/clinic-care/model"
	"github.com/ariebrainware/clinic-care/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func indexOf(s, sub string) int {
	return strings.Index(s, sub)
}

func TestDoctorDashboard_AutoAssigns(t *testing.T) {
	r, st := setupEndpointTest(t)
	p := seedPatient(t, st, "dash01", "Dana Patient", model.Vitals{})
	tc := loggedInDoctor(t, r, "doc@example.com", "dash01")

	w := tc.get("/doctor/dashboard")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Dana Patient")

	doctor, err := st.FindUserByEmail(context.Background(), "doc@example.com")
	require.NoError(t, err)
	stored, err := st.FindPatientByID(context.Background(), p.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.AssignedDoctor)
	assert.Equal(t, doctor.ID, *stored.AssignedDoctor)

	// A second doctor on the same patient does not take over the assignment.
	other := loggedInDoctor(t, r, "doc2@example.com", "dash01")
	assert.Equal(t, http.StatusOK, other.get("/doctor/dashboard").Code)
	stored, err = st.FindPatientByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, doctor.ID, *stored.AssignedDoctor)
}

func TestDoctorDashboard_DanglingPatient(t *testing.T) {
	r, st := setupEndpointTest(t)
	p := seedPatient(t, st, "gone01", "Gone", model.Vitals{})
	tc := loggedInDoctor(t, r, "doc@example.com", "gone01")
	require.NoError(t, st.DeletePatient(context.Background(), p.ID))

	w := tc.get("/doctor/dashboard")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "No patient is assigned to you yet.")
}

func TestMedicineCRUD(t *testing.T) {
	r, st := setupEndpointTest(t)
	p := seedPatient(t, st, "med001", "Mia", model.Vitals{})
	tc := loggedInDoctor(t, r, "doc@example.com", "med001")
	ctx := context.Background()
	listURL := "/doctor/patient/" + p.ID.Hex() + "/medicines"

	w := tc.post(listURL, url.Values{"name": {"Metformin"}, "dosesRemaining": {"30"}, "frequency": {"twice daily"}, "reason": {"diabetes"}})
	assertRedirect(t, w, listURL)
	w = tc.post(listURL, url.Values{"name": {"Amlodipine"}, "dosesRemaining": {"10"}})
	assertRedirect(t, w, listURL)

	meds, err := st.ListMedicines(ctx, p.ID, false)
	require.NoError(t, err)
	require.Len(t, meds, 2)
	assert.Equal(t, "Metformin", meds[0].Name)
	assert.Equal(t, 30, meds[0].DosesRemaining)

	stored, err := st.FindPatientByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{meds[0].ID, meds[1].ID}, stored.Medicines)

	// Doctor list is newest first.
	w = tc.get(listURL)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Less(t, indexOf(w.Body.String(), "Amlodipine"), indexOf(w.Body.String(), "Metformin"))

	updateURL := "/doctor/medicine/" + meds[0].ID.Hex() + "/update"
	w = tc.post(updateURL, url.Values{"name": {"Metformin XR"}, "dosesRemaining": {"25"}, "frequency": {"daily"}, "reason": {"diabetes"}})
	assertRedirect(t, w, listURL)
	updated, err := st.FindMedicineByID(ctx, meds[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "Metformin XR", updated.Name)
	assert.Equal(t, 25, updated.DosesRemaining)
	assert.Equal(t, "daily", updated.Frequency)

	w = tc.post("/doctor/medicine/"+meds[1].ID.Hex()+"/delete", nil)
	assertRedirect(t, w, listURL)
	meds, err = st.ListMedicines(ctx, p.ID, false)
	require.NoError(t, err)
	require.Len(t, meds, 1)
	stored, err = st.FindPatientByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{meds[0].ID}, stored.Medicines)
}

func TestCreateMedicine_RequiresName(t *testing.T) {
	r, st := setupEndpointTest(t)
	p := seedPatient(t, st, "med002", "Mo", model.Vitals{})
	tc := loggedInDoctor(t, r, "doc@example.com", "med002")
	listURL := "/doctor/patient/" + p.ID.Hex() + "/medicines"

	w := tc.post(listURL, url.Values{"name": {""}})
	assertRedirect(t, w, listURL)
	assert.Equal(t, "Medicine name is required", flashOf(w))

	meds, err := st.ListMedicines(context.Background(), p.ID, false)
	require.NoError(t, err)
	assert.Empty(t, meds)
}

func TestMedicineForm_NonNumericDoses(t *testing.T) {
	r, st := setupEndpointTest(t)
	p := seedPatient(t, st, "med004", "Mia", model.Vitals{})
	tc := loggedInDoctor(t, r, "doc@example.com", "med004")
	listURL := "/doctor/patient/" + p.ID.Hex() + "/medicines"
	ctx := context.Background()

	w := tc.post(listURL, url.Values{"name": {"Ibuprofen"}, "dosesRemaining": {"ten"}})
	assertRedirect(t, w, listURL)
	assert.Equal(t, "Doses remaining must be a whole number", flashOf(w))
	meds, err := st.ListMedicines(ctx, p.ID, false)
	require.NoError(t, err)
	assert.Empty(t, meds)

	assertRedirect(t, tc.post(listURL, url.Values{"name": {"Ibuprofen"}, "dosesRemaining": {"10"}}), listURL)
	meds, err = st.ListMedicines(ctx, p.ID, false)
	require.NoError(t, err)
	require.Len(t, meds, 1)

	w = tc.post("/doctor/medicine/"+meds[0].ID.Hex()+"/update", url.Values{"name": {"Ibuprofen"}, "dosesRemaining": {"a few"}})
	assertRedirect(t, w, listURL)
	assert.Equal(t, "Doses remaining must be a whole number", flashOf(w))

	w = tc.post("/doctor/medicine/"+meds[0].ID.Hex()+"/update", url.Values{"dosesRemaining": {"4"}})
	assert.Equal(t, "Medicine name is required", flashOf(w))

	stored, err := st.FindMedicineByID(ctx, meds[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 10, stored.DosesRemaining)
}

func TestMedicine_NotFound(t *testing.T) {
	r, st := setupEndpointTest(t)
	seedPatient(t, st, "med003", "Max", model.Vitals{})
	tc := loggedInDoctor(t, r, "doc@example.com", "med003")

	for _, path := range []string{
		"/doctor/medicine/" + primitive.NewObjectID().Hex() + "/update",
		"/doctor/medicine/not-an-id/update",
		"/doctor/medicine/" + primitive.NewObjectID().Hex() + "/delete",
	} {
		w := tc.post(path, url.Values{"name": {"x"}})
		assert.Equal(t, http.StatusNotFound, w.Code, path)
		assert.Equal(t, "Medicine not found", w.Body.String(), path)
	}
}

func TestDoctorCannotTouchOtherPatients(t *testing.T) {
	r, st := setupEndpointTest(t)
	mine := seedPatient(t, st, "own001", "Mine", model.Vitals{})
	theirs := seedPatient(t, st, "own002", "Theirs", model.Vitals{})
	theirMed := &model.Medicine{Name: "Warfarin", Patient: theirs.ID}
	require.NoError(t, st.CreateMedicine(context.Background(), theirMed))

	tc := loggedInDoctor(t, r, "doc@example.com", "own001")
	assert.Equal(t, http.StatusOK, tc.get("/doctor/patient/"+mine.ID.Hex()+"/medicines").Code)

	base := "/doctor/patient/" + theirs.ID.Hex()
	for _, path := range []string{base + "/medicines", base + "/prescriptions", base + "/ai-insights"} {
		w := tc.get(path)
		assert.Equal(t, http.StatusForbidden, w.Code, path)
		assert.Equal(t, "Unauthorized", w.Body.String(), path)
	}

	w := tc.post(base+"/medicines", url.Values{"name": {"Sneaky"}})
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = tc.post(base+"/prescriptions", url.Values{"medicine_name[]": {"Sneaky"}})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = tc.post("/doctor/medicine/"+theirMed.ID.Hex()+"/update", url.Values{"name": {"Changed"}})
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = tc.post("/doctor/medicine/"+theirMed.ID.Hex()+"/delete", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	stillThere, err := st.FindMedicineByID(context.Background(), theirMed.ID)
	require.NoError(t, err)
	assert.Equal(t, "Warfarin", stillThere.Name)

	w = tc.get("/doctor/patient/" + primitive.NewObjectID().Hex() + "/medicines")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Patient not found", w.Body.String())
}

// claimRaceStore returns a patient snapshot taken before another doctor's
// claim landed, once.
type claimRaceStore struct {
	*store.MemoryStore
	stale *model.Patient
}

func (s *claimRaceStore) FindPatientByID(ctx context.Context, id primitive.ObjectID) (*model.Patient, error) {
	if s.stale != nil && s.stale.ID == id {
		p := s.stale
		s.stale = nil
		return p, nil
	}
	return s.MemoryStore.FindPatientByID(ctx, id)
}

func TestDoctorDashboard_LostClaimShowsSharedCare(t *testing.T) {
	st := &claimRaceStore{MemoryStore: store.NewMemoryStore()}
	r := newTestRouter(t, st, middleware.RateLimitConfig{})
	p := seedPatient(t, st, "race01", "Rae", model.Vitals{})
	tc := loggedInDoctor(t, r, "doc@example.com", "race01")

	snapshot := *p
	rival := primitive.NewObjectID()
	require.NoError(t, st.AssignDoctor(context.Background(), p.ID, rival))
	st.stale = &snapshot

	w := tc.get("/doctor/dashboard")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "This patient is assigned to another doctor.")

	stored, err := st.MemoryStore.FindPatientByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, rival, *stored.AssignedDoctor)
}

func TestDoctorDashboard_OwnClaimHasNoNotice(t *testing.T) {
	r, st := setupEndpointTest(t)
	seedPatient(t, st, "race02", "Ray", model.Vitals{})
	tc := loggedInDoctor(t, r, "doc@example.com", "race02")

	w := tc.get("/doctor/dashboard")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "assigned to another doctor")
}
