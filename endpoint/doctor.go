package endpoint

import (
	"errors"

	"github.com/ariebrainware/clinic-care/store"
	"github.com/ariebrainware/clinic-care/util"
	"github.com/ariebrainware/clinic-care/views"
	"github.com/gin-gonic/gin"
)

// DoctorDashboard shows the doctor's assigned patient and their medicines.
// The first visit claims the patient for this doctor.
func DoctorDashboard(c *gin.Context) {
	user, ok := currentUserOrRedirect(c)
	if !ok {
		return
	}
	st, ok := getStoreOrRespond(c)
	if !ok {
		return
	}

	pageData := views.DoctorDashboardPage{ViewContext: viewContext(c)}
	if user.Patient == nil {
		render(c, views.DoctorDashboard, pageData)
		return
	}

	ctx := c.Request.Context()
	patient, err := st.FindPatientByID(ctx, *user.Patient)
	if errors.Is(err, store.ErrNotFound) {
		render(c, views.DoctorDashboard, pageData)
		return
	}
	if err != nil {
		util.CallServerError(c, err)
		return
	}

	if patient.AssignedDoctor == nil {
		if err := st.AssignDoctor(ctx, patient.ID, user.ID); err != nil {
			util.CallServerError(c, err)
			return
		}
		// The claim is conditional; another doctor may have won it.
		patient, err = st.FindPatientByID(ctx, patient.ID)
		if err != nil {
			util.CallServerError(c, err)
			return
		}
	}

	medicines, err := st.ListMedicines(ctx, patient.ID, false)
	if err != nil {
		util.CallServerError(c, err)
		return
	}

	pageData.Patient = patient
	pageData.SharedCare = patient.AssignedDoctor != nil && *patient.AssignedDoctor != user.ID
	pageData.Medicines = medicines
	render(c, views.DoctorDashboard, pageData)
}
