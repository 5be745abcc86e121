package endpoint

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ariebrainware/clinic-care/middleware"
	"github.com/ariebrainware/clinic-care/model"
	"github.com/ariebrainware/clinic-care/util"
	"github.com/ariebrainware/clinic-care/views"
	"github.com/gin-gonic/gin"
)

// Prescriptions lists the assigned patient's prescriptions, newest first.
func Prescriptions(c *gin.Context) {
	st, ok := getStoreOrRespond(c)
	if !ok {
		return
	}
	patient := middleware.AssignedPatient(c)
	prescriptions, err := st.ListPrescriptions(c.Request.Context(), patient.ID)
	if err != nil {
		util.CallServerError(c, err)
		return
	}

	render(c, views.Prescriptions, views.PrescriptionsPage{
		ViewContext:   viewContext(c),
		Patient:       patient,
		Prescriptions: prescriptions,
	})
}

// CreatePrescription records a prescription written by the current doctor.
func CreatePrescription(c *gin.Context) {
	st, ok := getStoreOrRespond(c)
	if !ok {
		return
	}
	user, ok := currentUserOrRedirect(c)
	if !ok {
		return
	}
	patient := middleware.AssignedPatient(c)

	prescription := model.Prescription{
		Patient:   patient.ID,
		Doctor:    user.ID,
		Medicines: prescriptionLines(c.PostFormArray("medicine_name[]"), c.PostFormArray("medicine_dosage[]"), c.PostFormArray("medicine_days[]")),
		Notes:     strings.TrimSpace(c.PostForm("notes")),
		Date:      time.Now().UTC(),
	}
	if err := st.CreatePrescription(c.Request.Context(), &prescription); err != nil {
		util.CallServerError(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/doctor/patient/"+patient.ID.Hex()+"/prescriptions")
}

// prescriptionLines zips the parallel form arrays, skipping rows without a
// medicine name. Unparsable day counts become 0.
func prescriptionLines(names, dosages, days []string) []model.PrescriptionLine {
	lines := make([]model.PrescriptionLine, 0, len(names))
	for i, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		line := model.PrescriptionLine{Name: name}
		if i < len(dosages) {
			line.Dosage = strings.TrimSpace(dosages[i])
		}
		if i < len(days) {
			line.Days, _ = strconv.Atoi(strings.TrimSpace(days[i]))
		}
		lines = append(lines, line)
	}
	return lines
}
