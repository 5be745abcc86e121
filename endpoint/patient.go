package endpoint

import (
	"errors"

	"github.com/ariebrainware/clinic-care/store"
	"github.com/ariebrainware/clinic-care/util"
	"github.com/ariebrainware/clinic-care/views"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PatientDetail renders a patient's record. Any logged-in user may view it.
func PatientDetail(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		util.CallUserError(c, "Invalid patient id")
		return
	}

	st, ok := getStoreOrRespond(c)
	if !ok {
		return
	}
	patient, err := st.FindPatientByID(c.Request.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		util.CallErrorNotFound(c, "Patient not found")
		return
	}
	if err != nil {
		util.CallServerError(c, err)
		return
	}

	render(c, views.PatientDetail, views.PatientPage{ViewContext: viewContext(c), Patient: patient})
}

// PatientMedicines lists a patient's medicines in insertion order.
func PatientMedicines(c *gin.Context) {
	st, ok := getStoreOrRespond(c)
	if !ok {
		return
	}
	patient, ok := loadPatientOrRespond(c, st, c.Param("id"))
	if !ok {
		return
	}
	medicines, err := st.ListMedicines(c.Request.Context(), patient.ID, false)
	if err != nil {
		util.CallServerError(c, err)
		return
	}

	render(c, views.PatientMedicines, views.MedicinesPage{
		ViewContext: viewContext(c),
		Patient:     patient,
		Medicines:   medicines,
	})
}
