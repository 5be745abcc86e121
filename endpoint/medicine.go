package endpoint

import (
	"errors"
	"net/http"

	"github.com/ariebrainware/clinic-care/middleware"
	"github.com/ariebrainware/clinic-care/model"
	"github.com/ariebrainware/clinic-care/store"
	"github.com/ariebrainware/clinic-care/util"
	"github.com/ariebrainware/clinic-care/views"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func doctorMedicinesURL(patientID primitive.ObjectID) string {
	return "/doctor/patient/" + patientID.Hex() + "/medicines"
}

// DoctorMedicines lists the assigned patient's medicines, newest first.
func DoctorMedicines(c *gin.Context) {
	st, ok := getStoreOrRespond(c)
	if !ok {
		return
	}
	patient := middleware.AssignedPatient(c)
	medicines, err := st.ListMedicines(c.Request.Context(), patient.ID, true)
	if err != nil {
		util.CallServerError(c, err)
		return
	}

	render(c, views.DoctorMedicines, views.MedicinesPage{
		ViewContext: viewContext(c),
		Patient:     patient,
		Medicines:   medicines,
	})
}

// CreateMedicine adds a medicine to the assigned patient.
func CreateMedicine(c *gin.Context) {
	st, ok := getStoreOrRespond(c)
	if !ok {
		return
	}
	patient := middleware.AssignedPatient(c)

	form, ok := bindMedicineFormOrRedirect(c, doctorMedicinesURL(patient.ID))
	if !ok {
		return
	}

	medicine := model.Medicine{Patient: patient.ID}
	form.Apply(&medicine)
	if err := st.CreateMedicine(c.Request.Context(), &medicine); err != nil {
		util.CallServerError(c, err)
		return
	}
	c.Redirect(http.StatusFound, doctorMedicinesURL(patient.ID))
}

// bindMedicineFormOrRedirect binds the medicine form. A value that cannot be
// decoded fails before validation runs, so validator errors mean the name is missing.
func bindMedicineFormOrRedirect(c *gin.Context, back string) (model.MedicineForm, bool) {
	var form model.MedicineForm
	err := c.ShouldBind(&form)
	if err == nil {
		return form, true
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		util.RedirectWithFlash(c, back, "Medicine name is required")
	} else {
		util.RedirectWithFlash(c, back, "Doses remaining must be a whole number")
	}
	return form, false
}

// loadOwnedMedicineOrRespond loads the :id medicine and checks that it
// belongs to the current doctor's patient.
func loadOwnedMedicineOrRespond(c *gin.Context, st store.Store) (*model.Medicine, bool) {
	id, err := store.ParseID(c.Param("id"))
	if err != nil {
		util.CallErrorNotFound(c, "Medicine not found")
		return nil, false
	}
	medicine, err := st.FindMedicineByID(c.Request.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		util.CallErrorNotFound(c, "Medicine not found")
		return nil, false
	}
	if err != nil {
		util.CallServerError(c, err)
		return nil, false
	}

	user, ok := middleware.CurrentUser(c)
	if !ok || !middleware.OwnsPatient(user, medicine.Patient) {
		if ok {
			util.LogUnauthorizedAccess(user.ID.Hex(), user.Email, c.ClientIP(), c.Request.URL.Path, "medicine belongs to another patient")
		}
		util.CallUserNotAuthorized(c, "Unauthorized")
		return nil, false
	}
	return medicine, true
}

// UpdateMedicine overwrites a medicine's editable fields.
func UpdateMedicine(c *gin.Context) {
	st, ok := getStoreOrRespond(c)
	if !ok {
		return
	}
	medicine, ok := loadOwnedMedicineOrRespond(c, st)
	if !ok {
		return
	}

	form, ok := bindMedicineFormOrRedirect(c, doctorMedicinesURL(medicine.Patient))
	if !ok {
		return
	}
	form.Apply(medicine)
	if err := st.UpdateMedicine(c.Request.Context(), medicine); err != nil {
		util.CallServerError(c, err)
		return
	}
	c.Redirect(http.StatusFound, doctorMedicinesURL(medicine.Patient))
}

// DeleteMedicine removes a medicine and its reference from the patient.
func DeleteMedicine(c *gin.Context) {
	st, ok := getStoreOrRespond(c)
	if !ok {
		return
	}
	medicine, ok := loadOwnedMedicineOrRespond(c, st)
	if !ok {
		return
	}
	if err := st.DeleteMedicine(c.Request.Context(), medicine.ID); err != nil {
		util.CallServerError(c, err)
		return
	}
	c.Redirect(http.StatusFound, doctorMedicinesURL(medicine.Patient))
}
