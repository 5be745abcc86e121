package middleware

import (
	"errors"
	"net/http"

	"github.com/ariebrainware/clinic-care/model"
	"github.com/ariebrainware/clinic-care/store"
	"github.com/ariebrainware/clinic-care/util"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const patientKey = "patient"

// RequireAuthenticated redirects anonymous requests to the login page.
func RequireAuthenticated() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentUser(c); !ok {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireDoctorRole rejects any identity that is not a doctor.
func RequireDoctorRole() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok || !user.IsDoctor() {
			userID := ""
			if ok {
				userID = user.ID.Hex()
			}
			util.LogUnauthorizedAccess(userID, "", c.ClientIP(), c.Request.URL.Path, "doctor role required")
			util.CallUserNotAuthorized(c, "Doctors only")
			return
		}
		c.Next()
	}
}

// OwnsPatient reports whether user is the doctor assigned to patientID.
func OwnsPatient(user *model.User, patientID primitive.ObjectID) bool {
	return user != nil && user.IsDoctor() && user.Patient != nil && *user.Patient == patientID
}

// RequireAssignedPatient loads the patient named by the :id path parameter
// and allows the request only for that patient's doctor.
func RequireAssignedPatient() gin.HandlerFunc {
	return func(c *gin.Context) {
		st, ok := GetStore(c)
		if !ok {
			util.CallServerError(c, errors.New("store not configured"))
			return
		}
		id, err := store.ParseID(c.Param("id"))
		if err != nil {
			util.CallErrorNotFound(c, "Patient not found")
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

		user, ok := CurrentUser(c)
		if !ok || !OwnsPatient(user, patient.ID) {
			if ok {
				util.LogUnauthorizedAccess(user.ID.Hex(), user.Email, c.ClientIP(), c.Request.URL.Path, "patient not assigned")
			}
			util.CallUserNotAuthorized(c, "Unauthorized")
			return
		}
		c.Set(patientKey, patient)
		c.Next()
	}
}

// AssignedPatient returns the patient loaded by RequireAssignedPatient.
func AssignedPatient(c *gin.Context) *model.Patient {
	v, ok := c.Get(patientKey)
	if !ok {
		return nil
	}
	p, _ := v.(*model.Patient)
	return p
}
