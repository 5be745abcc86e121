package endpoint

import (
	"github.com/ariebrainware/clinic-care/insight"
	"github.com/ariebrainware/clinic-care/middleware"
	"github.com/ariebrainware/clinic-care/util"
	"github.com/ariebrainware/clinic-care/views"
	"github.com/gin-gonic/gin"
)

// AIInsights scores the assigned patient's vitals and prescription history.
func AIInsights(c *gin.Context) {
	st, ok := getStoreOrRespond(c)
	if !ok {
		return
	}
	patient := middleware.AssignedPatient(c)
	count, err := st.CountPrescriptions(c.Request.Context(), patient.ID)
	if err != nil {
		util.CallServerError(c, err)
		return
	}

	render(c, views.AIInsights, views.InsightsPage{
		ViewContext:       viewContext(c),
		Patient:           patient,
		PrescriptionCount: count,
		Report:            insight.Score(patient.Vitals.BP, patient.Vitals.Sugar, count),
	})
}
