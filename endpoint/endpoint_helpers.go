package endpoint

import (
	"errors"
	"net/http"

	"github.com/ariebrainware/clinic-care/config"
	"github.com/ariebrainware/clinic-care/middleware"
	"github.com/ariebrainware/clinic-care/model"
	"github.com/ariebrainware/clinic-care/store"
	"github.com/ariebrainware/clinic-care/util"
	"github.com/ariebrainware/clinic-care/views"
	"github.com/gin-gonic/gin"
)

var (
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrInvalidSignup        = errors.New("invalid signup details")
	ErrDuplicateEmail       = errors.New("email already registered")
	ErrDuplicatePatientCode = errors.New("patient code already exists")
	ErrPatientNotFound      = errors.New("patient not found")
)

func getStoreOrRespond(c *gin.Context) (store.Store, bool) {
	st, ok := middleware.GetStore(c)
	if !ok || st == nil {
		util.CallServerError(c, errors.New("store not available"))
		return nil, false
	}
	return st, true
}

func getSessionStoreOrRespond(c *gin.Context) (util.SessionStore, bool) {
	sessions, ok := middleware.GetSessionStore(c)
	if !ok || sessions == nil {
		util.CallServerError(c, errors.New("session store not available"))
		return nil, false
	}
	return sessions, true
}

// viewContext collects what every page needs from the current request.
func viewContext(c *gin.Context) views.ViewContext {
	user, _ := middleware.CurrentUser(c)
	return views.NewViewContext(config.LoadConfig().AppName, user, middleware.Flash(c))
}

func render(c *gin.Context, name string, data interface{}) {
	c.HTML(http.StatusOK, name, data)
}

// loadPatientOrRespond resolves a patient by hex id; a malformed or unknown
// id is a 404.
func loadPatientOrRespond(c *gin.Context, st store.Store, hex string) (*model.Patient, bool) {
	id, err := store.ParseID(hex)
	if err != nil {
		util.CallErrorNotFound(c, "Patient not found")
		return nil, false
	}
	patient, err := st.FindPatientByID(c.Request.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		util.CallErrorNotFound(c, "Patient not found")
		return nil, false
	}
	if err != nil {
		util.CallServerError(c, err)
		return nil, false
	}
	return patient, true
}

func currentUserOrRedirect(c *gin.Context) (*model.User, bool) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.Redirect(http.StatusFound, "/login")
		c.Abort()
		return nil, false
	}
	return user, true
}
