package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yourname/bloomhealth/internal/health"
	"github.com/yourname/bloomhealth/internal/service"
)

func sessionErrorStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrNoSession):
		return http.StatusNotFound
	case errors.Is(err, service.ErrNotAuthorized):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// PostSession activates the user's health view: the aggregator is created
// if needed and authorization is requested.
func PostSession(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		agg, granted := app.Hub().Activate(c.Request.Context(), user)
		HandleSuccess(c, app.Logger(), agg.Status(), map[string]any{"authorized": granted})
	}
}

func DeleteSession(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if !app.Hub().Deactivate(user.ID) {
			HandleError(c, app.Logger(), service.ErrNoSession, http.StatusNotFound, "Failed to close session")
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func GetSnapshot(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		agg, err := app.Hub().Get(currentUser(c).ID)
		if err != nil {
			HandleError(c, app.Logger(), err, sessionErrorStatus(err), "Failed to read snapshot")
			return
		}
		meta := map[string]any{
			"state":    agg.Status().State,
			"policies": agg.Policies().String(),
		}
		HandleSuccess(c, app.Logger(), agg.Snapshot(), meta)
	}
}

func GetStatus(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		agg, err := app.Hub().Get(currentUser(c).ID)
		if err != nil {
			HandleError(c, app.Logger(), err, sessionErrorStatus(err), "Failed to read status")
			return
		}
		HandleSuccess(c, app.Logger(), agg.Status(), nil)
	}
}

func GetDashboard(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		agg, err := app.Hub().Get(currentUser(c).ID)
		if err != nil {
			HandleError(c, app.Logger(), err, sessionErrorStatus(err), "Failed to build dashboard")
			return
		}
		HandleSuccess(c, app.Logger(), health.BuildDashboard(agg.Snapshot()), nil)
	}
}

// PostRefresh starts a new fetch cycle and answers before it completes.
func PostRefresh(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		agg, err := app.Hub().Refresh(currentUser(c).ID)
		if err != nil {
			HandleError(c, app.Logger(), err, sessionErrorStatus(err), "Failed to refresh")
			return
		}
		HandleStatus(c, app.Logger(), http.StatusAccepted, agg.Status(), nil)
	}
}

// PostPush queues the current snapshot for the document store and returns
// the id it will be stored under.
func PostPush(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := app.Hub().Push(c.Request.Context(), currentUser(c).ID)
		if err != nil {
			HandleError(c, app.Logger(), err, sessionErrorStatus(err), "Failed to push snapshot")
			return
		}
		HandleStatus(c, app.Logger(), http.StatusAccepted, gin.H{"id": id}, nil)
	}
}
