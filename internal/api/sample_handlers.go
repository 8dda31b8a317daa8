package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yourname/bloomhealth/internal/service"
)

func PostSample(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if app.SampleSink() == nil {
			HandleError(c, app.Logger(), service.ErrIngestUnsupported, http.StatusNotFound, "Failed to ingest sample")
			return
		}

		var body service.SampleRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			HandleError(c, app.Logger(), err, http.StatusBadRequest, "Invalid JSON")
			return
		}
		if err := service.ValidateSampleRequest(&body); err != nil {
			HandleError(c, app.Logger(), err, http.StatusBadRequest, "Validation failed")
			return
		}

		sample, err := service.IngestSample(app.SampleSink(), user, &body)
		if err != nil {
			HandleError(c, app.Logger(), err, http.StatusInternalServerError, "Failed to ingest sample")
			return
		}
		HandleStatus(c, app.Logger(), http.StatusCreated, sample, nil)
	}
}

func PutProfile(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if app.SampleSink() == nil {
			HandleError(c, app.Logger(), service.ErrIngestUnsupported, http.StatusNotFound, "Failed to update profile")
			return
		}

		var body service.ProfileRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			HandleError(c, app.Logger(), err, http.StatusBadRequest, "Invalid JSON")
			return
		}
		if err := service.ValidateProfileRequest(&body); err != nil {
			HandleError(c, app.Logger(), err, http.StatusBadRequest, "Validation failed")
			return
		}

		profile, err := service.UpdateProfile(app.SampleSink(), user, &body)
		if err != nil {
			HandleError(c, app.Logger(), err, http.StatusInternalServerError, "Failed to update profile")
			return
		}
		HandleSuccess(c, app.Logger(), profile, nil)
	}
}
