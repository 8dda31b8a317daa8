package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yourname/bloomhealth/internal"
)

// GetStream sends the current snapshot and then every new one as
// "snapshot" server-sent events until the client leaves or the session ends.
// A slow client only ever sees the latest snapshot.
func GetStream(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		agg, err := app.Hub().Get(currentUser(c).ID)
		if err != nil {
			HandleError(c, app.Logger(), err, sessionErrorStatus(err), "Failed to open stream")
			return
		}

		updates := make(chan internal.HealthSnapshot, 1)
		cancel := agg.Subscribe(func(s internal.HealthSnapshot) {
			for {
				select {
				case updates <- s:
					return
				default:
				}
				select {
				case <-updates:
				default:
				}
			}
		})
		defer cancel()

		c.Header("Content-Type", "text/event-stream")
		c.Header("Cache-Control", "no-cache")
		c.Header("Connection", "keep-alive")
		c.Status(http.StatusOK)

		c.SSEvent("snapshot", agg.Snapshot())
		c.Writer.Flush()
		for {
			select {
			case s := <-updates:
				c.SSEvent("snapshot", s)
				c.Writer.Flush()
			case <-agg.Done():
				return
			case <-c.Request.Context().Done():
				return
			}
		}
	}
}
