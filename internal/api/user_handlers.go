package api

import "github.com/gin-gonic/gin"

type userView struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email,omitempty"`
	Initials string `json:"initials"`
}

func GetMe(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		HandleSuccess(c, app.Logger(), userView{
			ID:       user.ID,
			Name:     user.Name,
			Email:    user.Email,
			Initials: user.Initials(),
		}, nil)
	}
}
