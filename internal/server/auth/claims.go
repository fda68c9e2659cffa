package auth

import (
	"strconv"

	"github.com/golang-jwt/jwt/v5"

	"github.com/authkeeper/authkeeper/internal/api"
)

// Claims are the registered claims plus the user's name and role.
type Claims struct {
	jwt.RegisteredClaims
	Name string `json:"name"`
	Role string `json:"role"`
}

// User projects the claims onto a UserDetail. A non-numeric subject maps to
// id 0.
func (c *Claims) User() api.UserDetail {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		id = 0
	}
	return api.UserDetail{ID: id, Username: c.Name, Role: c.Role}
}
