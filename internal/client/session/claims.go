package session

import (
	"fmt"
	"strconv"

	"github.com/golang-jwt/jwt/v5"

	"github.com/authkeeper/authkeeper/internal/api"
)

// userFromToken reads the user out of an unverified token. The server has
// already verified it; the client only needs the identity claims.
//
// id comes from sub, else nameid, and is 0 when not numeric. The username
// falls back through name, username and unique_name to the id.
func userFromToken(tok string) (api.UserDetail, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tok, claims); err != nil {
		return api.UserDetail{}, fmt.Errorf("parse token claims: %w", err)
	}

	rawID := firstString(claims, "sub", "nameid")
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		id = 0
	}

	name := firstString(claims, "name", "username", "unique_name")
	if name == "" {
		name = rawID
	}

	return api.UserDetail{ID: id, Username: name, Role: firstString(claims, "role")}, nil
}

func firstString(claims jwt.MapClaims, keys ...string) string {
	for _, k := range keys {
		switch v := claims[k].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}
