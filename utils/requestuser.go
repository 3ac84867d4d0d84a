package utils

import (
	"net/http"

	"panierbio/globals"
)

// GetUserIDFromRequest returns the authenticated user's id, or "" when the
// request carried no valid token.
func GetUserIDFromRequest(r *http.Request) string {
	userID, ok := r.Context().Value(globals.UserIDKey).(string)
	if !ok {
		return ""
	}
	return userID
}

func GetUserNameFromRequest(r *http.Request) string {
	name, ok := r.Context().Value(globals.UserNameKey).(string)
	if !ok {
		return ""
	}
	return name
}

func GetRoleFromRequest(r *http.Request) string {
	role, ok := r.Context().Value(globals.RoleKey).(string)
	if !ok {
		return ""
	}
	return role
}
