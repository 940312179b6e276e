package utils

import (
	"gadgethub/globals"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func GetUserIDFromRequest(r *http.Request) string {
	ctx := r.Context()
	requestingUserID, ok := ctx.Value(globals.UserIDKey).(string)
	if !ok || requestingUserID == "" {
		return ""
	}
	return requestingUserID
}

func GetRoleFromRequest(r *http.Request) string {
	role, _ := r.Context().Value(globals.RoleKey).(string)
	return role
}

func IsAdmin(r *http.Request) bool {
	return GetRoleFromRequest(r) == globals.RoleAdmin
}

func GetRequestID(r *http.Request) string {
	id, _ := r.Context().Value(globals.RequestIDKey).(string)
	return id
}

// UserObjectID returns the authenticated user's id. A missing or malformed id
// in the request context is reported as Unauthorized.
func UserObjectID(r *http.Request) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(GetUserIDFromRequest(r))
	if err != nil {
		return primitive.NilObjectID, Unauthorized("Unauthorized")
	}
	return oid, nil
}
