package utils

import (
	"net/http"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ParsePage reads ?page and ?limit, falling back to 1 and defLimit for
// missing or non-positive values. No upper bound is applied to limit.
func ParsePage(r *http.Request, defLimit int) (page, limit int) {
	q := r.URL.Query()

	page, _ = strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}

	limit, _ = strconv.Atoi(q.Get("limit"))
	if limit < 1 {
		limit = defLimit
	}
	return page, limit
}

// ParseOptionalFloat returns nil for an empty value.
func ParseOptionalFloat(s, field string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, Validation(field + " must be a number")
	}
	return &f, nil
}

// ParseObjectID converts a hex id, reporting malformed input as a validation error.
func ParseObjectID(id, what string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return primitive.NilObjectID, Validation("Invalid " + what + " ID")
	}
	return oid, nil
}
