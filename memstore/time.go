package memstore

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func createdAt(d bson.M) time.Time {
	switch t := d["createdAt"].(type) {
	case primitive.DateTime:
		return t.Time()
	case time.Time:
		return t
	default:
		return time.Time{}
	}
}
