package db

import "go.mongodb.org/mongo-driver/bson/primitive"

// NewID returns a fresh document id in ObjectID hex form.
func NewID() string {
	return primitive.NewObjectID().Hex()
}

// IsValidID reports whether s is a well-formed document id.
func IsValidID(s string) bool {
	_, err := primitive.ObjectIDFromHex(s)
	return err == nil
}
