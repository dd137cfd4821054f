// Package repositories maps the domain models onto docstore collections.
package repositories

import "github.com/bistroboss/bistro/pkg/docstore"

// Collection names as stored in MongoDB.
const (
	UsersCollection    = "users"
	MenuCollection     = "menu"
	ReviewsCollection  = "reviews"
	CartsCollection    = "carts"
	PaymentsCollection = "payments"
)

// DeleteResult mirrors the driver's delete acknowledgement.
type DeleteResult struct {
	DeletedCount int64 `json:"deletedCount"`
}

// UpdateResult mirrors the driver's update acknowledgement.
type UpdateResult struct {
	MatchedCount  int64  `json:"matchedCount"`
	ModifiedCount int64  `json:"modifiedCount"`
	UpsertedID    string `json:"upsertedId,omitempty"`
}

// InsertResult mirrors the driver's insert acknowledgement.
type InsertResult struct {
	InsertedID string `json:"insertedId"`
}

func toUpdateResult(r docstore.UpdateResult) UpdateResult {
	return UpdateResult{MatchedCount: r.Matched, ModifiedCount: r.Modified, UpsertedID: r.UpsertedID}
}
