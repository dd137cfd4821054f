package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CartEntry is one menu item in a user's cart. UserEmail is the owner.
type CartEntry struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	MenuItemID string             `bson:"menuItemId"    json:"menuItemId"`
	Name       string             `bson:"name"          json:"name"`
	Image      string             `bson:"image"         json:"image"`
	Price      float64            `bson:"price"         json:"price"`
	UserEmail  string             `bson:"userEmail"     json:"userEmail"`
}

// Payment is an append-only record of a confirmed charge. Price is in whole
// currency units; the processor was charged MinorUnits(Price).
type Payment struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Email         string             `bson:"email"         json:"email"`
	Price         float64            `bson:"price"         json:"price"`
	TransactionID string             `bson:"transactionId" json:"transactionId"`
	Date          time.Time          `bson:"date"          json:"date"`
	CartIDs       []string           `bson:"cartIds"       json:"cartIds"`
	MenuItemIDs   []string           `bson:"menuItemIds"   json:"menuItemIds"`
	Status        string             `bson:"status"        json:"status"`
}

// Payment statuses.
const (
	PaymentPending   = "pending"
	PaymentConfirmed = "confirmed"
)
