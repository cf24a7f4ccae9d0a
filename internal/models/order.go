package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Order is one persisted commitment derived from a single cart line at
// checkout time. All lines submitted together share an order number but
// each record carries its own id and status.
type Order struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrderNumber     string             `bson:"orderNumber" json:"orderNumber"`
	CustomerName    string             `bson:"customerName" json:"customerName"`
	CustomerEmail   string             `bson:"customerEmail" json:"customerEmail"`
	CustomerPhone   string             `bson:"customerPhone" json:"customerPhone"`
	Company         string             `bson:"company" json:"company"`
	Position        string             `bson:"position,omitempty" json:"position,omitempty"`
	Address         string             `bson:"address" json:"address"`
	ProductName     string             `bson:"productName" json:"productName"`
	Material        string             `bson:"material" json:"material"`
	Size            string             `bson:"size" json:"size"`
	Color           string             `bson:"color" json:"color"`
	AdditionalNotes string             `bson:"additionalNotes,omitempty" json:"additionalNotes,omitempty"`
	Quantity        int                `bson:"quantity" json:"quantity"`
	TotalPrice      float64            `bson:"totalPrice" json:"totalPrice"`
	Status          string             `bson:"status" json:"status"`
	CreatedDate     time.Time          `bson:"createdDate" json:"createdDate"`
}
