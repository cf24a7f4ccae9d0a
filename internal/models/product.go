package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Product struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name             string             `bson:"name" json:"name"`
	Description      string             `bson:"description,omitempty" json:"description,omitempty"`
	ShortDescription string             `bson:"shortDescription,omitempty" json:"shortDescription,omitempty"`
	ImageURL         string             `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	BasePrice        float64            `bson:"basePrice" json:"basePrice"`
	Category         string             `bson:"category,omitempty" json:"category,omitempty"`
	Materials        StringList         `bson:"materials" json:"materials"`
	Sizes            StringList         `bson:"sizes" json:"sizes"`
	Colors           StringList         `bson:"colors" json:"colors"`
	Features         StringList         `bson:"features" json:"features"`
	IsActive         bool               `bson:"isActive" json:"isActive"`
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
}

// HasOption reports whether value is one of the allowed entries in the
// given option set. Matching is exact; the UI always submits the stored
// option strings verbatim.
func HasOption(set StringList, value string) bool {
	for _, option := range set {
		if option == value {
			return true
		}
	}
	return false
}
