package cart

import (
	"context"
	"errors"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"backend/internal/models"
)

// MongoRepository stores each cart as a single document in the carts
// collection, keyed by owner.
type MongoRepository struct {
	db *mongo.Database
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{db: db}
}

func (r *MongoRepository) Load(ctx context.Context, owner string) ([]models.CartLine, error) {
	var doc models.Cart
	err := r.db.Collection("carts").FindOne(ctx, bson.M{"owner": owner}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return []models.CartLine{}, nil
	}
	if err != nil {
		if isDecodeError(err) {
			// A document that no longer decodes is treated like an
			// absent cart; the next save overwrites it with a valid
			// blob.
			log.Println("[CART] [ERROR] malformed cart document, starting empty:", err)
			return []models.CartLine{}, nil
		}
		return nil, err
	}
	if doc.Lines == nil {
		return []models.CartLine{}, nil
	}
	return doc.Lines, nil
}

func isDecodeError(err error) bool {
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		return false
	}
	var serverErr mongo.ServerError
	if errors.As(err, &serverErr) {
		return false
	}
	return !mongo.IsTimeout(err) && !mongo.IsNetworkError(err)
}

func (r *MongoRepository) Save(ctx context.Context, owner string, lines []models.CartLine) error {
	doc := models.Cart{
		Owner:     owner,
		Lines:     lines,
		UpdatedAt: time.Now(),
	}

	_, err := r.db.Collection("carts").ReplaceOne(
		ctx,
		bson.M{"owner": owner},
		doc,
		options.Replace().SetUpsert(true),
	)
	return err
}
