package orders

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"backend/internal/models"
)

// ErrNotFound marks an order id that no longer resolves to a record,
// typically because the admin is acting on a stale listing.
var ErrNotFound = errors.New("order not found")

// Repository is the order slice of the storage gateway.
type Repository interface {
	Insert(ctx context.Context, order models.Order) (models.Order, error)
	Get(ctx context.Context, id primitive.ObjectID) (models.Order, error)
	List(ctx context.Context) ([]models.Order, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status Status) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type MongoRepository struct {
	db *mongo.Database
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{db: db}
}

func (r *MongoRepository) Insert(ctx context.Context, order models.Order) (models.Order, error) {
	if order.CreatedDate.IsZero() {
		order.CreatedDate = time.Now()
	}

	res, err := r.db.Collection("orders").InsertOne(ctx, order)
	if err != nil {
		return models.Order{}, err
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		order.ID = id
	}
	return order, nil
}

func (r *MongoRepository) Get(ctx context.Context, id primitive.ObjectID) (models.Order, error) {
	var order models.Order
	err := r.db.Collection("orders").FindOne(ctx, bson.M{"_id": id}).Decode(&order)
	if err == mongo.ErrNoDocuments {
		return models.Order{}, ErrNotFound
	}
	if err != nil {
		return models.Order{}, err
	}
	return order, nil
}

// List materializes every order, newest first. The admin view filters
// in memory; there is no pagination.
func (r *MongoRepository) List(ctx context.Context) ([]models.Order, error) {
	cursor, err := r.db.Collection("orders").Find(
		ctx,
		bson.M{},
		options.Find().SetSort(bson.D{{Key: "createdDate", Value: -1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var result []models.Order
	if err := cursor.All(ctx, &result); err != nil {
		return nil, err
	}
	if result == nil {
		result = []models.Order{}
	}
	return result, nil
}

func (r *MongoRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status Status) error {
	res, err := r.db.Collection("orders").UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": string(status)}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.db.Collection("orders").DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
