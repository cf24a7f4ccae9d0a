package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"backend/internal/models"
)

type productRequest struct {
	Name             string   `json:"name" binding:"required"`
	Description      string   `json:"description"`
	ShortDescription string   `json:"shortDescription"`
	ImageURL         string   `json:"imageUrl"`
	BasePrice        float64  `json:"basePrice" binding:"required,gt=0"`
	Category         string   `json:"category"`
	Materials        []string `json:"materials" binding:"required,min=1"`
	Sizes            []string `json:"sizes" binding:"required,min=1"`
	Colors           []string `json:"colors" binding:"required,min=1"`
	Features         []string `json:"features"`
	IsActive         *bool    `json:"isActive"`
}

func (r productRequest) toProduct() models.Product {
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}
	return models.Product{
		Name:             strings.TrimSpace(r.Name),
		Description:      strings.TrimSpace(r.Description),
		ShortDescription: strings.TrimSpace(r.ShortDescription),
		ImageURL:         strings.TrimSpace(r.ImageURL),
		BasePrice:        r.BasePrice,
		Category:         strings.TrimSpace(r.Category),
		Materials:        models.StringList(r.Materials),
		Sizes:            models.StringList(r.Sizes),
		Colors:           models.StringList(r.Colors),
		Features:         models.StringList(r.Features),
		IsActive:         active,
	}
}

func GetAllProducts(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/api/products"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cursor, err := db.Collection("products").Find(
			ctx,
			bson.M{},
			options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}),
		)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		defer cursor.Close(ctx)

		products := []models.Product{}
		if err := cursor.All(ctx, &products); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusOK, products)
	}
}

func CreateProduct(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin/api/products"
		defer handlePanic(c, route)

		var req productRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		product := req.toProduct()
		product.CreatedAt = time.Now()

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("products").InsertOne(ctx, product)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		product.ID = res.InsertedID.(primitive.ObjectID)

		c.JSON(http.StatusCreated, product)
	}
}

func UpdateProduct(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /admin/api/products/:id"
		defer handlePanic(c, route)

		productID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		var req productRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		product := req.toProduct()

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("products").UpdateOne(ctx,
			bson.M{"_id": productID},
			bson.M{"$set": bson.M{
				"name":             product.Name,
				"description":      product.Description,
				"shortDescription": product.ShortDescription,
				"imageUrl":         product.ImageURL,
				"basePrice":        product.BasePrice,
				"category":         product.Category,
				"materials":        product.Materials,
				"sizes":            product.Sizes,
				"colors":           product.Colors,
				"features":         product.Features,
				"isActive":         product.IsActive,
			}},
		)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if res.MatchedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}

		product.ID = productID
		c.JSON(http.StatusOK, product)
	}
}

func DeleteProduct(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /admin/api/products/:id"
		defer handlePanic(c, route)

		productID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("products").DeleteOne(ctx, bson.M{"_id": productID})
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if res.DeletedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "product deleted"})
	}
}
