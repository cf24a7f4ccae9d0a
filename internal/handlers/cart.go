package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"backend/internal/cart"
	"backend/internal/models"
	"backend/internal/ws"
)

type addCartLineRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Material  string `json:"material" binding:"required"`
	Size      string `json:"size" binding:"required"`
	Color     string `json:"color" binding:"required"`
	Quantity  int    `json:"quantity"`
	Notes     string `json:"notes"`
}

// Quantity carries no binding tag: zero and negative values are valid
// input and get floored to 1 by the store, same as on add.
type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func cartResponse(lines []models.CartLine) gin.H {
	return gin.H{
		"lines": lines,
		"total": cart.Total(lines),
		"count": len(lines),
	}
}

func GetCart(store *cart.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /cart"
		defer handlePanic(c, route)

		owner := resolveCartOwner(c, store)
		lines := store.Load(c.Request.Context(), owner)
		c.JSON(http.StatusOK, cartResponse(lines))
	}
}

// AddCartLine is the producing collaborator for cart lines: it checks
// the configuration against the product's option sets here, so the
// store can trust every line it receives.
func AddCartLine(db *mongo.Database, store *cart.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /cart/items"
		defer handlePanic(c, route)

		var req addCartLineRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		productID, err := primitive.ObjectIDFromHex(strings.TrimSpace(req.ProductID))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid productId"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var product models.Product
		err = db.Collection("products").FindOne(ctx, bson.M{
			"_id":      productID,
			"isActive": bson.M{"$ne": false},
		}).Decode(&product)
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{
				"error":    "product not found",
				"redirect": "/catalog",
			})
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		if err := validateConfiguration(product, req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		line := models.CartLine{
			Product: models.CartProduct{
				ID:        product.ID.Hex(),
				Name:      product.Name,
				BasePrice: product.BasePrice,
				ImageURL:  product.ImageURL,
			},
			Material: req.Material,
			Size:     req.Size,
			Color:    req.Color,
			Quantity: req.Quantity,
			Notes:    strings.TrimSpace(req.Notes),
			AddedAt:  time.Now(),
		}

		owner := resolveCartOwner(c, store)
		lines, err := store.AddLine(ctx, owner, line)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusCreated, cartResponse(lines))
	}
}

func validateConfiguration(product models.Product, req addCartLineRequest) error {
	if !models.HasOption(product.Materials, req.Material) {
		return fmt.Errorf("material %q is not offered for %s", req.Material, product.Name)
	}
	if !models.HasOption(product.Sizes, req.Size) {
		return fmt.Errorf("size %q is not offered for %s", req.Size, product.Name)
	}
	if !models.HasOption(product.Colors, req.Color) {
		return fmt.Errorf("color %q is not offered for %s", req.Color, product.Name)
	}
	return nil
}

func UpdateCartLine(store *cart.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /cart/items/:index"
		defer handlePanic(c, route)

		index, err := strconv.Atoi(c.Param("index"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid index"})
			return
		}

		var req updateQuantityRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		owner := resolveCartOwner(c, store)
		lines, err := store.UpdateQuantity(c.Request.Context(), owner, index, req.Quantity)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusOK, cartResponse(lines))
	}
}

// RemoveCartLine removes by position. A stale index past the end is a
// no-op and still returns the current cart.
func RemoveCartLine(store *cart.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /cart/items/:index"
		defer handlePanic(c, route)

		index, err := strconv.Atoi(c.Param("index"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid index"})
			return
		}

		owner := resolveCartOwner(c, store)
		lines, err := store.RemoveLine(c.Request.Context(), owner, index)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusOK, cartResponse(lines))
	}
}

// CartFeed upgrades to a websocket that receives every cart-changed
// broadcast for this owner, keeping header badge and drawer in sync
// across tabs without a shared store instance.
func CartFeed(hub *ws.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		owner := cartOwner(c)
		hub.ServeCart(c.Writer, c.Request, owner)
	}
}
