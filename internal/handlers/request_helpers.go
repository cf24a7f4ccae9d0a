package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"backend/internal/cart"
	"backend/internal/models"
)

// cartTokenHeader carries the anonymous cart ownership token. The
// server issues one on first cart access and echoes it back so the
// browser can pin its cart before logging in.
const cartTokenHeader = "X-Cart-Token"

func handlePanic(c *gin.Context, route string) {
	if r := recover(); r != nil {
		log.Printf("[%s] panic recovered: %v", route, r)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func ensureDBConnection(ctx context.Context, db *mongo.Database) error {
	checkCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	return db.Client().Ping(checkCtx, readpref.Primary())
}

func respondWithError(c *gin.Context, status int, route string, message string) {
	log.Printf("[%s] returning error %d: %s", route, status, message)
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

func respondValidationError(c *gin.Context, err error) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		details := make([]string, 0, len(validationErrors))
		for _, fieldError := range validationErrors {
			field := lowerCamel(fieldError.Field())
			switch fieldError.Tag() {
			case "required":
				details = append(details, fmt.Sprintf("%s is required", field))
			case "min":
				details = append(details, fmt.Sprintf("%s is below the minimum", field))
			default:
				details = append(details, fmt.Sprintf("%s is invalid", field))
			}
		}
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "validation failed",
			"details": details,
		})
		return
	}

	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body", "details": err.Error()})
}

func lowerCamel(field string) string {
	if field == "" {
		return field
	}
	return strings.ToLower(field[:1]) + field[1:]
}

// cartOwner resolves the cart ownership key for this request: the
// authenticated user id when present, otherwise the anonymous cart
// token, minting one if the browser has none yet. The token is always
// echoed on the response so the client can persist it.
func cartOwner(c *gin.Context) string {
	if userID, ok := c.Get("userId"); ok {
		if id, ok := userID.(primitive.ObjectID); ok {
			return id.Hex()
		}
	}

	token := presentedCartToken(c)
	if token == "" {
		token = uuid.NewString()
	}
	c.Header(cartTokenHeader, token)
	return token
}

func presentedCartToken(c *gin.Context) string {
	token := strings.TrimSpace(c.GetHeader(cartTokenHeader))
	if token == "" {
		token = strings.TrimSpace(c.Query("cartToken"))
	}
	return token
}

// resolveCartOwner keys the cart for this request. Authenticated
// requests that still carry an anonymous cart token first fold that
// cart into the user's, so lines added before login survive into
// checkout under the same key checkout reads.
func resolveCartOwner(c *gin.Context, store *cart.Store) string {
	owner := cartOwner(c)
	if _, authenticated := c.Get("userId"); !authenticated {
		return owner
	}

	token := presentedCartToken(c)
	if token == "" || token == owner {
		return owner
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := store.Adopt(ctx, token, owner); err != nil {
		log.Println("[CART] [ERROR] cart adoption failed:", err)
	}
	return owner
}

// currentUser loads the authenticated user's record for handlers that
// need the profile, not just the id.
func currentUser(c *gin.Context, db *mongo.Database) (models.User, bool) {
	userIDValue, ok := c.Get("userId")
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return models.User{}, false
	}
	userID, ok := userIDValue.(primitive.ObjectID)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return models.User{}, false
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	var user models.User
	if err := db.Collection("users").FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
		log.Println("[AUTH] [ERROR] user lookup failed:", err)
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return models.User{}, false
	}
	return user, true
}
