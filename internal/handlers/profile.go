package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// completeProfileRequest carries the fulfillment fields required before
// checkout. All four are mandatory, matching the profile gate.
type completeProfileRequest struct {
	Phone    string `json:"phone" binding:"required"`
	Company  string `json:"company" binding:"required"`
	Position string `json:"position" binding:"required"`
	Address  string `json:"address" binding:"required"`
}

// CompleteProfile fills in the fulfillment fields on the current user.
// The checkout workflow sends incomplete profiles here before letting
// them submit.
func CompleteProfile(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /auth/me/profile"
		defer handlePanic(c, route)

		user, ok := currentUser(c, db)
		if !ok {
			return
		}

		var req completeProfileRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		update := bson.M{
			"phone":     strings.TrimSpace(req.Phone),
			"company":   strings.TrimSpace(req.Company),
			"position":  strings.TrimSpace(req.Position),
			"address":   strings.TrimSpace(req.Address),
			"updatedAt": time.Now(),
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		_, err := db.Collection("users").UpdateOne(ctx,
			bson.M{"_id": user.ID},
			bson.M{"$set": update},
		)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		user.Phone = update["phone"].(string)
		user.Company = update["company"].(string)
		user.Position = update["position"].(string)
		user.Address = update["address"].(string)

		log.Println("[AUTH] [INFO] profile completed for:", user.Email)
		c.JSON(http.StatusOK, userPayload(user))
	}
}

// GetProfileStatus reports whether the profile gate would pass, and
// which fields are still missing if not.
func GetProfileStatus(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /auth/me/profile"
		defer handlePanic(c, route)

		user, ok := currentUser(c, db)
		if !ok {
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"complete": user.ProfileComplete(),
			"missing":  user.MissingProfileFields(),
		})
	}
}
