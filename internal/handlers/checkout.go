package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"backend/internal/cart"
	"backend/internal/checkout"
	"backend/internal/metrics"
	"backend/internal/ws"
)

// Checkout runs one submission attempt for the authenticated user.
// Gate failures come back as redirect hints, mirroring the page flow:
// incomplete profile sends the client to the profile form, an empty
// cart back to the catalog.
func Checkout(db *mongo.Database, store *cart.Store, workflow *checkout.Workflow, hub *ws.Hub, m *metrics.StoreMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /checkout"
		defer handlePanic(c, route)

		if err := ensureDBConnection(c.Request.Context(), db); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "database unavailable")
			return
		}

		user, ok := currentUser(c, db)
		if !ok {
			return
		}

		owner := resolveCartOwner(c, store)
		result, err := workflow.Submit(c.Request.Context(), user, owner)
		if err != nil {
			var profileErr checkout.ProfileIncompleteError
			if errors.As(err, &profileErr) {
				c.JSON(http.StatusConflict, gin.H{
					"error":    "profile incomplete",
					"missing":  profileErr.Missing,
					"redirect": "/complete-profile",
				})
				return
			}
			if errors.Is(err, checkout.ErrCartEmpty) {
				c.JSON(http.StatusConflict, gin.H{
					"error":    "cart is empty",
					"redirect": "/catalog",
				})
				return
			}
			respondWithError(c, http.StatusInternalServerError, route, "checkout failed")
			return
		}

		m.OrdersCreated.Add(float64(len(result.Succeeded)))
		m.CheckoutFailures.Add(float64(len(result.Failed)))

		for _, order := range result.Succeeded {
			hub.BroadcastOrder(order)
		}

		switch {
		case result.Complete():
			c.JSON(http.StatusCreated, gin.H{
				"status":      "success",
				"orderNumber": result.OrderNumber,
				"orders":      result.Succeeded,
				"total":       result.Total,
			})
		case result.Partial():
			// Some records are committed and stand; the failed lines
			// are enumerated so the client can show exactly what did
			// not go through. The cart is left untouched.
			c.JSON(http.StatusMultiStatus, gin.H{
				"status":      "partial",
				"orderNumber": result.OrderNumber,
				"orders":      result.Succeeded,
				"failed":      result.Failed,
				"total":       result.Total,
			})
		default:
			c.JSON(http.StatusBadGateway, gin.H{
				"status": "failed",
				"error":  "no order could be created",
				"failed": result.Failed,
			})
		}
	}
}
