package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/tealeg/xlsx"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"backend/internal/metrics"
	"backend/internal/models"
	"backend/internal/orders"
	"backend/internal/ws"
)

// GetAdminOrders lists orders for the admin dashboard. The client
// polls this on a fixed interval; every response includes the
// new-orders badge value, and `?refresh=1` marks a manual refresh,
// which resets the badge.
func GetAdminOrders(service *orders.Service, tracker *orders.Tracker) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/api/orders"
		defer handlePanic(c, route)

		filter := orders.Filter{
			Query:  c.Query("q"),
			Status: c.Query("status"),
		}

		// One repository read per poll: the badge tracks the unfiltered
		// total, so fetch everything once and narrow in memory.
		all, err := service.List(c.Request.Context(), orders.Filter{})
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		matched := make([]models.Order, 0, len(all))
		for _, order := range all {
			if filter.Matches(order) {
				matched = append(matched, order)
			}
		}

		newOrders := tracker.Observe(len(all))
		if c.Query("refresh") == "1" {
			tracker.Reset()
			newOrders = 0
		}

		c.JSON(http.StatusOK, gin.H{
			"orders":    matched,
			"newOrders": newOrders,
		})
	}
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func UpdateOrderStatus(service *orders.Service, m *metrics.StoreMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PATCH /admin/api/orders/:id/status"
		defer handlePanic(c, route)

		orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		var req updateStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		status, ok := orders.ParseStatus(strings.TrimSpace(req.Status))
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status"})
			return
		}

		if err := service.SetStatus(c.Request.Context(), orderID, status); err != nil {
			if errors.Is(err, orders.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "order no longer exists, refresh the list"})
				return
			}
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		m.StatusUpdates.WithLabelValues(string(status)).Inc()
		c.JSON(http.StatusOK, gin.H{"message": "status updated", "status": status})
	}
}

func DeleteOrder(service *orders.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /admin/api/orders/:id"
		defer handlePanic(c, route)

		orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		if err := service.Delete(c.Request.Context(), orderID); err != nil {
			if errors.Is(err, orders.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
				return
			}
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "order deleted"})
	}
}

// GetOrderStats feeds the dashboard cards: one count per status plus
// the total.
func GetOrderStats(service *orders.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/api/orders/stats"
		defer handlePanic(c, route)

		counts, total, err := service.Stats(c.Request.Context())
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		byStatus := gin.H{}
		for _, status := range orders.AllStatuses() {
			byStatus[string(status)] = counts[status]
		}

		c.JSON(http.StatusOK, gin.H{
			"total":    total,
			"byStatus": byStatus,
		})
	}
}

// ExportOrders streams the filtered order list as an xlsx download.
func ExportOrders(service *orders.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/api/orders/export"
		defer handlePanic(c, route)

		filter := orders.Filter{
			Query:  c.Query("q"),
			Status: c.Query("status"),
		}

		matched, err := service.List(c.Request.Context(), filter)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		file := xlsx.NewFile()
		sheet, err := file.AddSheet("Orders")
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "failed to create sheet")
			return
		}

		headerRow := sheet.AddRow()
		for _, h := range orderExportHeaders() {
			headerRow.AddCell().SetValue(h)
		}
		for _, order := range matched {
			addOrderRow(sheet, order)
		}

		c.Header("Content-Disposition", "attachment; filename=orders.xlsx")
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Transfer-Encoding", "binary")

		if err := file.Write(c.Writer); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "failed to write file")
			return
		}
	}
}

func orderExportHeaders() []string {
	return []string{
		"OrderNumber", "CustomerName", "CustomerEmail", "CustomerPhone",
		"Company", "Position", "Address", "ProductName", "Material",
		"Size", "Color", "Notes", "Quantity", "TotalPrice", "Status",
		"CreatedDate",
	}
}

func addOrderRow(sheet *xlsx.Sheet, order models.Order) {
	row := sheet.AddRow()
	row.AddCell().SetValue(order.OrderNumber)
	row.AddCell().SetValue(order.CustomerName)
	row.AddCell().SetValue(order.CustomerEmail)
	row.AddCell().SetValue(order.CustomerPhone)
	row.AddCell().SetValue(order.Company)
	row.AddCell().SetValue(order.Position)
	row.AddCell().SetValue(order.Address)
	row.AddCell().SetValue(order.ProductName)
	row.AddCell().SetValue(order.Material)
	row.AddCell().SetValue(order.Size)
	row.AddCell().SetValue(order.Color)
	row.AddCell().SetValue(order.AdditionalNotes)
	row.AddCell().SetValue(order.Quantity)
	row.AddCell().SetValue(order.TotalPrice)
	row.AddCell().SetValue(order.Status)
	row.AddCell().SetValue(order.CreatedDate.Format("2006-01-02 15:04:05"))
}

// OrderFeed upgrades to a websocket pushing every newly created order,
// an optional faster lane than the 30 second poll.
func OrderFeed(hub *ws.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		hub.ServeOrders(c.Writer, c.Request)
	}
}
