package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/farmdirect/go-order-intake/internal/awsx"
	"github.com/farmdirect/go-order-intake/internal/gate"
	"github.com/farmdirect/go-order-intake/internal/idempotency"
	"github.com/farmdirect/go-order-intake/internal/orders"
	"github.com/farmdirect/go-order-intake/internal/pricing"
	"github.com/farmdirect/go-order-intake/internal/sanitize"
	"github.com/farmdirect/go-order-intake/internal/validation"
)

// HandlerConfig groups dependencies for the orders handler.
type HandlerConfig struct {
	DynamoDBClient   awsx.DynamoDBAPI
	SQSClient        awsx.SQSAPI
	CloudWatchClient awsx.CloudWatchAPI
	IdempotencyTable string
	OrdersTable      string
	QueueURL         string
	TTLWindow        time.Duration
	Gate             *gate.Gate
	PayTo            string
	Currency         string
	Log              *slog.Logger
}

const metricNamespace = "OrderIntake"

// RegisterOrdersRoutes registers routes for the order API.
func RegisterOrdersRoutes(r *gin.Engine, cfg HandlerConfig) {
	v := validation.New()
	idempStore := idempotency.NewStore(cfg.DynamoDBClient, cfg.IdempotencyTable, cfg.TTLWindow)
	ordersStore := orders.NewStore(cfg.DynamoDBClient, cfg.OrdersTable)
	publisher := awsx.NewPublisher(cfg.SQSClient, cfg.QueueURL)
	metrics := awsx.NewEmitter(cfg.CloudWatchClient, metricNamespace)
	log := cfg.Log

	count := func(c *gin.Context, name, orderType string) {
		if cfg.CloudWatchClient == nil {
			return
		}
		if err := metrics.Count(c.Request.Context(), name, map[string]string{"order_type": orderType}); err != nil {
			log.Debug("metric emit failed", "metric", name, "err", err)
		}
	}

	r.POST("/orders", cfg.Gate.Middleware(), func(c *gin.Context) {
		ctx := c.Request.Context()

		// Bind + validate request shape
		var req validation.SubmitOrderRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			// BindAndValidate already wrote a 400
			return
		}

		// Sanitize contact fields; anything that cannot be normalized fails
		// the whole order.
		customer, err := sanitizeCustomer(req)
		if err != nil {
			count(c, "SanitizationRejected", req.OrderType)
			log.Info("sanitization rejected", "reason", err.Error())
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
			return
		}

		// Recompute money math; mission orders carry no checkout total and
		// skip the numeric checks entirely.
		var (
			items  []orders.LineItem
			totals pricing.Totals
		)
		switch req.OrderType {
		case orders.TypeEcommerce:
			items, totals, err = recomputeCart(req.CartItems)
			if err != nil {
				if errors.Is(err, pricing.ErrPriceIntegrity) {
					count(c, "PriceIntegrityViolation", req.OrderType)
					log.Warn("price integrity violation", "tamper_suspect", true, "err", err.Error(), "client_ip", c.ClientIP())
					c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "order could not be verified"})
					return
				}
				log.Error("cart recompute failed", "err", err)
				c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "unable to process order"})
				return
			}
		case orders.TypeMission:
			items = missionItems(req.SelectedProducts)
			if len(items) == 0 {
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "no products selected"})
				return
			}
		}

		// Free-form metadata reaches storage as a map; strip anything that
		// could read as a query operator downstream.
		var metadata map[string]interface{}
		if req.Metadata != nil {
			metadata, _ = sanitize.StripOperators(req.Metadata).(map[string]interface{})
		}

		order, err := orders.Assemble(req.OrderType, customer, items, totals, metadata, time.Now().UTC())
		if err != nil {
			// empty item list past validation is a programming error, not user input
			log.Error("order assembly failed", "err", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "unable to process order"})
			return
		}

		// Persist. With an Idempotency-Key the order and the dedup record are
		// created in one transaction; a duplicate key replays the stored
		// response so a retried cart keeps its original tracking code.
		idempKey := c.GetHeader("Idempotency-Key")
		if idempKey == "" {
			if err := ordersStore.Create(ctx, order); err != nil {
				log.Error("order persist failed", "err", err)
				c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "unable to process order"})
				return
			}
		} else {
			now := time.Now().UTC()
			idempItem := map[string]interface{}{
				"idempotency_key": idempKey,
				"status":          idempotency.StatusInProgress,
				"order_id":        order.OrderID,
				"tracking_code":   order.TrackingCode,
				"created_at":      now.Format(time.RFC3339),
				"updated_at":      now.Format(time.RFC3339),
			}
			err := ordersStore.CreateWithIdempotencyTransaction(ctx, cfg.IdempotencyTable, idempItem, order, cfg.TTLWindow)
			if err != nil {
				// Transaction failed, most likely because the key exists:
				// inspect the record and answer accordingly.
				rec, getErr := idempStore.Get(ctx, idempKey)
				if getErr != nil || rec == nil {
					log.Error("order persist failed", "err", err, "idempotency_check_err", getErr)
					c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "unable to process order"})
					return
				}
				switch rec.Status {
				case idempotency.StatusDone:
					if rec.ResponseBody != "" {
						c.Data(rec.ResponseStatus, "application/json", []byte(rec.ResponseBody))
						return
					}
					c.JSON(http.StatusOK, gin.H{"success": true, "orderId": rec.OrderID, "code": rec.TrackingCode})
					return
				case idempotency.StatusInProgress:
					c.JSON(http.StatusAccepted, gin.H{"success": false, "message": "request already in progress"})
					return
				default:
					c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "unable to process order"})
					return
				}
			}
		}

		// Best-effort follow-ups: the order stands even if notification or
		// metric emission fails.
		notifyOrderCreated(ctx, publisher, log, order, c.GetHeader("X-Request-Id"))
		count(c, "OrderAccepted", req.OrderType)
		if sess, ok := gate.SessionFrom(c); ok {
			log.Info("order accepted", "order_id", order.OrderID, "order_type", req.OrderType, "session", sess.ID)
		}

		resp := successResponse(order, cfg.PayTo, cfg.Currency)
		if idempKey != "" {
			body, _ := json.Marshal(resp)
			if err := idempStore.MarkDone(ctx, idempKey, string(body), http.StatusOK); err != nil {
				log.Error("idempotency mark done failed", "err", err, "order_id", order.OrderID)
			}
		}

		c.JSON(http.StatusOK, resp)
	})

	r.GET("/orders/:id", cfg.Gate.AuthOnly(), func(c *gin.Context) {
		order, err := ordersStore.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			log.Error("order fetch failed", "err", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "unable to fetch order"})
			return
		}
		if order == nil {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "order not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "order": order})
	})
}

// sanitizeCustomer normalizes every contact field. Postal code and address
// fields only matter for ecommerce orders but are cleaned whenever present.
func sanitizeCustomer(req validation.SubmitOrderRequest) (orders.Customer, error) {
	email, err := sanitize.Email(req.Email)
	if err != nil {
		return orders.Customer{}, err
	}
	phone, err := sanitize.Phone(req.Phone)
	if err != nil {
		return orders.Customer{}, err
	}

	customer := orders.Customer{
		Name:    sanitize.Text(req.Name, 200),
		Email:   email,
		Phone:   phone,
		Address: sanitize.Text(req.Address, 200),
		City:    sanitize.Text(req.City, 100),
		Message: sanitize.Text(req.Message, 1000),
	}

	if req.PostalCode != "" {
		postal, err := sanitize.PostalCode(req.PostalCode, "CA")
		if err != nil {
			// US-format codes come in from cross-border customers
			postal, err = sanitize.PostalCode(req.PostalCode, "US")
			if err != nil {
				return orders.Customer{}, err
			}
		}
		customer.PostalCode = postal
	}

	return customer, nil
}

// recomputeCart sanitizes the client cart rows and runs them through the
// pricing engine.
func recomputeCart(cart []validation.CartItem) ([]orders.LineItem, pricing.Totals, error) {
	lines := make([]pricing.CartLine, 0, len(cart))
	for _, item := range cart {
		lines = append(lines, pricing.CartLine{
			SKU:       sanitize.Text(item.ID, 50),
			Name:      sanitize.Text(item.Name, 200),
			PriceText: item.Price,
			Quantity:  item.Quantity,
		})
	}

	priced, totals, err := pricing.Recompute(lines)
	if err != nil {
		return nil, pricing.Totals{}, err
	}

	items := make([]orders.LineItem, 0, len(priced))
	for _, l := range priced {
		items = append(items, orders.LineItem{
			SKU:            l.SKU,
			Name:           l.Name,
			Quantity:       l.Quantity,
			UnitPriceCents: l.UnitPriceCents,
		})
	}
	return items, totals, nil
}

var slugStrip = regexp.MustCompile(`[^a-z0-9-]+`)

// missionItems converts a product interest list into placeholder line items
// priced at zero, deferred to manual admin pricing.
func missionItems(selected []string) []orders.LineItem {
	items := make([]orders.LineItem, 0, len(selected))
	for _, raw := range selected {
		name := sanitize.Text(raw, 200)
		if name == "" {
			continue
		}
		items = append(items, orders.LineItem{
			SKU:            slugify(name),
			Name:           name,
			Quantity:       1,
			UnitPriceCents: 0,
		})
	}
	return items
}

func slugify(name string) string {
	s := strings.ToLower(name)
	s = strings.ReplaceAll(s, " ", "-")
	s = slugStrip.ReplaceAllString(s, "")
	s = strings.Trim(s, "-")
	if len(s) > 50 {
		s = s[:50]
	}
	return s
}

func notifyOrderCreated(ctx context.Context, publisher *awsx.Publisher, log *slog.Logger, order orders.Order, requestID string) {
	if publisher.QueueURL == "" {
		return
	}
	payload, _ := json.Marshal(map[string]interface{}{
		"order_id":      order.OrderID,
		"tracking_code": order.TrackingCode,
		"order_type":    order.OrderType,
		"amount_cents":  order.TotalCents,
	})
	attrs := map[string]string{
		"order_id":       order.OrderID,
		"correlation_id": requestID,
	}
	if err := publisher.SendOrderCreated(ctx, string(payload), attrs); err != nil {
		log.Error("order notification failed", "err", err, "order_id", order.OrderID)
	}
}

// successResponse shapes the payload the storefront shows on the
// confirmation page, including the manual e-Transfer instructions.
func successResponse(order orders.Order, payTo, currency string) gin.H {
	return gin.H{
		"success": true,
		"message": "Order received",
		"orderId": order.OrderID,
		"code":    order.TrackingCode,
		"status":  order.Status,
		"instructions": gin.H{
			"pay_to":       payTo,
			"amount_cents": order.TotalCents,
			"currency":     currency,
			"message":      fmt.Sprintf("Send an Interac e-Transfer to %s and include code %s in the transfer message", payTo, order.TrackingCode),
		},
	}
}
