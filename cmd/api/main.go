package main

import (
	"context"
	"log"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"

	"github.com/farmdirect/go-order-intake/internal/awsx"
	"github.com/farmdirect/go-order-intake/internal/config"
	"github.com/farmdirect/go-order-intake/internal/gate"
	"github.com/farmdirect/go-order-intake/internal/handlers"
	"github.com/farmdirect/go-order-intake/internal/logger"
)

func setupRouter(cfg handlers.HandlerConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	// health
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	handlers.RegisterOrdersRoutes(r, cfg)

	return r
}

func main() {
	cfg := config.Load()
	logg := logger.New(logger.Options{Service: "order-intake-api", Env: cfg.Env, Level: cfg.LogLevel})

	if cfg.SessionSecret == "" {
		log.Fatal("SESSION_SECRET must be set")
	}

	clients, err := awsx.NewClients(context.Background())
	if err != nil {
		log.Fatalf("failed to init aws clients: %v", err)
	}

	secret := []byte(cfg.SessionSecret)
	g := &gate.Gate{
		Sessions:   gate.NewHMACSessionProvider(secret),
		CSRFSecret: secret,
		Limiter:    gate.NewFixedWindowLimiter(cfg.RateLimitBudget, cfg.RateLimitWindow),
		Log:        logg,
	}

	hcfg := handlers.HandlerConfig{
		DynamoDBClient:   clients.DynamoDB,
		SQSClient:        clients.SQS,
		CloudWatchClient: clients.CloudWatch,
		IdempotencyTable: cfg.IdempotencyTable,
		OrdersTable:      cfg.OrdersTable,
		QueueURL:         cfg.QueueURL,
		TTLWindow:        cfg.IdempotencyTTL,
		Gate:             g,
		PayTo:            cfg.PayTo,
		Currency:         cfg.Currency,
		Log:              logg,
	}

	r := setupRouter(hcfg)

	// if RUN_LOCAL is set to "true", run a local HTTP server for development.
	if cfg.RunLocal {
		logg.Info("running local server", "addr", cfg.HTTPAddr)
		if err := r.Run(cfg.HTTPAddr); err != nil {
			log.Fatalf("failed to run local server: %v", err)
		}
		return
	}

	// lambda adapter
	adapter := ginadapter.New(r)

	lambda.Start(func(ctx context.Context, req events.APIGatewayProxyRequest) (interface{}, error) {
		return adapter.ProxyWithContext(ctx, req)
	})
}
