package main

import (
	"context"
	"log"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/farmdirect/go-order-intake/internal/awsx"
	"github.com/farmdirect/go-order-intake/internal/config"
	"github.com/farmdirect/go-order-intake/internal/logger"
)

func main() {
	cfg := config.Load()
	logg := logger.New(logger.Options{Service: "order-intake-worker", Env: cfg.Env, Level: cfg.LogLevel})

	clients, err := awsx.NewClients(context.Background())
	if err != nil {
		log.Fatalf("failed to init aws clients: %v", err)
	}

	p := NewProcessor(clients.DynamoDB, cfg.OrdersTable, logg)

	// If RUN_LOCAL=true, simulate a single SQS event for local testing.
	if cfg.RunLocal {
		testBody := os.Getenv("LOCAL_SQS_BODY")
		if testBody == "" {
			testBody = `{"order_id":"local-order-1","tracking_code":"FD-LOCAL001","action":"paid"}`
		}
		event := events.SQSEvent{
			Records: []events.SQSMessage{
				{
					Body: testBody,
				},
			},
		}
		if err := p.Handle(context.Background(), event); err != nil {
			log.Fatalf("local handler error: %v", err)
		}
		return
	}

	lambda.Start(p.Handle)
}
