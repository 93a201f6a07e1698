package awsx

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

// Emitter publishes counter metrics to CloudWatch. All emission is best-effort:
// callers log the returned error but never fail a request on it.
type Emitter struct {
	CW        CloudWatchAPI
	Namespace string
}

// NewEmitter returns an Emitter bound to a metric namespace.
func NewEmitter(cw CloudWatchAPI, namespace string) *Emitter {
	return &Emitter{
		CW:        cw,
		Namespace: namespace,
	}
}

// Count emits a single count datapoint for the named metric.
// dimensions map[string]string -> sent as metric Dimensions.
func (e *Emitter) Count(ctx context.Context, name string, dimensions map[string]string) error {
	datum := cwtypes.MetricDatum{
		MetricName: awsString(name),
		Value:      awsFloat64(1),
		Unit:       cwtypes.StandardUnitCount,
	}
	for k, v := range dimensions {
		datum.Dimensions = append(datum.Dimensions, cwtypes.Dimension{
			Name:  awsString(k),
			Value: awsString(v),
		})
	}

	input := &cloudwatch.PutMetricDataInput{
		Namespace:  &e.Namespace,
		MetricData: []cwtypes.MetricDatum{datum},
	}

	_, err := e.CW.PutMetricData(ctx, input)
	if err != nil {
		return fmt.Errorf("put metric data: %w", err)
	}
	return nil
}

func awsFloat64(f float64) *float64 { return &f }
