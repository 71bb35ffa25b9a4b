// Package websocket - websocket/metrics.go
package websocket

import (
	"os"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	awssession "github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/cloudwatch"

	"go-typing-comp/logger"
)

// Namespace for all typing-competition metrics
var metricsNamespace = "TypingComp"

// Reuse a single CloudWatch client for all metrics calls, created on first use.
var (
	cwClient *cloudwatch.CloudWatch
	cwOnce   sync.Once
)

// PublishConnectionCount pushes the current WebSocket connection count.
func PublishConnectionCount(count int) {
	putMetric("WebSocketConnections", float64(count), "Count", "")
}

// PublishDroppedMessage counts a broadcast frame dropped on a slow consumer.
func PublishDroppedMessage(competitionID string) {
	putMetric("DroppedBroadcasts", 1, "Count", competitionID)
}

// -----------------------------------------------------------
// internal helper function to package up CloudWatch calls
// -----------------------------------------------------------
func putMetric(metricName string, value float64, unit string, competitionID string) {
	// metrics are opt-in so local runs and tests never touch AWS
	if os.Getenv("METRICS_ENABLED") != "true" {
		return
	}
	cwOnce.Do(func() {
		cwClient = cloudwatch.New(awssession.Must(awssession.NewSession()))
	})

	datum := &cloudwatch.MetricDatum{
		MetricName: aws.String(metricName),
		Timestamp:  aws.Time(time.Now()),
		Value:      aws.Float64(value),
		Unit:       aws.String(unit),
	}
	if competitionID != "" {
		datum.Dimensions = []*cloudwatch.Dimension{
			{
				Name:  aws.String("CompetitionId"),
				Value: aws.String(competitionID),
			},
		}
	}

	_, err := cwClient.PutMetricData(&cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(metricsNamespace),
		MetricData: []*cloudwatch.MetricDatum{datum},
	})
	if err != nil {
		logger.Error.Printf("[putMetric] CloudWatch metric failed (%s): %v", metricName, err)
	}
}
