//go:build integration

package integration_test

import (
	"context"
	"io"
	"log/slog"
	"net"
	"strconv"
	"testing"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"

	"github.com/riverwatch/catchment-service/internal/domain"
)

// startKafka launches a single-node Kafka container and returns its broker
// address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()

	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0",
		tckafka.WithClusterID("catchment-test"))
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err, "resolve kafka brokers")
	require.NotEmpty(t, brokers)
	return brokers[0]
}

// createTopic creates a single-partition topic via the cluster controller.
func createTopic(t *testing.T, broker, topic string) {
	t.Helper()

	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err, "dial broker")
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err, "resolve controller")

	controllerConn, err := kafkago.Dial("tcp",
		net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err, "dial controller")
	defer controllerConn.Close()

	require.NoError(t, controllerConn.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mockRecords returns the field logger records published during the
// integration tests: two rainfall gauges and a stage board on the Pang.
func mockRecords() []domain.RawLoggerRecord {
	return []domain.RawLoggerRecord{
		{Time: "0900", Site: "FP35", SiteName: "Lower Wraymead", Lat: "51.453", Lon: "-1.122", Value: "1.2", Measurement: "rainfall"},
		{Time: "1000", Site: "FP35", SiteName: "Lower Wraymead", Lat: "51.453", Lon: "-1.122", Value: "3.4", Measurement: "rainfall"},
		{Time: "0900", Site: "PL16", SiteName: "Padworth Lane", Lat: "51.405", Lon: "-1.077", Value: "12.5", Measurement: "rainfall"},
		{Time: "0915", Site: "FP23", SiteName: "Tidmarsh Mill", Lat: "51.441", Lon: "-1.089", Value: "0.74", Measurement: "river_level"},
		{Time: "0930", Site: "FP23", SiteName: "Tidmarsh Mill", Lat: "51.441", Lon: "-1.089", Value: "10.1", Units: "degC", Measurement: "water_temp"},
	}
}
