package messaging

import (
	"context"
	"os"
	"strconv"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"k8s.io/klog/v2"
)

type MessagingPublisher func(ctx context.Context, topic string, data interface{}, project string) error

var (
	EnvLogEnabled = "MESSAGING_LOG_ENABLED"
)

type envelope struct {
	CorrelationId string      `json:"correlationId"`
	Source        string      `json:"source"`
	Topic         string      `json:"topic"`
	Project       string      `json:"project"`
	Payload       interface{} `json:"payload"`
}

func NilMessagingPublisher(ctx context.Context, topic string, data interface{}, project string) error {
	return nil
}

// LogMessagingPublisher writes every event as a single json line to the log.
func LogMessagingPublisher(ctx context.Context, topic string, data interface{}, project string) error {
	msg, err := Marshal(topic, data, project)
	if err != nil {
		return err
	}
	klog.InfoS("Publishing event", "topic", topic, "event", string(msg))
	return nil
}

func Marshal(topic string, data interface{}, project string) ([]byte, error) {
	return jsoniter.Marshal(envelope{
		CorrelationId: uuid.New().String(),
		Source:        "worker-provisioner",
		Topic:         topic,
		Project:       project,
		Payload:       data,
	})
}

func DefaultMessagingPublisher() MessagingPublisher {
	if enabled, err := strconv.ParseBool(os.Getenv(EnvLogEnabled)); err == nil && enabled {
		return LogMessagingPublisher
	}
	return NilMessagingPublisher
}
