package changelog

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/confluentinc/confluent-kafka-go/kafka"

	"github.com/kvindex/docdb/logging"
)

var topicSanitizer = regexp.MustCompile(`[^a-zA-Z0-9._\-]+`)

// KafkaConfig describes the brokers and topic used for publishing the
// activity feed.
type KafkaConfig struct {
	Topic   string // if empty, defaults to "docdb-activity"
	Servers []string
}

// KafkaPublisher publishes Events to a kafka topic as JSON, mirroring
// the activity-log pattern of logging every storage write. Publish
// never blocks the caller on delivery: production failures are logged
// and otherwise swallowed, since the activity feed is not on the
// consistency path of Set/Delete (§4.4).
type KafkaPublisher struct {
	producer *kafka.Producer
	topic    string
}

// NewKafkaPublisher connects a producer to cfg.Servers and returns a
// Publisher bound to cfg.Topic (sanitized to kafka's allowed topic
// character set).
func NewKafkaPublisher(cfg KafkaConfig) (*KafkaPublisher, error) {
	if len(cfg.Servers) == 0 {
		return nil, fmt.Errorf("changelog: no kafka servers configured")
	}
	topic := cfg.Topic
	if topic == "" {
		topic = "docdb-activity"
	}
	topic = topicSanitizer.ReplaceAllString(topic, "-")

	p, err := kafka.NewProducer(&kafka.ConfigMap{
		"client.id":         "docdb-kafkaclient",
		"bootstrap.servers": strings.Join(cfg.Servers, ","),
	})
	if err != nil {
		return nil, fmt.Errorf("changelog: creating kafka producer: %w", err)
	}

	kp := &KafkaPublisher{producer: p, topic: topic}
	go kp.watchDeliveryEvents()
	return kp, nil
}

func (kp *KafkaPublisher) watchDeliveryEvents() {
	for e := range kp.producer.Events() {
		switch ev := e.(type) {
		case *kafka.Message:
			if ev.TopicPartition.Error != nil {
				logging.Errorf("changelog: delivery failed to kafka topic %q: %v", kp.topic, ev.TopicPartition.Error)
			}
		}
	}
}

// Publish implements Publisher. It marshals the event as JSON and
// hands it to the producer asynchronously.
func (kp *KafkaPublisher) Publish(ev Event) {
	msg, err := json.Marshal(ev)
	if err != nil {
		logging.Errorf("changelog: unable to marshal event for docid %q: %v", ev.DocID, err)
		return
	}
	go func() {
		kmsg := &kafka.Message{
			TopicPartition: kafka.TopicPartition{Topic: &kp.topic, Partition: kafka.PartitionAny},
			Value:          msg,
			Timestamp:      time.Now(),
		}
		if err := kp.producer.Produce(kmsg, nil); err != nil {
			logging.Errorf("changelog: cannot produce message to topic %q: %v", kp.topic, err)
		}
	}()
}

// Close flushes and releases the underlying producer.
func (kp *KafkaPublisher) Close() error {
	kp.producer.Flush(5000)
	kp.producer.Close()
	return nil
}
