// Package kafka announces committed order changes on a Kafka topic.
package kafka

import (
	"time"

	"github.com/IBM/sarama"
)

// NewSyncProducer connects a producer that waits for every in-sync replica to
// acknowledge a message.
func NewSyncProducer(brokers []string) (sarama.SyncProducer, error) {
	return sarama.NewSyncProducer(brokers, NewProducerConfig())
}

// NewProducerConfig hashes message keys to partitions and retries a send three times.
func NewProducerConfig() *sarama.Config {
	cfg := sarama.NewConfig()
	cfg.Version = sarama.V2_6_0_0
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Return.Successes = true
	cfg.Producer.Retry.Max = 3
	cfg.Producer.Partitioner = sarama.NewHashPartitioner
	cfg.Net.DialTimeout = 5 * time.Second
	return cfg
}
