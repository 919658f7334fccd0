package kafka

import (
	"time"
)

type Config struct {
	Brokers []string

	ProducerRequireAcks  int
	ProducerMaxAttempts  int
	ProducerBatchTimeout time.Duration

	ConsumerGroupID        string
	ConsumerMinBytes       int
	ConsumerMaxBytes       int
	ConsumerMaxWait        time.Duration
	ConsumerCommitInterval time.Duration
}

func DefaultConfig(brokers []string) *Config {
	return &Config{
		Brokers:              brokers,
		ProducerRequireAcks:  -1,
		ProducerMaxAttempts:  3,
		ProducerBatchTimeout: 100 * time.Millisecond,
		ConsumerMinBytes:     1,
		ConsumerMaxBytes:     1 * 1024 * 1024,
		ConsumerMaxWait:      500 * time.Millisecond,
		ConsumerCommitInterval: 1 * time.Second,
	}
}
