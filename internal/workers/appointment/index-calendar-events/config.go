// internal/workers/appointment/index-calendar-events/config.go
package indexevents

import (
	"time"

	"appointment-workers/internal/common/config"
)

const defaultIndex = "appointment-calendar-events"

type Config struct {
	Index   string
	Timeout time.Duration
}

func LoadConfig(wcfg config.WorkerConfig, escfg config.ElasticsearchConfig) *Config {
	timeout := config.GetDuration(wcfg.Timeout)
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	index := escfg.EventsIndex
	if index == "" {
		index = defaultIndex
	}
	return &Config{Index: index, Timeout: timeout}
}
