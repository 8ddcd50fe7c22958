// internal/workers/appointment/send-feasibility-notice/config.go
package sendnotice

import (
	"time"

	"appointment-workers/internal/common/config"
)

const defaultSubject = "[굿리치] 위촉 일정 안내"

type Config struct {
	EmailEnabled bool
	SMSEnabled   bool
	Subject      string
	Timeout      time.Duration
}

func LoadConfig(wcfg config.WorkerConfig, ncfg config.NotificationConfig) *Config {
	timeout := config.GetDuration(wcfg.Timeout)
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	subject := ncfg.Email.Subject
	if subject == "" {
		subject = defaultSubject
	}
	return &Config{
		EmailEnabled: ncfg.Email.Enabled,
		SMSEnabled:   ncfg.SMS.Enabled,
		Subject:      subject,
		Timeout:      timeout,
	}
}
