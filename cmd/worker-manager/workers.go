package main

import (
	"context"
	"database/sql"
	"fmt"

	"appointment-workers/internal/appointment"
	appaws "appointment-workers/internal/common/aws"
	"appointment-workers/internal/common/camunda"
	"appointment-workers/internal/common/config"
	"appointment-workers/internal/common/logger"
	"appointment-workers/internal/common/validation"

	buildschedule "appointment-workers/internal/workers/appointment/build-appointment-schedule"
	evaluatefeasibility "appointment-workers/internal/workers/appointment/evaluate-feasibility"
	indexevents "appointment-workers/internal/workers/appointment/index-calendar-events"
	projectevents "appointment-workers/internal/workers/appointment/project-calendar-events"
	sendnotice "appointment-workers/internal/workers/appointment/send-feasibility-notice"
)

func (b *backends) postgresDB() *sql.DB {
	if b.postgres == nil {
		return nil
	}
	return b.postgres.GetDB()
}

// registerWorkers opens a job worker for every enabled task type.
func registerWorkers(ctx context.Context, cfg *config.Config, b *backends, service *appointment.Service, validator *validation.Validator, log logger.Logger) ([]*camunda.Worker, error) {
	zeebe := b.zeebe.GetClient()
	var started []*camunda.Worker

	if taskType := buildschedule.TaskType; config.IsWorkerEnabled(cfg, taskType) {
		wcfg := config.GetWorkerConfig(cfg, taskType)
		handler := buildschedule.NewHandler(buildschedule.LoadConfig(wcfg), service, log)
		started = append(started, camunda.StartWorker(zeebe, taskType, wcfg, handler.Handle, log))
	}

	if taskType := projectevents.TaskType; config.IsWorkerEnabled(cfg, taskType) {
		wcfg := config.GetWorkerConfig(cfg, taskType)
		handler := projectevents.NewHandler(projectevents.LoadConfig(wcfg), service, log)
		started = append(started, camunda.StartWorker(zeebe, taskType, wcfg, handler.Handle, log))
	}

	if taskType := evaluatefeasibility.TaskType; config.IsWorkerEnabled(cfg, taskType) {
		wcfg := config.GetWorkerConfig(cfg, taskType)
		handler := evaluatefeasibility.NewHandler(evaluatefeasibility.LoadConfig(wcfg), service, validator, log)
		started = append(started, camunda.StartWorker(zeebe, taskType, wcfg, handler.Handle, log))
	}

	if taskType := sendnotice.TaskType; config.IsWorkerEnabled(cfg, taskType) {
		wcfg := config.GetWorkerConfig(cfg, taskType)
		ncfg := cfg.Notifications

		var email sendnotice.EmailSender
		if ncfg.Email.Enabled {
			client, err := appaws.NewSESClient(ctx, ncfg.AWS.Region, ncfg.Email.FromEmail)
			if err != nil {
				return started, fmt.Errorf("create SES client: %w", err)
			}
			email = client
		}
		var sms sendnotice.SMSSender
		if ncfg.SMS.Enabled {
			client, err := appaws.NewSNSClient(ctx, ncfg.AWS.Region, ncfg.SMS.SenderID)
			if err != nil {
				return started, fmt.Errorf("create SNS client: %w", err)
			}
			sms = client
		}

		handler := sendnotice.NewHandler(sendnotice.LoadConfig(wcfg, ncfg), email, sms, log)
		started = append(started, camunda.StartWorker(zeebe, taskType, wcfg, handler.Handle, log))
	}

	if taskType := indexevents.TaskType; config.IsWorkerEnabled(cfg, taskType) {
		if b.es == nil {
			log.Warn("worker skipped: elasticsearch not configured", map[string]interface{}{"taskType": taskType})
		} else {
			wcfg := config.GetWorkerConfig(cfg, taskType)
			handler := indexevents.NewHandler(indexevents.LoadConfig(wcfg, cfg.Database.Elasticsearch), service, b.es, log)
			started = append(started, camunda.StartWorker(zeebe, taskType, wcfg, handler.Handle, log))
		}
	}

	return started, nil
}
