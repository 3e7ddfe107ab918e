package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"activity-planner/internal/config"
	"activity-planner/internal/notify"
	"activity-planner/internal/reminder"
	"activity-planner/internal/repository"
	"activity-planner/internal/service"
)

// app holds the wired components shared by the commands.
type app struct {
	cfg    config.Config
	logger *slog.Logger
	loc    *time.Location
	db     *gorm.DB

	timers     *reminder.CronTimers
	reminders  *reminder.Scheduler
	tasks      *service.TaskService
	priorities *service.PriorityService
	users      *service.UserService
	digest     *service.DigestService
}

func newApp() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	logger := newLogger(cfg.LogLevel)
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	db, err := repository.NewDB(cfg.DatabaseURL, logger)
	if err != nil {
		return nil, fmt.Errorf("db: %w", err)
	}

	presenters := notify.Multi{notify.NewLogPresenter(logger)}
	if cfg.TelegramEnabled() {
		tg, err := notify.NewTelegramPresenter(cfg.TelegramToken, cfg.TelegramChatID, logger)
		if err != nil {
			logger.Error("telegram disabled", slog.String("error", err.Error()))
		} else {
			presenters = append(presenters, tg)
		}
	}

	taskRepo := repository.NewTaskRepository(db)
	handlers := reminder.NewHandlers(taskRepo, presenters, loc, logger)
	timers := reminder.NewCronTimers(loc, func(key reminder.Key, payload reminder.Payload) {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		handlers.Fire(ctx, key, payload)
	}, logger)
	scheduler := reminder.NewScheduler(taskRepo, timers, logger)

	var changePresenter notify.Presenter
	if cfg.NotifyPriorityChanges {
		changePresenter = presenters
	}

	return &app{
		cfg:        cfg,
		logger:     logger,
		loc:        loc,
		db:         db,
		timers:     timers,
		reminders:  scheduler,
		tasks:      service.NewTaskService(taskRepo, scheduler, loc),
		priorities: service.NewPriorityService(taskRepo, scheduler, changePresenter, logger),
		users:      service.NewUserService(repository.NewUserRepository(db), repository.NewSessionRepository(db)),
		digest:     service.NewDigestService(taskRepo, presenters),
	}, nil
}

func (a *app) Close() {
	if sqlDB, err := a.db.DB(); err == nil {
		sqlDB.Close()
	}
}

func nowIn(loc *time.Location) time.Time {
	return time.Now().In(loc)
}
