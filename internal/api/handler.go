package api

import (
	"log/slog"

	"github.com/shaiso/Argus/internal/mq"
	"github.com/shaiso/Argus/internal/repo"
)

// Handler — главный обработчик API с зависимостями.
type Handler struct {
	graphRepo    *repo.GraphRepo
	runRepo      *repo.RunRepo
	findingRepo  *repo.FindingRepo
	scheduleRepo *repo.ScheduleRepo
	publisher    *mq.Publisher
	logger       *slog.Logger
}

// Config — конфигурация для создания Handler.
type Config struct {
	GraphRepo    *repo.GraphRepo
	RunRepo      *repo.RunRepo
	FindingRepo  *repo.FindingRepo
	ScheduleRepo *repo.ScheduleRepo
	Publisher    *mq.Publisher
	Logger       *slog.Logger
}

// NewHandler создаёт новый Handler.
func NewHandler(cfg Config) *Handler {
	return &Handler{
		graphRepo:    cfg.GraphRepo,
		runRepo:      cfg.RunRepo,
		findingRepo:  cfg.FindingRepo,
		scheduleRepo: cfg.ScheduleRepo,
		publisher:    cfg.Publisher,
		logger:       cfg.Logger,
	}
}
