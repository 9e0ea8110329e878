package backend

import (
	"context"
	"fmt"
	"log/slog"

	"timebudget/internal/amqp"
	"timebudget/internal/storage"
	"timebudget/internal/storage/memory"
)

type DefaultFactory struct {
	logger *slog.Logger
}

func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: logger}
}

func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*Backend, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var b *Backend
	switch config.Type {
	case SQLiteBackend:
		repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("initialize SQLite repository: %w", err)
		}
		b = &Backend{Type: SQLiteBackend, Store: repo.Store(), ping: repo.Ping, closers: []func() error{repo.Close}}
		f.logger.InfoContext(ctx, "Initialized SQLite backend", "db_path", config.SQLiteDBPath)
	case MemoryBackend:
		b = &Backend{Type: MemoryBackend, Store: memory.New().Ports()}
		f.logger.InfoContext(ctx, "Initialized memory backend")
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}

	f.attachPublisher(ctx, b, config)
	return b, nil
}

// attachPublisher connects to AMQP when configured. A broker outage is not fatal:
// the API keeps serving and reviews are recomputed on read.
func (f *DefaultFactory) attachPublisher(ctx context.Context, b *Backend, config Config) {
	if config.AMQPURL == "" {
		f.logger.InfoContext(ctx, "AMQP not configured, domain events disabled")
		return
	}
	client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
	if err != nil {
		f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without events", "error", err)
		return
	}
	b.Publisher = client
	b.closers = append(b.closers, client.Close)
	f.logger.InfoContext(ctx, "Initialized AMQP client",
		"exchange", config.AMQPExchange,
		"queue", config.AMQPQueue)
}
