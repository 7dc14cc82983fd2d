package di

import (
	"github.com/ticketforge/ticketing/internal/clock"
	"github.com/ticketforge/ticketing/internal/handler"
	"github.com/ticketforge/ticketing/internal/repository"
	"github.com/ticketforge/ticketing/internal/service"
	"github.com/ticketforge/ticketing/pkg/database"
	"github.com/ticketforge/ticketing/pkg/redis"
)

// Container holds all dependencies for the inventory service
type Container struct {
	// Infrastructure
	DB    *database.PostgresDB
	Redis *redis.Client

	// Repositories
	EventRepo        repository.EventRepository
	TicketRepo       repository.TicketRepository
	OrderRepo        repository.OrderRepository
	CancellationRepo repository.CancellationRepository
	OutboxRepo       repository.OutboxRepository

	// Services
	AllocationService   service.AllocationService
	CancellationService service.CancellationService
	OrderService        service.OrderService
	EventService        service.EventService

	// Handlers
	HealthHandler *handler.HealthHandler
	EventHandler  *handler.EventHandler
	OrderHandler  *handler.OrderHandler
}

// ContainerConfig contains configuration for building the container
type ContainerConfig struct {
	DB    *database.PostgresDB
	Redis *redis.Client
	Clock clock.Clock
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *ContainerConfig) *Container {
	c := &Container{
		DB:    cfg.DB,
		Redis: cfg.Redis,
	}

	clk := cfg.Clock
	if clk == nil {
		clk = clock.NewSystem()
	}

	// Initialize repositories
	pool := c.DB.Pool()
	c.EventRepo = repository.NewPostgresEventRepository(pool)
	c.OrderRepo = repository.NewPostgresOrderRepository(pool)
	c.CancellationRepo = repository.NewPostgresCancellationRepository(pool)
	c.OutboxRepo = repository.NewPostgresOutboxRepository(pool)

	ticketRepo := repository.NewPostgresTicketRepository(pool)
	if c.Redis != nil {
		// Availability counts come from a short-TTL cache
		c.TicketRepo = repository.NewCachedTicketRepository(ticketRepo, c.Redis)
	} else {
		c.TicketRepo = ticketRepo
	}

	// Initialize services
	c.AllocationService = service.NewAllocationService(pool, c.OrderRepo, c.TicketRepo, c.OutboxRepo)
	c.CancellationService = service.NewCancellationService(pool, c.OrderRepo, c.TicketRepo, c.CancellationRepo, c.OutboxRepo, clk)
	c.OrderService = service.NewOrderService(c.OrderRepo, c.CancellationRepo, c.EventRepo, c.AllocationService)
	c.EventService = service.NewEventService(c.EventRepo, c.TicketRepo)

	// Initialize handlers
	c.HealthHandler = handler.NewHealthHandler(c.DB, c.Redis)
	c.EventHandler = handler.NewEventHandler(c.EventService)
	c.OrderHandler = handler.NewOrderHandler(c.OrderService, c.CancellationService)

	return c
}
