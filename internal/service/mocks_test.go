package service

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/ticketforge/ticketing/internal/domain"
)

// stubTx is a pgx.Tx stand-in that tracks commits and rollbacks. Only
// the methods the services call are implemented; anything else panics
// through the embedded nil interface.
type stubTx struct {
	pgx.Tx
	commits   int
	rollbacks int
	commitErr error
}

func (t *stubTx) Commit(ctx context.Context) error {
	t.commits++
	return t.commitErr
}

func (t *stubTx) Rollback(ctx context.Context) error {
	t.rollbacks++
	return nil
}

// stubTxBeginner hands out a single stubTx.
type stubTxBeginner struct {
	tx       *stubTx
	beginErr error
}

func newStubTxBeginner() *stubTxBeginner {
	return &stubTxBeginner{tx: &stubTx{}}
}

func (b *stubTxBeginner) Begin(ctx context.Context) (pgx.Tx, error) {
	if b.beginErr != nil {
		return nil, b.beginErr
	}
	return b.tx, nil
}

// MockOrderRepository is a mock implementation of OrderRepository
type MockOrderRepository struct {
	CreateFunc        func(ctx context.Context, order *domain.Order) error
	GetByIDFunc       func(ctx context.Context, id string) (*domain.Order, error)
	GetByUserIDFunc   func(ctx context.Context, userID string, limit, offset int) ([]*domain.Order, error)
	DeleteFunc        func(ctx context.Context, id string) error
	MarkFulfilledFunc func(ctx context.Context, tx pgx.Tx, id string) error
}

func (m *MockOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, order)
	}
	return nil
}

func (m *MockOrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, domain.ErrOrderNotFound
}

func (m *MockOrderRepository) GetByUserID(ctx context.Context, userID string, limit, offset int) ([]*domain.Order, error) {
	if m.GetByUserIDFunc != nil {
		return m.GetByUserIDFunc(ctx, userID, limit, offset)
	}
	return []*domain.Order{}, nil
}

func (m *MockOrderRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *MockOrderRepository) MarkFulfilled(ctx context.Context, tx pgx.Tx, id string) error {
	if m.MarkFulfilledFunc != nil {
		return m.MarkFulfilledFunc(ctx, tx, id)
	}
	return nil
}

// MockTicketRepository is a mock implementation of TicketRepository
type MockTicketRepository struct {
	CountAvailableFunc   func(ctx context.Context, ticketTypeID string) (int, error)
	AvailableFunc        func(ctx context.Context, ticketTypeID string) ([]*domain.Ticket, error)
	CountByOrderFunc     func(ctx context.Context, orderID string) (int, error)
	ClaimForOrderFunc    func(ctx context.Context, tx pgx.Tx, ticketTypeID, orderID string, quantity int) (int, error)
	ReleaseFromOrderFunc func(ctx context.Context, tx pgx.Tx, orderID string, quantity int) (int, error)
}

func (m *MockTicketRepository) CountAvailable(ctx context.Context, ticketTypeID string) (int, error) {
	if m.CountAvailableFunc != nil {
		return m.CountAvailableFunc(ctx, ticketTypeID)
	}
	return 0, nil
}

func (m *MockTicketRepository) Available(ctx context.Context, ticketTypeID string) ([]*domain.Ticket, error) {
	if m.AvailableFunc != nil {
		return m.AvailableFunc(ctx, ticketTypeID)
	}
	return []*domain.Ticket{}, nil
}

func (m *MockTicketRepository) CountByOrder(ctx context.Context, orderID string) (int, error) {
	if m.CountByOrderFunc != nil {
		return m.CountByOrderFunc(ctx, orderID)
	}
	return 0, nil
}

func (m *MockTicketRepository) ClaimForOrder(ctx context.Context, tx pgx.Tx, ticketTypeID, orderID string, quantity int) (int, error) {
	if m.ClaimForOrderFunc != nil {
		return m.ClaimForOrderFunc(ctx, tx, ticketTypeID, orderID, quantity)
	}
	return quantity, nil
}

func (m *MockTicketRepository) ReleaseFromOrder(ctx context.Context, tx pgx.Tx, orderID string, quantity int) (int, error) {
	if m.ReleaseFromOrderFunc != nil {
		return m.ReleaseFromOrderFunc(ctx, tx, orderID, quantity)
	}
	return quantity, nil
}

// MockCancellationRepository is a mock implementation of CancellationRepository
type MockCancellationRepository struct {
	CreateTxFunc    func(ctx context.Context, tx pgx.Tx, c *domain.Cancellation) error
	SumByOrderFunc  func(ctx context.Context, orderID string) (int, error)
	ListByOrderFunc func(ctx context.Context, orderID string) ([]*domain.Cancellation, error)
}

func (m *MockCancellationRepository) CreateTx(ctx context.Context, tx pgx.Tx, c *domain.Cancellation) error {
	if m.CreateTxFunc != nil {
		return m.CreateTxFunc(ctx, tx, c)
	}
	return nil
}

func (m *MockCancellationRepository) SumByOrder(ctx context.Context, orderID string) (int, error) {
	if m.SumByOrderFunc != nil {
		return m.SumByOrderFunc(ctx, orderID)
	}
	return 0, nil
}

func (m *MockCancellationRepository) ListByOrder(ctx context.Context, orderID string) ([]*domain.Cancellation, error) {
	if m.ListByOrderFunc != nil {
		return m.ListByOrderFunc(ctx, orderID)
	}
	return []*domain.Cancellation{}, nil
}

// MockOutboxRepository is a mock implementation of OutboxRepository
type MockOutboxRepository struct {
	CreateTxFunc           func(ctx context.Context, tx pgx.Tx, msg *domain.OutboxMessage) error
	GetPendingMessagesFunc func(ctx context.Context, limit int) ([]*domain.OutboxMessage, error)
	GetFailedMessagesFunc  func(ctx context.Context, limit, maxRetries int) ([]*domain.OutboxMessage, error)
	MarkAsPublishedFunc    func(ctx context.Context, id string) error
	MarkAsFailedFunc       func(ctx context.Context, id, lastError string) error
}

func (m *MockOutboxRepository) CreateTx(ctx context.Context, tx pgx.Tx, msg *domain.OutboxMessage) error {
	if m.CreateTxFunc != nil {
		return m.CreateTxFunc(ctx, tx, msg)
	}
	return nil
}

func (m *MockOutboxRepository) GetPendingMessages(ctx context.Context, limit int) ([]*domain.OutboxMessage, error) {
	if m.GetPendingMessagesFunc != nil {
		return m.GetPendingMessagesFunc(ctx, limit)
	}
	return []*domain.OutboxMessage{}, nil
}

func (m *MockOutboxRepository) GetFailedMessages(ctx context.Context, limit, maxRetries int) ([]*domain.OutboxMessage, error) {
	if m.GetFailedMessagesFunc != nil {
		return m.GetFailedMessagesFunc(ctx, limit, maxRetries)
	}
	return []*domain.OutboxMessage{}, nil
}

func (m *MockOutboxRepository) MarkAsPublished(ctx context.Context, id string) error {
	if m.MarkAsPublishedFunc != nil {
		return m.MarkAsPublishedFunc(ctx, id)
	}
	return nil
}

func (m *MockOutboxRepository) MarkAsFailed(ctx context.Context, id, lastError string) error {
	if m.MarkAsFailedFunc != nil {
		return m.MarkAsFailedFunc(ctx, id, lastError)
	}
	return nil
}

// MockEventRepository is a mock implementation of EventRepository
type MockEventRepository struct {
	CreateEventFunc          func(ctx context.Context, event *domain.Event) error
	GetEventByIDFunc         func(ctx context.Context, id string) (*domain.Event, error)
	ListEventsFunc           func(ctx context.Context, limit, offset int) ([]*domain.Event, error)
	CreateTicketTypeFunc     func(ctx context.Context, tt *domain.TicketType) error
	GetTicketTypeByIDFunc    func(ctx context.Context, id string) (*domain.TicketType, error)
	ListTicketTypesFunc      func(ctx context.Context, eventID string) ([]*domain.TicketType, error)
	CountOrdersFunc          func(ctx context.Context, eventID string) (int, error)
	BookedQuantityFunc       func(ctx context.Context, eventID string) (int, error)
	CancelledQuantityFunc    func(ctx context.Context, eventID string) (int, error)
	PeakCancellationDateFunc func(ctx context.Context, eventID string) (*time.Time, error)
}

func (m *MockEventRepository) CreateEvent(ctx context.Context, event *domain.Event) error {
	if m.CreateEventFunc != nil {
		return m.CreateEventFunc(ctx, event)
	}
	return nil
}

func (m *MockEventRepository) GetEventByID(ctx context.Context, id string) (*domain.Event, error) {
	if m.GetEventByIDFunc != nil {
		return m.GetEventByIDFunc(ctx, id)
	}
	return nil, domain.ErrEventNotFound
}

func (m *MockEventRepository) ListEvents(ctx context.Context, limit, offset int) ([]*domain.Event, error) {
	if m.ListEventsFunc != nil {
		return m.ListEventsFunc(ctx, limit, offset)
	}
	return []*domain.Event{}, nil
}

func (m *MockEventRepository) CreateTicketType(ctx context.Context, tt *domain.TicketType) error {
	if m.CreateTicketTypeFunc != nil {
		return m.CreateTicketTypeFunc(ctx, tt)
	}
	return nil
}

func (m *MockEventRepository) GetTicketTypeByID(ctx context.Context, id string) (*domain.TicketType, error) {
	if m.GetTicketTypeByIDFunc != nil {
		return m.GetTicketTypeByIDFunc(ctx, id)
	}
	return nil, domain.ErrTicketTypeNotFound
}

func (m *MockEventRepository) ListTicketTypes(ctx context.Context, eventID string) ([]*domain.TicketType, error) {
	if m.ListTicketTypesFunc != nil {
		return m.ListTicketTypesFunc(ctx, eventID)
	}
	return []*domain.TicketType{}, nil
}

func (m *MockEventRepository) CountOrders(ctx context.Context, eventID string) (int, error) {
	if m.CountOrdersFunc != nil {
		return m.CountOrdersFunc(ctx, eventID)
	}
	return 0, nil
}

func (m *MockEventRepository) BookedQuantity(ctx context.Context, eventID string) (int, error) {
	if m.BookedQuantityFunc != nil {
		return m.BookedQuantityFunc(ctx, eventID)
	}
	return 0, nil
}

func (m *MockEventRepository) CancelledQuantity(ctx context.Context, eventID string) (int, error) {
	if m.CancelledQuantityFunc != nil {
		return m.CancelledQuantityFunc(ctx, eventID)
	}
	return 0, nil
}

func (m *MockEventRepository) PeakCancellationDate(ctx context.Context, eventID string) (*time.Time, error) {
	if m.PeakCancellationDateFunc != nil {
		return m.PeakCancellationDateFunc(ctx, eventID)
	}
	return nil, nil
}
