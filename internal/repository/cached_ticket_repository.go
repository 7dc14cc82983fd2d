package repository

import (
	"context"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	goredis "github.com/redis/go-redis/v9"
	"github.com/ticketforge/ticketing/internal/domain"
	"github.com/ticketforge/ticketing/pkg/redis"
)

const (
	availabilityKeyPrefix = "tickets:available:"

	// Short TTL: availability is a hint, the claim query is the source
	// of truth under contention.
	availabilityCacheTTL = 5 * time.Second
)

// TicketCache is the cache surface the repository needs. The pkg/redis
// client satisfies it.
type TicketCache interface {
	Get(ctx context.Context, key string) *goredis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *goredis.StatusCmd
	Del(ctx context.Context, keys ...string) *goredis.IntCmd
	Scan(ctx context.Context, cursor uint64, match string, count int64) *goredis.ScanCmd
}

var _ TicketCache = (*redis.Client)(nil)

// CachedTicketRepository wraps TicketRepository with Redis caching for
// the availability count. Writes (claim/release) invalidate the count.
type CachedTicketRepository struct {
	repo  TicketRepository
	cache TicketCache
}

// NewCachedTicketRepository creates a new CachedTicketRepository
func NewCachedTicketRepository(repo TicketRepository, cache TicketCache) *CachedTicketRepository {
	return &CachedTicketRepository{
		repo:  repo,
		cache: cache,
	}
}

// CountAvailable counts the free tickets of a ticket type with caching
func (r *CachedTicketRepository) CountAvailable(ctx context.Context, ticketTypeID string) (int, error) {
	cacheKey := availabilityKeyPrefix + ticketTypeID
	cached, err := r.cache.Get(ctx, cacheKey).Result()
	if err == nil && cached != "" {
		if count, convErr := strconv.Atoi(cached); convErr == nil {
			return count, nil
		}
	}

	count, err := r.repo.CountAvailable(ctx, ticketTypeID)
	if err != nil {
		return 0, err
	}

	r.cache.Set(ctx, cacheKey, strconv.Itoa(count), availabilityCacheTTL)

	return count, nil
}

// Available returns the free tickets of a ticket type (bypass cache)
func (r *CachedTicketRepository) Available(ctx context.Context, ticketTypeID string) ([]*domain.Ticket, error) {
	return r.repo.Available(ctx, ticketTypeID)
}

// CountByOrder counts the tickets currently held by an order (bypass cache)
func (r *CachedTicketRepository) CountByOrder(ctx context.Context, orderID string) (int, error) {
	return r.repo.CountByOrder(ctx, orderID)
}

// ClaimForOrder claims tickets and invalidates the availability count
func (r *CachedTicketRepository) ClaimForOrder(ctx context.Context, tx pgx.Tx, ticketTypeID, orderID string, quantity int) (int, error) {
	claimed, err := r.repo.ClaimForOrder(ctx, tx, ticketTypeID, orderID, quantity)
	if err != nil {
		return 0, err
	}

	r.cache.Del(ctx, availabilityKeyPrefix+ticketTypeID)

	return claimed, nil
}

// ReleaseFromOrder releases tickets and invalidates all availability
// counts. The order's ticket type is not known here, so the whole
// prefix is scanned.
func (r *CachedTicketRepository) ReleaseFromOrder(ctx context.Context, tx pgx.Tx, orderID string, quantity int) (int, error) {
	released, err := r.repo.ReleaseFromOrder(ctx, tx, orderID, quantity)
	if err != nil {
		return 0, err
	}

	iter := r.cache.Scan(ctx, 0, availabilityKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		r.cache.Del(ctx, iter.Val())
	}

	return released, nil
}

// Ensure CachedTicketRepository implements TicketRepository
var _ TicketRepository = (*CachedTicketRepository)(nil)
