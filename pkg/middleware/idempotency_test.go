package middleware

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// fakeRedis is an in-memory RedisClient for tests
type fakeRedis struct {
	mu   sync.Mutex
	data map[string]string
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: make(map[string]string)}
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if val, ok := f.data[key]; ok {
		return redis.NewStringResult(val, nil)
	}
	return redis.NewStringResult("", redis.Nil)
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = value.(string)
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.data[key]; ok {
		return redis.NewBoolResult(false, nil)
	}
	f.data[key] = value.(string)
	return redis.NewBoolResult(true, nil)
}

func (f *fakeRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, key := range keys {
		if _, ok := f.data[key]; ok {
			delete(f.data, key)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func setupIdempotencyRouter(store RedisClient, handled *int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/orders", IdempotencyMiddleware(DefaultIdempotencyConfig(store)), func(c *gin.Context) {
		*handled++
		c.JSON(http.StatusCreated, gin.H{"order_id": "order-123"})
	})
	return router
}

func TestIdempotencyMiddleware_ReplaysCachedResponse(t *testing.T) {
	var handled int
	router := setupIdempotencyRouter(newFakeRedis(), &handled)

	body := `{"ticket_type_id":"tt-1","quantity":2}`

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/orders", bytes.NewBufferString(body))
		req.Header.Set(IdempotencyKeyHeader, "key-123")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusCreated {
			t.Fatalf("request %d: status = %d, want 201", i, w.Code)
		}
	}

	if handled != 1 {
		t.Errorf("handler ran %d times, want 1", handled)
	}
}

func TestIdempotencyMiddleware_RejectsKeyReuseWithDifferentBody(t *testing.T) {
	var handled int
	router := setupIdempotencyRouter(newFakeRedis(), &handled)

	req := httptest.NewRequest(http.MethodPost, "/orders", bytes.NewBufferString(`{"quantity":2}`))
	req.Header.Set(IdempotencyKeyHeader, "key-123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("first request status = %d, want 201", w.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/orders", bytes.NewBufferString(`{"quantity":9}`))
	req.Header.Set(IdempotencyKeyHeader, "key-123")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("reused key status = %d, want 422", w.Code)
	}
	if handled != 1 {
		t.Errorf("handler ran %d times, want 1", handled)
	}
}

func TestIdempotencyMiddleware_NoKeyPassesThrough(t *testing.T) {
	var handled int
	router := setupIdempotencyRouter(newFakeRedis(), &handled)

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/orders", bytes.NewBufferString(`{"quantity":2}`))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusCreated {
			t.Fatalf("request %d: status = %d, want 201", i, w.Code)
		}
	}

	if handled != 2 {
		t.Errorf("handler ran %d times, want 2", handled)
	}
}
