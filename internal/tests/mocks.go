package tests

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"storefront/internal/domain"
	"storefront/internal/service"
)

// ──────────────────────────────────────────────
// MOCK PAYMENT PROVIDER
// ──────────────────────────────────────────────

// MockPaymentProvider is a mock implementation of service.PaymentProvider.
type MockPaymentProvider struct {
	mu       sync.Mutex
	sessions map[string]*domain.PaymentVerification

	// Captured input for verification
	LastCreateParams service.CreateSessionParams

	// Counters for verification
	CreateCallCount   int32
	RetrieveCallCount int32

	// Error injection
	CreateError   error
	RetrieveError error

	// NextSessionID is returned by the next CreateCheckoutSession call.
	NextSessionID string
}

// NewMockPaymentProvider creates a new mock provider.
func NewMockPaymentProvider() *MockPaymentProvider {
	return &MockPaymentProvider{
		sessions:      make(map[string]*domain.PaymentVerification),
		NextSessionID: "cs_test_mock",
	}
}

// AddSession registers a session the mock will return on retrieval.
func (m *MockPaymentProvider) AddSession(id string, verification *domain.PaymentVerification) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[id] = verification
}

func (m *MockPaymentProvider) CreateCheckoutSession(ctx context.Context, params service.CreateSessionParams) (string, error) {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return "", m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastCreateParams = params
	return m.NextSessionID, nil
}

func (m *MockPaymentProvider) RetrieveSession(ctx context.Context, sessionID string) (*domain.PaymentVerification, error) {
	atomic.AddInt32(&m.RetrieveCallCount, 1)
	if m.RetrieveError != nil {
		return nil, m.RetrieveError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	verification, ok := m.sessions[sessionID]
	if !ok {
		return nil, service.ErrSessionNotFound
	}
	copy := *verification
	return &copy, nil
}

// CreateParams returns the captured params of the last create call.
func (m *MockPaymentProvider) CreateParams() service.CreateSessionParams {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.LastCreateParams
}

// ──────────────────────────────────────────────
// MEMORY RATE LIMITER
// ──────────────────────────────────────────────

// MemoryLimiter is an in-memory sliding-window limiter implementing
// middleware.Limiter for tests.
type MemoryLimiter struct {
	mu   sync.Mutex
	hits map[string][]time.Time

	// Error injection
	AllowError error
}

// NewMemoryLimiter creates a new MemoryLimiter.
func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{hits: make(map[string][]time.Time)}
}

func (m *MemoryLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if m.AllowError != nil {
		return false, m.AllowError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-window)

	kept := m.hits[key][:0]
	for _, hit := range m.hits[key] {
		if hit.After(cutoff) {
			kept = append(kept, hit)
		}
	}
	kept = append(kept, now)
	m.hits[key] = kept

	return len(kept) <= limit, nil
}

// ──────────────────────────────────────────────
// MEMORY RESPONSE CACHE
// ──────────────────────────────────────────────

// MemoryResponseCache is an in-memory middleware.ResponseCache for tests.
type MemoryResponseCache struct {
	mu     sync.Mutex
	values map[string][]byte
}

// NewMemoryResponseCache creates a new MemoryResponseCache.
func NewMemoryResponseCache() *MemoryResponseCache {
	return &MemoryResponseCache{values: make(map[string][]byte)}
}

func (m *MemoryResponseCache) Get(ctx context.Context, key string) *redis.StringCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.values[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(string(value), nil)
}

func (m *MemoryResponseCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch v := value.(type) {
	case []byte:
		m.values[key] = v
	case string:
		m.values[key] = []byte(v)
	}
	return redis.NewStatusResult("OK", nil)
}

// ──────────────────────────────────────────────
// MOCK NOTIFICATION SENDER
// ──────────────────────────────────────────────

// MockSender records sent messages.
type MockSender struct {
	mu       sync.Mutex
	messages []SentMessage

	// Error injection
	SendError error
}

// SentMessage is one captured delivery.
type SentMessage struct {
	To      string
	Subject string
	Body    string
}

// NewMockSender creates a new MockSender.
func NewMockSender() *MockSender {
	return &MockSender{}
}

func (m *MockSender) Send(ctx context.Context, to, subject, body string) error {
	if m.SendError != nil {
		return m.SendError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, SentMessage{To: to, Subject: subject, Body: body})
	return nil
}

// Messages returns the captured deliveries.
func (m *MockSender) Messages() []SentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SentMessage, len(m.messages))
	copy(out, m.messages)
	return out
}
