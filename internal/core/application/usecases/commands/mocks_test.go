package commands_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/agent"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/model/wallet"
	"dispatch/internal/core/ports"

	"github.com/stretchr/testify/mock"
)

type MockOrderRepository struct{ mock.Mock }

func (m *MockOrderRepository) Add(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Update(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) UpdateInStatus(ctx context.Context, o *order.Order, expected order.Status) error {
	args := m.Called(ctx, o, expected)
	return args.Error(0)
}

func (m *MockOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) GetByTrackingNumber(_ context.Context, _ string) (*order.Order, error) {
	return nil, errors.New("not implemented in mock")
}

func (m *MockOrderRepository) GetAllSearching(ctx context.Context) ([]*order.Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

func (m *MockOrderRepository) GetAllActive(_ context.Context) ([]*order.Order, error) {
	return nil, errors.New("not implemented in mock")
}

func (m *MockOrderRepository) GetAssignedBefore(ctx context.Context, cutoff time.Time) ([]*order.Order, error) {
	args := m.Called(ctx, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

type MockAgentRepository struct{ mock.Mock }

func (m *MockAgentRepository) Add(_ context.Context, _ *agent.Agent) error {
	return errors.New("not implemented in mock")
}

func (m *MockAgentRepository) Update(ctx context.Context, a *agent.Agent) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockAgentRepository) Get(ctx context.Context, id kernel.UUID) (*agent.Agent, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*agent.Agent), args.Error(1)
}

func (m *MockAgentRepository) GetByIDs(ctx context.Context, ids []kernel.UUID) ([]*agent.Agent, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*agent.Agent), args.Error(1)
}

type MockWalletRepository struct{ mock.Mock }

func (m *MockWalletRepository) Add(ctx context.Context, w *wallet.Wallet) error {
	args := m.Called(ctx, w)
	return args.Error(0)
}

func (m *MockWalletRepository) Update(ctx context.Context, w *wallet.Wallet) error {
	args := m.Called(ctx, w)
	return args.Error(0)
}

func (m *MockWalletRepository) GetByAgent(ctx context.Context, agentID kernel.UUID) (*wallet.Wallet, error) {
	args := m.Called(ctx, agentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wallet.Wallet), args.Error(1)
}

func (m *MockWalletRepository) GetAgentIDsWithUnsettledEarnings(ctx context.Context, before time.Time) ([]kernel.UUID, error) {
	args := m.Called(ctx, before)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]kernel.UUID), args.Error(1)
}

func (m *MockWalletRepository) AddPayout(ctx context.Context, p *wallet.Payout) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockWalletRepository) PayoutExists(ctx context.Context, agentID kernel.UUID, periodStart time.Time) (bool, error) {
	args := m.Called(ctx, agentID, periodStart)
	return args.Bool(0), args.Error(1)
}

type MockOrderUoW struct{ mock.Mock }

func (m *MockOrderUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockOrderUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockOrderUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockOrderUoW) OrderRepository() ports.OrderRepository {
	args := m.Called()
	return args.Get(0).(ports.OrderRepository)
}

type MockOrderUoWFactory struct{ mock.Mock }

func (m *MockOrderUoWFactory) Create() commands.OrderUoW {
	args := m.Called()
	return args.Get(0).(commands.OrderUoW)
}

type MockAgentUoW struct{ mock.Mock }

func (m *MockAgentUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockAgentUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockAgentUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockAgentUoW) AgentRepository() ports.AgentRepository {
	args := m.Called()
	return args.Get(0).(ports.AgentRepository)
}

type MockAgentUoWFactory struct{ mock.Mock }

func (m *MockAgentUoWFactory) Create() commands.AgentUoW {
	args := m.Called()
	return args.Get(0).(commands.AgentUoW)
}

type MockWalletUoW struct{ mock.Mock }

func (m *MockWalletUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockWalletUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockWalletUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockWalletUoW) WalletRepository() ports.WalletRepository {
	args := m.Called()
	return args.Get(0).(ports.WalletRepository)
}

type MockWalletUoWFactory struct{ mock.Mock }

func (m *MockWalletUoWFactory) Create() commands.WalletUoW {
	args := m.Called()
	return args.Get(0).(commands.WalletUoW)
}

type MockOrderAgentUoW struct{ mock.Mock }

func (m *MockOrderAgentUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockOrderAgentUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockOrderAgentUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockOrderAgentUoW) OrderRepository() ports.OrderRepository {
	args := m.Called()
	return args.Get(0).(ports.OrderRepository)
}

func (m *MockOrderAgentUoW) AgentRepository() ports.AgentRepository {
	args := m.Called()
	return args.Get(0).(ports.AgentRepository)
}

type MockOrderAgentUoWFactory struct{ mock.Mock }

func (m *MockOrderAgentUoWFactory) Create() commands.OrderAgentUoW {
	args := m.Called()
	return args.Get(0).(commands.OrderAgentUoW)
}

type MockUoW struct{ mock.Mock }

func (m *MockUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) OrderRepository() ports.OrderRepository {
	args := m.Called()
	return args.Get(0).(ports.OrderRepository)
}

func (m *MockUoW) AgentRepository() ports.AgentRepository {
	args := m.Called()
	return args.Get(0).(ports.AgentRepository)
}

func (m *MockUoW) WalletRepository() ports.WalletRepository {
	args := m.Called()
	return args.Get(0).(ports.WalletRepository)
}

type MockUoWFactory struct{ mock.Mock }

func (m *MockUoWFactory) Create() commands.UoW {
	args := m.Called()
	return args.Get(0).(commands.UoW)
}

// SpyWebhookDispatcher records notified events for assertions.
type SpyWebhookDispatcher struct {
	mu     sync.Mutex
	events []ports.WebhookEvent
}

func (s *SpyWebhookDispatcher) Notify(_ context.Context, event ports.WebhookEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
}

func (s *SpyWebhookDispatcher) Events() []ports.WebhookEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ports.WebhookEvent(nil), s.events...)
}

type publishedOffer struct {
	AgentID      kernel.UUID
	Notification ports.OfferNotification
}

type publishedUnavailable struct {
	AgentID kernel.UUID
	OrderID kernel.UUID
}

// SpyBroadcaster records pushes. Set Offline to simulate agents without an
// open connection.
type SpyBroadcaster struct {
	Offline bool

	mu           sync.Mutex
	offers       []publishedOffer
	unavailable  []publishedUnavailable
	disconnected []kernel.UUID
}

func (s *SpyBroadcaster) PublishOffer(agentID kernel.UUID, notification ports.OfferNotification) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Offline {
		return false
	}
	s.offers = append(s.offers, publishedOffer{AgentID: agentID, Notification: notification})
	return true
}

func (s *SpyBroadcaster) PublishOrderUnavailable(agentID kernel.UUID, orderID kernel.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Offline {
		return false
	}
	s.unavailable = append(s.unavailable, publishedUnavailable{AgentID: agentID, OrderID: orderID})
	return true
}

func (s *SpyBroadcaster) Disconnect(agentID kernel.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.disconnected = append(s.disconnected, agentID)
}

func (s *SpyBroadcaster) Offers() []publishedOffer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]publishedOffer(nil), s.offers...)
}

func (s *SpyBroadcaster) Unavailable() []publishedUnavailable {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]publishedUnavailable(nil), s.unavailable...)
}

func (s *SpyBroadcaster) Disconnected() []kernel.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]kernel.UUID(nil), s.disconnected...)
}

type geoUpsert struct {
	AgentID    kernel.UUID
	Point      kernel.GeoPoint
	ObservedAt time.Time
}

// StubGeoIndex returns canned nearby hits and records writes.
type StubGeoIndex struct {
	Hits []ports.NearbyAgent

	mu      sync.Mutex
	upserts []geoUpsert
	removed []kernel.UUID
}

func (s *StubGeoIndex) Upsert(agentID kernel.UUID, point kernel.GeoPoint, observedAt time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upserts = append(s.upserts, geoUpsert{AgentID: agentID, Point: point, ObservedAt: observedAt})
	return true
}

func (s *StubGeoIndex) Remove(agentID kernel.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removed = append(s.removed, agentID)
}

func (s *StubGeoIndex) Nearby(_ kernel.GeoPoint, _ float64, limit int) []ports.NearbyAgent {
	if len(s.Hits) > limit {
		return s.Hits[:limit]
	}
	return s.Hits
}

func (s *StubGeoIndex) Upserts() []geoUpsert {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]geoUpsert(nil), s.upserts...)
}

func (s *StubGeoIndex) Removed() []kernel.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]kernel.UUID(nil), s.removed...)
}
