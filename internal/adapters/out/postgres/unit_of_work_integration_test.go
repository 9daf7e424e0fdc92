package postgres_test

import (
	"context"
	"testing"
	"time"

	postgres_adapter "dispatch/internal/adapters/out/postgres"
	"dispatch/internal/adapters/out/postgres/agentrepo"
	"dispatch/internal/adapters/out/postgres/orderrepo"
	"dispatch/internal/adapters/out/postgres/walletrepo"
	"dispatch/internal/core/domain/model/agent"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/model/wallet"
	"dispatch/internal/core/ports"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gorm_postgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// UnitOfWorkIntegrationTestSuite provides comprehensive integration testing
// for the GORM-based Unit of Work implementation with real PostgreSQL database.
type UnitOfWorkIntegrationTestSuite struct {
	suite.Suite
	container *postgres.PostgresContainer
	db        *gorm.DB
	factory   ports.UnitOfWorkFactory
}

// SetupSuite initializes PostgreSQL container and database connection for all tests.
// Runs database migrations to prepare schema for unit of work operations.
func (suite *UnitOfWorkIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	// Start PostgreSQL container
	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2)),
	)
	suite.Require().NoError(err)
	suite.container = container

	// Connect to database
	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(gorm_postgres.Open(dsn), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	// Run migrations
	err = db.AutoMigrate(
		&orderrepo.OrderDTO{},
		&agentrepo.AgentDTO{},
		&walletrepo.WalletDTO{},
		&walletrepo.TransactionDTO{},
		&walletrepo.PayoutDTO{},
	)
	suite.Require().NoError(err)

	// Create factory
	suite.factory = postgres_adapter.NewGormUnitOfWorkFactory(db)
}

// SetupTest ensures clean database state before each test.
// Truncates all tables to prevent test interference.
func (suite *UnitOfWorkIntegrationTestSuite) SetupTest() {
	err := suite.db.Exec("TRUNCATE TABLE orders, agents, wallets, wallet_transactions, payouts").Error
	suite.Require().NoError(err)
}

// TearDownSuite cleans up PostgreSQL container after all tests complete.
func (suite *UnitOfWorkIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		err := suite.container.Terminate(context.Background())
		suite.Require().NoError(err)
	}
}

// TestUnitOfWorkFactory_Create verifies factory creates unit of work instances
// with proper initialization and isolation between instances.
func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWorkFactory_Create() {
	uow1 := suite.factory.Create()
	uow2 := suite.factory.Create()

	suite.NotSame(uow1, uow2, "Factory should create separate instances")

	suite.NotNil(uow1.OrderRepository(), "First instance should provide order repository")
	suite.NotNil(uow1.AgentRepository(), "First instance should provide agent repository")
	suite.NotNil(uow1.WalletRepository(), "First instance should provide wallet repository")
	suite.NotNil(uow2.OrderRepository(), "Second instance should provide order repository")
	suite.NotNil(uow2.AgentRepository(), "Second instance should provide agent repository")
}

// TestUnitOfWork_TransactionLifecycle verifies proper transaction management
// including begin, commit, and rollback operations.
func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_TransactionLifecycle() {
	ctx := context.Background()
	uow := suite.factory.Create()

	err := uow.Begin(ctx)
	suite.Require().NoError(err, "Should begin transaction successfully")

	// Multiple begin calls are safe
	err = uow.Begin(ctx)
	suite.Require().NoError(err, "Multiple begin calls should be safe")

	err = uow.Commit(ctx)
	suite.Require().NoError(err, "Should commit transaction successfully")

	err = uow.Begin(ctx)
	suite.Require().NoError(err)

	err = uow.Rollback(ctx)
	suite.Require().NoError(err, "Should rollback transaction successfully")
}

// TestUnitOfWork_TransactionErrors verifies error handling for invalid transaction operations.
func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_TransactionErrors() {
	ctx := context.Background()
	uow := suite.factory.Create()

	err := uow.Commit(ctx)
	suite.Require().Error(err, "Should error when committing without active transaction")

	err = uow.Rollback(ctx)
	suite.Require().Error(err, "Should error when rolling back without active transaction")
}

// TestUnitOfWork_SingleRepositoryTransaction verifies repository operations
// within a single transaction boundary work correctly.
func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_SingleRepositoryTransaction() {
	ctx := context.Background()
	uow := suite.factory.Create()

	testOrder := createTestOrder(&suite.Suite, "TRK-UOW-0001")

	err := uow.Begin(ctx)
	suite.Require().NoError(err)

	err = uow.OrderRepository().Add(ctx, testOrder)
	suite.Require().NoError(err)

	// Order is visible within the transaction
	retrievedOrder, err := uow.OrderRepository().Get(ctx, testOrder.ID())
	suite.Require().NoError(err)
	suite.Equal(testOrder.ID(), retrievedOrder.ID())

	err = uow.Commit(ctx)
	suite.Require().NoError(err)

	// Order persists after commit using new unit of work
	newUow := suite.factory.Create()
	retrievedOrder, err = newUow.OrderRepository().Get(ctx, testOrder.ID())
	suite.Require().NoError(err)
	suite.Equal(testOrder.ID(), retrievedOrder.ID())
}

// TestUnitOfWork_DeliveryTransaction verifies the delivered-order workflow:
// status transition, agent release and wallet earning commit atomically.
func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_DeliveryTransaction() {
	ctx := context.Background()
	now := time.Now().UTC()

	testAgent := createTestAgent(&suite.Suite)
	testOrder := createTestOrder(&suite.Suite, "TRK-UOW-0002")
	testWallet, err := wallet.NewWallet(testAgent.ID())
	suite.Require().NoError(err)

	// Seed persisted state: assigned order, on-trip agent, empty wallet.
	suite.Require().NoError(testAgent.StartTrip())
	suite.Require().NoError(testOrder.Assign(testAgent.ID(), now))
	suite.Require().NoError(testOrder.MarkPickedUp(testAgent.ID(), now))
	suite.Require().NoError(testOrder.StartDelivery(testAgent.ID()))

	seed := suite.factory.Create()
	suite.Require().NoError(seed.Begin(ctx))
	suite.Require().NoError(seed.OrderRepository().Add(ctx, testOrder))
	suite.Require().NoError(seed.AgentRepository().Add(ctx, testAgent))
	suite.Require().NoError(seed.WalletRepository().Add(ctx, testWallet))
	suite.Require().NoError(seed.Commit(ctx))

	// Deliver: order transition, agent back online, earning posted, one commit.
	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))

	suite.Require().NoError(testOrder.MarkDelivered(testAgent.ID(), now))
	suite.Require().NoError(uow.OrderRepository().UpdateInStatus(ctx, testOrder, order.OutForDelivery))

	testAgent.FinishTrip()
	suite.Require().NoError(uow.AgentRepository().Update(ctx, testAgent))

	share := testOrder.Payout().Share(70)
	_, err = testWallet.PostEarning(kernel.NewUUID(), testOrder.ID(), share, now)
	suite.Require().NoError(err)
	suite.Require().NoError(uow.WalletRepository().Update(ctx, testWallet))

	suite.Require().NoError(uow.Commit(ctx))

	// Everything persisted together.
	verify := suite.factory.Create()

	retrievedOrder, err := verify.OrderRepository().Get(ctx, testOrder.ID())
	suite.Require().NoError(err)
	suite.Equal(order.Delivered, retrievedOrder.Status())

	retrievedAgent, err := verify.AgentRepository().Get(ctx, testAgent.ID())
	suite.Require().NoError(err)
	suite.Equal(agent.Online, retrievedAgent.Presence())

	retrievedWallet, err := verify.WalletRepository().GetByAgent(ctx, testAgent.ID())
	suite.Require().NoError(err)
	suite.Equal(share, retrievedWallet.Balance())
	suite.Len(retrievedWallet.Transactions(), 1)
}

// TestUnitOfWork_TransactionRollback verifies rollback discards all changes
// made within the transaction across multiple repositories.
func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_TransactionRollback() {
	ctx := context.Background()
	uow := suite.factory.Create()

	testOrder := createTestOrder(&suite.Suite, "TRK-UOW-0003")
	testAgent := createTestAgent(&suite.Suite)

	err := uow.Begin(ctx)
	suite.Require().NoError(err)

	err = uow.OrderRepository().Add(ctx, testOrder)
	suite.Require().NoError(err)

	err = uow.AgentRepository().Add(ctx, testAgent)
	suite.Require().NoError(err)

	// Entities exist within the transaction
	_, err = uow.OrderRepository().Get(ctx, testOrder.ID())
	suite.Require().NoError(err)

	_, err = uow.AgentRepository().Get(ctx, testAgent.ID())
	suite.Require().NoError(err)

	err = uow.Rollback(ctx)
	suite.Require().NoError(err)

	// Entities do not exist after rollback
	newUow := suite.factory.Create()

	_, err = newUow.OrderRepository().Get(ctx, testOrder.ID())
	suite.Require().Error(err, "Order should not exist after rollback")

	_, err = newUow.AgentRepository().Get(ctx, testAgent.ID())
	suite.Require().Error(err, "Agent should not exist after rollback")
}

// TestUnitOfWork_RepositoryIsolation verifies that repositories obtained
// from different unit of work instances operate independently.
func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_RepositoryIsolation() {
	ctx := context.Background()

	uow1 := suite.factory.Create()
	uow2 := suite.factory.Create()

	order1 := createTestOrder(&suite.Suite, "TRK-UOW-0004")
	order2 := createTestOrder(&suite.Suite, "TRK-UOW-0005")

	err := uow1.Begin(ctx)
	suite.Require().NoError(err)

	err = uow2.Begin(ctx)
	suite.Require().NoError(err)

	err = uow1.OrderRepository().Add(ctx, order1)
	suite.Require().NoError(err)

	err = uow2.OrderRepository().Add(ctx, order2)
	suite.Require().NoError(err)

	// Each transaction only sees its own changes
	_, err = uow1.OrderRepository().Get(ctx, order1.ID())
	suite.Require().NoError(err, "UOW1 should see order1")

	_, err = uow1.OrderRepository().Get(ctx, order2.ID())
	suite.Require().Error(err, "UOW1 should not see order2")

	_, err = uow2.OrderRepository().Get(ctx, order2.ID())
	suite.Require().NoError(err, "UOW2 should see order2")

	_, err = uow2.OrderRepository().Get(ctx, order1.ID())
	suite.Require().Error(err, "UOW2 should not see order1")

	err = uow1.Commit(ctx)
	suite.Require().NoError(err)

	err = uow2.Rollback(ctx)
	suite.Require().NoError(err)

	// Only the committed order survives
	verify := suite.factory.Create()

	_, err = verify.OrderRepository().Get(ctx, order1.ID())
	suite.Require().NoError(err)

	_, err = verify.OrderRepository().Get(ctx, order2.ID())
	suite.Require().Error(err)
}

// createTestOrder creates a basic searching order with default values.
func createTestOrder(s *suite.Suite, trackingNumber string) *order.Order {
	pickup, err := kernel.NewGeoPoint(12.9716, 77.5946)
	s.Require().NoError(err)
	dropoff, err := kernel.NewGeoPoint(12.9352, 77.6245)
	s.Require().NoError(err)
	payout, err := kernel.NewMoneyFromFloat(15.00)
	s.Require().NoError(err)

	testOrder, err := order.NewOrder(
		kernel.NewUUID(), trackingNumber, kernel.NewUUID(),
		pickup, dropoff, payout, order.PriorityNormal, 45, time.Now())
	s.Require().NoError(err)
	return testOrder
}

// createTestAgent creates an approved, online agent with a known location.
func createTestAgent(s *suite.Suite) *agent.Agent {
	testAgent, err := agent.NewAgent(kernel.NewUUID(), kernel.NewUUID(), true)
	s.Require().NoError(err)

	s.Require().NoError(testAgent.GoOnline())

	loc, err := kernel.NewGeoPoint(12.96, 77.58)
	s.Require().NoError(err)
	_, err = testAgent.ReportLocation(loc, time.Now())
	s.Require().NoError(err)

	return testAgent
}

func TestUnitOfWorkIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(UnitOfWorkIntegrationTestSuite))
}
