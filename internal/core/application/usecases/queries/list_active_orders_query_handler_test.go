package queries_test

import (
	"context"
	"testing"
	"time"

	"dispatch/internal/adapters/out/postgres/orderrepo"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/order"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type ListActiveOrdersQueryHandlerTestSuite struct {
	suite.Suite
	container *postgres.PostgresContainer
	db        *gorm.DB
	handler   queries.ListActiveOrdersQueryHandler
}

func (suite *ListActiveOrdersQueryHandlerTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	suite.Require().NoError(err)
	suite.container = container

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(postgresdriver.Open(connStr), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	suite.Require().NoError(db.AutoMigrate(&orderrepo.OrderDTO{}))

	suite.handler = queries.NewListActiveOrdersQueryHandler(db)
}

func (suite *ListActiveOrdersQueryHandlerTestSuite) TearDownSuite() {
	if suite.container != nil {
		err := suite.container.Terminate(context.Background())
		suite.Require().NoError(err)
	}
}

func (suite *ListActiveOrdersQueryHandlerTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec("TRUNCATE TABLE orders CASCADE").Error)
}

func (suite *ListActiveOrdersQueryHandlerTestSuite) seedOrder(
	trackingNumber string,
	status order.Status,
	delayed bool,
	agentID *uuid.UUID,
	createdAt time.Time,
) uuid.UUID {
	id := uuid.New()
	var assignedAt *time.Time
	if agentID != nil {
		at := createdAt.Add(time.Minute)
		assignedAt = &at
	}

	suite.Require().NoError(suite.db.Create(&orderrepo.OrderDTO{
		ID:                    id,
		TrackingNumber:        trackingNumber,
		PartnerID:             uuid.New(),
		AgentID:               agentID,
		Pickup:                orderrepo.GeoPointDTO{Lat: 52.52, Lng: 13.405},
		Dropoff:               orderrepo.GeoPointDTO{Lat: 52.5, Lng: 13.39},
		PayoutCents:           1500,
		Priority:              int(order.PriorityNormal),
		EstimatedDurationMins: 30,
		Status:                int(status),
		Delayed:               delayed,
		CreatedAt:             createdAt,
		AssignedAt:            assignedAt,
	}).Error)
	return id
}

func (suite *ListActiveOrdersQueryHandlerTestSuite) TestHandle_EmptyDatabase_ReturnsEmptySlice() {
	query := queries.NewListActiveOrdersQuery()

	result, err := suite.handler.Handle(context.Background(), query)

	suite.Require().NoError(err)
	suite.NotNil(result)
	suite.Empty(result)
}

func (suite *ListActiveOrdersQueryHandlerTestSuite) TestHandle_ReturnsInFlightOrdersOldestFirst() {
	now := time.Now().UTC().Truncate(time.Microsecond)
	agentID := uuid.New()

	suite.seedOrder("TRK-SEARCHING", order.SearchingAgent, false, nil, now.Add(-time.Hour))
	suite.seedOrder("TRK-LATE", order.PickedUp, true, &agentID, now.Add(-3*time.Hour))
	suite.seedOrder("TRK-DONE", order.Delivered, false, &agentID, now.Add(-5*time.Hour))
	suite.seedOrder("TRK-GONE", order.Cancelled, false, nil, now.Add(-4*time.Hour))

	query := queries.NewListActiveOrdersQuery()

	result, err := suite.handler.Handle(context.Background(), query)

	suite.Require().NoError(err)
	suite.Require().Len(result, 2)

	suite.Equal("TRK-LATE", result[0].TrackingNumber)
	suite.Equal("PICKED_UP", result[0].Status)
	suite.True(result[0].Delayed)
	suite.Require().NotNil(result[0].AgentID)
	suite.NotNil(result[0].AssignedAt)

	suite.Equal("TRK-SEARCHING", result[1].TrackingNumber)
	suite.Equal("SEARCHING_AGENT", result[1].Status)
	suite.False(result[1].Delayed)
	suite.Nil(result[1].AgentID)
}

func (suite *ListActiveOrdersQueryHandlerTestSuite) TestHandle_InvalidQuery_ReturnsError() {
	invalidQuery := queries.ListActiveOrdersQuery{}

	result, err := suite.handler.Handle(context.Background(), invalidQuery)

	suite.Require().Error(err)
	suite.Nil(result)
	suite.Contains(err.Error(), "must be created via NewListActiveOrdersQuery constructor")
}

func TestListActiveOrdersQueryHandlerTestSuite(t *testing.T) {
suite.Run(t, new(ListActiveOrdersQueryHandlerTestSuite))
}
