package commands_test

import (
	"testing"
	"time"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/agent"
	"dispatch/internal/core/domain/model/kernel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestUpdateAgentLocationCommandHandler_Handle_UpdatesAggregateAndIndex(t *testing.T) {
	ctx := t.Context()

	reporting := newOnlineAgent(t)
	point := testPoint(t, 52.53, 13.41)
	observedAt := time.Now().UTC()

	agentRepo := new(MockAgentRepository)
	agentRepo.On("Get", mock.Anything, reporting.ID()).Return(reporting, nil).Once()
	agentRepo.On("Update", mock.Anything, reporting).Return(nil).Once()

	uow := new(MockAgentUoW)
	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("AgentRepository").Return(agentRepo)
	uow.On("Commit", ctx).Return(nil).Once()
	uow.On("Rollback", ctx).Return(nil).Once()

	factory := new(MockAgentUoWFactory)
	factory.On("Create").Return(uow).Once()

	geoIndex := new(StubGeoIndex)

	cmd, err := commands.NewUpdateAgentLocationCommand(reporting.ID(), point, observedAt)
	require.NoError(t, err)

	h := commands.NewUpdateAgentLocationCommandHandler(factory, geoIndex)
	require.NoError(t, h.Handle(ctx, cmd))

	require.NotNil(t, reporting.Location())
	isEqual, err := reporting.Location().IsEqual(point)
	require.NoError(t, err)
	assert.True(t, isEqual)

	upserts := geoIndex.Upserts()
	require.Len(t, upserts, 1)
	assert.True(t, upserts[0].AgentID.IsEqual(reporting.ID()))

	agentRepo.AssertExpectations(t)
	uow.AssertExpectations(t)
}

func TestUpdateAgentLocationCommandHandler_Handle_StalePingIsDropped(t *testing.T) {
	ctx := t.Context()

	reporting := newOnlineAgent(t)
	stale := reporting.LocationAt().Add(-time.Hour)

	agentRepo := new(MockAgentRepository)
	agentRepo.On("Get", mock.Anything, reporting.ID()).Return(reporting, nil).Once()

	uow := new(MockAgentUoW)
	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("AgentRepository").Return(agentRepo)
	uow.On("Rollback", ctx).Return(nil).Once()

	factory := new(MockAgentUoWFactory)
	factory.On("Create").Return(uow).Once()

	geoIndex := new(StubGeoIndex)

	cmd, err := commands.NewUpdateAgentLocationCommand(reporting.ID(), testPoint(t, 52.53, 13.41), stale)
	require.NoError(t, err)

	h := commands.NewUpdateAgentLocationCommandHandler(factory, geoIndex)
	require.NoError(t, h.Handle(ctx, cmd))

	agentRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	uow.AssertNotCalled(t, "Commit", mock.Anything)
	assert.Empty(t, geoIndex.Upserts())
}

func TestUpdateAgentLocationCommandHandler_Handle_OfflineAgentSkipsIndex(t *testing.T) {
	ctx := t.Context()

	offline, err := agent.NewAgent(kernel.NewUUID(), kernel.NewUUID(), true)
	require.NoError(t, err)

	agentRepo := new(MockAgentRepository)
	agentRepo.On("Get", mock.Anything, offline.ID()).Return(offline, nil).Once()
	agentRepo.On("Update", mock.Anything, offline).Return(nil).Once()

	uow := new(MockAgentUoW)
	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("AgentRepository").Return(agentRepo)
	uow.On("Commit", ctx).Return(nil).Once()
	uow.On("Rollback", ctx).Return(nil).Once()

	factory := new(MockAgentUoWFactory)
	factory.On("Create").Return(uow).Once()

	geoIndex := new(StubGeoIndex)

	cmd, err := commands.NewUpdateAgentLocationCommand(offline.ID(), testPoint(t, 52.53, 13.41), time.Now().UTC())
	require.NoError(t, err)

	h := commands.NewUpdateAgentLocationCommandHandler(factory, geoIndex)
	require.NoError(t, h.Handle(ctx, cmd))

	// Position persisted but an offline agent never enters the dispatch index.
	assert.Empty(t, geoIndex.Upserts())
}

func TestNewUpdateAgentLocationCommand_ZeroObservedAt(t *testing.T) {
	_, err := commands.NewUpdateAgentLocationCommand(kernel.NewUUID(), testPoint(t, 52.53, 13.41), time.Time{})
	require.Error(t, err)
	assert.ErrorIs(t, err, commands.ErrObservedAtIsRequired)
}
