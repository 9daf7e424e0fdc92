package commands_test

import (
	"testing"
	"time"

	"dispatch/internal/adapters/out/offerstore"
	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/agent"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCancelOrderCommandHandler_Handle_PartnerCancelsOwnOrder(t *testing.T) {
	ctx := t.Context()

	cancelling := newSearchingOrder(t)
	store := offerstore.NewInMemoryOfferStore()
	putOffer(t, store, cancelling.ID(), kernel.NewUUID(), 30*time.Second)

	orderRepo := new(MockOrderRepository)
	orderRepo.On("Get", mock.Anything, cancelling.ID()).Return(cancelling, nil).Once()
	orderRepo.On("UpdateInStatus", mock.Anything, cancelling, order.SearchingAgent).Return(nil).Once()

	uow := new(MockOrderAgentUoW)
	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("OrderRepository").Return(orderRepo)
	uow.On("Commit", ctx).Return(nil).Once()
	uow.On("Rollback", ctx).Return(nil).Once()

	factory := new(MockOrderAgentUoWFactory)
	factory.On("Create").Return(uow).Once()

	webhooks := new(SpyWebhookDispatcher)
	cmd, err := commands.NewCancelOrderCommand(cancelling.ID(), cancelling.Partner(), commands.RolePartner, "customer withdrew")
	require.NoError(t, err)

	h := commands.NewCancelOrderCommandHandler(factory, store, webhooks)
	require.NoError(t, h.Handle(ctx, cmd))

	assert.Equal(t, order.Cancelled, cancelling.Status())
	assert.Equal(t, "customer withdrew", cancelling.CancelReason())
	assert.Empty(t, store.ListByOrder(cancelling.ID()))

	events := webhooks.Events()
	require.Len(t, events, 1)
	assert.Equal(t, ports.EventOrderCancelled, events[0].Type)

	orderRepo.AssertExpectations(t)
	uow.AssertExpectations(t)
}

func TestCancelOrderCommandHandler_Handle_AdminCancelFreesAssignedAgent(t *testing.T) {
	ctx := t.Context()

	assignee := newOnTripAgent(t)
	cancelling := newAssignedOrder(t, assignee.ID())

	orderRepo := new(MockOrderRepository)
	orderRepo.On("Get", mock.Anything, cancelling.ID()).Return(cancelling, nil).Once()
	orderRepo.On("UpdateInStatus", mock.Anything, cancelling, order.Assigned).Return(nil).Once()

	agentRepo := new(MockAgentRepository)
	agentRepo.On("Get", mock.Anything, assignee.ID()).Return(assignee, nil).Once()
	agentRepo.On("Update", mock.Anything, assignee).Return(nil).Once()

	uow := new(MockOrderAgentUoW)
	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("OrderRepository").Return(orderRepo)
	uow.On("AgentRepository").Return(agentRepo)
	uow.On("Commit", ctx).Return(nil).Once()
	uow.On("Rollback", ctx).Return(nil).Once()

	factory := new(MockOrderAgentUoWFactory)
	factory.On("Create").Return(uow).Once()

	cmd, err := commands.NewCancelOrderCommand(cancelling.ID(), kernel.NewUUID(), commands.RoleAdmin, "fraud suspected")
	require.NoError(t, err)

	h := commands.NewCancelOrderCommandHandler(factory, offerstore.NewInMemoryOfferStore(), new(SpyWebhookDispatcher))
	require.NoError(t, h.Handle(ctx, cmd))

	assert.Equal(t, order.Cancelled, cancelling.Status())
	assert.Equal(t, agent.Online, assignee.Presence())
	agentRepo.AssertExpectations(t)
}

func TestCancelOrderCommandHandler_Handle_ForeignPartnerIsForbidden(t *testing.T) {
	ctx := t.Context()

	cancelling := newSearchingOrder(t)

	orderRepo := new(MockOrderRepository)
	orderRepo.On("Get", mock.Anything, cancelling.ID()).Return(cancelling, nil).Once()

	uow := new(MockOrderAgentUoW)
	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("OrderRepository").Return(orderRepo)
	uow.On("Rollback", ctx).Return(nil).Once()

	factory := new(MockOrderAgentUoWFactory)
	factory.On("Create").Return(uow).Once()

	cmd, err := commands.NewCancelOrderCommand(cancelling.ID(), kernel.NewUUID(), commands.RolePartner, "not mine")
	require.NoError(t, err)

	h := commands.NewCancelOrderCommandHandler(factory, offerstore.NewInMemoryOfferStore(), new(SpyWebhookDispatcher))
	err = h.Handle(ctx, cmd)
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrForbidden)
	assert.Equal(t, order.SearchingAgent, cancelling.Status())
}

func TestCancelOrderCommandHandler_Handle_AgentRoleIsForbidden(t *testing.T) {
	ctx := t.Context()

	cancelling := newSearchingOrder(t)

	orderRepo := new(MockOrderRepository)
	orderRepo.On("Get", mock.Anything, cancelling.ID()).Return(cancelling, nil).Once()

	uow := new(MockOrderAgentUoW)
	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("OrderRepository").Return(orderRepo)
	uow.On("Rollback", ctx).Return(nil).Once()

	factory := new(MockOrderAgentUoWFactory)
	factory.On("Create").Return(uow).Once()

	cmd, err := commands.NewCancelOrderCommand(cancelling.ID(), kernel.NewUUID(), commands.RoleAgent, "cannot do this")
	require.NoError(t, err)

	h := commands.NewCancelOrderCommandHandler(factory, offerstore.NewInMemoryOfferStore(), new(SpyWebhookDispatcher))
	err = h.Handle(ctx, cmd)
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrForbidden)
}

func TestCancelOrderCommandHandler_Handle_TerminalOrderCannotBeCancelled(t *testing.T) {
	ctx := t.Context()

	cancelling := newSearchingOrder(t)
	require.NoError(t, cancelling.Cancel("already gone", time.Now().UTC()))

	orderRepo := new(MockOrderRepository)
	orderRepo.On("Get", mock.Anything, cancelling.ID()).Return(cancelling, nil).Once()

	uow := new(MockOrderAgentUoW)
	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("OrderRepository").Return(orderRepo)
	uow.On("Rollback", ctx).Return(nil).Once()

	factory := new(MockOrderAgentUoWFactory)
	factory.On("Create").Return(uow).Once()

	cmd, err := commands.NewCancelOrderCommand(cancelling.ID(), kernel.NewUUID(), commands.RoleAdmin, "again")
	require.NoError(t, err)

	h := commands.NewCancelOrderCommandHandler(factory, offerstore.NewInMemoryOfferStore(), new(SpyWebhookDispatcher))
	err = h.Handle(ctx, cmd)
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrInvalidTransition)
}

func TestNewCancelOrderCommand_ReasonIsMandatory(t *testing.T) {
	_, err := commands.NewCancelOrderCommand(kernel.NewUUID(), kernel.NewUUID(), commands.RolePartner, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, commands.ErrCancelReasonIsRequired)
}
