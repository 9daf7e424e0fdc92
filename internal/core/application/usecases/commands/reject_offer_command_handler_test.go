package commands_test

import (
	"testing"
	"time"

	"dispatch/internal/adapters/out/offerstore"
	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/offer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRejectOfferCommandHandler_Handle_RejectsPendingOffer(t *testing.T) {
	store := offerstore.NewInMemoryOfferStore()
	orderID := kernel.NewUUID()
	agentID := kernel.NewUUID()
	extended := putOffer(t, store, orderID, agentID, 30*time.Second)

	cmd, err := commands.NewRejectOfferCommand(orderID, agentID)
	require.NoError(t, err)

	h := commands.NewRejectOfferCommandHandler(store)
	require.NoError(t, h.Handle(t.Context(), cmd))
	assert.Equal(t, offer.Rejected, extended.Outcome())
}

func TestRejectOfferCommandHandler_Handle_UnknownOfferIsNoOp(t *testing.T) {
	cmd, err := commands.NewRejectOfferCommand(kernel.NewUUID(), kernel.NewUUID())
	require.NoError(t, err)

	h := commands.NewRejectOfferCommandHandler(offerstore.NewInMemoryOfferStore())
	require.NoError(t, h.Handle(t.Context(), cmd))
}

func TestRejectOfferCommandHandler_Handle_ResolvedOfferStaysResolved(t *testing.T) {
	store := offerstore.NewInMemoryOfferStore()
	orderID := kernel.NewUUID()
	agentID := kernel.NewUUID()
	extended := putOffer(t, store, orderID, agentID, 30*time.Second)
	require.NoError(t, extended.Accept(time.Now().UTC()))

	cmd, err := commands.NewRejectOfferCommand(orderID, agentID)
	require.NoError(t, err)

	h := commands.NewRejectOfferCommandHandler(store)
	require.NoError(t, h.Handle(t.Context(), cmd))
	assert.Equal(t, offer.Accepted, extended.Outcome())
}
