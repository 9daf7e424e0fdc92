// Package http exposes the dispatch engine over an echo REST API plus the
// agent websocket endpoint. Authentication lives upstream; the handlers
// trust the identity headers the gateway injects.
package http

import (
	"errors"
	"net/http"
	"time"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// Identity headers set by the upstream auth gateway.
const (
	HeaderActorID   = "X-Actor-Id"
	HeaderActorRole = "X-Actor-Role"
)

// WSAttacher upgrades an agent's request to a push connection.
type WSAttacher interface {
	Attach(agentID kernel.UUID, w http.ResponseWriter, r *http.Request) error
}

// Server coordinates between the HTTP surface and the application use cases.
type Server struct {
	// Command handlers
	createOrderHandler         commands.CreateOrderCommandHandler
	acceptOfferHandler         commands.AcceptOfferCommandHandler
	rejectOfferHandler         commands.RejectOfferCommandHandler
	advanceOrderHandler        commands.AdvanceOrderCommandHandler
	cancelOrderHandler         commands.CancelOrderCommandHandler
	reassignOrderHandler       commands.ReassignOrderCommandHandler
	updateAgentLocationHandler commands.UpdateAgentLocationCommandHandler
	setAgentPresenceHandler    commands.SetAgentPresenceCommandHandler

	// Query handlers
	listAvailableOrdersHandler queries.ListAvailableOrdersQueryHandler
	listActiveOrdersHandler    queries.ListActiveOrdersQueryHandler
	getWalletHandler           queries.GetWalletQueryHandler

	attacher WSAttacher
}

// NewServer creates a new HTTP server with the required command and query
// handlers.
func NewServer(
	createOrderHandler commands.CreateOrderCommandHandler,
	acceptOfferHandler commands.AcceptOfferCommandHandler,
	rejectOfferHandler commands.RejectOfferCommandHandler,
	advanceOrderHandler commands.AdvanceOrderCommandHandler,
	cancelOrderHandler commands.CancelOrderCommandHandler,
	reassignOrderHandler commands.ReassignOrderCommandHandler,
	updateAgentLocationHandler commands.UpdateAgentLocationCommandHandler,
	setAgentPresenceHandler commands.SetAgentPresenceCommandHandler,
	listAvailableOrdersHandler queries.ListAvailableOrdersQueryHandler,
	listActiveOrdersHandler queries.ListActiveOrdersQueryHandler,
	getWalletHandler queries.GetWalletQueryHandler,
	attacher WSAttacher,
) *Server {
	return &Server{
		createOrderHandler:         createOrderHandler,
		acceptOfferHandler:         acceptOfferHandler,
		rejectOfferHandler:         rejectOfferHandler,
		advanceOrderHandler:        advanceOrderHandler,
		cancelOrderHandler:         cancelOrderHandler,
		reassignOrderHandler:       reassignOrderHandler,
		updateAgentLocationHandler: updateAgentLocationHandler,
		setAgentPresenceHandler:    setAgentPresenceHandler,
		listAvailableOrdersHandler: listAvailableOrdersHandler,
		listActiveOrdersHandler:    listActiveOrdersHandler,
		getWalletHandler:           getWalletHandler,
		attacher:                   attacher,
	}
}

// RegisterRoutes wires the server's handlers into the echo instance.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api/v1")

	api.POST("/orders", s.CreateOrder)
	api.GET("/orders/active", s.ListActiveOrders)
	api.POST("/orders/:orderId/accept", s.AcceptOffer)
	api.POST("/orders/:orderId/reject", s.RejectOffer)
	api.POST("/orders/:orderId/advance", s.AdvanceOrder)
	api.POST("/orders/:orderId/cancel", s.CancelOrder)
	api.POST("/orders/:orderId/reassign", s.ReassignOrder)

	api.GET("/agents/:agentId/offers", s.ListAvailableOrders)
	api.GET("/agents/:agentId/wallet", s.GetWallet)
	api.POST("/agents/:agentId/location", s.UpdateAgentLocation)
	api.POST("/agents/:agentId/presence", s.SetAgentPresence)

	e.GET("/ws/agents/:agentId", s.AttachAgent)
}

type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type geoPointBody struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type createOrderRequest struct {
	Pickup                geoPointBody `json:"pickup"`
	Dropoff               geoPointBody `json:"dropoff"`
	PayoutAmount          float64      `json:"payoutAmount"`
	Priority              string       `json:"priority"`
	EstimatedDurationMins int          `json:"estimatedDurationMins"`
}

type createOrderResponse struct {
	ID string `json:"id"`
}

// CreateOrder handles POST /api/v1/orders - a partner submits a new order.
func (s *Server) CreateOrder(ctx echo.Context) error {
	partnerID, _, err := actor(ctx)
	if err != nil {
		return badRequest(ctx, err)
	}

	var req createOrderRequest
	if err = ctx.Bind(&req); err != nil {
		return badRequest(ctx, errors.New("invalid request body"))
	}

	pickup, err := kernel.NewGeoPoint(req.Pickup.Lat, req.Pickup.Lng)
	if err != nil {
		return badRequest(ctx, err)
	}
	dropoff, err := kernel.NewGeoPoint(req.Dropoff.Lat, req.Dropoff.Lng)
	if err != nil {
		return badRequest(ctx, err)
	}
	payout, err := kernel.NewMoneyFromFloat(req.PayoutAmount)
	if err != nil {
		return badRequest(ctx, err)
	}

	priority := order.PriorityNormal
	if req.Priority != "" {
		if priority, err = order.ParsePriority(req.Priority); err != nil {
			return badRequest(ctx, err)
		}
	}

	orderID := kernel.NewUUID()
	cmd, err := commands.NewCreateOrderCommand(orderID, partnerID, pickup, dropoff,
		payout, priority, req.EstimatedDurationMins)
	if err != nil {
		return badRequest(ctx, err)
	}

	if err = s.createOrderHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return mapError(ctx, err)
	}

	return ctx.JSON(http.StatusCreated, createOrderResponse{ID: orderID.String()})
}

// ListActiveOrders handles GET /api/v1/orders/active - admin monitoring view.
func (s *Server) ListActiveOrders(ctx echo.Context) error {
	_, role, err := actor(ctx)
	if err != nil {
		return badRequest(ctx, err)
	}
	if role != commands.RoleAdmin {
		return forbidden(ctx)
	}

	query := queries.NewListActiveOrdersQuery()
	active, err := s.listActiveOrdersHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return mapError(ctx, err)
	}

	type activeOrderBody struct {
		ID               string     `json:"id"`
		TrackingNumber   string     `json:"trackingNumber"`
		PartnerID        string     `json:"partnerId"`
		AgentID          *string    `json:"agentId,omitempty"`
		Status           string     `json:"status"`
		Delayed          bool       `json:"delayed"`
		DispatchAttempts int        `json:"dispatchAttempts"`
		PayoutCents      int64      `json:"payoutCents"`
		CreatedAt        time.Time  `json:"createdAt"`
		AssignedAt       *time.Time `json:"assignedAt,omitempty"`
	}

	response := make([]activeOrderBody, 0, len(active))
	for _, o := range active {
		body := activeOrderBody{
			ID:               o.ID.String(),
			TrackingNumber:   o.TrackingNumber,
			PartnerID:        o.PartnerID.String(),
			Status:           o.Status,
			Delayed:          o.Delayed,
			DispatchAttempts: o.DispatchAttempts,
			PayoutCents:      o.PayoutCents,
			CreatedAt:        o.CreatedAt,
			AssignedAt:       o.AssignedAt,
		}
		if o.AgentID != nil {
			id := o.AgentID.String()
			body.AgentID = &id
		}
		response = append(response, body)
	}

	return ctx.JSON(http.StatusOK, response)
}

// ListAvailableOrders handles GET /api/v1/agents/:agentId/offers - the pull
// view of an agent's open offers.
func (s *Server) ListAvailableOrders(ctx echo.Context) error {
	agentID, err := s.agentFromPath(ctx)
	if err != nil {
		return badRequest(ctx, err)
	}
	if err = requireSelfOrAdmin(ctx, agentID); err != nil {
		return forbidden(ctx)
	}

	query, err := queries.NewListAvailableOrdersQuery(agentID)
	if err != nil {
		return badRequest(ctx, err)
	}

	available, err := s.listAvailableOrdersHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return mapError(ctx, err)
	}

	type availableOrderBody struct {
		OrderID        string       `json:"orderId"`
		TrackingNumber string       `json:"trackingNumber"`
		Pickup         geoPointBody `json:"pickup"`
		Dropoff        geoPointBody `json:"dropoff"`
		PayoutCents    int64        `json:"payoutCents"`
		Priority       string       `json:"priority"`
		OfferedAt      time.Time    `json:"offeredAt"`
		ExpiresAt      time.Time    `json:"expiresAt"`
	}

	response := make([]availableOrderBody, 0, len(available))
	for _, o := range available {
		response = append(response, availableOrderBody{
			OrderID:        o.OrderID.String(),
			TrackingNumber: o.TrackingNumber,
			Pickup:         geoPointBody{Lat: o.PickupLat, Lng: o.PickupLng},
			Dropoff:        geoPointBody{Lat: o.DropoffLat, Lng: o.DropoffLng},
			PayoutCents:    o.PayoutCents,
			Priority:       o.Priority,
			OfferedAt:      o.OfferedAt,
			ExpiresAt:      o.ExpiresAt,
		})
	}

	return ctx.JSON(http.StatusOK, response)
}

// AcceptOffer handles POST /api/v1/orders/:orderId/accept.
func (s *Server) AcceptOffer(ctx echo.Context) error {
	orderID, err := s.orderFromPath(ctx)
	if err != nil {
		return badRequest(ctx, err)
	}
	agentID, role, err := actor(ctx)
	if err != nil {
		return badRequest(ctx, err)
	}
	if role != commands.RoleAgent {
		return forbidden(ctx)
	}

	cmd, err := commands.NewAcceptOfferCommand(orderID, agentID)
	if err != nil {
		return badRequest(ctx, err)
	}

	if err = s.acceptOfferHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return mapError(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// RejectOffer handles POST /api/v1/orders/:orderId/reject.
func (s *Server) RejectOffer(ctx echo.Context) error {
	orderID, err := s.orderFromPath(ctx)
	if err != nil {
		return badRequest(ctx, err)
	}
	agentID, role, err := actor(ctx)
	if err != nil {
		return badRequest(ctx, err)
	}
	if role != commands.RoleAgent {
		return forbidden(ctx)
	}

	cmd, err := commands.NewRejectOfferCommand(orderID, agentID)
	if err != nil {
		return badRequest(ctx, err)
	}

	if err = s.rejectOfferHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return mapError(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

type advanceOrderRequest struct {
	Target string `json:"target"`
}

// AdvanceOrder handles POST /api/v1/orders/:orderId/advance - the assigned
// agent moves the order to the next lifecycle status.
func (s *Server) AdvanceOrder(ctx echo.Context) error {
	orderID, err := s.orderFromPath(ctx)
	if err != nil {
		return badRequest(ctx, err)
	}
	agentID, role, err := actor(ctx)
	if err != nil {
		return badRequest(ctx, err)
	}
	if role != commands.RoleAgent {
		return forbidden(ctx)
	}

	var req advanceOrderRequest
	if err = ctx.Bind(&req); err != nil {
		return badRequest(ctx, errors.New("invalid request body"))
	}

	target, err := order.ParseStatus(req.Target)
	if err != nil {
		return badRequest(ctx, err)
	}

	cmd, err := commands.NewAdvanceOrderCommand(orderID, agentID, target)
	if err != nil {
		return badRequest(ctx, err)
	}

	if err = s.advanceOrderHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return mapError(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

type cancelOrderRequest struct {
	Reason string `json:"reason"`
}

// CancelOrder handles POST /api/v1/orders/:orderId/cancel - the owning
// partner or an admin cancels the order.
func (s *Server) CancelOrder(ctx echo.Context) error {
	orderID, err := s.orderFromPath(ctx)
	if err != nil {
		return badRequest(ctx, err)
	}
	actorID, role, err := actor(ctx)
	if err != nil {
		return badRequest(ctx, err)
	}

	var req cancelOrderRequest
	if err = ctx.Bind(&req); err != nil {
		return badRequest(ctx, errors.New("invalid request body"))
	}

	cmd, err := commands.NewCancelOrderCommand(orderID, actorID, role, req.Reason)
	if err != nil {
		return badRequest(ctx, err)
	}

	if err = s.cancelOrderHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return mapError(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// ReassignOrder handles POST /api/v1/orders/:orderId/reassign - an admin
// throws a stuck order back into dispatch.
func (s *Server) ReassignOrder(ctx echo.Context) error {
	orderID, err := s.orderFromPath(ctx)
	if err != nil {
		return badRequest(ctx, err)
	}
	_, role, err := actor(ctx)
	if err != nil {
		return badRequest(ctx, err)
	}

	cmd, err := commands.NewReassignOrderCommand(orderID, role)
	if err != nil {
		return badRequest(ctx, err)
	}

	if err = s.reassignOrderHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return mapError(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// GetWallet handles GET /api/v1/agents/:agentId/wallet.
func (s *Server) GetWallet(ctx echo.Context) error {
	agentID, err := s.agentFromPath(ctx)
	if err != nil {
		return badRequest(ctx, err)
	}
	if err = requireSelfOrAdmin(ctx, agentID); err != nil {
		return forbidden(ctx)
	}

	query, err := queries.NewGetWalletQuery(agentID)
	if err != nil {
		return badRequest(ctx, err)
	}

	result, err := s.getWalletHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return mapError(ctx, err)
	}

	type transactionBody struct {
		ID                string    `json:"id"`
		OrderID           *string   `json:"orderId,omitempty"`
		AmountCents       int64     `json:"amountCents"`
		BalanceAfterCents int64     `json:"balanceAfterCents"`
		Type              string    `json:"type"`
		Settled           bool      `json:"settled"`
		CreatedAt         time.Time `json:"createdAt"`
	}
	type payoutBody struct {
		ID          string     `json:"id"`
		PeriodStart time.Time  `json:"periodStart"`
		PeriodEnd   time.Time  `json:"periodEnd"`
		TotalCents  int64      `json:"totalCents"`
		Status      string     `json:"status"`
		ProcessedAt *time.Time `json:"processedAt,omitempty"`
		CreatedAt   time.Time  `json:"createdAt"`
	}
	type walletBody struct {
		AgentID           string            `json:"agentId"`
		BalanceCents      int64             `json:"balanceCents"`
		TotalEarnedCents  int64             `json:"totalEarnedCents"`
		TotalPaidOutCents int64             `json:"totalPaidOutCents"`
		Transactions      []transactionBody `json:"transactions"`
		Payouts           []payoutBody      `json:"payouts"`
	}

	body := walletBody{
		AgentID:           result.AgentID.String(),
		BalanceCents:      result.BalanceCents,
		TotalEarnedCents:  result.TotalEarnedCents,
		TotalPaidOutCents: result.TotalPaidOutCents,
		Transactions:      make([]transactionBody, 0, len(result.Transactions)),
		Payouts:           make([]payoutBody, 0, len(result.Payouts)),
	}
	for _, tx := range result.Transactions {
		txBody := transactionBody{
			ID:                tx.ID.String(),
			AmountCents:       tx.AmountCents,
			BalanceAfterCents: tx.BalanceAfterCents,
			Type:              tx.Type,
			Settled:           tx.Settled,
			CreatedAt:         tx.CreatedAt,
		}
		if tx.OrderID != nil {
			id := tx.OrderID.String()
			txBody.OrderID = &id
		}
		body.Transactions = append(body.Transactions, txBody)
	}
	for _, p := range result.Payouts {
		body.Payouts = append(body.Payouts, payoutBody{
			ID:          p.ID.String(),
			PeriodStart: p.PeriodStart,
			PeriodEnd:   p.PeriodEnd,
			TotalCents:  p.TotalCents,
			Status:      p.Status,
			ProcessedAt: p.ProcessedAt,
			CreatedAt:   p.CreatedAt,
		})
	}

	return ctx.JSON(http.StatusOK, body)
}

type updateLocationRequest struct {
	Lat        float64    `json:"lat"`
	Lng        float64    `json:"lng"`
	ObservedAt *time.Time `json:"observedAt,omitempty"`
}

// UpdateAgentLocation handles POST /api/v1/agents/:agentId/location - a
// location ping from the agent's device.
func (s *Server) UpdateAgentLocation(ctx echo.Context) error {
	agentID, err := s.agentFromPath(ctx)
	if err != nil {
		return badRequest(ctx, err)
	}
	if err = requireSelfOrAdmin(ctx, agentID); err != nil {
		return forbidden(ctx)
	}

	var req updateLocationRequest
	if err = ctx.Bind(&req); err != nil {
		return badRequest(ctx, errors.New("invalid request body"))
	}

	point, err := kernel.NewGeoPoint(req.Lat, req.Lng)
	if err != nil {
		return badRequest(ctx, err)
	}

	observedAt := time.Now().UTC()
	if req.ObservedAt != nil {
		observedAt = *req.ObservedAt
	}

	cmd, err := commands.NewUpdateAgentLocationCommand(agentID, point, observedAt)
	if err != nil {
		return badRequest(ctx, err)
	}

	if err = s.updateAgentLocationHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return mapError(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

type setPresenceRequest struct {
	Online bool `json:"online"`
}

// SetAgentPresence handles POST /api/v1/agents/:agentId/presence.
func (s *Server) SetAgentPresence(ctx echo.Context) error {
	agentID, err := s.agentFromPath(ctx)
	if err != nil {
		return badRequest(ctx, err)
	}
	if err = requireSelfOrAdmin(ctx, agentID); err != nil {
		return forbidden(ctx)
	}

	var req setPresenceRequest
	if err = ctx.Bind(&req); err != nil {
		return badRequest(ctx, errors.New("invalid request body"))
	}

	cmd, err := commands.NewSetAgentPresenceCommand(agentID, req.Online)
	if err != nil {
		return badRequest(ctx, err)
	}

	if err = s.setAgentPresenceHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return mapError(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// AttachAgent handles GET /ws/agents/:agentId - upgrades the request to the
// agent's push connection.
func (s *Server) AttachAgent(ctx echo.Context) error {
	agentID, err := s.agentFromPath(ctx)
	if err != nil {
		return badRequest(ctx, err)
	}
	if err = requireSelfOrAdmin(ctx, agentID); err != nil {
		return forbidden(ctx)
	}

	return s.attacher.Attach(agentID, ctx.Response(), ctx.Request())
}

func (s *Server) orderFromPath(ctx echo.Context) (kernel.UUID, error) {
	return kernel.UUIDFromString(ctx.Param("orderId"))
}

func (s *Server) agentFromPath(ctx echo.Context) (kernel.UUID, error) {
	return kernel.UUIDFromString(ctx.Param("agentId"))
}

// actor reads the acting identity the auth gateway injected.
func actor(ctx echo.Context) (kernel.UUID, commands.Role, error) {
	actorID, err := kernel.UUIDFromString(ctx.Request().Header.Get(HeaderActorID))
	if err != nil {
		return kernel.UUID{}, "", errors.New("missing or invalid " + HeaderActorID + " header")
	}

	role := commands.Role(ctx.Request().Header.Get(HeaderActorRole))
	if !role.IsValid() {
		return kernel.UUID{}, "", errors.New("missing or invalid " + HeaderActorRole + " header")
	}

	return actorID, role, nil
}

// requireSelfOrAdmin allows an agent through to its own resources and an
// admin through to anyone's.
func requireSelfOrAdmin(ctx echo.Context, agentID kernel.UUID) error {
	actorID, role, err := actor(ctx)
	if err != nil {
		return err
	}
	if role == commands.RoleAdmin || actorID.IsEqual(agentID) {
		return nil
	}
	return errs.NewForbiddenError("access another agent's resources")
}

func badRequest(ctx echo.Context, err error) error {
	return ctx.JSON(http.StatusBadRequest, errorResponse{
		Code:    http.StatusBadRequest,
		Message: err.Error(),
	})
}

func forbidden(ctx echo.Context) error {
	return ctx.JSON(http.StatusForbidden, errorResponse{
		Code:    http.StatusForbidden,
		Message: "forbidden",
	})
}

// mapError translates application errors to HTTP status codes.
func mapError(ctx echo.Context, err error) error {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, errs.ErrObjectNotFound), errors.Is(err, commands.ErrNoOfferForAgent):
		status = http.StatusNotFound
	case errors.Is(err, errs.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, errs.ErrInvalidTransition), errors.Is(err, errs.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsOutOfRange):
		status = http.StatusBadRequest
	case errors.Is(err, errs.ErrUpstreamUnavailable):
		status = http.StatusServiceUnavailable
	}

	return ctx.JSON(status, errorResponse{
		Code:    status,
		Message: err.Error(),
	})
}
