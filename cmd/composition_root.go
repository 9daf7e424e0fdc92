package cmd

import (
	"log/slog"

	"dispatch/internal/adapters/out/geoindex"
	"dispatch/internal/adapters/out/offerstore"
	"dispatch/internal/adapters/out/postgres"
	"dispatch/internal/adapters/out/webhook"
	"dispatch/internal/adapters/out/ws"
	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/services"

	"gorm.io/gorm"
)

type CompositionRoot struct {
	config     Config
	gormDB     *gorm.DB
	uowFactory postgres.GormUnitOfWorkFactory

	geoIndex   *geoindex.InMemoryGeoIndex
	offerStore *offerstore.InMemoryOfferStore
	hub        *ws.Hub
	webhooks   *webhook.HTTPDispatcher

	dispatcher services.Dispatcher
	ledger     services.Ledger
}

func NewCompositionRoot(config Config, gormDB *gorm.DB, logger *slog.Logger) (CompositionRoot, error) {
	dispatcher, err := services.NewDispatcher(
		config.DispatchBaseRadiusMeters,
		config.DispatchMaxRadiusMeters,
		config.DispatchMaxCandidates,
	)
	if err != nil {
		return CompositionRoot{}, err
	}

	ledger, err := services.NewLedger(config.AgentSharePercent)
	if err != nil {
		return CompositionRoot{}, err
	}

	return CompositionRoot{
		config:     config,
		gormDB:     gormDB,
		uowFactory: *postgres.NewGormUnitOfWorkFactory(gormDB),
		geoIndex:   geoindex.NewInMemoryGeoIndex(),
		offerStore: offerstore.NewInMemoryOfferStore(),
		hub:        ws.NewHub(logger),
		webhooks:   webhook.NewHTTPDispatcher(config.WebhookEndpoint, logger),
		dispatcher: dispatcher,
		ledger:     ledger,
	}, nil
}

// Hub exposes the websocket hub so the HTTP layer can attach agent
// connections and main can close them on shutdown.
func (c *CompositionRoot) Hub() *ws.Hub {
	return c.hub
}

func (c *CompositionRoot) CreateCreateOrderCommandHandler() commands.CreateOrderCommandHandler {
	var f commands.OrderUoWFactory = FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
	return commands.NewCreateOrderCommandHandler(f, c.webhooks)
}

func (c *CompositionRoot) CreateAcceptOfferCommandHandler() commands.AcceptOfferCommandHandler {
	var f commands.OrderAgentUoWFactory = FuncOrderAgentUoWFactory(func() commands.OrderAgentUoW {
		return c.uowFactory.Create()
	})
	return commands.NewAcceptOfferCommandHandler(f, c.offerStore, c.hub, c.webhooks)
}

func (c *CompositionRoot) CreateRejectOfferCommandHandler() commands.RejectOfferCommandHandler {
	return commands.NewRejectOfferCommandHandler(c.offerStore)
}

func (c *CompositionRoot) CreateAdvanceOrderCommandHandler() commands.AdvanceOrderCommandHandler {
	var f commands.UoWFactory = FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
	return commands.NewAdvanceOrderCommandHandler(f, c.ledger, c.webhooks)
}

func (c *CompositionRoot) CreateCancelOrderCommandHandler() commands.CancelOrderCommandHandler {
	var f commands.OrderAgentUoWFactory = FuncOrderAgentUoWFactory(func() commands.OrderAgentUoW {
		return c.uowFactory.Create()
	})
	return commands.NewCancelOrderCommandHandler(f, c.offerStore, c.webhooks)
}

func (c *CompositionRoot) CreateReassignOrderCommandHandler() commands.ReassignOrderCommandHandler {
	var f commands.OrderAgentUoWFactory = FuncOrderAgentUoWFactory(func() commands.OrderAgentUoW {
		return c.uowFactory.Create()
	})
	return commands.NewReassignOrderCommandHandler(f, c.offerStore)
}

func (c *CompositionRoot) CreateUpdateAgentLocationCommandHandler() commands.UpdateAgentLocationCommandHandler {
	var f commands.AgentUoWFactory = FuncAgentUoWFactory(func() commands.AgentUoW {
		return c.uowFactory.Create()
	})
	return commands.NewUpdateAgentLocationCommandHandler(f, c.geoIndex)
}

func (c *CompositionRoot) CreateSetAgentPresenceCommandHandler() commands.SetAgentPresenceCommandHandler {
	var f commands.AgentUoWFactory = FuncAgentUoWFactory(func() commands.AgentUoW {
		return c.uowFactory.Create()
	})
	return commands.NewSetAgentPresenceCommandHandler(f, c.geoIndex, c.hub)
}

func (c *CompositionRoot) CreateDispatchOrdersCommandHandler() (commands.DispatchOrdersCommandHandler, error) {
	var f commands.OrderAgentUoWFactory = FuncOrderAgentUoWFactory(func() commands.OrderAgentUoW {
		return c.uowFactory.Create()
	})
	return commands.NewDispatchOrdersCommandHandler(
		f,
		c.dispatcher,
		c.geoIndex,
		c.offerStore,
		c.hub,
		c.webhooks,
		c.config.OfferTTL,
		c.config.DispatchMaxAttempts,
	)
}

func (c *CompositionRoot) CreateSweepDelayedOrdersCommandHandler() (commands.SweepDelayedOrdersCommandHandler, error) {
	var f commands.OrderUoWFactory = FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
	return commands.NewSweepDelayedOrdersCommandHandler(
		f,
		c.webhooks,
		c.config.DefaultDurationMins,
		c.config.DelayGrace,
	)
}

func (c *CompositionRoot) CreateSettlePayoutsCommandHandler() commands.SettlePayoutsCommandHandler {
	var f commands.WalletUoWFactory = FuncWalletUoWFactory(func() commands.WalletUoW {
		return c.uowFactory.Create()
	})
	return commands.NewSettlePayoutsCommandHandler(f)
}

func (c *CompositionRoot) CreateListAvailableOrdersQueryHandler() queries.ListAvailableOrdersQueryHandler {
	return queries.NewListAvailableOrdersQueryHandler(c.gormDB, c.offerStore)
}

func (c *CompositionRoot) CreateListActiveOrdersQueryHandler() queries.ListActiveOrdersQueryHandler {
	return queries.NewListActiveOrdersQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetWalletQueryHandler() queries.GetWalletQueryHandler {
	return queries.NewGetWalletQueryHandler(c.gormDB)
}

type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}

type FuncAgentUoWFactory func() commands.AgentUoW

func (f FuncAgentUoWFactory) Create() commands.AgentUoW {
	return f()
}

type FuncWalletUoWFactory func() commands.WalletUoW

func (f FuncWalletUoWFactory) Create() commands.WalletUoW {
	return f()
}

type FuncOrderAgentUoWFactory func() commands.OrderAgentUoW

func (f FuncOrderAgentUoWFactory) Create() commands.OrderAgentUoW {
	return f()
}

type FuncUoWFactory func() commands.UoW

func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}
