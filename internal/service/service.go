package service

import (
	"gatepass/internal/cache"
	"gatepass/internal/engine"
	"gatepass/internal/messaging"
	"gatepass/internal/repository"
	"gatepass/internal/search"
)

// Services wraps the ticketing engine with the side stores: archive
// journal, search index, read cache and domain notifications. All
// side stores are optional; the engine alone carries the semantics.
type Services struct {
	Events  *EventService
	Tickets *TicketService
	Roles   *RoleService
}

func NewServices(eng *engine.Engine, repos *repository.Repositories, natsClient *messaging.NATSClient, valkeyClient *cache.ValkeyClient, esClient *search.ElasticsearchClient) *Services {
	return &Services{
		Events:  NewEventService(eng, repos, natsClient, valkeyClient, esClient),
		Tickets: NewTicketService(eng, repos, natsClient, valkeyClient),
		Roles:   NewRoleService(eng, repos),
	}
}
