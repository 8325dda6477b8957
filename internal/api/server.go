package api

import (
	"fmt"
	"log"
	"net/http"

	"gatepass/internal/cache"
	"gatepass/internal/config"
	"gatepass/internal/database"
	"gatepass/internal/engine"
	"gatepass/internal/external"
	"gatepass/internal/handlers"
	"gatepass/internal/messaging"
	"gatepass/internal/middleware"
	"gatepass/internal/models"
	"gatepass/internal/repository"
	"gatepass/internal/search"
	"gatepass/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server wires the ticketing engine, its side stores and the HTTP
// surface together
type Server struct {
	router   *gin.Engine
	config   *config.Config
	db       *database.DB
	nats     *messaging.NATSClient
	valkey   *cache.ValkeyClient
	services *service.Services
}

// NewServer creates a fully wired server instance
func NewServer(cfg *config.Config) *Server {
	gin.SetMode(cfg.GinMode)

	var db *database.DB
	var repos *repository.Repositories
	if cfg.ArchiveEnabled {
		var err error
		db, err = database.Connect(cfg.Database)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		if err := db.RunMigrations(); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
		repos = repository.NewRepositories(db)
	}

	var natsClient *messaging.NATSClient
	if cfg.NATSEnabled {
		var err error
		natsClient, err = messaging.NewNATSClient(cfg.NATS)
		if err != nil {
			log.Fatalf("Failed to connect to NATS: %v", err)
		}
	}

	var valkeyClient *cache.ValkeyClient
	if cfg.CacheEnabled {
		var err error
		valkeyClient, err = cache.NewValkeyClient(cfg.Valkey)
		if err != nil {
			log.Fatalf("Failed to connect to Valkey: %v", err)
		}
	}

	var esClient *search.ElasticsearchClient
	if cfg.SearchEnabled {
		var err error
		esClient, err = search.NewElasticsearchClient(cfg.Elasticsearch)
		if err != nil {
			log.Fatalf("Failed to connect to Elasticsearch: %v", err)
		}
	}

	var funds engine.FundMover
	if cfg.Payment.BaseURL != "" {
		funds = external.NewPaymentClient(cfg.Payment)
	} else {
		funds = external.LogMover{}
	}

	eng := engine.NewEngine(models.AccountID(cfg.AdminAccount), funds)
	services := service.NewServices(eng, repos, natsClient, valkeyClient, esClient)

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.CORS())
	router.Use(middleware.Logger())
	router.Use(middleware.Metrics())

	server := &Server{
		router:   router,
		config:   cfg,
		db:       db,
		nats:     natsClient,
		valkey:   valkeyClient,
		services: services,
	}

	server.setupRoutes()

	return server
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	h := handlers.NewHandlers(s.services)

	api := s.router.Group("/api")
	api.Use(middleware.BearerAuth(s.config.AuthSecret))
	{
		events := api.Group("/events")
		{
			events.POST("", h.CreateEvent)
			events.GET("", h.ListEvents)
			events.GET("/:id", h.GetEvent)
			events.POST("/:id/withdraw", h.Withdraw)
			events.GET("/:id/escrow", h.EscrowBalance)
		}

		tickets := api.Group("/tickets")
		{
			tickets.POST("", h.MintTicket)
			tickets.POST("/:id/resale", h.ResaleTicket)
			tickets.POST("/:id/transfer", h.TransferTicket)
			tickets.GET("/:id/owner", h.TicketOwner)
			tickets.GET("/:id/metadata", h.TicketMetadata)
		}

		roles := api.Group("/roles")
		{
			roles.POST("/organizer", h.GrantOrganizer)
			roles.DELETE("/organizer", h.RevokeOrganizer)
			roles.GET("", h.HasRole)
		}
	}

	s.router.GET("/health", s.healthCheck)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// healthCheck handles health check requests
func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "gatepass-api",
		"version": "1.0.0",
	})
}

// Run starts the HTTP server
func (s *Server) Run() error {
	addr := fmt.Sprintf(":%s", s.config.Port)
	return s.router.Run(addr)
}

// GetRouter returns the router for testing
func (s *Server) GetRouter() *gin.Engine {
	return s.router
}

// Cleanup closes open connections
func (s *Server) Cleanup() error {
	if s.nats != nil {
		if err := s.nats.Close(); err != nil {
			log.Printf("Error closing NATS connection: %v", err)
		}
	}

	if s.valkey != nil {
		if err := s.valkey.Close(); err != nil {
			log.Printf("Error closing Valkey connection: %v", err)
		}
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			log.Printf("Error closing database connection: %v", err)
			return err
		}
	}

	return nil
}
