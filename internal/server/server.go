package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"banking-ledger/internal/auth"
	"banking-ledger/internal/config"
	"banking-ledger/internal/domain"
	"banking-ledger/internal/handler"
	"banking-ledger/internal/repository"
	"banking-ledger/internal/service"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
)

// Server represents the HTTP server
type Server struct {
	router *mux.Router
	server *http.Server
	db     *sql.DB
	logger *slog.Logger
	port   string
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	var (
		accounts domain.AccountStore
		txLog    domain.TransactionLog
		users    domain.UserStore
		uow      domain.UnitOfWork
		db       *sql.DB
	)

	switch cfg.Storage {
	case config.StorageMemory:
		mem := repository.NewMemoryStore()
		accounts, txLog, users, uow = mem, mem, mem.Users(), mem
		logger.Info("Using in-memory storage")

	default:
		var err error
		db, err = sql.Open("postgres", cfg.GetDBConnectionString())
		if err != nil {
			return nil, err
		}

		// Configure connection pool for better performance
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(5 * time.Minute)

		// Test database connection
		if err := db.Ping(); err != nil {
			db.Close()
			return nil, err
		}
		logger.Info("Successfully connected to database")

		store := repository.NewStore(db, logger)
		accounts, txLog, users, uow = store.Accounts(), store.Transactions(), store.Users(), store
	}

	// Initialize services
	ledgerService := service.NewLedgerService(accounts, txLog, logger)
	authService := auth.NewService(uow, users, cfg.JWTSecret, cfg.TokenTTL, cfg.BcryptCost, logger)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	accountHandler := handler.NewAccountHandler(ledgerService)
	transactionHandler := handler.NewTransactionHandler(ledgerService)

	// Setup router
	router := mux.NewRouter()

	// Add middleware for logging
	router.Use(requestIDMiddleware())
	router.Use(loggingMiddleware(logger))

	// Public routes
	router.HandleFunc("/auth/register", authHandler.Register).Methods("POST")
	router.HandleFunc("/auth/login", authHandler.Login).Methods("POST")

	// Health check
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		// Check database connectivity in health check
		if db != nil {
			if err := db.Ping(); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				json.NewEncoder(w).Encode(map[string]string{"status": "unhealthy", "error": "database unavailable"})
				return
			}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"status":    "healthy",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	}).Methods("GET")

	// Authenticated routes: the bearer middleware resolves the owner id and
	// hands it to the handlers via the request context.
	protected := router.PathPrefix("/").Subrouter()
	protected.Use(authMiddleware(authService))
	protected.HandleFunc("/accounts/balance", accountHandler.GetBalance).Methods("GET")
	protected.HandleFunc("/transactions/deposit", transactionHandler.Deposit).Methods("POST")
	protected.HandleFunc("/transactions/withdraw", transactionHandler.Withdraw).Methods("POST")
	protected.HandleFunc("/transactions/transfer", transactionHandler.Transfer).Methods("POST")
	protected.HandleFunc("/transactions/history", transactionHandler.GetHistory).Methods("GET")

	return &Server{
		router: router,
		db:     db,
		logger: logger,
	}, nil
}

// Start starts the HTTP server on the specified port
func (s *Server) Start(port string) (string, error) {
	// Create listener first to get actual port
	listener, err := net.Listen("tcp", ":"+port)
	if err != nil {
		return "", err
	}

	// Get the actual port being used
	addr := listener.Addr().(*net.TCPAddr)
	s.port = strconv.Itoa(addr.Port)

	// Create HTTP server
	s.server = &http.Server{
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("Starting server", "port", s.port)

	// Start server in background
	go func() {
		if err := s.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.logger.Error("Server failed to start", "error", err)
		}
	}()

	return s.port, nil
}

// Stop gracefully shuts down the server
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Shutting down server")

	// Close database connection
	if s.db != nil {
		s.db.Close()
	}

	// Shutdown HTTP server
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

// GetPort returns the port the server is listening on
func (s *Server) GetPort() string {
	return s.port
}

// GetBaseURL returns the base URL for the server
func (s *Server) GetBaseURL() string {
	return "http://localhost:" + s.port
}

// GetRouter returns the router for testing purposes
func (s *Server) GetRouter() *mux.Router {
	return s.router
}

// StartServer starts the server with the given configuration
func StartServer(cfg *config.Config) (*Server, string, error) {
	// Initialize logger - use io.Discard for tests to avoid noisy output
	var logger *slog.Logger
	if cfg.ServerPort == "0" {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	} else {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))
	}

	server, err := NewServer(cfg, logger)
	if err != nil {
		return nil, "", err
	}

	// Start the server and get the actual port
	port, err := server.Start(cfg.ServerPort)
	if err != nil {
		return nil, "", err
	}

	return server, port, nil
}
