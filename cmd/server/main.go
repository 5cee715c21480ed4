package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fieldsafe-sync-server/internal/config"
	"fieldsafe-sync-server/internal/domain"
	"fieldsafe-sync-server/internal/handler"
	"fieldsafe-sync-server/internal/middleware"
	"fieldsafe-sync-server/internal/repository"
	"fieldsafe-sync-server/internal/service"
	"fieldsafe-sync-server/internal/storage"
	"fieldsafe-sync-server/internal/websocket"

	_ "github.com/go-kivik/kivik/v4/couchdb"

	"github.com/go-kivik/kivik/v4"
	"github.com/gorilla/mux"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	couchURL := fmt.Sprintf("http://%s:%s@%s:%s",
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
	)

	client, err := kivik.New("couch", couchURL)
	if err != nil {
		log.Fatalf("Failed to connect to CouchDB: %v", err)
	}

	exists, err := client.DBExists(context.Background(), cfg.Database.Name)
	if err != nil {
		log.Fatalf("Failed to check database existence: %v", err)
	}

	if !exists {
		if err := client.CreateDB(context.Background(), cfg.Database.Name); err != nil {
			log.Fatalf("Failed to create database: %v", err)
		}
		log.Printf("Created database: %s", cfg.Database.Name)
	}

	userRepo := repository.NewUserRepository(client, cfg.Database.Name)
	siteRepo := repository.NewSiteRepository(client, cfg.Database.Name)
	inspectionRepo := repository.NewInspectionRepository(client, cfg.Database.Name)
	incidentRepo := repository.NewIncidentRepository(client, cfg.Database.Name)
	talkRepo := repository.NewToolboxTalkRepository(client, cfg.Database.Name)
	attachmentRepo := repository.NewAttachmentRepository(client, cfg.Database.Name)
	notificationRepo := repository.NewNotificationRepository(client, cfg.Database.Name)
	syncClientRepo := repository.NewSyncClientRepository(client, cfg.Database.Name)

	baseURL := fmt.Sprintf("%s/%s", couchURL, cfg.Database.Name)
	auditLogRepo := repository.NewAuditLogRepository(baseURL)
	reminderRepo := repository.NewReminderRepository(baseURL)

	var signer storage.UploadURLSigner
	if cfg.Storage.Enabled {
		signer, err = storage.NewMinioSigner(cfg.Storage)
		if err != nil {
			log.Fatalf("Failed to initialize object storage: %v", err)
		}
		log.Printf("Presigning uploads against %s/%s", cfg.Storage.Endpoint, cfg.Storage.Bucket)
	} else {
		signer = storage.NewLocalSigner("/api/v1/attachments")
	}

	// WebSocket Manager
	wsManager := websocket.NewManager(
		cfg.WebSocket.MaxConnPerUser,
		cfg.WebSocket.WriteWait,
		cfg.WebSocket.PongWait,
		cfg.WebSocket.PingPeriod,
	)
	go wsManager.Run()

	authService := service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.Expiration, cfg.JWT.RefreshTokenExpiration)
	userService := service.NewUserService(userRepo)
	auditService := service.NewAuditService(auditLogRepo)
	attachmentService := service.NewAttachmentService(attachmentRepo, signer)
	notificationService := service.NewNotificationService(notificationRepo, userRepo, incidentRepo, wsManager)

	applier := service.NewOperationApplier(siteRepo, inspectionRepo, incidentRepo, talkRepo)
	syncService := service.NewSyncService(
		applier,
		attachmentService,
		auditService,
		notificationService,
		syncClientRepo,
		siteRepo,
		inspectionRepo,
		incidentRepo,
		talkRepo,
		wsManager,
	)

	siteService := service.NewSiteService(siteRepo)
	inspectionService := service.NewInspectionService(inspectionRepo)
	incidentService := service.NewIncidentService(incidentRepo, notificationService)
	talkService := service.NewToolboxTalkService(talkRepo, reminderRepo, notificationService)
	reportService := service.NewReportService(inspectionRepo, incidentRepo)

	wsMessageHandler := handler.NewWebSocketMessageHandler(syncService)
	wsManager.SetMessageHandler(wsMessageHandler)

	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	syncHandler := handler.NewSyncHandler(syncService)
	siteHandler := handler.NewSiteHandler(siteService)
	inspectionHandler := handler.NewInspectionHandler(inspectionService)
	incidentHandler := handler.NewIncidentHandler(incidentService)
	talkHandler := handler.NewToolboxTalkHandler(talkService)
	attachmentHandler := handler.NewAttachmentHandler(attachmentService)
	notificationHandler := handler.NewNotificationHandler(notificationService)
	reportHandler := handler.NewReportHandler(reportService, auditService)
	wsHandler := handler.NewWebSocketHandler(wsManager, cfg.JWT.Secret)

	r := mux.NewRouter()

	r.Use(middleware.LoggerMiddleware())
	r.Use(middleware.CORSMiddleware(
		cfg.CORS.AllowedOrigins,
		cfg.CORS.AllowedMethods,
		cfg.CORS.AllowedHeaders,
	))

	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/auth/register", authHandler.Register).Methods("POST", "OPTIONS")
	api.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")
	api.HandleFunc("/auth/refresh", authHandler.RefreshToken).Methods("POST", "OPTIONS")

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.AuthMiddleware(cfg.JWT.Secret))

	protected.HandleFunc("/users/me", userHandler.Me).Methods("GET", "OPTIONS")
	protected.HandleFunc("/users/me", userHandler.UpdateProfile).Methods("PUT", "OPTIONS")

	protected.HandleFunc("/sync/push", syncHandler.Push).Methods("POST", "OPTIONS")
	protected.HandleFunc("/sync/pull", syncHandler.Pull).Methods("GET", "OPTIONS")
	protected.HandleFunc("/sync/ack", syncHandler.Ack).Methods("POST", "OPTIONS")
	protected.HandleFunc("/sync/status", syncHandler.Status).Methods("GET", "OPTIONS")

	protected.HandleFunc("/sites", siteHandler.List).Methods("GET", "OPTIONS")
	protected.HandleFunc("/sites/{id}", siteHandler.GetByID).Methods("GET", "OPTIONS")

	protected.HandleFunc("/inspections", inspectionHandler.Create).Methods("POST", "OPTIONS")
	protected.HandleFunc("/inspections", inspectionHandler.List).Methods("GET", "OPTIONS")
	protected.HandleFunc("/inspections/{id}", inspectionHandler.GetByID).Methods("GET", "OPTIONS")
	protected.HandleFunc("/inspections/{id}", inspectionHandler.Update).Methods("PUT", "OPTIONS")

	protected.HandleFunc("/incidents", incidentHandler.Create).Methods("POST", "OPTIONS")
	protected.HandleFunc("/incidents", incidentHandler.List).Methods("GET", "OPTIONS")
	protected.HandleFunc("/incidents/{id}", incidentHandler.GetByID).Methods("GET", "OPTIONS")
	protected.HandleFunc("/incidents/{id}", incidentHandler.Update).Methods("PUT", "OPTIONS")

	protected.HandleFunc("/toolbox-talks", talkHandler.Create).Methods("POST", "OPTIONS")
	protected.HandleFunc("/toolbox-talks", talkHandler.List).Methods("GET", "OPTIONS")
	protected.HandleFunc("/toolbox-talks/{id}", talkHandler.GetByID).Methods("GET", "OPTIONS")
	protected.HandleFunc("/toolbox-talks/{id}", talkHandler.Update).Methods("PUT", "OPTIONS")
	protected.HandleFunc("/reminders", talkHandler.ListReminders).Methods("GET", "OPTIONS")

	protected.HandleFunc("/attachments", attachmentHandler.ListByEntity).Methods("GET", "OPTIONS")
	protected.HandleFunc("/attachments/{id}", attachmentHandler.GetByID).Methods("GET", "OPTIONS")
	protected.HandleFunc("/attachments/{id}/content", attachmentHandler.MarkUploaded).Methods("PUT", "OPTIONS")
	protected.HandleFunc("/attachments/{id}", attachmentHandler.Delete).Methods("DELETE", "OPTIONS")

	protected.HandleFunc("/notifications", notificationHandler.List).Methods("GET", "OPTIONS")
	protected.HandleFunc("/notifications/{id}/read", notificationHandler.MarkRead).Methods("POST", "OPTIONS")

	protected.HandleFunc("/reports/export", reportHandler.ExportCSV).Methods("GET", "OPTIONS")

	// Site management and the audit trail are restricted surfaces.
	supervisor := protected.PathPrefix("").Subrouter()
	supervisor.Use(middleware.RequireRole(domain.RoleSupervisor))
	supervisor.HandleFunc("/sites", siteHandler.Create).Methods("POST", "OPTIONS")
	supervisor.HandleFunc("/sites/{id}", siteHandler.Update).Methods("PUT", "OPTIONS")

	admin := protected.PathPrefix("").Subrouter()
	admin.Use(middleware.RequireRole(domain.RoleAdmin))
	admin.HandleFunc("/audit-logs", reportHandler.ListAuditLogs).Methods("GET", "OPTIONS")

	r.HandleFunc("/ws", wsHandler.HandleConnection)

	// Health endpoint
	r.HandleFunc("/health", healthHandler).Methods("GET")
	r.HandleFunc("/", rootHandler).Methods("GET")

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)

	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Starting FieldSafe Sync Server on %s (env: %s)", addr, cfg.Server.Env)
		log.Printf("Connected to CouchDB at %s:%s", cfg.Database.Host, cfg.Database.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped gracefully")
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy","service":"fieldsafe-sync-server"}`))
}

func rootHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"message":"FieldSafe Sync Server API","version":"1.0.0","endpoints":{"/api/v1/auth/register":"POST","/api/v1/auth/login":"POST","/api/v1/sync/push":"POST (protected)","/api/v1/sync/pull":"GET (protected)"}}`))
}
