package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"github.com/sevasangam/seva-gobackend.git/internal/config"
	"github.com/sevasangam/seva-gobackend.git/internal/db"
	"github.com/sevasangam/seva-gobackend.git/internal/handlers"
	"github.com/sevasangam/seva-gobackend.git/internal/services"
)

func main() {
	// Load .env
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: Error loading .env: %s", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Connect to MongoDB
	client, err := db.Connect(context.Background(), cfg.MongoURI)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := client.Disconnect(ctx); err != nil {
			log.Printf("Error disconnecting from MongoDB: %v", err)
		}
	}()
	log.Println("Successfully connected to MongoDB")

	database := client.Database(cfg.DatabaseName)

	// Initialize services
	ledgerService := services.NewLedgerService(database)
	if err := ledgerService.EnsureIndexes(context.Background()); err != nil {
		log.Fatalf("Failed to create indexes: %v", err)
	}

	intentService := services.NewIntentService(database)
	campaignService := services.NewCampaignService(database)
	sevaService := services.NewSevaService(database)
	razorpayService := services.NewRazorpayService(cfg.RazorpayKeyID, cfg.RazorpayKeySecret, cfg.RazorpayBaseURL)
	verifier := services.NewSignatureVerifier(cfg.RazorpayKeySecret)
	notifier := services.NewNotifier()

	donationService := services.NewDonationService(
		razorpayService,
		intentService,
		ledgerService,
		campaignService,
		sevaService,
		verifier,
		notifier,
	)

	// Initialize handlers
	donationHandler := handlers.NewDonationHandler(donationService)
	campaignHandler := handlers.NewCampaignHandler(campaignService)
	sevaHandler := handlers.NewSevaHandler(sevaService)
	eventsHandler := handlers.NewEventsHandler(notifier)
	adminHandler := handlers.NewAdminHandler(cfg.AdminPassword, cfg.JWTSecret, ledgerService)

	// Set up router
	router := mux.NewRouter()
	router.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET", "HEAD")

	router.HandleFunc("/api/donation", donationHandler.CreateDonation).Methods("POST")
	router.HandleFunc("/api/donation/verify", donationHandler.VerifyDonation).Methods("POST")

	router.HandleFunc("/api/campaigns", campaignHandler.GetCampaigns).Methods("GET")
	router.HandleFunc("/api/campaign/{campaignID}", campaignHandler.GetCampaign).Methods("GET")
	router.HandleFunc("/api/sevas", sevaHandler.GetSevas).Methods("GET")
	router.HandleFunc("/api/seva/{sevaID}", sevaHandler.GetSeva).Methods("GET")

	router.HandleFunc("/api/events", eventsHandler.Stream).Methods("GET")

	router.HandleFunc("/api/admin/login", adminHandler.Login).Methods("POST")
	router.HandleFunc("/api/admin/donations", adminHandler.ListDonations).Methods("GET")

	// Start server. No WriteTimeout: /api/events holds long-lived websocket
	// connections.
	server := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.Printf("Server running on port %s", cfg.Port)
	log.Fatal(server.ListenAndServe())
}
