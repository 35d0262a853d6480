package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/ukydev/ride-dispatch/internal/auth"
	"github.com/ukydev/ride-dispatch/internal/config"
	"github.com/ukydev/ride-dispatch/internal/db"
	"github.com/ukydev/ride-dispatch/internal/fare"
	"github.com/ukydev/ride-dispatch/internal/handlers"
	"github.com/ukydev/ride-dispatch/internal/logging"
	"github.com/ukydev/ride-dispatch/internal/maps"
	"github.com/ukydev/ride-dispatch/internal/middleware"
	"github.com/ukydev/ride-dispatch/internal/models"
	"github.com/ukydev/ride-dispatch/internal/notify"
	"github.com/ukydev/ride-dispatch/internal/rides"
	"github.com/ukydev/ride-dispatch/internal/stream"
	"github.com/ukydev/ride-dispatch/internal/ws"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Debug("No .env file found")
	}
	cfg := config.Load()
	logging.Setup(cfg.LogLevel, cfg.LogFile)

	client, err := db.ConnectMongo(cfg.MongoURI)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to MongoDB")
	}
	defer client.Disconnect(context.Background())
	log.Info("Connected to MongoDB")

	database := client.Database(cfg.MongoDB)
	if err := db.EnsureIndexes(context.Background(), database); err != nil {
		log.WithError(err).Fatal("Failed to create indexes")
	}

	rideColl := &db.MongoRideCollection{Collection: database.Collection("rides")}
	captainColl := &db.MongoCaptainCollection{Collection: database.Collection("captains")}
	riderColl := &db.MongoRiderCollection{Collection: database.Collection("riders")}
	tokenColl := &db.MongoTokenCollection{Collection: database.Collection("blacklisted_tokens")}

	authService := auth.NewService(cfg.JWTSecret, cfg.JWTExpiry)
	authMW := middleware.NewAuthMiddleware(authService, tokenColl)
	rateMW := middleware.NewRateLimitMiddleware()

	oracle := maps.NewClient(cfg.GeocoderBaseURL, cfg.GeocoderAPIKey)
	estimator := fare.NewEstimator(oracle)

	hub := ws.NewHub()
	fanout := notify.NewFanout(hub)

	events := stream.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
	defer events.Close()
	if events != nil {
		log.WithField("topic", cfg.KafkaTopic).Info("Lifecycle event stream enabled")
	}

	dispatch := rides.NewService(rideColl, captainColl, riderColl, oracle, estimator, fanout, events, cfg.SearchRadiusMeters)

	authHandler := handlers.NewAuthHandler(authService, riderColl, captainColl, tokenColl)
	rideHandler := handlers.NewRideHandler(dispatch)
	mapsHandler := handlers.NewMapsHandler(oracle)
	wsHandler := ws.NewHandler(hub, captainColl, riderColl)

	router := mux.NewRouter()
	router.Use(middleware.Metrics)

	// Public auth routes, rate limited like the login endpoints they guard.
	public := router.PathPrefix("/api/auth").Subrouter()
	public.Use(rateMW.RateLimit(20, 900))
	public.HandleFunc("/rider/register", authHandler.RegisterRider).Methods(http.MethodPost)
	public.HandleFunc("/rider/login", authHandler.LoginRider).Methods(http.MethodPost)
	public.HandleFunc("/captain/register", authHandler.RegisterCaptain).Methods(http.MethodPost)
	public.HandleFunc("/captain/login", authHandler.LoginCaptain).Methods(http.MethodPost)

	authed := router.PathPrefix("/api").Subrouter()
	authed.Use(authMW.Authenticate)
	authed.HandleFunc("/auth/logout", authHandler.Logout).Methods(http.MethodPost)
	authed.HandleFunc("/auth/profile", authHandler.Profile).Methods(http.MethodGet)
	authed.HandleFunc("/maps/suggestions", mapsHandler.Suggestions).Methods(http.MethodGet)

	riderOnly := authMW.RequireRole(models.RoleRider)
	authed.Handle("/rides/fare", riderOnly(http.HandlerFunc(rideHandler.GetFare))).Methods(http.MethodGet)
	authed.Handle("/rides", riderOnly(http.HandlerFunc(rideHandler.CreateRide))).Methods(http.MethodPost)
	authed.Handle("/rides/{id}", riderOnly(http.HandlerFunc(rideHandler.GetRide))).Methods(http.MethodGet)
	authed.Handle("/rides/{id}/cancel", riderOnly(http.HandlerFunc(rideHandler.CancelRide))).Methods(http.MethodPost)

	captainOnly := authMW.RequireRole(models.RoleCaptain)
	authed.Handle("/captains/availability", captainOnly(http.HandlerFunc(authHandler.SetAvailability))).Methods(http.MethodPost)
	authed.Handle("/rides/{id}/confirm", captainOnly(http.HandlerFunc(rideHandler.ConfirmRide))).Methods(http.MethodPost)
	authed.Handle("/rides/{id}/start", captainOnly(http.HandlerFunc(rideHandler.StartRide))).Methods(http.MethodPost)
	authed.Handle("/rides/{id}/end", captainOnly(http.HandlerFunc(rideHandler.EndRide))).Methods(http.MethodPost)

	router.Handle("/ws", wsHandler)
	router.Handle("/metrics", promhttp.Handler())
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.WithField("addr", cfg.HTTPAddr).Info("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("HTTP server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Error("Shutdown error")
	}
}
