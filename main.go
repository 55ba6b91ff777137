package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"evenza/internal/activity"
	admin_service "evenza/internal/admin"
	"evenza/internal/admin/admin_api"
	admin_db "evenza/internal/admin/db"
	"evenza/internal/auth"
	"evenza/internal/config"
	content_service "evenza/internal/content"
	"evenza/internal/content/content_api"
	content_db "evenza/internal/content/db"
	"evenza/internal/database"
	"evenza/internal/database/migrations"
	"evenza/internal/events"
	event_db "evenza/internal/events/db"
	"evenza/internal/events/event_api"
	"evenza/internal/interviews"
	interview_db "evenza/internal/interviews/db"
	"evenza/internal/interviews/interview_api"
	"evenza/internal/kafka"
	"evenza/internal/logger"
	"evenza/internal/mailer"
	"evenza/internal/models"
	"evenza/internal/pass"
	"evenza/internal/payments"
	payment_db "evenza/internal/payments/db"
	"evenza/internal/payments/payment_api"
	"evenza/internal/queries"
	query_db "evenza/internal/queries/db"
	"evenza/internal/queries/query_api"
	"evenza/internal/registration"
	"evenza/internal/trips"
	trip_db "evenza/internal/trips/db"
	"evenza/internal/trips/trip_api"
	"evenza/internal/uploads/upload_api"
	"evenza/internal/users"
	user_db "evenza/internal/users/db"
	"evenza/internal/users/user_api"
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, relying on environment")
	}

	cfg := config.Load()
	log := logger.NewLogger()

	bunDB, err := database.Connect(cfg.Database, log)
	if err != nil {
		log.Fatal("DB", fmt.Sprintf("Failed to connect to database: %v", err))
	}
	defer bunDB.Close()

	runner := migrations.NewRunner(bunDB, log, migrations.DefaultOptions())
	if err := runner.Up(); err != nil {
		log.Fatal("DB", fmt.Sprintf("Migration failed: %v", err))
	}

	// Redis backs the per-entity registration locks. Without it the
	// services fall back to the transactional check alone.
	var lock *registration.Lock
	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			log.Warn("REDIS", fmt.Sprintf("Redis unreachable, registration locks disabled: %v", err))
		} else {
			lock = registration.NewLock(rdb)
			log.Info("REDIS", "Registration locks enabled")
		}
	}

	var producer *kafka.Producer
	if cfg.Kafka.Enabled {
		topics := []string{
			cfg.Kafka.Topics.Activity,
			cfg.Kafka.Topics.RegistrationCreated,
			cfg.Kafka.Topics.PaymentUpdated,
		}
		if err := kafka.EnsureTopicsExist(cfg.Kafka.Brokers, topics); err != nil {
			log.Warn("KAFKA", fmt.Sprintf("Failed to ensure topics, events may be dropped: %v", err))
		}
		producer = kafka.NewProducer(cfg.Kafka.Brokers)
		defer producer.Close()
	}

	mail := mailer.New(cfg.Email, log)
	recorder := activity.NewRecorder(bunDB, kafkaOrNil(producer), cfg.Kafka.Topics.Activity, log)
	passGen := pass.NewGenerator(cfg.Auth.QRSecret)

	var checkout payments.CheckoutLinker
	if cfg.Stripe.SecretKey != "" {
		checkout = payments.NewStripeCheckout(cfg.Stripe)
	}

	userDB := &user_db.DB{Bun: bunDB}
	userService := users.NewUserService(userDB)
	userHandler := user_api.NewHandler(userService, cfg.Auth, log)

	paymentDB := &payment_db.DB{Bun: bunDB}
	paymentService := payments.NewPaymentService(paymentDB, userDB, kafkaOrNil(producer), mail, checkout, cfg.Kafka.Topics.PaymentUpdated, log)
	paymentHandler := payment_api.NewHandler(paymentService, log)

	eventDB := &event_db.DB{Bun: bunDB}
	eventService := events.NewEventService(eventDB, lockOrNil(lock), paymentService, kafkaOrNil(producer), mail, userDB, recorder, cfg.Kafka.Topics.RegistrationCreated, log)
	eventHandler := event_api.NewHandler(eventService, passGen, log)

	tripDB := &trip_db.DB{Bun: bunDB}
	tripService := trips.NewTripService(tripDB, lockOrNil(lock), paymentService, kafkaOrNil(producer), recorder, cfg.Kafka.Topics.RegistrationCreated, log)
	tripHandler := trip_api.NewHandler(tripService, log)

	interviewDB := &interview_db.DB{Bun: bunDB}
	interviewService := interviews.NewInterviewService(interviewDB, lockOrNil(lock), kafkaOrNil(producer), recorder, cfg.Kafka.Topics.RegistrationCreated, log)
	interviewHandler := interview_api.NewHandler(interviewService, log)

	queryDB := &query_db.DB{Bun: bunDB}
	queryService := queries.NewQueryService(queryDB, userDB, mail, log)
	queryHandler := query_api.NewHandler(queryService, log)

	contentDB := &content_db.DB{Bun: bunDB}
	contentService := content_service.NewContentService(contentDB, log)
	contentHandler := content_api.NewHandler(contentService, log)

	adminDB := &admin_db.DB{Bun: bunDB}
	adminService := admin_service.NewAdminService(adminDB, log)
	adminHandler := admin_api.NewHandler(adminService, userService, log)

	uploadHandler := upload_api.NewHandler(cfg.Upload, cfg.Server.PublicURL, log)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	authn := auth.Middleware(cfg.Auth, log)
	adminOnly := auth.RequireRole(log, models.RoleAdmin, models.RoleSuperAdmin)
	superOnly := auth.RequireRole(log, models.RoleSuperAdmin)

	// Public surface: browsing and account creation need no token.
	r.Group(func(r chi.Router) {
		r.Post("/api/auth/register", userHandler.Register)
		r.Post("/api/auth/login", userHandler.Login)

		r.Get("/api/events", eventHandler.ListEvents)
		r.Get("/api/events/{eventId}", eventHandler.GetEvent)
		r.Get("/api/trips", tripHandler.ListTrips)
		r.Get("/api/trips/{tripId}", tripHandler.GetTrip)
		r.Get("/api/interviews", interviewHandler.ListInterviews)
		r.Get("/api/interviews/{interviewId}", interviewHandler.GetInterview)
		r.Get("/api/content/{slug}", contentHandler.GetPublished)
		r.Get("/uploads/*", uploadHandler.ServeFile)

		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
		})
	})

	// Logged-in users: registrations, payments, support queries.
	r.Group(func(r chi.Router) {
		r.Use(authn)

		r.Get("/api/me", userHandler.Me)
		r.Get("/api/me/registrations", userHandler.Registrations)

		r.Post("/api/events/{eventId}/register", eventHandler.Register)
		r.Delete("/api/events/{eventId}/register", eventHandler.Unregister)
		r.Get("/api/events/{eventId}/pass", eventHandler.GetPass)

		r.Post("/api/trips/{tripId}/enroll", tripHandler.Enroll)
		r.Delete("/api/trips/{tripId}/enroll", tripHandler.Withdraw)

		r.Post("/api/interviews/{interviewId}/apply", interviewHandler.Apply)
		r.Delete("/api/interviews/{interviewId}/apply", interviewHandler.Withdraw)

		r.Get("/api/payments/mine", paymentHandler.ListMyPayments)
		r.Post("/api/payments/{paymentId}/proof", paymentHandler.AttachProof)
		r.Post("/api/uploads", uploadHandler.UploadFile)

		r.Post("/api/queries", queryHandler.Submit)
		r.Get("/api/queries/mine", queryHandler.ListMine)
		r.Get("/api/queries/{queryId}", queryHandler.GetMine)
	})

	// Admin back-office.
	r.Group(func(r chi.Router) {
		r.Use(authn)
		r.Use(adminOnly)

		r.Get("/api/admin/dashboard", adminHandler.Dashboard)
		r.Get("/api/admin/activity", adminHandler.ListActivity)
		r.Get("/api/admin/users", adminHandler.ListUsers)
		r.Get("/api/admin/users/{userId}", adminHandler.GetUserProfile)

		r.Post("/api/admin/events", eventHandler.CreateEvent)
		r.Put("/api/admin/events/{eventId}", eventHandler.UpdateEvent)
		r.Delete("/api/admin/events/{eventId}", eventHandler.DeleteEvent)
		r.Delete("/api/admin/events/{eventId}/registrations/{userId}", eventHandler.CancelRegistration)

		r.Post("/api/admin/trips", tripHandler.CreateTrip)
		r.Put("/api/admin/trips/{tripId}", tripHandler.UpdateTrip)
		r.Delete("/api/admin/trips/{tripId}", tripHandler.DeleteTrip)
		r.Delete("/api/admin/trips/{tripId}/enrollments/{userId}", tripHandler.CancelEnrollment)

		r.Post("/api/admin/interviews", interviewHandler.CreateInterview)
		r.Put("/api/admin/interviews/{interviewId}", interviewHandler.UpdateInterview)
		r.Delete("/api/admin/interviews/{interviewId}", interviewHandler.DeleteInterview)
		r.Delete("/api/admin/interviews/{interviewId}/applications/{userId}", interviewHandler.CancelApplication)
		r.Get("/api/admin/submissions", interviewHandler.ListSubmissions)
		r.Put("/api/admin/submissions/{submissionId}/status", interviewHandler.UpdateSubmissionStatus)

		r.Get("/api/admin/payments", paymentHandler.ListPayments)
		r.Put("/api/admin/payments/{paymentId}/status", paymentHandler.UpdateStatus)

		r.Get("/api/admin/queries", queryHandler.List)
		r.Put("/api/admin/queries/{queryId}/respond", queryHandler.Respond)
		r.Put("/api/admin/queries/{queryId}/close", queryHandler.Close)

		r.Get("/api/admin/content", contentHandler.ListContents)
		r.Post("/api/admin/content", contentHandler.CreateContent)
		r.Put("/api/admin/content/{contentId}", contentHandler.UpdateContent)
		r.Delete("/api/admin/content/{contentId}", contentHandler.DeleteContent)

		r.Get("/api/admin/settings", contentHandler.ListSettings)
		r.Get("/api/admin/settings/{key}", contentHandler.GetSetting)
		r.Put("/api/admin/settings", contentHandler.PutSetting)
	})

	// User management mutations are super_admin only.
	r.Group(func(r chi.Router) {
		r.Use(authn)
		r.Use(superOnly)

		r.Put("/api/admin/users/{userId}/role", adminHandler.ChangeRole)
		r.Delete("/api/admin/users/{userId}", adminHandler.DeleteUser)
	})

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("SERVER", fmt.Sprintf("Listening on %s", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("SERVER", fmt.Sprintf("Server error: %v", err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("SERVER", "Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("SERVER", fmt.Sprintf("Forced shutdown: %v", err))
	}
}

// kafkaOrNil keeps a disabled producer out of the services: passing a
// typed nil through an interface would not compare equal to nil.
func kafkaOrNil(p *kafka.Producer) events.Publisher {
	if p == nil {
		return nil
	}
	return p
}

func lockOrNil(l *registration.Lock) events.Locker {
	if l == nil {
		return nil
	}
	return l
}
