package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"discount-offers-layer/internal/application"
	"discount-offers-layer/internal/application/webhook_handlers"
	"discount-offers-layer/internal/domain"
	apiinfra "discount-offers-layer/internal/infrastructure/api"
	"discount-offers-layer/internal/infrastructure/cache"
	"discount-offers-layer/internal/infrastructure/pubsub"
	"discount-offers-layer/internal/infrastructure/repository"
	shopifyinfra "discount-offers-layer/internal/infrastructure/shopify"
	"discount-offers-layer/internal/ports"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	// Initialize logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if err := godotenv.Load(); err != nil {
		logger.Warn().Msg("⚠️  Warning: .env file not found")
	}

	// Get configuration from environment
	mongoURI := os.Getenv("MONGODB_URI")
	if mongoURI == "" {
		mongoURI = "mongodb://localhost:27017"
	}

	mongoDatabase := os.Getenv("MONGODB_DATABASE")
	if mongoDatabase == "" {
		mongoDatabase = "discount_app"
	}

	appURL := os.Getenv("APP_URL")
	if appURL == "" {
		appURL = "http://localhost:8080"
	}

	apiKey := os.Getenv("SHOPIFY_API_KEY")
	apiSecret := os.Getenv("SHOPIFY_API_SECRET")
	if apiKey == "" || apiSecret == "" {
		logger.Fatal().Msg("SHOPIFY_API_KEY and SHOPIFY_API_SECRET environment variables are required")
	}

	webhookSecret := os.Getenv("SHOPIFY_WEBHOOK_SECRET")
	if webhookSecret == "" {
		// App webhooks are signed with the API secret unless a dedicated
		// webhook secret is configured.
		webhookSecret = apiSecret
	}

	// Connect to MongoDB
	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(mongoURI))
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	defer client.Disconnect(context.Background())

	db := client.Database(mongoDatabase)

	// Initialize repositories
	offerRepo := repository.NewMongoOfferRepository(db)
	shopRepo := repository.NewMongoShopRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	webhookEventRepo := repository.NewMongoWebhookEventRepository(db)

	// Offer list cache is optional; without REDIS_URL every list hits Mongo
	var offerCache ports.OfferCache
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		opts, err := goredis.ParseURL(redisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("Invalid REDIS_URL")
		}
		offerCache = cache.NewRedisOfferCache(goredis.NewClient(opts), logger)
	} else {
		logger.Warn().Msg("REDIS_URL not set, offer list cache disabled")
	}

	// Initialize infrastructure
	shopifyClient := shopifyinfra.NewClient(apiKey, apiSecret, logger)
	webhookVerifier := shopifyinfra.NewWebhookVerifier(webhookSecret)
	offerPubSub := pubsub.NewOfferPubSub(logger)

	// Initialize application services
	shopService := application.NewShopService(shopRepo, shopifyClient, logger, appURL)
	offerService := application.NewOfferService(offerRepo, shopRepo, offerCache, offerPubSub, logger)

	// Initialize webhook dispatcher and register handlers
	webhookDispatcher := application.NewWebhookDispatcher(logger)
	webhookDispatcher.RegisterHandler(webhook_handlers.NewAppUninstalledHandler(logger, shopRepo))
	webhookDispatcher.RegisterHandler(webhook_handlers.NewScopesUpdateHandler(logger, shopRepo))

	// REST handlers for the admin UI
	offerHandlers := apiinfra.NewOfferHandlers(offerService, shopService, offerPubSub, logger)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	// Public routes
	// Health check - must be public for monitoring
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	// Prometheus metrics
	r.Handle("/metrics", promhttp.Handler())

	// Swagger documentation - public
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	r.Get("/swagger/doc.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		http.ServeFile(w, r, "./docs/swagger.json")
	})

	// OAuth routes
	r.Get("/auth/shopify", oauthInitHandler(sessionRepo, shopService, logger))
	r.Get("/auth/callback", oauthCallbackHandler(sessionRepo, shopService, logger))

	// Webhook endpoint
	r.Post("/webhooks/shopify", webhookHandler(webhookVerifier, webhookDispatcher, webhookEventRepo, logger))

	// Admin API, scoped to the authenticated shop
	r.Route("/api", func(r chi.Router) {
		r.Use(apiinfra.ShopSessionMiddleware(shopRepo, logger))
		offerHandlers.Routes(r)
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	logger.Info().Str("port", port).Msg("Starting API server")
	if err := http.ListenAndServe(":"+port, r); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start server")
	}
}

func requestedScopes() []string {
	scopes := os.Getenv("SCOPES")
	if scopes == "" {
		scopes = "read_products,write_products"
	}
	return strings.Split(scopes, ",")
}

// oauthInitHandler initiates the OAuth flow
func oauthInitHandler(sessionRepo ports.SessionRepository, shopService *application.ShopService, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		shop := r.URL.Query().Get("shop")
		if shop == "" {
			http.Error(w, "shop parameter is required", http.StatusBadRequest)
			return
		}

		// Generate random state for CSRF protection
		stateBytes := make([]byte, 16)
		if _, err := rand.Read(stateBytes); err != nil {
			logger.Error().Err(err).Msg("Failed to generate state")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		state := hex.EncodeToString(stateBytes)

		// Get return URL from query parameter (default to the embedded app
		// root if not provided)
		returnURL := r.URL.Query().Get("return_url")
		if returnURL == "" {
			returnURL = "/app"
		}

		session := &domain.Session{
			Shop:      shop,
			State:     state,
			Scopes:    requestedScopes(),
			ReturnURL: returnURL,
			ExpiresAt: time.Now().Add(10 * time.Minute),
		}

		if err := sessionRepo.CreateSession(ctx, session); err != nil {
			logger.Error().Err(err).Msg("Failed to create session")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		authURL, err := shopService.GenerateAuthURL(shop, session.Scopes, state)
		if err != nil {
			logger.Error().Err(err).Str("shop", shop).Msg("Failed to generate auth URL")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		http.Redirect(w, r, authURL, http.StatusFound)
	}
}

// oauthCallbackHandler handles the OAuth callback
func oauthCallbackHandler(sessionRepo ports.SessionRepository, shopService *application.ShopService, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		shop := r.URL.Query().Get("shop")
		code := r.URL.Query().Get("code")
		state := r.URL.Query().Get("state")

		if shop == "" || code == "" || state == "" {
			http.Error(w, "Missing required parameters", http.StatusBadRequest)
			return
		}

		// Verify state against the stored session
		session, err := sessionRepo.GetSession(ctx, state)
		if err != nil {
			logger.Error().Err(err).Msg("Failed to get session")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		if session == nil || session.Shop != shop {
			http.Error(w, "Invalid session", http.StatusUnauthorized)
			return
		}

		// Sessions are single-use
		sessionRepo.DeleteSession(ctx, state)

		savedShop, err := shopService.CompleteInstallation(ctx, shop, code, session.Scopes)
		if err != nil {
			logger.Error().Err(err).Str("shop", shop).Msg("Failed to complete installation")
			http.Error(w, "Failed to complete installation", http.StatusInternalServerError)
			return
		}

		if err := shopService.RegisterWebhooks(ctx, savedShop.Domain, savedShop.AccessToken); err != nil {
			// Webhooks can be re-registered on the next install; don't fail
			// the OAuth flow over it.
			logger.Warn().Err(err).Str("shop", shop).Msg("Failed to register webhooks")
		}

		redirectURL := fmt.Sprintf("%s?shop=%s&installed=1",
			session.ReturnURL,
			url.QueryEscape(savedShop.Domain),
		)

		logger.Info().
			Str("shop", shop).
			Str("returnURL", redirectURL).
			Msg("Redirecting after successful OAuth")

		http.Redirect(w, r, redirectURL, http.StatusFound)
	}
}

// webhookHandler handles Shopify webhook requests
func webhookHandler(verifier *shopifyinfra.WebhookVerifier, dispatcher *application.WebhookDispatcher, eventLog ports.WebhookEventRepository, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		topic := r.Header.Get("X-Shopify-Topic")
		if topic == "" {
			logger.Warn().Msg("Missing X-Shopify-Topic header")
			http.Error(w, "Missing X-Shopify-Topic header", http.StatusBadRequest)
			return
		}

		payload, err := io.ReadAll(r.Body)
		if err != nil {
			logger.Error().Err(err).Msg("Failed to read webhook payload")
			http.Error(w, "Failed to read request body", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		// Verify webhook signature before any side effect
		hmacHeader := r.Header.Get("X-Shopify-Hmac-SHA256")
		if err := verifier.Verify(payload, hmacHeader); err != nil {
			logger.Warn().Err(err).Str("topic", topic).Msg("Webhook signature verification failed")
			http.Error(w, "Invalid signature", http.StatusUnauthorized)
			return
		}

		shop := r.Header.Get("X-Shopify-Shop-Domain")
		if shop == "" {
			var webhookData map[string]interface{}
			if err := json.Unmarshal(payload, &webhookData); err == nil {
				if v, ok := webhookData["domain"].(string); ok {
					shop = v
				} else if v, ok := webhookData["shop_domain"].(string); ok {
					shop = v
				}
			}
		}

		event := &domain.WebhookEvent{
			ID:         uuid.NewString(),
			Topic:      topic,
			Shop:       shop,
			Payload:    payload,
			Verified:   true,
			ReceivedAt: time.Now(),
		}

		// Best-effort audit log; processing doesn't depend on it
		if err := eventLog.Record(ctx, event); err != nil {
			logger.Warn().Err(err).Str("topic", topic).Msg("Failed to record webhook event")
		}

		if err := dispatcher.Dispatch(ctx, event); err != nil {
			logger.Error().
				Err(err).
				Str("topic", topic).
				Str("shop", shop).
				Msg("Failed to dispatch webhook event")

			// Return 500 to trigger Shopify retry
			http.Error(w, "Failed to process webhook event", http.StatusInternalServerError)
			return
		}

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{
			"received": "true",
		})
	}
}
