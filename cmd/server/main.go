package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/storage"
	"connectrpc.com/connect"
	"github.com/rs/cors"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/welthfin/backend/internal/auth"
	"github.com/welthfin/backend/internal/extraction"
	"github.com/welthfin/backend/internal/service"
	"github.com/welthfin/backend/internal/store"
)

func main() {
	// Get port from environment or use default
	// NOTE: Default is 8111 to avoid conflicts with other projects (not 8080)
	port := os.Getenv("PORT")
	if port == "" {
		port = "8111"
	}

	ctx := context.Background()

	// Determine if we're running locally
	useMemoryStore := os.Getenv("USE_MEMORY_STORE") == "true" || os.Getenv("ENV") == "local"
	skipAuth := os.Getenv("SKIP_AUTH") == "true"

	var storeImpl store.Store
	var firebaseAuth *auth.FirebaseAuth
	var statementBucket *storage.BucketHandle

	if useMemoryStore {
		log.Println("Using in-memory store for local development")
		storeImpl = store.NewMemoryStore()

		// For local development with memory store, always use mock authentication
		// This makes the dev experience seamless - no need to set up Firebase auth locally
		log.Println("✅ Using mock authentication for local development")
		firebaseAuth = nil
	} else {
		// Production mode - use Firestore
		projectID := os.Getenv("GOOGLE_CLOUD_PROJECT")
		if projectID == "" {
			log.Fatal("GOOGLE_CLOUD_PROJECT is required when not using the memory store")
		}

		firestoreClient, err := firestore.NewClient(ctx, projectID)
		if err != nil {
			log.Fatalf("Failed to create Firestore client: %v", err)
		}
		defer firestoreClient.Close()

		// Initialize Firebase Auth (unless SKIP_AUTH is set for seeding/testing)
		if skipAuth {
			log.Println("⚠️  SKIP_AUTH enabled - using mock authentication with Firestore (for seeding/testing only)")
			firebaseAuth = nil
		} else {
			firebaseAuth, err = auth.NewFirebaseAuth(ctx)
			if err != nil {
				log.Fatalf("Failed to initialize Firebase Auth: %v", err)
			}
		}

		storeImpl = store.NewFirestoreStore(firestoreClient)

		// Optional GCS archive for uploaded statements
		if bucketName := os.Getenv("STATEMENT_BUCKET"); bucketName != "" {
			storageClient, err := storage.NewClient(ctx)
			if err != nil {
				log.Fatalf("Failed to create Storage client: %v", err)
			}
			defer storageClient.Close()
			statementBucket = storageClient.Bucket(bucketName)
		}
	}

	geminiModel := os.Getenv("GEMINI_MODEL")
	if geminiModel == "" {
		geminiModel = extraction.DefaultGeminiModel
	}
	extractor := extraction.NewService(extraction.Config{
		GeminiModel:   geminiModel,
		EnableGemini:  os.Getenv("GEMINI_API_KEY") != "",
		StorageBucket: statementBucket,
	})

	financeService := service.NewFinanceService(storeImpl)
	taxService, err := service.NewTaxService(storeImpl)
	if err != nil {
		log.Fatalf("Failed to initialize tax engine: %v", err)
	}
	statementService := service.NewStatementService(storeImpl, extractor)

	// Build the interceptor chain with conditional auth
	var interceptors []connect.Interceptor

	// Debug interceptor first (for impersonation support in dev mode)
	interceptors = append(interceptors, auth.DebugAuthInterceptor(skipAuth))

	if firebaseAuth != nil {
		interceptors = append(interceptors, auth.AuthInterceptor(firebaseAuth))
	} else {
		// For local development without auth, add a mock user context
		interceptors = append(interceptors, auth.LocalDevInterceptor())
	}

	mux := http.NewServeMux()
	service.RegisterRoutes(mux, financeService, taxService, statementService,
		connect.WithInterceptors(interceptors...))

	// Add health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Set up CORS
	// NOTE: Frontend runs on port 1234, not 3000
	c := cors.New(cors.Options{
		AllowedOrigins: []string{
			"http://localhost:1234", // Local frontend
			"http://127.0.0.1:1234", // Alternative local
			"https://welthfin.dev",
			"https://www.welthfin.dev",
			"https://*.vercel.app", // Vercel preview deployments
		},
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Authorization",
			"Connect-Protocol-Version",
			"Connect-Timeout-Ms",
			"Content-Type",
			"Grpc-Timeout",
			"User-Agent",
			"X-Grpc-Web",
			"X-User-Agent",
			"X-Debug-Impersonate-User",
		},
		ExposedHeaders: []string{
			"Grpc-Status",
			"Grpc-Message",
			"Grpc-Status-Details-Bin",
		},
		AllowCredentials: true,
	})

	handler := c.Handler(mux)

	// Create HTTP/2 server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", port),
		Handler: h2c.NewHandler(handler, &http2.Server{}),
	}

	log.Printf("Starting server on port %s", port)
	if err := srv.ListenAndServe(); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
