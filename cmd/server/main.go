package main

import (
	"context"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"cbt-portal/internal/assignment"
	"cbt-portal/internal/auth"
	"cbt-portal/internal/janitor"
	"cbt-portal/internal/models"
	"cbt-portal/internal/question"
	"cbt-portal/internal/reference"
	"cbt-portal/internal/result"
	"cbt-portal/internal/stats"
	"cbt-portal/internal/testcode"
	"cbt-portal/pkg/cache"
	"cbt-portal/pkg/database"
	"cbt-portal/pkg/realtime"

	"github.com/gorilla/mux"
)

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found")
	}

	// Initialize database
	dbConfig := &database.Config{
		Host:     os.Getenv("DB_HOST"),
		Port:     os.Getenv("DB_PORT"),
		User:     os.Getenv("DB_USER"),
		Password: os.Getenv("DB_PASSWORD"),
		DBName:   os.Getenv("DB_NAME"),
		SSLMode:  os.Getenv("DB_SSLMODE"),
	}

	db, err := database.NewPostgresDB(dbConfig)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// Initialize Redis cache
	redisCache := cache.NewRedisCache(getenv("REDIS_ADDR", "localhost:6379"))

	// Initialize the admin live-monitor hub
	monitorHub := realtime.NewHub()
	go monitorHub.Run()

	// Initialize repositories
	authRepo := auth.NewRepository(db)
	referenceRepo := reference.NewRepository(db)
	assignmentRepo := assignment.NewRepository(db)
	questionRepo := question.NewRepository(db)
	testcodeRepo := testcode.NewRepository(db)
	resultRepo := result.NewRepository(db)
	statsRepo := stats.NewRepository(db)

	// Initialize services
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatalf("JWT_SECRET is required")
	}
	authService := auth.NewService(authRepo, jwtSecret)
	assignmentService := assignment.NewService(assignmentRepo)
	questionService := question.NewService(questionRepo, assignmentService)
	testcodeService := testcode.NewService(testcodeRepo, redisCache)
	resultService := result.NewService(resultRepo, redisCache, monitorHub)

	// Initialize handlers
	authHandler := auth.NewHandler(authService)
	assignmentHandler := assignment.NewHandler(assignmentService)
	questionHandler := question.NewHandler(questionService, testcodeService)
	testcodeHandler := testcode.NewHandler(testcodeService)
	resultHandler := result.NewHandler(resultService)
	statsHandler := stats.NewHandler(statsRepo, redisCache)

	// Retention janitor for soft-deleted batches
	retentionDays, _ := strconv.Atoi(getenv("PURGE_RETENTION_DAYS", "90"))
	batchJanitor := janitor.New(testcodeService, retentionDays)
	if err := batchJanitor.Start(); err != nil {
		log.Fatalf("Failed to start janitor: %v", err)
	}
	defer batchJanitor.Stop()

	// Setup router
	router := mux.NewRouter()
	router.Use(auth.RequestIDMiddleware)

	// CORS middleware configuration
	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins:   []string{getenv("CORS_ORIGIN", "http://localhost:3000")},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Requested-With"},
		ExposedHeaders:   []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	})
	handler := corsMiddleware.Handler(router)

	// Public routes - no session required
	router.HandleFunc("/api/auth/signup", authHandler.Signup).Methods("POST", "OPTIONS")
	router.HandleFunc("/api/auth/signin", authHandler.Signin).Methods("POST", "OPTIONS")

	// Reference data, unauthenticated reads
	for path, kind := range map[string]reference.Kind{
		"subjects": reference.KindSubject,
		"classes":  reference.KindClass,
		"terms":    reference.KindTerm,
		"sessions": reference.KindSession,
	} {
		h := reference.NewHandler(referenceRepo, kind)
		router.HandleFunc("/api/"+path, h.List).Methods("GET", "OPTIONS")
	}

	// Code validation is the student's entry point, before any session exists
	router.HandleFunc("/api/test-codes/validate/{code}", testcodeHandler.ValidateCode).Methods("GET", "OPTIONS")

	// Session-authenticated routes
	apiRouter := router.PathPrefix("/api").Subrouter()
	apiRouter.Use(auth.JWTMiddleware(jwtSecret))

	apiRouter.HandleFunc("/auth/signout", authHandler.Signout).Methods("POST", "OPTIONS")
	apiRouter.HandleFunc("/auth/session", authHandler.Session).Methods("GET", "OPTIONS")
	apiRouter.HandleFunc("/dashboard/stats", statsHandler.DashboardStats).Methods("GET")
	apiRouter.HandleFunc("/test-results", resultHandler.List).Methods("GET")

	// Student test flow
	studentRouter := apiRouter.PathPrefix("").Subrouter()
	studentRouter.Use(auth.RequireRole(models.RoleStudent))
	studentRouter.HandleFunc("/questions/for-test", questionHandler.ForTest).Methods("GET")
	studentRouter.HandleFunc("/test-results", resultHandler.Submit).Methods("POST", "OPTIONS")

	// Question authoring: teachers within their assignments, admins anywhere
	teacherRouter := apiRouter.PathPrefix("").Subrouter()
	teacherRouter.Use(auth.RequireRole(models.RoleTeacher, models.RoleAdmin))
	teacherRouter.HandleFunc("/questions", questionHandler.Create).Methods("POST", "OPTIONS")
	teacherRouter.HandleFunc("/questions", questionHandler.List).Methods("GET")
	teacherRouter.HandleFunc("/questions/bulk", questionHandler.BulkImport).Methods("POST", "OPTIONS")
	teacherRouter.HandleFunc("/questions/export", questionHandler.Export).Methods("GET")
	teacherRouter.HandleFunc("/questions/{id:[0-9]+}", questionHandler.Get).Methods("GET")
	teacherRouter.HandleFunc("/questions/{id:[0-9]+}", questionHandler.Update).Methods("PUT", "OPTIONS")
	teacherRouter.HandleFunc("/questions/{id:[0-9]+}", questionHandler.Delete).Methods("DELETE", "OPTIONS")
	teacherRouter.HandleFunc("/my-assignments", assignmentHandler.MyAssignments).Methods("GET")
	teacherRouter.HandleFunc("/test-results/filtered", resultHandler.Filtered).Methods("GET")
	teacherRouter.HandleFunc("/test-results/export-csv", resultHandler.ExportCSV).Methods("GET")
	teacherRouter.HandleFunc("/test-results/export-pdf", resultHandler.ExportPDF).Methods("GET")

	// Admin management
	adminRouter := apiRouter.PathPrefix("").Subrouter()
	adminRouter.Use(auth.RequireAdmin())
	for path, kind := range map[string]reference.Kind{
		"subjects": reference.KindSubject,
		"classes":  reference.KindClass,
		"terms":    reference.KindTerm,
		"sessions": reference.KindSession,
	} {
		h := reference.NewHandler(referenceRepo, kind)
		adminRouter.HandleFunc("/"+path, h.Create).Methods("POST", "OPTIONS")
		adminRouter.HandleFunc("/"+path+"/{id:[0-9]+}", h.Delete).Methods("DELETE", "OPTIONS")
	}
	adminRouter.HandleFunc("/test-code-batches", testcodeHandler.CreateBatch).Methods("POST", "OPTIONS")
	adminRouter.HandleFunc("/test-code-batches", testcodeHandler.ListBatches).Methods("GET")
	adminRouter.HandleFunc("/test-code-batches/{id:[0-9]+}/codes", testcodeHandler.ListBatchCodes).Methods("GET")
	adminRouter.HandleFunc("/test-code-batches/{id:[0-9]+}/activate", testcodeHandler.ActivateBatch).Methods("PUT", "OPTIONS")
	adminRouter.HandleFunc("/test-code-batches/{id:[0-9]+}/deactivate", testcodeHandler.DeactivateBatch).Methods("PUT", "OPTIONS")
	adminRouter.HandleFunc("/test-code-batches/{id:[0-9]+}", testcodeHandler.DeleteBatch).Methods("DELETE", "OPTIONS")
	adminRouter.HandleFunc("/test-codes/{code}", testcodeHandler.GetCode).Methods("GET")
	adminRouter.HandleFunc("/test-codes/{code}/activate", testcodeHandler.ActivateCode).Methods("PUT", "OPTIONS")
	adminRouter.HandleFunc("/test-codes/{code}/deactivate", testcodeHandler.DeactivateCode).Methods("PUT", "OPTIONS")
	adminRouter.HandleFunc("/teacher-assignments", assignmentHandler.List).Methods("GET")
	adminRouter.HandleFunc("/teacher-assignments", assignmentHandler.Save).Methods("POST", "OPTIONS")
	adminRouter.HandleFunc("/teacher-assignments/{id:[0-9]+}", assignmentHandler.Delete).Methods("DELETE", "OPTIONS")
	adminRouter.HandleFunc("/teachers", assignmentHandler.Teachers).Methods("GET")
	adminRouter.HandleFunc("/students/export", statsHandler.ExportStudents).Methods("GET")
	adminRouter.HandleFunc("/admin/stats", statsHandler.AdminStats).Methods("GET")

	// Live monitor feed for admin dashboards
	monitorRouter := router.PathPrefix("/ws").Subrouter()
	monitorRouter.Use(auth.JWTMiddleware(jwtSecret), auth.RequireAdmin())
	monitorRouter.HandleFunc("/monitor", monitorHub.HandleMonitor)

	// Initialize random seed
	rand.Seed(time.Now().UnixNano())

	// Setup server with CORS handler
	srv := &http.Server{
		Addr:         getenv("SERVER_ADDR", ":8080"),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown setup
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	<-c

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server shutdown gracefully")
}
