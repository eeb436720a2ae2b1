package integration

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"testing"
	"time"

	"internet-cafe-api/internal/audit"
	"internet-cafe-api/internal/config"
	"internet-cafe-api/internal/database"
	"internet-cafe-api/internal/handler"
	"internet-cafe-api/internal/repository"
	"internet-cafe-api/internal/router"
	"internet-cafe-api/internal/service"
	"internet-cafe-api/internal/statistics"

	"github.com/stretchr/testify/require"
)

// IntegrationTestSuite holds the test dependencies
type IntegrationTestSuite struct {
	DB       *sql.DB
	Router   http.Handler
	Config   *config.Config
	Recorder *audit.Recorder
	Sessions *service.SessionService
}

// setupIntegrationTest connects to the test database, migrates it and wires the full stack.
func setupIntegrationTest(t *testing.T) *IntegrationTestSuite {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	cfg := loadTestConfig(t)
	db := initTestDatabase(t, cfg)
	cleanDatabase(t, db)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	recorder := audit.NewRecorder(logger, time.Second, audit.NewLogSink(logger))
	store := repository.NewStore(db)

	users := service.NewUserService(store, recorder, logger)
	accounts := service.NewAccountService(store, recorder, logger)
	computers := service.NewComputerService(store, recorder, logger)
	sessions := service.NewSessionService(store, recorder, logger)
	stats := service.NewStatisticsService(statistics.NewReader(db), logger)

	h := handler.Handlers{
		Users:      handler.NewUserHandler(users, accounts, sessions, logger),
		Accounts:   handler.NewAccountHandler(accounts, logger),
		Computers:  handler.NewComputerHandler(computers, sessions, logger),
		Sessions:   handler.NewSessionHandler(sessions, logger),
		Statistics: handler.NewStatisticsHandler(stats, logger),
		Health:     handler.NewHealthHandler(db, logger),
	}

	suite := &IntegrationTestSuite{
		DB:       db,
		Router:   router.NewRouter(h, cfg, nil, logger),
		Config:   cfg,
		Recorder: recorder,
		Sessions: sessions,
	}

	t.Cleanup(func() {
		recorder.Wait()
		cleanDatabase(t, db)
		db.Close()
	})

	return suite
}

// loadTestConfig reads the test database location from TEST_DB_* variables.
func loadTestConfig(t *testing.T) *config.Config {
	t.Helper()

	port, err := strconv.Atoi(getEnv("TEST_DB_PORT", "5452"))
	require.NoError(t, err)

	return &config.Config{
		Port:     8080,
		LogLevel: "info",
		Database: config.DatabaseConfig{
			Host:            getEnv("TEST_DB_HOST", "127.0.0.1"),
			Port:            port,
			User:            getEnv("TEST_DB_USER", "postgres"),
			Password:        getEnv("TEST_DB_PASSWORD", "postgres"),
			Name:            getEnv("TEST_DB_NAME", "postgres"),
			SSLMode:         "disable",
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: time.Minute,
			ConnMaxIdleTime: time.Minute,
		},
		Security: config.SecurityConfig{
			RateLimitRPS:    1000,
			RateLimitBurst:  1000,
			RequestTimeout:  30 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			EnableCORS:      true,
			AllowedOrigins:  []string{"*"},
		},
	}
}

// initTestDatabase connects and migrates, skipping the test when no database is reachable.
func initTestDatabase(t *testing.T, cfg *config.Config) *sql.DB {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := database.InitDB(ctx, cfg)
	if err != nil {
		t.Skipf("Failed to connect to test database: %v. Ensure test database is running.", err)
	}

	require.NoError(t, database.RunMigrations(context.Background(), db, database.MigrateUp))
	return db
}

// cleanDatabase removes all test data
func cleanDatabase(t *testing.T, db *sql.DB) {
	t.Helper()

	_, err := db.Exec("TRUNCATE TABLE transactions, sessions, accounts, computers, users CASCADE")
	if err != nil {
		t.Logf("Warning: Failed to clean database: %v", err)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// do sends a JSON request through the router and decodes the JSON response.
func (s *IntegrationTestSuite) do(t *testing.T, method, url string, body any) (int, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	s.Router.ServeHTTP(rec, req)

	var decoded map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded), rec.Body.String())
	}
	return rec.Code, decoded
}

// data returns the "data" object of a SuccessResponse.
func data(t *testing.T, body map[string]any) map[string]any {
	t.Helper()

	d, ok := body["data"].(map[string]any)
	require.True(t, ok, "response has no data: %v", body)
	return d
}
