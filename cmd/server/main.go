package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/clubsettle/internal/auth"
	"github.com/mmynk/clubsettle/internal/calculator"
	"github.com/mmynk/clubsettle/internal/config"
	"github.com/mmynk/clubsettle/internal/ledger"
	"github.com/mmynk/clubsettle/internal/matcher"
	"github.com/mmynk/clubsettle/internal/metrics"
	"github.com/mmynk/clubsettle/internal/middleware"
	"github.com/mmynk/clubsettle/internal/money"
	"github.com/mmynk/clubsettle/internal/ocr"
	"github.com/mmynk/clubsettle/internal/service"
	"github.com/mmynk/clubsettle/internal/storage/sqlite"
	"github.com/mmynk/clubsettle/pkg/clubsettlev1/clubsettlev1connect"
	"github.com/mmynk/clubsettle/pkg/logging"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	issueToken := flag.Bool("issue-token", false, "print a bearer token and exit")
	tokenMember := flag.String("member", "", "member ID of the issued token")
	tokenRole := flag.String("role", string(auth.RoleMember), "role of the issued token (member|treasurer)")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logging.SetupWithLevel(logging.ParseLevel(cfg.LogLevel))

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)

	if *issueToken {
		if err := printToken(jwtManager, *tokenMember, *tokenRole); err != nil {
			slog.Error("Failed to issue token", "error", err)
			os.Exit(1)
		}
		return
	}

	if err := run(cfg, jwtManager); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func printToken(jwtManager *auth.JWTManager, memberID, roleName string) error {
	if memberID == "" {
		return errors.New("-member is required")
	}
	role, err := auth.ParseRole(roleName)
	if err != nil {
		return err
	}
	token, err := jwtManager.Generate(memberID, role)
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}

func run(cfg config.Config, jwtManager *auth.JWTManager) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.DBPath)

	m := metrics.New(prometheus.DefaultRegisterer)

	calc, err := calculator.New(money.Money(cfg.RoundingUnit))
	if err != nil {
		return err
	}
	settlements := ledger.New(store, calc, ledger.WithMetrics(m))

	scanner, err := newScanner(ctx, cfg, m)
	if err != nil {
		return err
	}

	// RequireAuth runs first so the logging interceptor sees the caller.
	interceptors := connect.WithInterceptors(
		middleware.RequireAuth(jwtManager),
		middleware.LoggingInterceptor(slog.Default()),
	)

	mux := http.NewServeMux()
	mux.Handle(clubsettlev1connect.NewSettlementServiceHandler(service.NewSettlementService(settlements), interceptors))
	mux.Handle(clubsettlev1connect.NewMemberServiceHandler(service.NewMemberService(store), interceptors))
	mux.Handle(clubsettlev1connect.NewScanServiceHandler(service.NewScanService(scanner, store), interceptors))
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// Wrap with h2c for HTTP/2 without TLS (required for Connect)
	handler := h2c.NewHandler(loggingMiddleware(corsMiddleware(mux)), &http2.Server{})

	addr := fmt.Sprintf(":%d", cfg.HTTPPort)
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Connect server starting", "address", addr, "url", fmt.Sprintf("http://localhost%s", addr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// newScanner builds the OCR pipeline. Gemini is the primary engine only when
// enabled and keyed; Tesseract always backs it up.
func newScanner(ctx context.Context, cfg config.Config, m *metrics.Metrics) (*ocr.Scanner, error) {
	var primary ocr.Recognizer
	if cfg.OCR.PrimaryAvailable() {
		gemini, err := ocr.NewGemini(ctx, cfg.OCR.GeminiAPIKey, cfg.OCR.GeminiModel)
		if err != nil {
			return nil, fmt.Errorf("failed to create gemini client: %w", err)
		}
		primary = gemini
		slog.Info("Primary OCR engine enabled", "engine", gemini.Name(), "model", cfg.OCR.GeminiModel)
	} else {
		slog.Warn("Primary OCR engine disabled, using tesseract only")
	}

	orchestrator, err := ocr.NewOrchestrator(primary,
		ocr.NewTesseract(cfg.OCR.TesseractPath, cfg.OCR.TesseractLanguages),
		ocr.WithPreprocessor(ocr.Preprocess),
		ocr.WithTimeout(cfg.OCR.EngineTimeout),
		ocr.WithMinPrimaryConfidence(cfg.OCR.MinPrimaryConfidence),
		ocr.WithMetrics(m),
	)
	if err != nil {
		return nil, err
	}
	return ocr.NewScanner(orchestrator, matcher.New(cfg.NameMatchThreshold), m), nil
}

// loggingMiddleware logs all incoming requests
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		slog.Debug("Request received",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"user_agent", r.UserAgent(),
		)

		next.ServeHTTP(w, r)

		slog.Debug("Request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

// corsMiddleware adds CORS headers for browser access
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, Connect-Protocol-Version, Connect-Timeout-Ms")
		w.Header().Set("Access-Control-Expose-Headers", "Connect-Protocol-Version, Connect-Timeout-Ms")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
