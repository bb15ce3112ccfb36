package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/fintechfusion/loan-officer/internal/config"
	"github.com/fintechfusion/loan-officer/internal/handler"
	"github.com/fintechfusion/loan-officer/internal/service/conversation"
	"github.com/fintechfusion/loan-officer/internal/service/sanction"
	"github.com/fintechfusion/loan-officer/internal/service/session"
	"github.com/fintechfusion/loan-officer/internal/service/underwrite"
	"github.com/fintechfusion/loan-officer/internal/service/verification"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	store := session.NewStore()
	engine := underwrite.NewEngine(cfg.Underwriting, nil)
	incomeExtractor := verification.NewExtractor()
	convSvc := conversation.NewService(store, engine, incomeExtractor, cfg.Loan)
	letters := sanction.NewRenderer()

	router := handler.NewRouter(convSvc, letters, cfg.Server.MaxUploadBytes)

	log.Printf("loan policy: rate=%.1f%% p.a., default tenure=%d months, ladder=%v",
		cfg.Loan.AnnualRate, cfg.Loan.DefaultTenureMonths, cfg.Loan.TenureLadder)
	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("Digital Loan Officer listening on %s", serverCfg.Addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
