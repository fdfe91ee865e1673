// Command testserver runs a local webhook receiver.
//
// Usage:
//
//	testserver [flags]
//
// Flags:
//
//	-port    Port to listen on (default: 8080)
//	-host    Host to bind to (default: localhost)
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"webhookutil/internal/logger"
	"webhookutil/testserver"
)

func main() {
	port := flag.Int("port", 8080, "port to listen on")
	host := flag.String("host", "localhost", "host to bind to")
	verbose := flag.Bool("verbose", false, "enable debug logging")
	flag.Parse()

	log := logger.New(os.Stderr, *verbose)
	server := testserver.NewServer()
	addr := fmt.Sprintf("%s:%d", *host, *port)

	fmt.Println("Webhook Test Server")
	fmt.Println("===================")
	fmt.Printf("Listening on http://%s\n\n", addr)
	fmt.Println("Endpoints:")
	fmt.Println("  POST /webhook             - Record a webhook (204, or 400 for bad JSON)")
	fmt.Println("  GET  /deliveries          - Everything received so far")
	fmt.Println("  GET  /health              - Health check")
	fmt.Println("  ANY  /status/{code}       - Return specific status code")
	fmt.Println("  ANY  /delay/{ms}          - Delay response by milliseconds")
	fmt.Println("  ANY  /fail-rate           - Fail percentage of requests (?rate=10)")
	fmt.Println()

	srv := &http.Server{Addr: addr, Handler: server.Handler()}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		log.Info().Int("received", server.Count()).Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Str("addr", addr).Msg("server failed")
	}
}
