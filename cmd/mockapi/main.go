package main

import (
	"errors"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/dshills/botflow/internal/logging"
	"github.com/dshills/botflow/internal/testutil/mockapi"
)

// main serves the fake bot template API on its own, for integration setups
// that start the server as a separate process. It is configured through
// MOCKAPI_ADDR and MOCKAPI_DEBUG.
func main() {
	addr := os.Getenv("MOCKAPI_ADDR")
	if addr == "" {
		addr = "127.0.0.1:8000"
	}
	logger := logging.New(logging.Level(os.Getenv("MOCKAPI_DEBUG") != ""))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mockapi.New(mockapi.WithLogger(logger)).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Warn("mock API listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Server error: %v", err)
	}
}
