package main

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"
)

// acceptRetryDelay throttles the accept loop after a failed Accept.
const acceptRetryDelay = 50 * time.Millisecond

// HTTPServer accepts TCP connections and submits each one to a WorkerPool.
type HTTPServer struct {
	address  string
	pool     WorkerPool
	logger   *slog.Logger
	listener net.Listener
	wg       sync.WaitGroup
}

// NewHTTPServer creates a server for address that dispatches connections to pool.
func NewHTTPServer(address string, pool WorkerPool, logger *slog.Logger) *HTTPServer {
	return &HTTPServer{
		address: address,
		pool:    pool,
		logger:  logger,
	}
}

// Listen binds the TCP listener. A bind failure is returned to the caller and is fatal at start-up.
func (s *HTTPServer) Listen() error {
	listener, err := net.Listen("tcp", s.address)
	if err != nil {
		return fmt.Errorf("could not start server: %w", err)
	}

	s.listener = listener

	s.logger.Info("Server is listening", slog.String("address", s.Addr()))

	return nil
}

// Addr returns the bound address, or the configured one before Listen.
func (s *HTTPServer) Addr() string {
	if s.listener == nil {
		return s.address
	}

	return s.listener.Addr().String()
}

// Start runs the accept loop in the background until Stop is called.
func (s *HTTPServer) Start(handler func(conn net.Conn)) {
	s.wg.Add(1)

	go func() {
		defer s.wg.Done()

		s.serve(handler)
	}()
}

func (s *HTTPServer) serve(handler func(conn net.Conn)) {
	for {
		conn, err := s.listener.Accept()
		if errors.Is(err, net.ErrClosed) {
			s.logger.Info("Server is shutting down", slog.String("address", s.Addr()))

			return
		}

		if err != nil {
			s.logger.Error("Error accepting connection", slog.String("error", err.Error()))
			time.Sleep(acceptRetryDelay)

			continue
		}

		if err = s.pool.Execute(connectionJob(conn, handler)); err != nil {
			s.logger.Warn(
				"Connection rejected",
				slog.String("client", conn.RemoteAddr().String()),
				slog.String("error", err.Error()),
			)

			_ = conn.Close()
		}
	}
}

// Stop closes the listener and waits for the accept loop to return. Connections already submitted keep running in the pool.
func (s *HTTPServer) Stop() {
	if s.listener == nil {
		return
	}

	_ = s.listener.Close()

	s.wg.Wait()
}
