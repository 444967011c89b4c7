package main

import (
	"bufio"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const (
	pathIndex = "/"
	pathSleep = "/sleep"
)

// ConnectionHandler serves exactly one request per connection and then closes it.
// It runs as a single pool job, so a slow request holds its worker for the whole time.
type ConnectionHandler struct {
	documents      *DocumentStore
	logger         *slog.Logger
	maxHeaderBytes int64
	index          string
	notFound       string
	sleep          time.Duration
	readTimeout    time.Duration
	writeTimeout   time.Duration
	compression    bool
}

// NewConnectionHandler creates a handler serving the documents configured in cfg.
func NewConnectionHandler(cfg *Config, documents *DocumentStore, logger *slog.Logger) *ConnectionHandler {
	return &ConnectionHandler{
		documents:      documents,
		logger:         logger,
		maxHeaderBytes: int64(cfg.Server.MaxHeaderBytes),
		index:          cfg.Documents.Index,
		notFound:       cfg.Documents.NotFound,
		sleep:          cfg.Documents.Sleep,
		readTimeout:    cfg.Server.ReadTimeout,
		writeTimeout:   cfg.Server.WriteTimeout,
		compression:    cfg.Server.Compression.Enabled,
	}
}

// HandleConnection reads one request from conn, routes it and writes the response.
// Every failure stays inside this call: the connection is closed and the worker moves on.
func (h *ConnectionHandler) HandleConnection(conn net.Conn) {
	logger := h.logger.With(
		slog.String("conn", uuid.NewString()),
		slog.String("client", conn.RemoteAddr().String()),
	)

	logger.Debug("New connection established")

	defer func() {
		_ = conn.Close()

		logger.Debug("Connection closed")
	}()

	if h.readTimeout > 0 {
		_ = conn.SetReadDeadline(time.Now().Add(h.readTimeout))
	}

	req, err := readRequest(conn, h.maxHeaderBytes)
	if err != nil {
		if errors.Is(err, errConnectionGone) {
			logger.Debug("Connection abandoned", slog.String("error", err.Error()))

			return
		}

		status := http.StatusBadRequest
		if errors.Is(err, errHeaderTooLarge) {
			status = http.StatusRequestHeaderFieldsTooLarge
		}

		logger.Info("Malformed request", slog.String("error", err.Error()))
		h.send(conn, logger, textResponse(status))

		return
	}

	// an unread body left in the socket buffer turns close into a reset and can cost the client its response
	if _, err = io.CopyN(io.Discard, req.Body, maxBodyDrain); err != nil && !errors.Is(err, io.EOF) {
		logger.Debug("Could not drain request body", slog.String("error", err.Error()))
	}

	_ = req.Body.Close()

	logger.Debug("Received request", slog.String("method", req.Method), slog.String("path", req.URL.Path))

	resp := h.route(req.URL.Path, logger)

	if h.compression {
		resp.Encoder = negotiateCompressor(req.Header)
	}

	h.send(conn, logger, resp)

	logger.Info(
		"Request served",
		slog.String("method", req.Method),
		slog.String("path", req.URL.Path),
		slog.Int("status", resp.Status),
	)
}

// route maps a request path onto a document and status code.
func (h *ConnectionHandler) route(path string, logger *slog.Logger) Response {
	status := http.StatusOK
	document := h.index

	switch path {
	case pathIndex:
	case pathSleep:
		time.Sleep(h.sleep)
	default:
		status = http.StatusNotFound
		document = h.notFound
	}

	body, err := h.documents.Load(document)
	if err != nil {
		logger.Error("Error loading document", slog.String("error", err.Error()))

		return textResponse(http.StatusInternalServerError)
	}

	return Response{Status: status, Body: body}
}

func (h *ConnectionHandler) send(conn net.Conn, logger *slog.Logger, resp Response) {
	if h.writeTimeout > 0 {
		_ = conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
	}

	if err := writeResponse(bufio.NewWriter(conn), resp); err != nil {
		if isConnectionGone(err) {
			logger.Debug("Connection abandoned", slog.String("error", err.Error()))

			return
		}

		logger.Error("Error writing response", slog.String("error", err.Error()))
	}
}
