package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"syscall"
)

const (
	// defaultMaxHeaderBytes caps the request line plus headers, matching net/http's DefaultMaxHeaderBytes.
	defaultMaxHeaderBytes = 1 << 20

	// maxBodyDrain is how much of a request body is read and discarded before the connection is closed.
	maxBodyDrain = 64 << 10
)

var (
	// errMalformedRequest marks requests whose request line or headers cannot be parsed.
	errMalformedRequest = errors.New("malformed request")

	// errHeaderTooLarge marks a request head that exceeds the configured size limit.
	errHeaderTooLarge = errors.New("request header too large")

	// errConnectionGone marks a peer that disconnected or went silent before sending anything.
	errConnectionGone = errors.New("connection closed by peer")
)

// limitedReader stops a request head from growing past a fixed number of bytes and counts what it has read.
type limitedReader struct {
	r         io.Reader
	remaining int64
	consumed  int64
}

func (l *limitedReader) Read(p []byte) (int, error) {
	if l.remaining <= 0 {
		return 0, errHeaderTooLarge
	}

	if int64(len(p)) > l.remaining {
		p = p[:l.remaining]
	}

	n, err := l.r.Read(p)
	l.remaining -= int64(n)
	l.consumed += int64(n)

	return n, err
}

// readRequest reads a single HTTP/1.x request head from conn, reading at most maxHeaderBytes before the body.
// Errors are classified as errConnectionGone or errMalformedRequest; an oversized head also matches errHeaderTooLarge.
func readRequest(conn io.Reader, maxHeaderBytes int64) (*http.Request, error) {
	if maxHeaderBytes <= 0 {
		maxHeaderBytes = defaultMaxHeaderBytes
	}

	src := &limitedReader{r: conn, remaining: maxHeaderBytes}
	r := bufio.NewReader(src)

	if _, err := r.Peek(1); err != nil {
		return nil, classifyReadError(err, src.consumed)
	}

	req, err := http.ReadRequest(r)
	if err != nil {
		return nil, classifyReadError(err, src.consumed)
	}

	// the body continues through the same buffered reader, bounded separately
	src.remaining = maxBodyDrain

	return req, nil
}

// classifyReadError decides between a gone peer and a malformed request.
// A deadline hit after some bytes arrived is a client that sent an incomplete request and is still waiting.
func classifyReadError(err error, consumed int64) error {
	if errors.Is(err, errHeaderTooLarge) {
		return fmt.Errorf("%w: %w", errMalformedRequest, err)
	}

	if consumed > 0 && isTimeout(err) {
		return fmt.Errorf("%w: incomplete request: %w", errMalformedRequest, err)
	}

	if isConnectionGone(err) {
		return fmt.Errorf("%w: %w", errConnectionGone, err)
	}

	return fmt.Errorf("%w: %w", errMalformedRequest, err)
}

func isTimeout(err error) bool {
	var netErr net.Error

	return errors.As(err, &netErr) && netErr.Timeout()
}

// isConnectionGone reports whether err means the peer closed, reset or stopped talking on the connection.
func isConnectionGone(err error) bool {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, net.ErrClosed) {
		return true
	}

	if errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.EPIPE) {
		return true
	}

	return isTimeout(err)
}
