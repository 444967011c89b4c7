package main

import (
	"errors"
	"io"
	"strings"
	"testing"
)

type timeoutError struct{}

func (timeoutError) Error() string { return "i/o timeout" }
func (timeoutError) Timeout() bool { return true }
func (timeoutError) Temporary() bool { return true }

// stalledReader returns data once and then reports a deadline hit, like a client that stopped mid-request.
type stalledReader struct {
	data string
	done bool
}

func (s *stalledReader) Read(p []byte) (int, error) {
	if s.done || s.data == "" {
		return 0, timeoutError{}
	}

	s.done = true

	return copy(p, s.data), nil
}

func TestReadRequest(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantPath string
		wantErr  error
	}{
		{
			name:     "request line only",
			input:    "GET / HTTP/1.1\r\n\r\n",
			wantPath: "/",
		},
		{
			name:     "with headers",
			input:    "GET /sleep HTTP/1.1\r\nHost: localhost\r\nAccept-Encoding: gzip\r\n\r\n",
			wantPath: "/sleep",
		},
		{
			name:     "http 1.0",
			input:    "GET /unknown HTTP/1.0\r\n\r\n",
			wantPath: "/unknown",
		},
		{
			name:    "empty line",
			input:   "\r\n",
			wantErr: errMalformedRequest,
		},
		{
			name:    "garbage",
			input:   "\x00\x01garbage\r\n",
			wantErr: errMalformedRequest,
		},
		{
			name:    "missing protocol",
			input:   "GET /\r\n\r\n",
			wantErr: errMalformedRequest,
		},
		{
			name:    "bad header line",
			input:   "GET / HTTP/1.1\r\nno colon here\r\n\r\n",
			wantErr: errMalformedRequest,
		},
		{
			name:    "peer closed before sending",
			input:   "",
			wantErr: errConnectionGone,
		},
		{
			name:    "peer closed mid headers",
			input:   "GET / HTTP/1.1\r\nHost: local",
			wantErr: errConnectionGone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := readRequest(strings.NewReader(tt.input), defaultMaxHeaderBytes)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("readRequest() error = %v, want %v", err, tt.wantErr)
				}

				return
			}

			if err != nil {
				t.Fatalf("readRequest() unexpected error: %v", err)
			}

			if req.URL.Path != tt.wantPath {
				t.Errorf("expected path %q, got %q", tt.wantPath, req.URL.Path)
			}
		})
	}
}

func TestReadRequestHeaderLimit(t *testing.T) {
	head := "GET / HTTP/1.1\r\nX-Filler: " + strings.Repeat("a", 4096) + "\r\n\r\n"

	_, err := readRequest(strings.NewReader(head), 1024)
	if !errors.Is(err, errHeaderTooLarge) {
		t.Fatalf("expected errHeaderTooLarge, got %v", err)
	}

	if !errors.Is(err, errMalformedRequest) {
		t.Errorf("expected an oversized head to be malformed, got %v", err)
	}

	req, err := readRequest(strings.NewReader(head), int64(len(head)))
	if err != nil {
		t.Fatalf("head within the limit rejected: %v", err)
	}

	if got := req.Header.Get("X-Filler"); len(got) != 4096 {
		t.Errorf("expected a 4096 byte header value, got %d bytes", len(got))
	}
}

func TestReadRequestBodyReadable(t *testing.T) {
	body := strings.Repeat("b", 5000)
	raw := "POST / HTTP/1.1\r\nContent-Length: 5000\r\n\r\n" + body

	req, err := readRequest(strings.NewReader(raw), 128)
	if err != nil {
		t.Fatalf("readRequest() unexpected error: %v", err)
	}

	got, err := io.ReadAll(req.Body)
	if err != nil {
		t.Fatalf("read body failed: %v", err)
	}

	if string(got) != body {
		t.Errorf("expected %d body bytes, got %d", len(body), len(got))
	}
}

func TestReadRequestTimeout(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{
			name:    "silent client",
			input:   "",
			wantErr: errConnectionGone,
		},
		{
			name:    "garbage without terminator",
			input:   "\x16\x03\x01garbage",
			wantErr: errMalformedRequest,
		},
		{
			name:    "partial request line",
			input:   "GET / HT",
			wantErr: errMalformedRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := readRequest(&stalledReader{data: tt.input}, defaultMaxHeaderBytes)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("readRequest() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
