package main

import (
	"bytes"
	"io"
	"net/http"
	"testing"
)

func TestGzipCompressor_RoundTrip(t *testing.T) {
	payload := bytes.Repeat([]byte("<p>hello</p>"), 64)

	compressed, err := gzipCompressor.Compress(payload)
	if err != nil {
		t.Fatalf("Compress failed: %v", err)
	}

	if len(compressed) >= len(payload) {
		t.Errorf("expected compressed size below %d, got %d", len(payload), len(compressed))
	}

	zr, err := gzipCompressor.Decompress(bytes.NewReader(compressed))
	if err != nil {
		t.Fatalf("Decompress failed: %v", err)
	}

	defer func() { _ = zr.Close() }()

	got, err := io.ReadAll(zr)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}

	if !bytes.Equal(got, payload) {
		t.Error("decompressed payload differs from input")
	}
}

func TestAcceptsEncoding(t *testing.T) {
	tests := []struct {
		header string
		want   bool
	}{
		{"gzip", true},
		{"deflate, gzip;q=0.8", true},
		{"GZIP", true},
		{"br", false},
		{"", false},
		{"x-gzip-like", false},
		{"gzip;q=0", false},
		{"br, gzip; q=0.5", true},
	}

	for _, tt := range tests {
		header := http.Header{}
		if tt.header != "" {
			header.Set("Accept-Encoding", tt.header)
		}

		if got := acceptsEncoding(header, "gzip"); got != tt.want {
			t.Errorf("acceptsEncoding(%q) = %v, want %v", tt.header, got, tt.want)
		}
	}
}

func TestHandleConnectionCompressesWhenNegotiated(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.Server.Compression.Enabled = true

	h := newTestHandler(cfg)

	resp, body := roundTrip(t, h, "GET / HTTP/1.1\r\nAccept-Encoding: gzip\r\n\r\n")
	if resp == nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %+v", resp)
	}

	if resp.Header.Get("Content-Encoding") != "gzip" {
		t.Fatalf("expected Content-Encoding gzip, got %q", resp.Header.Get("Content-Encoding"))
	}

	zr, err := gzipCompressor.Decompress(bytes.NewReader(body))
	if err != nil {
		t.Fatalf("Decompress failed: %v", err)
	}

	got, _ := io.ReadAll(zr)
	if string(got) != testIndexBody {
		t.Errorf("expected index body, got %q", got)
	}

	// without negotiation the body stays plain
	resp, body = roundTrip(t, h, "GET / HTTP/1.1\r\n\r\n")
	if resp.Header.Get("Content-Encoding") != "" || string(body) != testIndexBody {
		t.Errorf("expected plain body, got encoding %q body %q", resp.Header.Get("Content-Encoding"), body)
	}
}
