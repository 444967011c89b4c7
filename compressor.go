package main

import (
	"bytes"
	"compress/gzip"
	"io"
	"net/http"
	"strings"
	"sync"
)

// Compressor encodes response bodies for a single content coding.
type Compressor interface {
	// Name returns the content coding token used in Accept-Encoding and Content-Encoding.
	Name() string

	// Compress returns the encoded form of body.
	Compress(body []byte) ([]byte, error)

	// Decompress wraps r with a decoder for this coding.
	Decompress(r io.Reader) (io.ReadCloser, error)
}

// GzipCompressor reuses gzip writers across responses since every worker may compress concurrently.
type GzipCompressor struct {
	writers sync.Pool
}

func NewGzipCompressor() *GzipCompressor {
	return &GzipCompressor{
		writers: sync.Pool{
			New: func() any {
				return gzip.NewWriter(io.Discard)
			},
		},
	}
}

func (*GzipCompressor) Name() string {
	return "gzip"
}

func (c *GzipCompressor) Compress(body []byte) ([]byte, error) {
	var buf bytes.Buffer

	zw := c.writers.Get().(*gzip.Writer)
	defer c.writers.Put(zw)

	zw.Reset(&buf)

	if _, err := zw.Write(body); err != nil {
		_ = zw.Close()

		return nil, err
	}

	if err := zw.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func (*GzipCompressor) Decompress(r io.Reader) (io.ReadCloser, error) {
	zr, err := gzip.NewReader(r)
	if err != nil {
		return nil, err
	}

	return zr, nil
}

var _ Compressor = (*GzipCompressor)(nil)
var gzipCompressor = NewGzipCompressor()

// negotiateCompressor returns the compressor the client accepts, or nil when the body must stay plain.
func negotiateCompressor(header http.Header) Compressor {
	if acceptsEncoding(header, gzipCompressor.Name()) {
		return gzipCompressor
	}

	return nil
}

// acceptsEncoding reports whether the request lists name in its Accept-Encoding header with a non-zero weight.
func acceptsEncoding(header http.Header, name string) bool {
	for _, value := range header.Values("Accept-Encoding") {
		for _, part := range strings.Split(value, ",") {
			coding, params, _ := strings.Cut(strings.TrimSpace(part), ";")
			if !strings.EqualFold(strings.TrimSpace(coding), name) {
				continue
			}

			q := strings.ReplaceAll(strings.TrimSpace(params), " ", "")

			return q != "q=0" && q != "q=0.0" && q != "q=0.00" && q != "q=0.000"
		}
	}

	return false
}
