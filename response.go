package main

import (
	"bufio"
	"fmt"
	"net/http"
	"strconv"
)

const (
	contentTypeHTML = "text/html; charset=utf-8"
	contentTypeText = "text/plain; charset=utf-8"
)

// Response is the status and body the handler sends back before closing the connection.
type Response struct {
	Status int
	Body   []byte

	// ContentType defaults to HTML when empty.
	ContentType string

	// Encoder compresses Body when set.
	Encoder Compressor
}

func textResponse(status int) Response {
	return Response{
		Status:      status,
		Body:        []byte(fmt.Sprintf("%d %s\n", status, http.StatusText(status))),
		ContentType: contentTypeText,
	}
}

// writeResponse writes a complete HTTP/1.1 response. The connection is always announced as closing.
func writeResponse(w *bufio.Writer, resp Response) error {
	body := resp.Body
	header := http.Header{}

	contentType := resp.ContentType
	if contentType == "" {
		contentType = contentTypeHTML
	}

	header.Set("Content-Type", contentType)
	header.Set("Connection", "close")

	if resp.Encoder != nil {
		compressed, err := resp.Encoder.Compress(body)
		if err != nil {
			return fmt.Errorf("could not compress body: %w", err)
		}

		body = compressed

		header.Set("Content-Encoding", resp.Encoder.Name())
		header.Set("Vary", "Accept-Encoding")
	}

	header.Set("Content-Length", strconv.Itoa(len(body)))

	if _, err := fmt.Fprintf(w, "HTTP/1.1 %d %s\r\n", resp.Status, http.StatusText(resp.Status)); err != nil {
		return fmt.Errorf("could not write status line: %w", err)
	}

	if err := header.Write(w); err != nil {
		return fmt.Errorf("could not write headers: %w", err)
	}

	if _, err := w.WriteString("\r\n"); err != nil {
		return fmt.Errorf("could not write headers: %w", err)
	}

	if _, err := w.Write(body); err != nil {
		return fmt.Errorf("could not write body: %w", err)
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("could not write response: %w", err)
	}

	return nil
}
