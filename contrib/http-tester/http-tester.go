package main

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/spf13/pflag"
)

func main() {
	fmt.Println("HTTP raw request client")

	address := pflag.String("address", "127.0.0.1:7878", "The server address (host:port)")
	path := pflag.String("path", "/", "The request path")
	raw := pflag.String("raw", "", "Send this string verbatim instead of a GET request line (e.g. '\\r\\n' or garbage)")
	timeout := pflag.Duration("timeout", 30*time.Second, "Overall connection deadline")

	pflag.Parse()

	request := fmt.Sprintf("GET %s HTTP/1.1\r\nHost: %s\r\n\r\n", *path, *address)
	if *raw != "" {
		request = *raw

		// accept escaped input such as '\r\n' from the shell
		if unquoted, err := strconv.Unquote(`"` + *raw + `"`); err == nil {
			request = unquoted
		}
	}

	conn, err := net.Dial("tcp", *address)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Failed to connect: %s\n", err)

		os.Exit(1)
	}

	defer func(conn net.Conn) {
		_ = conn.Close()
	}(conn)

	_ = conn.SetDeadline(time.Now().Add(*timeout))

	fmt.Println("Connected successfully!")

	start := time.Now()

	if _, err = conn.Write([]byte(request)); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Failed to send request: %s\n", err)

		os.Exit(1)
	}

	response, err := io.ReadAll(bufio.NewReader(conn))
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error while reading response: %s\n", err)

		os.Exit(1)
	}

	fmt.Printf("Received response after %s:\n%s\n", time.Since(start).Round(time.Millisecond), response)
}
