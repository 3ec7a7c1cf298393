package main

import (
	"net/http"
	"os"
	"strings"
	"time"
)

// Probes the server's /healthz. The target defaults to the local listener
// and follows ARENA_ADDR when set.
func main() {
	addr := os.Getenv("ARENA_ADDR")
	if addr == "" {
		addr = ":5000"
	}
	if strings.HasPrefix(addr, ":") {
		addr = "127.0.0.1" + addr
	}
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get("http://" + addr + "/healthz")
	if err != nil {
		os.Exit(1)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		os.Exit(1)
	}
	os.Exit(0)
}
