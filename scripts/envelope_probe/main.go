// Command envelope_probe reports which response envelope each upstream list
// endpoint uses. The remote API mixes bare arrays, {"data": [...]} wrappers
// and keyed arrays per endpoint; this probe documents the live behaviour so
// regressions in the remote contract are caught before users hit them.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

var defaultPaths = []string{
	"/students",
	"/classes",
	"/majors",
	"/subjects",
	"/teacher-classes",
	"/scores",
}

type probe struct {
	Path     string
	Status   int
	Shape    string
	Duration time.Duration
	Err      error
}

func main() {
	var (
		base    string
		token   string
		timeout time.Duration
	)

	flag.StringVar(&base, "base", "https://nilai.vortech.my.id/api", "Upstream API base URL")
	flag.StringVar(&token, "token", os.Getenv("UPSTREAM_TOKEN"), "Bearer token for authenticated endpoints")
	flag.DurationVar(&timeout, "timeout", 10*time.Second, "HTTP client timeout")
	flag.Parse()

	paths := flag.Args()
	if len(paths) == 0 {
		paths = defaultPaths
	}

	client := &http.Client{Timeout: timeout}

	failures := 0
	fmt.Println("Upstream Envelope Report")
	fmt.Println("========================")
	for _, path := range paths {
		result := probePath(client, base, token, path)
		if result.Err != nil {
			failures++
			fmt.Printf("[ERROR] GET %s: %v\n", result.Path, result.Err)
			continue
		}
		fmt.Printf("[%d] GET %s -> %s (%s)\n", result.Status, result.Path, result.Shape, result.Duration)
	}

	if failures > 0 {
		os.Exit(1)
	}
}

func probePath(client *http.Client, base, token, path string) probe {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	result := probe{Path: path}

	req, err := http.NewRequest(http.MethodGet, strings.TrimRight(base, "/")+path, nil)
	if err != nil {
		result.Err = err
		return result
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := client.Do(req)
	result.Duration = time.Since(start)
	if err != nil {
		result.Err = err
		return result
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		result.Err = fmt.Errorf("read body: %w", err)
		return result
	}

	result.Status = resp.StatusCode
	result.Shape = classify(body)
	return result
}

// classify names the envelope shape the way the gateway's normalizer sees it.
func classify(body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return "empty body"
	}
	if trimmed[0] == '[' {
		return "bare array"
	}
	if trimmed[0] != '{' {
		return "not JSON"
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return "malformed JSON"
	}

	if data, ok := envelope["data"]; ok && startsWith(data, '[') {
		return "data envelope"
	}

	arrayKeys := make([]string, 0, 1)
	for key, value := range envelope {
		if startsWith(value, '[') {
			arrayKeys = append(arrayKeys, key)
		}
	}
	switch len(arrayKeys) {
	case 0:
		return "object, no arrays"
	case 1:
		return fmt.Sprintf("keyed array (%q)", arrayKeys[0])
	default:
		return fmt.Sprintf("ambiguous, %d array keys", len(arrayKeys))
	}
}

func startsWith(raw json.RawMessage, b byte) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == b
}
