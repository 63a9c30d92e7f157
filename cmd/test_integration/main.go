package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/tidwall/gjson"
)

func main() {
	baseURL := os.Getenv("UPSAMPLER_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	// Wait for server to start
	time.Sleep(2 * time.Second)

	fmt.Println("Starting Integration Test...")

	fmt.Println("1. Health...")
	if _, ok := sendRequest(baseURL, "GET", "/healthz", nil); !ok {
		fmt.Println("FAILED: Health")
		os.Exit(1)
	}
	fmt.Println("PASSED: Health")

	fmt.Println("2. Upsampling...")
	body, ok := sendRequest(baseURL, "POST", "/upsample", map[string]any{"base_prompt": "A frog"})
	if !ok || gjson.GetBytes(body, "final_caption").String() == "" {
		fmt.Println("FAILED: Upsample")
		os.Exit(1)
	}
	fmt.Printf("PASSED: Upsample (%d candidates)\n", gjson.GetBytes(body, "candidates").Int())

	fmt.Println("3. Validating...")
	body, ok = sendRequest(baseURL, "POST", "/validate", map[string]any{
		"base_prompt": "A frog",
		"params":      map[string]any{"num_inference_steps": 20, "image_size": 512},
	})
	if !ok {
		fmt.Println("FAILED: Validate")
		os.Exit(1)
	}
	for _, side := range []string{"plain", "upsampled"} {
		r := gjson.GetBytes(body, side)
		if msg := r.Get("error").String(); msg != "" {
			fmt.Printf("FAILED: Validate %s: %s\n", side, msg)
			os.Exit(1)
		}
		fmt.Printf("  %s score: %.3f\n", side, r.Get("judgement.score").Float())
	}
	fmt.Println("PASSED: Validate")
}

func sendRequest(baseURL, method, endpoint string, payload any) ([]byte, bool) {
	var body io.Reader
	if payload != nil {
		jsonBytes, _ := json.Marshal(payload)
		body = bytes.NewBuffer(jsonBytes)
	}

	req, err := http.NewRequest(method, baseURL+endpoint, body)
	if err != nil {
		fmt.Printf("Error creating request: %v\n", err)
		return nil, false
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 10 * time.Minute}
	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("Error sending request: %v\n", err)
		return nil, false
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		fmt.Printf("Request failed with status %d: %s\n", resp.StatusCode, string(respBody))
		return nil, false
	}
	return respBody, true
}
