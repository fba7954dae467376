// Package main implements a standalone demo driver that walks a full order
// through a running orderflow service: it fills a cart over HTTP, starts a
// workflow, sets shipping details, and advances the workflow until it reaches
// a terminal state, printing each transition. Useful for smoke-testing a
// docker-compose stack by hand.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"
)

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

var (
	baseURL   = getEnv("ORDERFLOW_URL", "http://localhost:8010")
	sessionID = getEnv("DEMO_SESSION_ID", fmt.Sprintf("demo-%d", time.Now().Unix()))
	client    = &http.Client{Timeout: 15 * time.Second}
)

func request(method, path string, body any) (map[string]any, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Session-ID", sessionID)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, string(respBody))
	}

	var result map[string]any
	if len(respBody) > 0 {
		if err := json.Unmarshal(respBody, &result); err != nil {
			return nil, fmt.Errorf("decode response: %w", err)
		}
	}
	return result, nil
}

func dataField(resp map[string]any, key string) any {
	data, ok := resp["data"].(map[string]any)
	if !ok {
		return nil
	}
	return data[key]
}

func main() {
	log.Printf("demo session %s against %s", sessionID, baseURL)

	// Fill the cart. The products must exist in the inventory service the
	// orderflow instance is pointed at.
	for _, line := range []map[string]any{
		{"product_id": getEnv("DEMO_PRODUCT_A", "prod-integration-a"), "title": "Demo Album A", "quantity": 2},
		{"product_id": getEnv("DEMO_PRODUCT_B", "prod-integration-b"), "title": "Demo Album B", "quantity": 1},
	} {
		if _, err := request(http.MethodPost, "/api/v1/cart/lines", line); err != nil {
			log.Fatalf("add cart line: %v", err)
		}
		log.Printf("added %v x%v to cart", line["product_id"], line["quantity"])
	}

	// Start the workflow.
	resp, err := request(http.MethodPost, "/api/v1/workflows", nil)
	if err != nil {
		log.Fatalf("start workflow: %v", err)
	}
	workflowID, _ := dataField(resp, "id").(string)
	log.Printf("workflow %s started in state %v", workflowID, dataField(resp, "state"))

	// Reconcile availability.
	resp, err = request(http.MethodPost, "/api/v1/workflows/"+workflowID+"/advance", nil)
	if err != nil {
		log.Fatalf("reconcile: %v", err)
	}
	log.Printf("after reconcile: state=%v message=%v", dataField(resp, "state"), dataField(resp, "message"))

	// Shipping details must be set before the order can be created.
	if _, err := request(http.MethodPut, "/api/v1/workflows/"+workflowID+"/shipping", map[string]any{
		"name":     "Demo Customer",
		"phone":    "+84900000000",
		"province": getEnv("DEMO_PROVINCE", "Hanoi"),
		"address":  "1 Demo Street",
	}); err != nil {
		log.Fatalf("set shipping: %v", err)
	}
	log.Printf("shipping details set")

	// Advance until a terminal state, confirming shipping once the invoice
	// is ready.
	for i := 0; i < 10; i++ {
		resp, err = request(http.MethodPost, "/api/v1/workflows/"+workflowID+"/advance", nil)
		if err != nil {
			log.Fatalf("advance: %v", err)
		}
		state, _ := dataField(resp, "state").(string)
		log.Printf("advance %d: state=%v message=%v order=%v invoice=%v",
			i+1, state, dataField(resp, "message"), dataField(resp, "order_id"), dataField(resp, "invoice_id"))

		switch state {
		case "invoice_ready":
			if _, err := request(http.MethodPost, "/api/v1/workflows/"+workflowID+"/confirm", nil); err != nil {
				log.Fatalf("confirm shipping: %v", err)
			}
			log.Printf("shipping confirmed")
		case "payment_succeeded", "payment_failed", "payment_cancelled":
			log.Printf("workflow finished: %s", state)
			return
		case "cart_review":
			log.Fatalf("cart needs review, aborting: %v", dataField(resp, "message"))
		}
	}

	log.Fatalf("workflow did not reach a terminal state")
}
