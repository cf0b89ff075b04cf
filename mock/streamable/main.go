// Mock of the hosted video lookup API for local pipeline runs. Videos come
// from the embedded data.json; the def456 entry deliberately omits the
// explicit expires field so the signed-URL fallback path gets exercised.
package main

import (
	_ "embed"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"
)

//go:embed data.json
var jsonData []byte

func main() {
	videos := map[string]json.RawMessage{}
	if err := json.Unmarshal(jsonData, &videos); err != nil {
		log.Fatalf("[Streamable] bad data.json: %v", err)
	}

	http.HandleFunc("/videos/", func(w http.ResponseWriter, r *http.Request) {
		// Simulate network latency (50-200ms)
		time.Sleep(time.Duration(50+time.Now().UnixNano()%150) * time.Millisecond)

		id := strings.TrimPrefix(r.URL.Path, "/videos/")
		payload, ok := videos[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			log.Printf("[Streamable] %s %s - 404 Not Found", r.Method, r.URL.Path)

			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(payload); err != nil {
			log.Printf("[Streamable] Write error: %v", err)
		}

		log.Printf("[Streamable] %s %s - 200 OK", r.Method, r.URL.Path)
	})

	http.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(`{"status":"healthy"}`)); err != nil {
			log.Printf("[Streamable] Health write error: %v", err)
		}
	})

	log.Println("Mock Streamable API running on :8081")
	server := &http.Server{
		Addr:         ":8081",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	log.Fatal(server.ListenAndServe())
}
