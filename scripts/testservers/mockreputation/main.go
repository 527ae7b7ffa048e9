// Command mockreputation serves a local stand-in for the reputation ranking
// API so repstress can be exercised without touching the real service.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"hash/fnv"
	"log"
	"net/http"
	"strings"
	"time"
)

func main() {
	port := flag.Int("port", 8089, "Listening port")
	latency := flag.Duration("latency", 0, "Artificial latency per request")
	errRate := flag.Int("error-rate", 0, "Percent of requests answered with HTTP 500")
	flag.Parse()

	mux := http.NewServeMux()
	mux.HandleFunc("/rest/Reputation+API/1.0.0/domain/ranking/", func(w http.ResponseWriter, r *http.Request) {
		if *latency > 0 {
			time.Sleep(*latency)
		}

		domain := strings.TrimPrefix(r.URL.Path, "/rest/Reputation+API/1.0.0/domain/ranking/")
		if domain == "" {
			http.Error(w, "missing domain", http.StatusNotFound)
			return
		}

		h := fnv.New32a()
		_, _ = h.Write([]byte(domain))
		if *errRate > 0 && int(h.Sum32()%100) < *errRate {
			http.Error(w, "simulated upstream failure", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"domain":  domain,
			"ranking": int(h.Sum32() % 1000),
			"source":  "mockreputation",
		})
	})

	addr := fmt.Sprintf(":%d", *port)
	log.Printf("mock reputation API listening on %s", addr)
	log.Fatal(http.ListenAndServe(addr, mux))
}
