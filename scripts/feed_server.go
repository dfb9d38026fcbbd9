// Package main runs a demo WebSocket fix feed for the agent's ws provider.
// It walks a small loop and publishes one JSON fix per second to every
// connected client. Point the agent at it with FEED_URL=ws://localhost:9090/fixes.
package main

import (
	"log"
	"math"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/websocket"
)

type feedFix struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Speed     float64 `json:"speed"`
	Timestamp string  `json:"timestamp"`
}

var upgrader = websocket.Upgrader{CheckOrigin: func(_ *http.Request) bool { return true }}

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "9090"
	}

	http.HandleFunc("/fixes", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer func() { _ = conn.Close() }()
		log.Printf("feed client connected: %s", r.RemoteAddr)

		ticker := time.NewTicker(1 * time.Second)
		defer ticker.Stop()
		step := 0
		for range ticker.C {
			angle := float64(step) * math.Pi / 30
			fix := feedFix{
				Latitude:  4.6097 + 0.002*math.Sin(angle),
				Longitude: -74.0817 + 0.002*math.Cos(angle),
				Speed:     8.5,
				Timestamp: time.Now().UTC().Format(time.RFC3339),
			}
			if err := conn.WriteJSON(fix); err != nil {
				log.Printf("feed client gone: %v", err)
				return
			}
			step++
		}
	})

	log.Printf("fix feed listening on :%s/fixes", port)
	if err := http.ListenAndServe(":"+port, nil); err != nil {
		log.Fatal(err)
	}
}
