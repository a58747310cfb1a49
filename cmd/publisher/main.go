// Load generator: publishes synthetic order messages to the ingestion topic
// at a controllable rate. Start, stop and inspect it over HTTP.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"
)

type Publisher struct {
	writer    *kafka.Writer
	isRunning atomic.Bool
	wg        sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
	totalSent atomic.Int64
}

type startRequest struct {
	Rate     int    `json:"rate"`
	Duration string `json:"duration"`
}

func NewPublisher(brokers []string, topic string) *Publisher {
	ctx, cancel := context.WithCancel(context.Background())
	return &Publisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: 10 * time.Millisecond,
			BatchSize:    100,
		},
		ctx:    ctx,
		cancel: cancel,
	}
}

func (p *Publisher) Start(rate int, duration time.Duration) {
	if p.isRunning.Load() {
		return
	}
	p.isRunning.Store(true)
	p.totalSent.Store(0)

	log.Printf("publishing: rate=%d msg/s, duration=%v", rate, duration)

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer p.isRunning.Store(false)

		ticker := time.NewTicker(time.Second / time.Duration(rate))
		defer ticker.Stop()

		timer := time.NewTimer(duration)
		defer timer.Stop()

		for {
			select {
			case <-ticker.C:
				value, err := json.Marshal(fakeOrder())
				if err != nil {
					log.Printf("marshal: %v", err)
					continue
				}
				if err := p.writer.WriteMessages(p.ctx, kafka.Message{
					Value: value,
					Time:  time.Now(),
				}); err != nil {
					log.Printf("write: %v", err)
					continue
				}
				p.totalSent.Add(1)

			case <-timer.C:
				log.Printf("done, total sent: %d", p.totalSent.Load())
				return

			case <-p.ctx.Done():
				log.Printf("stopped, total sent: %d", p.totalSent.Load())
				return
			}
		}
	}()
}

func (p *Publisher) Stop() {
	if p.isRunning.Load() {
		p.cancel()
		p.wg.Wait()
		p.ctx, p.cancel = context.WithCancel(context.Background())
	}
}

func (p *Publisher) Close() {
	p.Stop()
	p.writer.Close()
}

var clients = []string{"Ana", "Bruno", "Carla", "Diego", "Elena", "Fabián", "Gloria"}

func fakeOrder() map[string]interface{} {
	items := make([]map[string]interface{}, 0, 3)
	for i := 0; i < 1+rand.Intn(3); i++ {
		items = append(items, map[string]interface{}{
			"producto_id": int64(1 + rand.Intn(50)),
			"cantidad":    1 + rand.Intn(5),
		})
	}
	return map[string]interface{}{
		"cliente":      fmt.Sprintf("%s %d", clients[rand.Intn(len(clients))], rand.Intn(1000)),
		"fecha_pedido": time.Now().Add(-time.Duration(rand.Intn(72)) * time.Hour).Format(time.RFC3339),
		"productos":    items,
	}
}

func main() {
	brokers := []string{"kafka:9092"}
	if env := os.Getenv("KAFKA_BROKERS"); env != "" {
		brokers = strings.Split(env, ",")
	}
	topic := "pedidos"
	if env := os.Getenv("KAFKA_TOPIC"); env != "" {
		topic = env
	}

	pub := NewPublisher(brokers, topic)
	defer pub.Close()

	http.HandleFunc("/start", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req startRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		if req.Rate <= 0 {
			req.Rate = 10
		}
		duration, err := time.ParseDuration(req.Duration)
		if err != nil {
			http.Error(w, "Invalid duration format: "+err.Error(), http.StatusBadRequest)
			return
		}

		pub.Start(req.Rate, duration)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":   "started",
			"rate":     req.Rate,
			"duration": duration.String(),
		})
	})

	http.HandleFunc("/stop", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		pub.Stop()

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":     "stopped",
			"total_sent": pub.totalSent.Load(),
		})
	})

	http.HandleFunc("/stats", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"is_running": pub.isRunning.Load(),
			"total_sent": pub.totalSent.Load(),
		})
	})

	addr := ":8082"
	if env := os.Getenv("PUBLISHER_PORT"); env != "" {
		addr = ":" + env
	}

	log.Printf("publisher control server on %s", addr)
	log.Fatal(http.ListenAndServe(addr, nil))
}
