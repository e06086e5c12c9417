package user

import (
	"context"
	"log"
	"net/http"
	"time"

	"furniro_back_end/internal/cache"
	"furniro_back_end/internal/handlers/common"
	"furniro_back_end/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	wsPingInterval = 30 * time.Second
	wsWriteTimeout = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	// Le token est déjà vérifié par AuthRequired; les origines sont filtrées par CORS.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WSGauge suit le nombre de connexions ouvertes.
type WSGauge interface {
	WSConnected(delta float64)
}

// CartSocket pousse le panier à jour à chaque mutation publiée sur Redis.
type CartSocket struct {
	carts    *service.CartService
	notifier *cache.CartNotifier
	gauge    WSGauge
}

func NewCartSocket(carts *service.CartService, notifier *cache.CartNotifier, gauge WSGauge) *CartSocket {
	return &CartSocket{carts: carts, notifier: notifier, gauge: gauge}
}

// 🔵 GET /api/cart/ws
func (h *CartSocket) Serve(c *gin.Context) {
	if h.notifier == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Realtime cart is unavailable"})
		return
	}
	userID := common.UserID(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("❌ Erreur upgrade WebSocket: %v", err)
		return
	}
	defer conn.Close()

	if h.gauge != nil {
		h.gauge.WSConnected(1)
		defer h.gauge.WSConnected(-1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pubsub := h.notifier.Subscribe(ctx, userID)
	defer pubsub.Close()
	if _, err := pubsub.Receive(ctx); err != nil {
		log.Printf("❌ Abonnement panier %s: %v", userID, err)
		return
	}
	ch := pubsub.Channel()

	// Lecture en tâche de fond pour détecter la fermeture côté client.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := h.write(conn, gin.H{"type": "connected", "message": "Cart sync enabled"}); err != nil {
		return
	}

	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			ev, err := cache.DecodeCartEvent(msg.Payload)
			if err != nil {
				log.Printf("⚠️ Événement panier illisible: %v", err)
				continue
			}
			view, err := h.carts.Get(ctx, userID)
			if err != nil {
				log.Printf("⚠️ Lecture panier %s: %v", userID, err)
				continue
			}
			if err := h.write(conn, gin.H{"type": "cart_updated", "event": ev.Type, "cart": view}); err != nil {
				log.Printf("❌ Erreur envoi WebSocket: %v", err)
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *CartSocket) write(conn *websocket.Conn, v any) error {
	conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return conn.WriteJSON(v)
}
