package cache

import (
	"context"
	"encoding/json"
	"log"

	"github.com/redis/go-redis/v9"
)

const (
	CartEventUpdated = "updated"
	CartEventCleared = "cleared"
)

// CartEvent est publié sur cart:<userID> à chaque mutation du panier.
type CartEvent struct {
	Type      string `json:"type"`
	ProductID string `json:"productId,omitempty"`
}

// CartNotifier diffuse les changements de panier entre les instances via Redis Pub/Sub.
type CartNotifier struct {
	client *redis.Client
}

func NewCartNotifier(client *redis.Client) *CartNotifier {
	return &CartNotifier{client: client}
}

func channel(userID string) string {
	return "cart:" + userID
}

func (n *CartNotifier) Publish(ctx context.Context, userID string, event CartEvent) {
	if n == nil || n.client == nil {
		return
	}
	data, _ := json.Marshal(event)
	if err := n.client.Publish(ctx, channel(userID), data).Err(); err != nil {
		log.Printf("⚠️ Publication panier échouée pour %s: %v", userID, err)
	}
}

// Subscribe renvoie le flux d'événements du panier de l'utilisateur; l'appelant
// doit fermer le PubSub.
func (n *CartNotifier) Subscribe(ctx context.Context, userID string) *redis.PubSub {
	return n.client.Subscribe(ctx, channel(userID))
}

func DecodeCartEvent(payload string) (CartEvent, error) {
	var ev CartEvent
	err := json.Unmarshal([]byte(payload), &ev)
	return ev, err
}
