// Package database ouvre les connexions aux backends. MongoDB est obligatoire
// (sauf MONGO_URI=memory://); Redis, Elasticsearch, MinIO, ScyllaDB et Kafka
// sont optionnels et désactivés avec un avertissement s'ils ne répondent pas.
package database

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"furniro_back_end/internal/audit"
	"furniro_back_end/internal/cache"
	"furniro_back_end/internal/config"
	"furniro_back_end/internal/events"
	"furniro_back_end/internal/repository"
	"furniro_back_end/internal/repository/memory"
	"furniro_back_end/internal/search"
	"furniro_back_end/internal/storage"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

const MemoryURI = "memory://"

// Backends regroupe les connexions ouvertes; les champs optionnels restent nil.
type Backends struct {
	Repos  *repository.Repositories
	Mongo  *mongo.Database
	Redis  *redis.Client
	Search *search.ProductIndex
	Images *storage.ImageStore
	Audit  audit.Logger
	Events events.Publisher

	// AuditReader n'est renseigné que si ScyllaDB est connecté.
	AuditReader audit.Reader
}

// Connect ouvre tous les backends configurés.
func Connect(ctx context.Context, cfg *config.Config) (*Backends, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	b := &Backends{Audit: audit.LogLogger{}, Events: events.NopPublisher{}}

	// 1. MongoDB
	if err := b.connectMongo(ctx, cfg); err != nil {
		return nil, err
	}

	// 2. Redis
	if client, err := cache.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB); err != nil {
		log.Printf("⚠️ Redis désactivé (cache, rate limiting, websocket panier): %v", err)
	} else {
		b.Redis = client
	}

	// 3. Elasticsearch
	if cfg.ElasticURL == "" {
		log.Println("⚠️ ELASTICSEARCH_URL non configuré, recherche via MongoDB")
	} else if client, err := search.Connect(cfg.ElasticURL, cfg.ElasticUser, cfg.ElasticPassword); err != nil {
		log.Printf("⚠️ Elasticsearch désactivé: %v", err)
	} else {
		idx := search.NewProductIndex(client, search.DefaultIndex)
		if err := idx.EnsureIndex(ctx); err != nil {
			log.Printf("⚠️ Elasticsearch désactivé: %v", err)
		} else {
			b.Search = idx
		}
	}

	// 4. MinIO
	if cfg.MinIOEndpoint == "" {
		log.Println("⚠️ MINIO_ENDPOINT non configuré, upload d'images désactivé")
	} else if store, err := storage.NewImageStore(ctx, storage.Config{
		Endpoint:  cfg.MinIOEndpoint,
		AccessKey: cfg.MinIOAccessKey,
		SecretKey: cfg.MinIOSecretKey,
		Bucket:    cfg.MinIOBucket,
		UseSSL:    cfg.MinIOUseSSL,
	}); err != nil {
		log.Printf("⚠️ MinIO désactivé: %v", err)
	} else {
		b.Images = store
	}

	// 5. ScyllaDB (journal d'audit)
	if len(cfg.ScyllaHosts) == 0 {
		log.Println("⚠️ SCYLLA_HOSTS non configuré, audit écrit dans les logs")
	} else if session, err := audit.Connect(audit.ScyllaConfig{
		Hosts:    cfg.ScyllaHosts,
		Keyspace: cfg.ScyllaKeyspace,
		Username: cfg.ScyllaUser,
		Password: cfg.ScyllaPassword,
		CAPath:   cfg.ScyllaCAPath,
	}); err != nil {
		log.Printf("⚠️ ScyllaDB désactivé: %v", err)
	} else {
		logger := audit.NewScyllaLogger(session)
		b.Audit, b.AuditReader = logger, logger
	}

	// 6. Kafka
	if len(cfg.KafkaBrokers) == 0 {
		log.Println("⚠️ KAFKA_BROKERS non configuré, événements de commande non publiés")
	} else {
		b.Events = events.NewKafkaPublisher(cfg.KafkaOrderTopic, cfg.KafkaBrokers...)
	}

	log.Println("✅ Connexions aux bases de données terminées")
	return b, nil
}

func (b *Backends) connectMongo(ctx context.Context, cfg *config.Config) error {
	if strings.HasPrefix(cfg.MongoURI, MemoryURI) {
		log.Println("⚠️ MONGO_URI=memory://, données en mémoire (perdues à l'arrêt)")
		b.Repos = memory.NewRepositories()
		return nil
	}

	db, err := repository.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		return err
	}
	if err := repository.CreateIndexes(ctx, db); err != nil {
		return fmt.Errorf("index MongoDB: %w", err)
	}
	log.Printf("✅ Connecté à MongoDB (%s)", cfg.MongoDB)
	b.Mongo = db
	b.Repos = repository.NewMongoRepositories(db)
	return nil
}

// Close ferme les connexions dans l'ordre inverse de leur ouverture.
func (b *Backends) Close(ctx context.Context) {
	if err := b.Events.Close(); err != nil {
		log.Printf("❌ Fermeture Kafka: %v", err)
	}
	b.Audit.Close()
	if b.Redis != nil {
		if err := b.Redis.Close(); err != nil {
			log.Printf("❌ Fermeture Redis: %v", err)
		}
	}
	if b.Mongo != nil {
		if err := b.Mongo.Client().Disconnect(ctx); err != nil {
			log.Printf("❌ Fermeture MongoDB: %v", err)
		}
	}
	log.Println("🔌 Connexions fermées")
}
