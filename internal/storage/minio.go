// Package storage range les images produit dans MinIO.
package storage

import (
	"context"
	"fmt"
	"io"
	"log"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type ImageStore struct {
	client  *minio.Client
	bucket  string
	baseURL string
}

// NewImageStore se connecte à MinIO et crée le bucket s'il n'existe pas.
func NewImageStore(ctx context.Context, cfg Config) (*ImageStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("connexion MinIO: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("vérification bucket MinIO: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("création bucket MinIO: %w", err)
		}
		log.Println("🪣 Bucket créé :", cfg.Bucket)
	} else {
		log.Println("🪣 Bucket MinIO déjà présent :", cfg.Bucket)
	}

	log.Println("✅ Connecté à MinIO :", cfg.Endpoint)
	return &ImageStore{client: client, bucket: cfg.Bucket, baseURL: publicBaseURL(cfg)}, nil
}

// Upload envoie l'image et renvoie son URL publique.
func (s *ImageStore) Upload(ctx context.Context, productID, filename string, r io.Reader, size int64, contentType string) (string, error) {
	object := ObjectName(productID, filename)
	_, err := s.client.PutObject(ctx, s.bucket, object, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", object, err)
	}
	return s.baseURL + "/" + object, nil
}

// ObjectName range les images par produit sous un nom unique qui garde l'extension.
func ObjectName(productID, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return "products/" + productID + "/" + uuid.NewString() + ext
}

func publicBaseURL(cfg Config) string {
	scheme := "http"
	if cfg.UseSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s", scheme, cfg.Endpoint, cfg.Bucket)
}
