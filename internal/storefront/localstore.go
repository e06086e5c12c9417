package storefront

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"furniro_back_end/internal/models"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// LocalStore persiste l'état client dans un fichier SQLite.
type LocalStore struct {
	db *sql.DB
}

// OpenLocalStore ouvre (ou crée) la base et applique les migrations.
func OpenLocalStore(path string) (*LocalStore, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("ouverture sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, err
	}
	return &LocalStore{db: db}, nil
}

func runMigrations(db *sql.DB) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("source des migrations: %w", err)
	}
	driver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("driver de migration: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("instance de migration: %w", err)
	}
	// m.Close fermerait aussi db
	defer src.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrations: %w", err)
	}
	return nil
}

func (s *LocalStore) Close() error {
	return s.db.Close()
}

func (s *LocalStore) Load(ctx context.Context) (Snapshot, error) {
	var snap Snapshot

	var token, userJSON string
	err := s.db.QueryRowContext(ctx, `SELECT token, user_json FROM session WHERE id = 1`).Scan(&token, &userJSON)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return snap, fmt.Errorf("lecture session: %w", err)
	default:
		session := &Session{Token: token}
		if err := json.Unmarshal([]byte(userJSON), &session.User); err != nil {
			return snap, fmt.Errorf("session illisible: %w", err)
		}
		snap.Session = session
	}

	rows, err := s.db.QueryContext(ctx, `SELECT product_json, quantity FROM cart_items ORDER BY position`)
	if err != nil {
		return snap, fmt.Errorf("lecture panier: %w", err)
	}
	for rows.Next() {
		var raw string
		var entry CartEntry
		if err := rows.Scan(&raw, &entry.Quantity); err != nil {
			rows.Close()
			return snap, err
		}
		if err := json.Unmarshal([]byte(raw), &entry.Product); err != nil {
			log.Printf("⚠️ Produit du panier local ignoré: %v", err)
			continue
		}
		snap.Cart = append(snap.Cart, entry)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return snap, err
	}

	rows, err = s.db.QueryContext(ctx, `SELECT product_json FROM favorites ORDER BY position`)
	if err != nil {
		return snap, fmt.Errorf("lecture favoris: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return snap, err
		}
		var p models.Product
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			log.Printf("⚠️ Favori local ignoré: %v", err)
			continue
		}
		snap.Favorites = append(snap.Favorites, p)
	}
	return snap, rows.Err()
}

func (s *LocalStore) SaveSession(ctx context.Context, session *Session) error {
	if session == nil {
		_, err := s.db.ExecContext(ctx, `DELETE FROM session`)
		return err
	}
	userJSON, err := json.Marshal(session.User)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO session (id, token, user_json, updated_at) VALUES (1, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET token = excluded.token, user_json = excluded.user_json, updated_at = excluded.updated_at`,
		session.Token, string(userJSON), time.Now().UTC().Format(time.RFC3339))
	return err
}

func (s *LocalStore) SaveCart(ctx context.Context, items []CartEntry) error {
	return s.replace(ctx, "cart_items", func(tx *sql.Tx) error {
		for i, item := range items {
			raw, err := json.Marshal(item.Product)
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO cart_items (product_id, product_json, quantity, position) VALUES (?, ?, ?, ?)`,
				item.Product.ID.Hex(), string(raw), item.Quantity, i); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *LocalStore) SaveFavorites(ctx context.Context, products []models.Product) error {
	return s.replace(ctx, "favorites", func(tx *sql.Tx) error {
		for i, p := range products {
			raw, err := json.Marshal(p)
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO favorites (product_id, product_json, position) VALUES (?, ?, ?)`,
				p.ID.Hex(), string(raw), i); err != nil {
				return err
			}
		}
		return nil
	})
}

// replace vide la table puis la remplit dans une même transaction.
func (s *LocalStore) replace(ctx context.Context, table string, fill func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
		return fmt.Errorf("vidage %s: %w", table, err)
	}
	if err := fill(tx); err != nil {
		return fmt.Errorf("écriture %s: %w", table, err)
	}
	return tx.Commit()
}
