package audit

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"furniro_back_end/internal/models"

	"github.com/gocql/gocql"
)

const createAuditTable = `
	CREATE TABLE IF NOT EXISTS audit_logs (
		id timeuuid PRIMARY KEY,
		user_id text,
		user_email text,
		action text,
		resource text,
		resource_id text,
		new_value text,
		ip_address text,
		user_agent text,
		success boolean,
		error_msg text,
		timestamp timestamp
	)`

const insertAudit = `
	INSERT INTO audit_logs (
		id, user_id, user_email, action, resource, resource_id,
		new_value, ip_address, user_agent, success, error_msg, timestamp
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

const selectAudit = `
	SELECT id, user_id, user_email, action, resource, resource_id,
		new_value, ip_address, user_agent, success, error_msg, timestamp
	FROM audit_logs`

// ScyllaConfig regroupe les paramètres de connexion au keyspace d'audit.
type ScyllaConfig struct {
	Hosts    []string
	Keyspace string
	Username string
	Password string
	CAPath   string
	Timeout  time.Duration
}

// Connect ouvre une session sur le keyspace d'audit et crée la table si besoin.
func Connect(cfg ScyllaConfig) (*gocql.Session, error) {
	cluster := gocql.NewCluster(cfg.Hosts...)
	cluster.Keyspace = cfg.Keyspace
	cluster.Consistency = gocql.Quorum
	cluster.Timeout = cfg.Timeout
	if cluster.Timeout == 0 {
		cluster.Timeout = 5 * time.Second
	}
	cluster.NumConns = 4
	cluster.ReconnectInterval = time.Second
	if cfg.Username != "" {
		cluster.Authenticator = gocql.PasswordAuthenticator{
			Username: cfg.Username,
			Password: cfg.Password,
		}
	}
	if cfg.CAPath != "" {
		cluster.SslOpts = &gocql.SslOptions{CaPath: cfg.CAPath}
	}
	cluster.PoolConfig.HostSelectionPolicy = gocql.TokenAwareHostPolicy(gocql.RoundRobinHostPolicy())

	session, err := cluster.CreateSession()
	if err != nil {
		return nil, fmt.Errorf("session ScyllaDB %s: %w", cfg.Keyspace, err)
	}
	if err := session.Query(createAuditTable).Exec(); err != nil {
		session.Close()
		return nil, fmt.Errorf("création table audit_logs: %w", err)
	}
	log.Printf("✅ Session ScyllaDB pour keyspace '%s'", cfg.Keyspace)
	return session, nil
}

// ScyllaLogger écrit les entrées en tâche de fond; une file pleine bascule sur les logs.
type ScyllaLogger struct {
	session  *gocql.Session
	queue    chan models.AuditLog
	fallback LogLogger
	wg       sync.WaitGroup
	once     sync.Once
}

func NewScyllaLogger(session *gocql.Session) *ScyllaLogger {
	l := &ScyllaLogger{session: session, queue: make(chan models.AuditLog, 256)}
	l.wg.Add(1)
	go l.run()
	return l
}

func (l *ScyllaLogger) Log(ctx context.Context, e models.AuditLog) {
	select {
	case l.queue <- e:
	default:
		log.Println("⚠️ File d'audit pleine, entrée écrite dans les logs")
		l.fallback.Log(ctx, e)
	}
}

func (l *ScyllaLogger) run() {
	defer l.wg.Done()
	for e := range l.queue {
		err := l.session.Query(insertAudit,
			e.ID, e.UserID, e.UserEmail, e.Action, e.Resource, e.ResourceID,
			e.NewValue, e.IPAddress, e.UserAgent, e.Success, e.ErrorMsg, e.Timestamp,
		).Exec()
		if err != nil {
			log.Printf("❌ Erreur enregistrement log audit: %v", err)
			l.fallback.Log(context.Background(), e)
		}
	}
}

// Close vide la file puis ferme la session.
func (l *ScyllaLogger) Close() {
	l.once.Do(func() {
		close(l.queue)
		l.wg.Wait()
		l.session.Close()
	})
}

// Query relit les entrées d'audit; les filtres vides sont ignorés.
func (l *ScyllaLogger) Query(ctx context.Context, f Filter) ([]models.AuditLog, error) {
	stmt, args := buildSelect(f)
	iter := l.session.Query(stmt, args...).WithContext(ctx).Iter()

	logs := []models.AuditLog{}
	var e models.AuditLog
	for iter.Scan(&e.ID, &e.UserID, &e.UserEmail, &e.Action, &e.Resource, &e.ResourceID,
		&e.NewValue, &e.IPAddress, &e.UserAgent, &e.Success, &e.ErrorMsg, &e.Timestamp) {
		logs = append(logs, e)
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("lecture audit_logs: %w", err)
	}
	return logs, nil
}

func buildSelect(f Filter) (string, []any) {
	var conds []string
	var args []any
	if f.UserID != "" {
		conds = append(conds, "user_id = ?")
		args = append(args, f.UserID)
	}
	if f.Action != "" {
		conds = append(conds, "action = ?")
		args = append(args, f.Action)
	}
	if f.Resource != "" {
		conds = append(conds, "resource = ?")
		args = append(args, f.Resource)
	}
	if f.ResourceID != "" {
		conds = append(conds, "resource_id = ?")
		args = append(args, f.ResourceID)
	}
	if f.Success != nil {
		conds = append(conds, "success = ?")
		args = append(args, *f.Success)
	}

	stmt := selectAudit
	if len(conds) > 0 {
		stmt += " WHERE " + strings.Join(conds, " AND ")
	}
	stmt += " LIMIT ?"
	args = append(args, f.limit())
	if len(conds) > 0 {
		stmt += " ALLOW FILTERING"
	}
	return stmt, args
}
