package models

import (
	"time"

	"github.com/gocql/gocql"
)

// AuditLog représente un log d'audit pour tracer les actions
type AuditLog struct {
	ID         gocql.UUID `json:"id"`
	UserID     string     `json:"user_id"`
	UserEmail  string     `json:"user_email"`
	Action     string     `json:"action"`
	Resource   string     `json:"resource"`
	ResourceID string     `json:"resource_id,omitempty"`
	NewValue   string     `json:"new_value,omitempty"`
	IPAddress  string     `json:"ip_address"`
	UserAgent  string     `json:"user_agent"`
	Success    bool       `json:"success"`
	ErrorMsg   string     `json:"error_msg,omitempty"`
	Timestamp  time.Time  `json:"timestamp"`
}

// Actions tracées
const (
	ActionLogin          = "auth.login"
	ActionRegister       = "auth.register"
	ActionOAuthLogin     = "auth.oauth_login"
	ActionRoleUpdate     = "user.role_update"
	ActionProductCreate  = "product.create"
	ActionProductUpdate  = "product.update"
	ActionProductDelete  = "product.delete"
	ActionProductImage   = "product.image_upload"
	ActionOrderCreate    = "order.create"
	ActionOrderStatus    = "order.status_update"
	ActionPaymentIntent  = "payment.intent_create"
	ActionPaymentConfirm = "payment.confirm"
)

const (
	ResourceUser    = "user"
	ResourceProduct = "product"
	ResourceOrder   = "order"
	ResourcePayment = "payment"
)
