package audit

import (
	"context"
	"errors"
	"sync"
	"testing"

	"furniro_back_end/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu      sync.Mutex
	entries []models.AuditLog
}

func (r *recorder) Log(_ context.Context, e models.AuditLog) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
}

func (r *recorder) Close() {}

func TestRecord_UsesRequestMeta(t *testing.T) {
	rec := &recorder{}
	ctx := WithMeta(context.Background(), Meta{UserID: "u1", Email: "a@b.c", IPAddress: "10.0.0.1", UserAgent: "curl"})

	Record(ctx, rec, models.ActionOrderStatus, models.ResourceOrder, "o1", map[string]string{"orderStatus": "Shipped"}, nil)

	require.Len(t, rec.entries, 1)
	e := rec.entries[0]
	assert.Equal(t, "u1", e.UserID)
	assert.Equal(t, "10.0.0.1", e.IPAddress)
	assert.True(t, e.Success)
	assert.JSONEq(t, `{"orderStatus":"Shipped"}`, e.NewValue)
	assert.NotZero(t, e.ID)
}

func TestRecord_Failure(t *testing.T) {
	rec := &recorder{}
	Record(context.Background(), rec, models.ActionLogin, models.ResourceUser, "", nil, errors.New("Invalid credentials"))

	require.Len(t, rec.entries, 1)
	assert.False(t, rec.entries[0].Success)
	assert.Equal(t, "Invalid credentials", rec.entries[0].ErrorMsg)
	assert.Empty(t, rec.entries[0].NewValue)
}

func TestRecord_NilLogger(t *testing.T) {
	assert.NotPanics(t, func() {
		Record(context.Background(), nil, models.ActionLogin, models.ResourceUser, "", nil, nil)
	})
}

func TestBuildSelect(t *testing.T) {
	stmt, args := buildSelect(Filter{})
	assert.NotContains(t, stmt, "WHERE")
	assert.NotContains(t, stmt, "ALLOW FILTERING")
	assert.Equal(t, []any{DefaultQueryLimit}, args)

	ok := false
	stmt, args = buildSelect(Filter{Action: models.ActionLogin, Success: &ok, Limit: 9000})
	assert.Contains(t, stmt, "WHERE action = ? AND success = ? LIMIT ? ALLOW FILTERING")
	assert.Equal(t, []any{models.ActionLogin, false, MaxQueryLimit}, args)
}
