package core

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAPIKeyService_Create_Success(t *testing.T) {
	db := &mockDB{}
	svc := NewAPIKeyService(db)
	ctx := context.Background()

	var storedHash string
	db.On("Exec", mock.Anything, mock.MatchedBy(func(sql string) bool {
		return strings.Contains(sql, "INSERT INTO api_keys")
	}), mock.MatchedBy(func(args []any) bool {
		storedHash = args[2].(string)
		return true
	})).Return(pgconn.NewCommandTag("INSERT 0 1"), nil)

	key, rawKey, err := svc.Create(ctx, "ops-dashboard")

	require.NoError(t, err)
	assert.Equal(t, "ops-dashboard", key.Name)
	assert.NotEmpty(t, key.ID)
	assert.True(t, strings.HasPrefix(rawKey, "pb_"))

	// The stored value must be the hash, never the raw key.
	hash := sha256.Sum256([]byte(rawKey))
	assert.Equal(t, hex.EncodeToString(hash[:]), storedHash)
	assert.NotEqual(t, rawKey, storedHash)
	db.AssertExpectations(t)
}

func TestAPIKeyService_Create_DBError(t *testing.T) {
	db := &mockDB{}
	svc := NewAPIKeyService(db)

	db.On("Exec", mock.Anything, mock.Anything, mock.Anything).
		Return(pgconn.CommandTag{}, errors.New("connection refused"))

	_, _, err := svc.Create(context.Background(), "ops-dashboard")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert api key")
}

func TestAPIKeyService_Revoke(t *testing.T) {
	db := &mockDB{}
	svc := NewAPIKeyService(db)

	db.On("Exec", mock.Anything, mock.MatchedBy(func(sql string) bool {
		return strings.Contains(sql, "UPDATE api_keys SET revoked_at")
	}), []any{"key-1"}).Return(pgconn.NewCommandTag("UPDATE 1"), nil)

	err := svc.Revoke(context.Background(), "key-1")

	require.NoError(t, err)
	db.AssertExpectations(t)
}
