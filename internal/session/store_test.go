package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"sportshop-be/internal/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*RedisStore, *miniredis.Miniredis, *redis.Client) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisStore(client), mr, client
}

func TestRedisStore_CommitAndFind(t *testing.T) {
	store, mr, _ := setupTestRedis(t)

	err := store.Commit("tok", []byte("payload"), time.Now().Add(time.Hour))
	require.NoError(t, err)

	b, found, err := store.Find("tok")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []byte("payload"), b)

	ttl := mr.TTL(keyPrefix + "tok")
	assert.Greater(t, ttl, 59*time.Minute)
}

func TestRedisStore_FindMissing(t *testing.T) {
	store, _, _ := setupTestRedis(t)

	b, found, err := store.Find("missing")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, b)
}

func TestRedisStore_Expiry(t *testing.T) {
	store, mr, _ := setupTestRedis(t)

	require.NoError(t, store.Commit("tok", []byte("x"), time.Now().Add(time.Minute)))
	mr.FastForward(2 * time.Minute)

	_, found, err := store.Find("tok")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisStore_CommitPastExpiryDeletes(t *testing.T) {
	store, mr, _ := setupTestRedis(t)

	mr.Set(keyPrefix+"tok", "old")
	require.NoError(t, store.Commit("tok", []byte("new"), time.Now().Add(-time.Second)))
	assert.False(t, mr.Exists(keyPrefix+"tok"))
}

func TestRedisStore_Delete(t *testing.T) {
	store, mr, _ := setupTestRedis(t)

	require.NoError(t, store.Commit("tok", []byte("x"), time.Now().Add(time.Hour)))
	require.NoError(t, store.Delete("tok"))
	assert.False(t, mr.Exists(keyPrefix+"tok"))
}

func TestRedisStore_ConnectionError(t *testing.T) {
	store, mr, _ := setupTestRedis(t)
	mr.Close()

	_, _, err := store.FindCtx(context.Background(), "tok")
	assert.Error(t, err)
}

func TestNewRedisClient_Unconfigured(t *testing.T) {
	client, err := NewRedisClient(context.Background(), &config.Config{})
	require.NoError(t, err)
	assert.Nil(t, client)
}

func TestNewRedisClient_Ping(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewRedisClient(context.Background(), &config.Config{RedisAddr: mr.Addr()})
	require.NoError(t, err)
	require.NotNil(t, client)
	client.Close()
}

func TestNewManager_RoundTripsThroughRedis(t *testing.T) {
	_, mr, client := setupTestRedis(t)
	sm := NewManager(&config.Config{SessionLifetime: time.Hour}, client)

	put := sm.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sm.Put(r.Context(), "greeting", "hello")
	}))
	get := sm.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(sm.GetString(r.Context(), "greeting")))
	}))

	rec := httptest.NewRecorder()
	put.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, CookieName, cookies[0].Name)
	assert.Len(t, mr.Keys(), 1)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	get.ServeHTTP(rec, req)
	assert.Equal(t, "hello", rec.Body.String())
}
