package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wolfman30/survey-assistant/internal/survey"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisStoreRoundTrip(t *testing.T) {
	_, client := newTestRedis(t)
	store := NewRedisStore(client, time.Hour, nil)
	ctx := context.Background()

	got, err := store.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Nil(t, got)

	now := time.Now().UTC().Truncate(time.Second)
	sess := New("abc", now)
	sess.Stage = StageInSurvey
	sess.CurrentQuestionID = 3
	sess.Answers[1] = "Yes"
	sess.Language = survey.Language{Code: "fr", Name: "French"}
	sess.Booking = &BookingOutcome{Provider: "Dr. Michael Chen", StartTime: "09:15:00", Succeeded: true}
	require.NoError(t, store.Put(ctx, sess))

	got, err = store.Get(ctx, "abc")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, StageInSurvey, got.Stage)
	assert.Equal(t, 3, got.CurrentQuestionID)
	assert.Equal(t, map[int]string{1: "Yes"}, got.Answers)
	assert.Equal(t, "French", got.Language.Name)
	assert.True(t, now.Equal(got.CreatedAt))
	require.NotNil(t, got.Booking)
	assert.Equal(t, "Dr. Michael Chen", got.Booking.Provider)

	require.NoError(t, store.Delete(ctx, "abc"))
	got, err = store.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisStoreRefreshesTTL(t *testing.T) {
	mr, client := newTestRedis(t)
	store := NewRedisStore(client, time.Hour, nil)
	ctx := context.Background()

	sess := New("ttl", time.Now())
	require.NoError(t, store.Put(ctx, sess))
	mr.FastForward(50 * time.Minute)
	require.NoError(t, store.Put(ctx, sess))
	mr.FastForward(50 * time.Minute)

	got, err := store.Get(ctx, "ttl")
	require.NoError(t, err)
	assert.NotNil(t, got)

	mr.FastForward(2 * time.Hour)
	got, err = store.Get(ctx, "ttl")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisStoreCorruptPayload(t *testing.T) {
	mr, client := newTestRedis(t)
	store := NewRedisStore(client, time.Hour, nil)
	require.NoError(t, mr.Set("session:bad", "{not json"))

	_, err := store.Get(context.Background(), "bad")
	assert.Error(t, err)
}

func TestRedisStoreRejectsMissingID(t *testing.T) {
	_, client := newTestRedis(t)
	store := NewRedisStore(client, 0, nil)
	assert.Error(t, store.Put(context.Background(), &Session{}))
}
