package driver

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisDriver_GetHit(t *testing.T) {
	client, mock := redismock.NewClientMock()
	d := NewRedisDriver(client)

	mock.ExpectGet("k").SetVal("v")

	value, ok, err := d.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), value)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisDriver_GetMiss(t *testing.T) {
	client, mock := redismock.NewClientMock()
	d := NewRedisDriver(client)

	mock.ExpectGet("k").RedisNil()

	_, ok, err := d.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisDriver_Pull(t *testing.T) {
	client, mock := redismock.NewClientMock()
	d := NewRedisDriver(client)

	mock.ExpectGetDel("k").SetVal("v")

	value, ok, err := d.Pull(context.Background(), "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), value)
}

func TestRedisDriver_Set(t *testing.T) {
	client, mock := redismock.NewClientMock()
	d := NewRedisDriver(client)

	mock.ExpectSet("k", []byte("v"), time.Minute).SetVal("OK")

	err := d.Set(context.Background(), "k", []byte("v"), time.Minute)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisDriver_Has(t *testing.T) {
	client, mock := redismock.NewClientMock()
	d := NewRedisDriver(client)

	mock.ExpectExists("k").SetVal(1)

	has, err := d.Has(context.Background(), "k")
	require.NoError(t, err)
	assert.True(t, has)
}

func TestRedisDriver_Delete(t *testing.T) {
	client, mock := redismock.NewClientMock()
	d := NewRedisDriver(client)

	mock.ExpectDel("k").SetVal(1)

	ok, err := d.Delete(context.Background(), "k")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisDriver_DeleteManyEmptyIsNoop(t *testing.T) {
	client, _ := redismock.NewClientMock()
	d := NewRedisDriver(client)

	ok, err := d.DeleteMany(context.Background(), nil)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisDriver_Clear(t *testing.T) {
	client, mock := redismock.NewClientMock()
	d := NewRedisDriver(client)

	mock.ExpectFlushDB().SetVal("OK")

	err := d.Clear(context.Background())
	require.NoError(t, err)
}

func TestRedisDriver_NamespacePrefixesKeys(t *testing.T) {
	client, mock := redismock.NewClientMock()
	d := NewRedisDriver(client)
	ns := d.Namespace("session:")

	mock.ExpectGet("session:k").SetVal("v")

	value, ok, err := ns.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), value)
}
