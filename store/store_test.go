package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vmihailenco/msgpack/v5"
)

func TestAsDirectAssertion(t *testing.T) {
	got, err := As[string]("hello")
	assert.NoError(t, err)
	assert.Equal(t, "hello", got)

	m, err := As[map[string]int](map[string]int{"a": 1})
	assert.NoError(t, err)
	assert.Equal(t, map[string]int{"a": 1}, m)
}

func TestAsDecodesBytes(t *testing.T) {
	data, err := msgpack.Marshal(map[string]string{"name": "David"})
	assert.NoError(t, err)

	got, err := As[map[string]string](data)
	assert.NoError(t, err)
	assert.Equal(t, map[string]string{"name": "David"}, got)
}

func TestAsConversionFailure(t *testing.T) {
	_, err := As[int]("not an int")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "cannot convert")
}

func TestAsBadBytes(t *testing.T) {
	_, err := As[map[string]string]([]byte{0xc1}) // reserved msgpack byte
	assert.Error(t, err)
}
