package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubscriberHash(t *testing.T) {
	lower := SubscriberHash("ada@example.com")
	mixed := SubscriberHash("Ada@Example.COM")

	assert.Len(t, lower, 32)
	assert.Equal(t, lower, mixed)
	assert.NotEqual(t, lower, SubscriberHash("grace@example.com"))
}

func TestSubscriberHash_KnownValue(t *testing.T) {
	assert.Equal(t, "d41d8cd98f00b204e9800998ecf8427e", SubscriberHash(""))
}
