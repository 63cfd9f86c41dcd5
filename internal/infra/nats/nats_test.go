package natsclient

import (
	"testing"

	"github.com/sifan077/blt/config"
	"github.com/stretchr/testify/assert"
)

func TestURL(t *testing.T) {
	assert.Equal(t, "nats://localhost:4222", URL(config.NATSConfig{}))
	assert.Equal(t, "nats://broker:4333", URL(config.NATSConfig{Host: "broker", Port: 4333}))
}
