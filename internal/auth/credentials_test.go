package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCredentials(t *testing.T) {
	creds := NewCredentials("")
	assert.False(t, creds.Present())

	var seen []string
	cancel := creds.Subscribe(func(token string) { seen = append(seen, token) })

	creds.Set("abc")
	creds.Set("abc")
	assert.Equal(t, "abc", creds.Token())
	assert.True(t, creds.Present())

	creds.Clear()
	assert.Empty(t, creds.Token())

	cancel()
	creds.Set("later")

	assert.Equal(t, []string{"abc", ""}, seen)
}

func TestSubscriberCanReadToken(t *testing.T) {
	creds := NewCredentials("a")

	var got string
	creds.Subscribe(func(string) { got = creds.Token() })
	creds.Set("b")

	assert.Equal(t, "b", got)
}
