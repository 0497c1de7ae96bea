package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCookieRoundTrip(t *testing.T) {
	codec := NewCookieCodec("secret", time.Hour)

	value, err := codec.Issue("sess-42")
	require.NoError(t, err)

	id, err := codec.Decode(value)
	require.NoError(t, err)
	assert.Equal(t, "sess-42", id)
}

func TestCookieRejectsTampering(t *testing.T) {
	codec := NewCookieCodec("secret", time.Hour)

	value, err := codec.Issue("sess-42")
	require.NoError(t, err)

	_, err = codec.Decode(value + "x")
	assert.Error(t, err)
}

func TestCookieRejectsForeignSecret(t *testing.T) {
	issuer := NewCookieCodec("secret-a", time.Hour)
	verifier := NewCookieCodec("secret-b", time.Hour)

	value, err := issuer.Issue("sess-42")
	require.NoError(t, err)

	_, err = verifier.Decode(value)
	assert.Error(t, err)
}

func TestCookieRejectsGarbage(t *testing.T) {
	codec := NewCookieCodec("secret", time.Hour)
	_, err := codec.Decode("not-a-jwt")
	assert.Error(t, err)
}
