package auth

import (
	"testing"
	"time"

	"chatline/errors"

	"github.com/stretchr/testify/require"
)

func Test_Token_Roundtrip(t *testing.T) {
	req := require.New(t)
	tokens := NewTokenManager("test-secret", time.Hour)

	signed, err := tokens.Generate("u1", "Alice")
	req.NoError(err)

	claims, err := tokens.Validate(signed)
	req.NoError(err)
	req.Equal("u1", claims.UserID)
	req.Equal("Alice", claims.Name)
}

func Test_Token_Wrong_Secret(t *testing.T) {
	req := require.New(t)
	tokens := NewTokenManager("test-secret", time.Hour)
	other := NewTokenManager("another-secret", time.Hour)

	signed, err := tokens.Generate("u1", "Alice")
	req.NoError(err)

	_, err = other.Validate(signed)
	req.ErrorIs(err, errors.ErrInvalidToken)
}

func Test_Token_Expired(t *testing.T) {
	req := require.New(t)
	tokens := NewTokenManager("test-secret", -time.Minute)

	signed, err := tokens.Generate("u1", "Alice")
	req.NoError(err)

	_, err = tokens.Validate(signed)
	req.ErrorIs(err, errors.ErrInvalidToken)
}

func Test_Token_Garbage(t *testing.T) {
	req := require.New(t)
	tokens := NewTokenManager("test-secret", time.Hour)

	_, err := tokens.Validate("definitely.not.a-token")
	req.ErrorIs(err, errors.ErrInvalidToken)
}
