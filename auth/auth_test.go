package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"replydesk/errors"
)

func TestHashAndCompare(t *testing.T) {
	req := require.New(t)
	password := "MonMotDePasseTr0pSûr!"

	hash, err := HashPassword(password)
	req.NoError(err)
	req.True(strings.HasPrefix(hash, "$argon2id$"))

	match, err := ComparePassword(password, hash)
	req.NoError(err)
	req.True(match)

	// Test de la comparaison négative (mauvais mot de passe)
	match, err = ComparePassword("MauvaisMDP", hash)
	req.NoError(err)
	req.False(match)

	// A stored value that is not an encoded hash must not verify
	_, err = ComparePassword(password, "plaintext-left-over")
	req.ErrorIs(err, errors.ErrBadCredentials)
}

func TestCredentialsValidation(t *testing.T) {
	req := require.New(t)
	tests := []struct {
		name    string
		creds   Credentials
		wantErr bool
	}{
		{"Valid credentials", Credentials{"dana42", "ComplexPass123!"}, false},
		{"Name too short", Credentials{"da", "ComplexPass123!"}, true},
		{"Name with spaces", Credentials{"not a name", "ComplexPass123!"}, true},
		{"Password too short", Credentials{"dana42", "Short1!"}, true},
		{"Missing digit", Credentials{"dana42", "NoDigitPassword!"}, true},
		{"Missing special char", Credentials{"dana42", "NoSpecialChar123"}, true},
		{"Missing uppercase", Credentials{"dana42", "nouppercase123!"}, true},
		{"Password too long (edge case)", Credentials{"dana42", strings.Repeat("a", 73)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCredentials(tt.creds)
			if tt.wantErr {
				req.Error(err)
			} else {
				req.NoError(err)
			}
		})
	}
}

func TestTokenManager_RoundTrip(t *testing.T) {
	req := require.New(t)
	manager := NewTokenManager("unit-test-secret", time.Hour)

	token, err := manager.Generate("dana", []string{"operator"})
	req.NoError(err)
	req.NotEmpty(token)

	claims, err := manager.Validate(token)
	req.NoError(err)
	req.Equal("dana", claims.Operator)
	req.Equal([]string{"operator"}, claims.Roles)
	req.Equal("replydesk", claims.Issuer)
}

func TestTokenManager_Expired(t *testing.T) {
	req := require.New(t)
	manager := NewTokenManager("unit-test-secret", -time.Minute)

	token, err := manager.Generate("dana", []string{"operator"})
	req.NoError(err)

	_, err = manager.Validate(token)
	req.ErrorIs(err, errors.ErrSessionExpired)
}

func TestTokenManager_WrongSecret(t *testing.T) {
	req := require.New(t)

	token, err := NewTokenManager("secret-a", time.Hour).Generate("dana", nil)
	req.NoError(err)

	_, err = NewTokenManager("secret-b", time.Hour).Validate(token)
	req.ErrorIs(err, errors.ErrSessionExpired)
}

func TestGate(t *testing.T) {
	manager := NewTokenManager("unit-test-secret", time.Hour)

	valid, err := manager.Generate("dana", []string{"operator"})
	require.NoError(t, err)

	expired, err := NewTokenManager("unit-test-secret", -time.Minute).Generate("dana", nil)
	require.NoError(t, err)

	tests := []struct {
		name         string
		gate         *Gate
		command      string
		token        string
		wantOperator string
		wantErr      error
	}{
		{
			name:    "open gate lets everything through",
			gate:    NewGate(manager, false),
			command: "next",
		},
		{
			name:    "login is public",
			gate:    NewGate(manager, true),
			command: "login",
		},
		{
			name:    "help is public",
			gate:    NewGate(manager, true),
			command: "help",
		},
		{
			name:    "guarded command without a session",
			gate:    NewGate(manager, true),
			command: "next",
			wantErr: errors.ErrLoginRequired,
		},
		{
			name:         "guarded command with a valid session",
			gate:         NewGate(manager, true),
			command:      "next",
			token:        valid,
			wantOperator: "dana",
		},
		{
			name:    "expired session forces a fresh login",
			gate:    NewGate(manager, true),
			command: "next",
			token:   expired,
			wantErr: errors.ErrLoginRequired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)

			operator, err := tt.gate.Authorize(tt.command, tt.token)
			if tt.wantErr != nil {
				req.ErrorIs(err, tt.wantErr)
				return
			}
			req.NoError(err)
			req.Equal(tt.wantOperator, operator)
		})
	}
}

// BenchmarkHashPassword permet de mesurer l'impact CPU/RAM (Crucial pour K8s)
func BenchmarkHashPassword(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _ = HashPassword("A-very-long-and-complex-password-for-bench-123!")
	}
}
