package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublicViewOmitsDigest(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	acc := NewAccount("a@x.com", "$2a$10$abcdefghijklmnopqrstuv", now)

	view := acc.Public()
	assert.Equal(t, acc.ID.String(), view.ID)
	assert.Equal(t, "a@x.com", view.Email)
	assert.Equal(t, now, view.CreatedAt)
	assert.Equal(t, now, view.UpdatedAt)

	body, err := json.Marshal(view)
	require.NoError(t, err)
	assert.NotContains(t, string(body), "$2a$")
	assert.NotContains(t, string(body), "password")
}

func TestNewAccountGeneratesDistinctIDs(t *testing.T) {
	now := time.Now()
	a := NewAccount("a@x.com", "h", now)
	b := NewAccount("a@x.com", "h", now)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestCredentialsRequestSecret(t *testing.T) {
	cases := map[string]struct {
		body string
		want string
	}{
		"password":           {body: `{"email":"a@x.com","password":"pw123"}`, want: "pw123"},
		"motDePasse":         {body: `{"email":"a@x.com","motDePasse":"pw123"}`, want: "pw123"},
		"password wins":      {body: `{"email":"a@x.com","password":"new","motDePasse":"old"}`, want: "new"},
		"neither is missing": {body: `{"email":"a@x.com"}`, want: ""},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			var req CredentialsRequest
			require.NoError(t, json.Unmarshal([]byte(tc.body), &req))
			assert.Equal(t, tc.want, req.Secret())
		})
	}
}
