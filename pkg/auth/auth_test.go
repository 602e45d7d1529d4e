package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatic(t *testing.T) {
	id, ok := Static("u1").UserID()
	assert.True(t, ok)
	assert.Equal(t, "u1", id)

	_, ok = Static("").UserID()
	assert.False(t, ok)
}

func TestSession(t *testing.T) {
	t.Run("starts signed out", func(t *testing.T) {
		s := NewSession()
		_, ok := s.UserID()
		assert.False(t, ok)
	})

	t.Run("sign in and out", func(t *testing.T) {
		s := NewSession()
		s.SignIn("u1")
		id, ok := s.UserID()
		assert.True(t, ok)
		assert.Equal(t, "u1", id)

		s.SignOut()
		_, ok = s.UserID()
		assert.False(t, ok)
	})

	t.Run("listeners see every change", func(t *testing.T) {
		s := NewSession()
		var seen []string
		s.OnChange(func(userID string) { seen = append(seen, userID) })

		s.SignIn("u1")
		s.SignOut()
		s.SignIn("u2")

		assert.Equal(t, []string{"u1", "", "u2"}, seen)
	})
}
