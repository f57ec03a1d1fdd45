package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"partsstore/internal/domain"
	"partsstore/internal/repos"
	"partsstore/internal/services"
)

func TestLoginLogoutPrincipal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	assert.Equal(t, domain.Anonymous(), f.auth.Principal(ctx, ""))
	assert.Equal(t, domain.Anonymous(), f.auth.Principal(ctx, "unknown"))

	_, err := f.auth.Login(ctx, "sid", "dana@partsstore.test", "wrong")
	assert.ErrorIs(t, err, services.ErrBadCreds)
	_, err = f.auth.Login(ctx, "sid", "nobody@partsstore.test", repos.SeedPassword)
	assert.ErrorIs(t, err, services.ErrBadCreds)

	u, err := f.auth.Login(ctx, "sid", "DANA@partsstore.test", repos.SeedPassword)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleDealer, u.Role)

	p := f.auth.Principal(ctx, "sid")
	assert.True(t, p.Authenticated)
	assert.Equal(t, "u-dana", p.UserID)

	require.NoError(t, f.auth.Logout(ctx, "sid"))
	assert.False(t, f.auth.Principal(ctx, "sid").Authenticated)
}
