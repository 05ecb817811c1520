package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"materiaux-pro/internal/apperr"
	"materiaux-pro/internal/auth"
)

func TestRegisterClientCreatesUserAndProfile(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	user, token, err := env.accounts.RegisterClient(ctx, RegisterClientInput{
		Username:  "alice",
		Email:     "alice@example.com",
		Password:  "secret123",
		FirstName: "Alice",
		LastName:  "Martin",
	})
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.Equal(t, string(auth.RoleClient), user.Role)
	assert.NotEqual(t, "secret123", user.Password)

	client, err := env.store.GetClientByUserID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, client)
	assert.Equal(t, "Alice", client.FirstName)
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.registerClient(t, "alice")

	_, _, err := env.accounts.RegisterClient(ctx, RegisterClientInput{
		Username:  "alice",
		Email:     "fresh@example.com",
		Password:  "secret123",
		FirstName: "A",
		LastName:  "B",
	})
	assert.True(t, apperr.IsConflict(err), "duplicate username: got %v", err)

	_, _, err = env.accounts.RegisterSupplier(ctx, RegisterSupplierInput{
		Username:    "bob",
		Email:       "alice@example.com",
		Password:    "secret123",
		CompanyName: "Bob SARL",
		ContactName: "Bob",
	})
	assert.True(t, apperr.IsConflict(err), "duplicate email: got %v", err)
}

func TestRegisterValidatesInput(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	cases := []struct {
		name  string
		input RegisterClientInput
	}{
		{"missing username", RegisterClientInput{Email: "a@b.com", Password: "secret123", FirstName: "A", LastName: "B"}},
		{"bad email", RegisterClientInput{Username: "u", Email: "nope", Password: "secret123", FirstName: "A", LastName: "B"}},
		{"short password", RegisterClientInput{Username: "u", Email: "a@b.com", Password: "abc", FirstName: "A", LastName: "B"}},
		{"missing names", RegisterClientInput{Username: "u", Email: "a@b.com", Password: "secret123"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := env.accounts.RegisterClient(ctx, tc.input)
			assert.True(t, apperr.IsValidation(err), "got %v", err)
		})
	}
}

func TestLogin(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.registerClient(t, "alice")

	t.Run("correct credentials", func(t *testing.T) {
		user, token, err := env.accounts.Login(ctx, "alice@example.com", "secret123")
		require.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.Equal(t, "alice", user.Username)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, _, err := env.accounts.Login(ctx, "alice@example.com", "wrong")
		assert.True(t, apperr.IsKind(err, apperr.Unauthorized), "got %v", err)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, _, err := env.accounts.Login(ctx, "ghost@example.com", "secret123")
		assert.True(t, apperr.IsKind(err, apperr.Unauthorized), "got %v", err)
	})
}

func TestChangePassword(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	identity := env.registerClient(t, "alice")

	err := env.accounts.ChangePassword(ctx, identity.UserID, "wrong", "newsecret")
	assert.True(t, apperr.IsKind(err, apperr.Unauthorized), "got %v", err)

	require.NoError(t, env.accounts.ChangePassword(ctx, identity.UserID, "secret123", "newsecret"))

	_, _, err = env.accounts.Login(ctx, "alice@example.com", "secret123")
	assert.Error(t, err)
	_, _, err = env.accounts.Login(ctx, "alice@example.com", "newsecret")
	assert.NoError(t, err)
}

func TestUpdateClientProfilePartial(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	identity := env.registerClient(t, "alice")

	phone := "+33 1 23 45 67 89"
	updated, err := env.accounts.UpdateClientProfile(ctx, identity, UpdateClientProfileInput{Phone: &phone})
	require.NoError(t, err)
	assert.Equal(t, "alice", updated.FirstName)
	require.NotNil(t, updated.Phone)
	assert.Equal(t, phone, *updated.Phone)
}

func TestProfileNotFound(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	supplier := env.registerSupplier(t, "bob")

	_, err := env.accounts.ClientProfile(ctx, supplier)
	assert.True(t, apperr.IsNotFound(err), "got %v", err)
}

func TestDeleteUserCascadesProfile(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	identity := env.registerClient(t, "alice")

	require.NoError(t, env.accounts.DeleteUser(ctx, identity.UserID))

	client, err := env.store.GetClientByUserID(ctx, identity.UserID)
	require.NoError(t, err)
	assert.Nil(t, client)

	err = env.accounts.DeleteUser(ctx, identity.UserID)
	assert.True(t, apperr.IsNotFound(err), "got %v", err)
}

func TestDeleteUserCascadesDependents(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	alice := env.registerClient(t, "alice")
	bob := env.registerSupplier(t, "bob")
	brick := env.addProduct(t, bob, "Brick", "0.80", 500)

	order, err := env.orders.CreateOrder(ctx, alice, []LineInput{{ProductID: brick.ID, Quantity: 5}})
	require.NoError(t, err)
	quote, err := env.quotes.CreateQuote(ctx, alice, QuoteInput{
		Lines: []LineInput{{ProductID: brick.ID, Quantity: 2}},
	})
	require.NoError(t, err)
	_, err = env.favorites.Add(ctx, alice, brick.ID)
	require.NoError(t, err)

	aliceProfile, err := env.store.GetClientByUserID(ctx, alice.UserID)
	require.NoError(t, err)

	t.Run("deleting the client removes orders, quotes and favorites", func(t *testing.T) {
		require.NoError(t, env.accounts.DeleteUser(ctx, alice.UserID))

		gone, err := env.store.GetOrder(ctx, order.ID)
		require.NoError(t, err)
		assert.Nil(t, gone)

		goneQuote, err := env.store.GetQuote(ctx, quote.ID)
		require.NoError(t, err)
		assert.Nil(t, goneQuote)

		favorite, err := env.store.GetFavorite(ctx, aliceProfile.ID, brick.ID)
		require.NoError(t, err)
		assert.Nil(t, favorite)
	})

	t.Run("deleting the supplier removes its products and their lines", func(t *testing.T) {
		mallory := env.registerClient(t, "mallory")
		kept, err := env.orders.CreateOrder(ctx, mallory, []LineInput{{ProductID: brick.ID, Quantity: 1}})
		require.NoError(t, err)

		require.NoError(t, env.accounts.DeleteUser(ctx, bob.UserID))

		product, err := env.store.GetProduct(ctx, brick.ID)
		require.NoError(t, err)
		assert.Nil(t, product)

		// mallory's order survives but loses the lines of the deleted product
		loaded, err := env.store.GetOrder(ctx, kept.ID)
		require.NoError(t, err)
		require.NotNil(t, loaded)
		assert.Empty(t, loaded.Lines)
	})
}
