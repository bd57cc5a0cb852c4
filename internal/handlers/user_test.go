package handlers

import (
	"net/http"
	"testing"

	"github.com/arafatr/linkup/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newUserFixture(users ...*models.User) (*UserHandler, *fakeUserRepo, *fakeFriendRequestRepo) {
	userRepo := newFakeUserRepo(users...)
	requestRepo := newFakeFriendRequestRepo()
	return NewUserHandler(userRepo, requestRepo), userRepo, requestRepo
}

func TestUpdateMe(t *testing.T) {
	me := &models.User{ID: primitive.NewObjectID(), Name: "Alice", Email: "alice@example.com",
		Privacy: models.DefaultPrivacySettings()}

	t.Run("partial update touches only the sent fields", func(t *testing.T) {
		handler, userRepo, _ := newUserFixture(me)

		body := models.UpdateProfileRequest{
			Bio:     "gopher",
			Privacy: &models.PrivacyRequest{ProfileVisibility: models.VisibilityFriends},
		}
		c, rec := newTestContext(t, http.MethodPatch, "/users/me", body, me.ID)
		require.NoError(t, handler.UpdateMe(c))
		assert.Equal(t, http.StatusOK, rec.Code)

		updated := userRepo.users[me.ID]
		assert.Equal(t, "Alice", updated.Name)
		assert.Equal(t, "gopher", updated.Bio)
		assert.Equal(t, models.VisibilityFriends, updated.Privacy.ProfileVisibility)
		// untouched privacy scopes keep their defaults
		assert.Equal(t, models.VisibilityFriends, updated.Privacy.FriendListVisibility)
	})

	t.Run("empty body is a 400", func(t *testing.T) {
		handler, _, _ := newUserFixture(me)

		c, _ := newTestContext(t, http.MethodPatch, "/users/me", models.UpdateProfileRequest{}, me.ID)
		err := handler.UpdateMe(c)
		assert.Equal(t, http.StatusBadRequest, httpCode(t, err))
	})
}

func TestGetProfile(t *testing.T) {
	owner := &models.User{ID: primitive.NewObjectID(), Name: "Owner", Email: "owner@example.com"}
	friend := &models.User{ID: primitive.NewObjectID(), Name: "Friend", Email: "friend@example.com"}
	stranger := &models.User{ID: primitive.NewObjectID(), Name: "Stranger", Email: "stranger@example.com"}
	owner.Friends = []primitive.ObjectID{friend.ID}

	get := func(t *testing.T, handler *UserHandler, target, viewer primitive.ObjectID) error {
		c, _ := newTestContext(t, http.MethodGet, "/users/"+target.Hex(), nil, viewer)
		c.SetParamNames("id")
		c.SetParamValues(target.Hex())
		return handler.GetProfile(c)
	}

	t.Run("friends-only profile", func(t *testing.T) {
		owner.Privacy = models.PrivacySettings{ProfileVisibility: models.VisibilityFriends}
		handler, _, _ := newUserFixture(owner, friend, stranger)

		assert.NoError(t, get(t, handler, owner.ID, friend.ID))
		assert.Equal(t, http.StatusForbidden, httpCode(t, get(t, handler, owner.ID, stranger.ID)))
	})

	t.Run("private profile is visible only to its owner", func(t *testing.T) {
		owner.Privacy = models.PrivacySettings{ProfileVisibility: models.VisibilityPrivate}
		handler, _, _ := newUserFixture(owner, friend, stranger)

		assert.NoError(t, get(t, handler, owner.ID, owner.ID))
		assert.Equal(t, http.StatusForbidden, httpCode(t, get(t, handler, owner.ID, friend.ID)))
	})

	t.Run("blocked viewers are refused regardless of visibility", func(t *testing.T) {
		owner.Privacy = models.PrivacySettings{ProfileVisibility: models.VisibilityPublic}
		owner.BlockedUsers = []primitive.ObjectID{stranger.ID}
		defer func() { owner.BlockedUsers = nil }()
		handler, _, _ := newUserFixture(owner, friend, stranger)

		assert.Equal(t, http.StatusForbidden, httpCode(t, get(t, handler, owner.ID, stranger.ID)))
	})

	t.Run("unknown user is a 404", func(t *testing.T) {
		handler, _, _ := newUserFixture(owner)

		assert.Equal(t, http.StatusNotFound, httpCode(t, get(t, handler, primitive.NewObjectID(), owner.ID)))
	})
}

func TestSearchUsers(t *testing.T) {
	alice := &models.User{ID: primitive.NewObjectID(), Name: "Alice Rahman", Email: "alice@example.com"}
	bob := &models.User{ID: primitive.NewObjectID(), Name: "Bob Hasan", Email: "bob@example.com"}
	handler, _, _ := newUserFixture(alice, bob)

	c, rec := newTestContext(t, http.MethodGet, "/users/search?searchTerm=alice", nil, bob.ID)
	require.NoError(t, handler.SearchUsers(c))
	var profiles []models.PublicProfile
	decodeBody(t, rec, &profiles)
	require.Len(t, profiles, 1)
	assert.Equal(t, alice.ID, profiles[0].ID)

	c, _ = newTestContext(t, http.MethodGet, "/users/search", nil, bob.ID)
	assert.Equal(t, http.StatusBadRequest, httpCode(t, handler.SearchUsers(c)))
}

func TestGetUserFriends(t *testing.T) {
	owner := &models.User{ID: primitive.NewObjectID(), Name: "Owner", Email: "owner@example.com"}
	friend := &models.User{ID: primitive.NewObjectID(), Name: "Friend", Email: "friend@example.com"}
	stranger := &models.User{ID: primitive.NewObjectID(), Name: "Stranger", Email: "stranger@example.com"}
	owner.Friends = []primitive.ObjectID{friend.ID}
	owner.Privacy = models.PrivacySettings{FriendListVisibility: models.VisibilityFriends}

	handler, _, _ := newUserFixture(owner, friend, stranger)

	get := func(t *testing.T, viewer primitive.ObjectID) (error, *[]models.PublicProfile) {
		c, rec := newTestContext(t, http.MethodGet, "/users/"+owner.ID.Hex()+"/friends", nil, viewer)
		c.SetParamNames("id")
		c.SetParamValues(owner.ID.Hex())
		if err := handler.GetUserFriends(c); err != nil {
			return err, nil
		}
		var profiles []models.PublicProfile
		decodeBody(t, rec, &profiles)
		return nil, &profiles
	}

	err, profiles := get(t, friend.ID)
	require.NoError(t, err)
	require.Len(t, *profiles, 1)
	assert.Equal(t, friend.ID, (*profiles)[0].ID)

	err, _ = get(t, stranger.ID)
	assert.Equal(t, http.StatusForbidden, httpCode(t, err))
}

func TestBlockUser(t *testing.T) {
	alice := &models.User{ID: primitive.NewObjectID(), Name: "Alice", Email: "alice@example.com"}
	bob := &models.User{ID: primitive.NewObjectID(), Name: "Bob", Email: "bob@example.com"}
	alice.Friends = []primitive.ObjectID{bob.ID}
	bob.Friends = []primitive.ObjectID{alice.ID}

	handler, userRepo, requestRepo := newUserFixture(alice, bob)
	require.NoError(t, requestRepo.CreateRequest(nil, &models.FriendRequest{Sender: alice.ID, Receiver: bob.ID}))

	t.Run("blocking severs friendship and request docs", func(t *testing.T) {
		c, rec := newTestContext(t, http.MethodPost, "/users/block/"+bob.ID.Hex(), nil, alice.ID)
		c.SetParamNames("id")
		c.SetParamValues(bob.ID.Hex())
		require.NoError(t, handler.BlockUser(c))
		assert.Equal(t, http.StatusOK, rec.Code)

		assert.True(t, userRepo.users[alice.ID].HasBlocked(bob.ID))
		assert.False(t, userRepo.users[alice.ID].IsFriend(bob.ID))
		assert.False(t, userRepo.users[bob.ID].IsFriend(alice.ID))
		assert.Empty(t, requestRepo.requests)
	})

	t.Run("self-block is a 400", func(t *testing.T) {
		c, _ := newTestContext(t, http.MethodPost, "/users/block/"+alice.ID.Hex(), nil, alice.ID)
		c.SetParamNames("id")
		c.SetParamValues(alice.ID.Hex())
		assert.Equal(t, http.StatusBadRequest, httpCode(t, handler.BlockUser(c)))
	})

	t.Run("unblock restores nothing but the block flag", func(t *testing.T) {
		c, _ := newTestContext(t, http.MethodPost, "/users/unblock/"+bob.ID.Hex(), nil, alice.ID)
		c.SetParamNames("id")
		c.SetParamValues(bob.ID.Hex())
		require.NoError(t, handler.UnblockUser(c))

		assert.False(t, userRepo.users[alice.ID].HasBlocked(bob.ID))
		assert.False(t, userRepo.users[alice.ID].IsFriend(bob.ID))
	})
}
