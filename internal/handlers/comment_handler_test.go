package handlers

import (
	"net/http"
	"testing"

	"github.com/arafatr/linkup/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type commentFixture struct {
	handler          *CommentHandler
	userRepo         *fakeUserRepo
	postRepo         *fakePostRepo
	commentRepo      *fakeCommentRepo
	reactionRepo     *fakeReactionRepo
	notificationRepo *fakeNotificationRepo
}

func newCommentFixture(users ...*models.User) *commentFixture {
	f := &commentFixture{
		userRepo:         newFakeUserRepo(users...),
		postRepo:         newFakePostRepo(),
		commentRepo:      newFakeCommentRepo(),
		reactionRepo:     newFakeReactionRepo(),
		notificationRepo: newFakeNotificationRepo(),
	}
	f.handler = NewCommentHandler(f.commentRepo, f.postRepo, f.userRepo, f.reactionRepo,
		NewNotifier(f.notificationRepo, nil))
	return f
}

func (f *commentFixture) comment(t *testing.T, postID primitive.ObjectID, userID primitive.ObjectID, body models.CreateCommentRequest) (*models.Comment, error) {
	t.Helper()
	c, rec := newTestContext(t, http.MethodPost, "/comments/post/"+postID.Hex(), body, userID)
	c.SetParamNames("postId")
	c.SetParamValues(postID.Hex())
	if err := f.handler.CreateComment(c); err != nil {
		return nil, err
	}
	var out models.Comment
	decodeBody(t, rec, &out)
	return &out, nil
}

func TestCreateComment(t *testing.T) {
	author := &models.User{ID: primitive.NewObjectID(), Name: "Author", Email: "author@example.com"}
	commenter := &models.User{ID: primitive.NewObjectID(), Name: "Commenter", Email: "commenter@example.com"}

	seedPost := func(t *testing.T, f *commentFixture) *models.Post {
		post := &models.Post{Author: author.ID, Content: "hello", Type: models.PostTypeText, Visibility: models.VisibilityPublic}
		require.NoError(t, f.postRepo.CreatePost(nil, post))
		return post
	}

	t.Run("comment bumps the post counter and notifies the post author", func(t *testing.T) {
		f := newCommentFixture(author, commenter)
		post := seedPost(t, f)

		comment, err := f.comment(t, post.ID, commenter.ID, models.CreateCommentRequest{Content: "nice"})
		require.NoError(t, err)
		assert.Nil(t, comment.ParentComment)
		assert.Equal(t, 1, f.postRepo.posts[post.ID].CommentsCount)

		require.Len(t, f.notificationRepo.rows, 1)
		assert.Equal(t, models.NotificationComment, f.notificationRepo.rows[0].Type)
		assert.Equal(t, author.ID.Hex(), f.notificationRepo.rows[0].RecipientID)
	})

	t.Run("reply to a reply attaches to the top-level parent", func(t *testing.T) {
		f := newCommentFixture(author, commenter)
		post := seedPost(t, f)

		top, err := f.comment(t, post.ID, author.ID, models.CreateCommentRequest{Content: "top"})
		require.NoError(t, err)
		reply, err := f.comment(t, post.ID, commenter.ID, models.CreateCommentRequest{Content: "reply", ParentComment: top.ID.Hex()})
		require.NoError(t, err)
		nested, err := f.comment(t, post.ID, author.ID, models.CreateCommentRequest{Content: "nested", ParentComment: reply.ID.Hex()})
		require.NoError(t, err)

		require.NotNil(t, reply.ParentComment)
		assert.Equal(t, top.ID, *reply.ParentComment)
		require.NotNil(t, nested.ParentComment)
		assert.Equal(t, top.ID, *nested.ParentComment)
		assert.Equal(t, 2, f.commentRepo.find(top.ID).RepliesCount)
	})

	t.Run("parent from another post is rejected", func(t *testing.T) {
		f := newCommentFixture(author, commenter)
		post := seedPost(t, f)
		otherPost := &models.Post{Author: author.ID, Content: "other", Type: models.PostTypeText, Visibility: models.VisibilityPublic}
		require.NoError(t, f.postRepo.CreatePost(nil, otherPost))
		foreign, err := f.comment(t, otherPost.ID, author.ID, models.CreateCommentRequest{Content: "elsewhere"})
		require.NoError(t, err)

		_, err = f.comment(t, post.ID, commenter.ID, models.CreateCommentRequest{Content: "reply", ParentComment: foreign.ID.Hex()})
		assert.Equal(t, http.StatusBadRequest, httpCode(t, err))
	})

	t.Run("unknown post is a 404", func(t *testing.T) {
		f := newCommentFixture(author, commenter)

		_, err := f.comment(t, primitive.NewObjectID(), commenter.ID, models.CreateCommentRequest{Content: "lost"})
		assert.Equal(t, http.StatusNotFound, httpCode(t, err))
	})
}

func TestDeleteComment(t *testing.T) {
	author := &models.User{ID: primitive.NewObjectID(), Name: "Author", Email: "author@example.com"}
	commenter := &models.User{ID: primitive.NewObjectID(), Name: "Commenter", Email: "commenter@example.com"}
	stranger := &models.User{ID: primitive.NewObjectID(), Name: "Stranger", Email: "stranger@example.com"}

	del := func(t *testing.T, f *commentFixture, commentID, userID primitive.ObjectID) error {
		c, _ := newTestContext(t, http.MethodDelete, "/comments/"+commentID.Hex(), nil, userID)
		c.SetParamNames("id")
		c.SetParamValues(commentID.Hex())
		return f.handler.DeleteComment(c)
	}

	t.Run("deleting a comment takes its replies with it", func(t *testing.T) {
		f := newCommentFixture(author, commenter)
		post := &models.Post{Author: author.ID, Content: "hello", Type: models.PostTypeText, Visibility: models.VisibilityPublic}
		require.NoError(t, f.postRepo.CreatePost(nil, post))

		top, err := f.comment(t, post.ID, commenter.ID, models.CreateCommentRequest{Content: "top"})
		require.NoError(t, err)
		_, err = f.comment(t, post.ID, author.ID, models.CreateCommentRequest{Content: "reply", ParentComment: top.ID.Hex()})
		require.NoError(t, err)
		require.Equal(t, 2, f.postRepo.posts[post.ID].CommentsCount)

		require.NoError(t, del(t, f, top.ID, commenter.ID))
		assert.Empty(t, f.commentRepo.comments)
		assert.Equal(t, 0, f.postRepo.posts[post.ID].CommentsCount)
	})

	t.Run("post author may delete a stranger's comment", func(t *testing.T) {
		f := newCommentFixture(author, commenter, stranger)
		post := &models.Post{Author: author.ID, Content: "hello", Type: models.PostTypeText, Visibility: models.VisibilityPublic}
		require.NoError(t, f.postRepo.CreatePost(nil, post))
		comment, err := f.comment(t, post.ID, commenter.ID, models.CreateCommentRequest{Content: "rude"})
		require.NoError(t, err)

		assert.Equal(t, http.StatusForbidden, httpCode(t, del(t, f, comment.ID, stranger.ID)))
		require.NoError(t, del(t, f, comment.ID, author.ID))
		assert.Empty(t, f.commentRepo.comments)
	})
}

func TestReactToComment(t *testing.T) {
	author := &models.User{ID: primitive.NewObjectID(), Name: "Author", Email: "author@example.com"}
	reader := &models.User{ID: primitive.NewObjectID(), Name: "Reader", Email: "reader@example.com"}

	f := newCommentFixture(author, reader)
	post := &models.Post{Author: author.ID, Content: "hello", Type: models.PostTypeText, Visibility: models.VisibilityPublic}
	require.NoError(t, f.postRepo.CreatePost(nil, post))
	comment, err := f.comment(t, post.ID, author.ID, models.CreateCommentRequest{Content: "first"})
	require.NoError(t, err)

	react := func(t *testing.T, reactionType string) error {
		c, _ := newTestContext(t, http.MethodPost, "/comments/"+comment.ID.Hex()+"/react", models.ReactRequest{Type: reactionType}, reader.ID)
		c.SetParamNames("id")
		c.SetParamValues(comment.ID.Hex())
		return f.handler.ReactToComment(c)
	}

	require.NoError(t, react(t, models.ReactionLike))
	assert.Equal(t, 1, f.commentRepo.find(comment.ID).Reactions.Like)

	// retype replaces
	require.NoError(t, react(t, models.ReactionSad))
	assert.Equal(t, 0, f.commentRepo.find(comment.ID).Reactions.Like)
	assert.Equal(t, 1, f.commentRepo.find(comment.ID).Reactions.Sad)

	// same type toggles off
	require.NoError(t, react(t, models.ReactionSad))
	assert.Equal(t, 0, f.commentRepo.find(comment.ID).Reactions.Sad)
	_, reacted := f.commentRepo.find(comment.ID).UserReaction(reader.ID)
	assert.False(t, reacted)
}

func TestGetCommentsPagination(t *testing.T) {
	author := &models.User{ID: primitive.NewObjectID(), Name: "Author", Email: "author@example.com"}

	f := newCommentFixture(author)
	post := &models.Post{Author: author.ID, Content: "hello", Type: models.PostTypeText, Visibility: models.VisibilityPublic}
	require.NoError(t, f.postRepo.CreatePost(nil, post))

	top, err := f.comment(t, post.ID, author.ID, models.CreateCommentRequest{Content: "one"})
	require.NoError(t, err)
	_, err = f.comment(t, post.ID, author.ID, models.CreateCommentRequest{Content: "two"})
	require.NoError(t, err)
	_, err = f.comment(t, post.ID, author.ID, models.CreateCommentRequest{Content: "reply", ParentComment: top.ID.Hex()})
	require.NoError(t, err)

	c, rec := newTestContext(t, http.MethodGet, "/comments/post/"+post.ID.Hex(), nil, author.ID)
	c.SetParamNames("postId")
	c.SetParamValues(post.ID.Hex())
	require.NoError(t, f.handler.GetComments(c))

	var resp struct {
		Comments   []models.Comment  `json:"comments"`
		Pagination models.Pagination `json:"pagination"`
	}
	decodeBody(t, rec, &resp)
	// replies are excluded from the top-level page
	assert.Len(t, resp.Comments, 2)
	assert.Equal(t, int64(2), resp.Pagination.Total)
}

func TestGetComment(t *testing.T) {
	author := &models.User{ID: primitive.NewObjectID(), Name: "Author", Email: "author@example.com"}

	f := newCommentFixture(author)
	post := &models.Post{Author: author.ID, Content: "hello", Type: models.PostTypeText, Visibility: models.VisibilityPublic}
	require.NoError(t, f.postRepo.CreatePost(nil, post))

	created, err := f.comment(t, post.ID, author.ID, models.CreateCommentRequest{Content: "one"})
	require.NoError(t, err)

	c, rec := newTestContext(t, http.MethodGet, "/comments/"+created.ID.Hex(), nil, author.ID)
	c.SetParamNames("id")
	c.SetParamValues(created.ID.Hex())
	require.NoError(t, f.handler.GetComment(c))

	var got models.Comment
	decodeBody(t, rec, &got)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "one", got.Content)

	c, _ = newTestContext(t, http.MethodGet, "/comments/"+primitive.NewObjectID().Hex(), nil, author.ID)
	c.SetParamNames("id")
	c.SetParamValues(primitive.NewObjectID().Hex())
	assert.Equal(t, http.StatusNotFound, httpCode(t, f.handler.GetComment(c)))
}
