package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/arafatr/linkup/backend/internal/middleware"
	"github.com/arafatr/linkup/backend/internal/models"
	"github.com/arafatr/linkup/backend/internal/repositories"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PostHandler handles HTTP requests related to posts
type PostHandler struct {
	postRepository     repositories.PostRepository
	commentRepository  repositories.CommentRepository
	userRepository     repositories.UserRepository
	groupRepository    repositories.GroupRepository
	reactionRepository repositories.ReactionRepository
	notifier           *Notifier
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(postRepo repositories.PostRepository, commentRepo repositories.CommentRepository,
	userRepo repositories.UserRepository, groupRepo repositories.GroupRepository,
	reactionRepo repositories.ReactionRepository, notifier *Notifier) *PostHandler {
	return &PostHandler{
		postRepository:     postRepo,
		commentRepository:  commentRepo,
		userRepository:     userRepo,
		groupRepository:    groupRepo,
		reactionRepository: reactionRepo,
		notifier:           notifier,
	}
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.POST("/posts", h.CreatePost)
	g.GET("/posts", h.GetFeed)
	g.GET("/posts/user/:id", h.GetUserPosts)
	g.GET("/posts/:id", h.GetPost)
	g.PATCH("/posts/:id", h.UpdatePost)
	g.DELETE("/posts/:id", h.DeletePost)
	g.POST("/posts/:id/react", h.ReactToPost)
	g.DELETE("/posts/:id/react", h.UnreactToPost)
	g.GET("/posts/:id/reactions", h.GetPostReactions)
	g.POST("/posts/:id/share", h.SharePost)
}

// CreatePost creates a new post. Posting into a group requires membership.
func (h *PostHandler) CreatePost(c echo.Context) error {
	var req models.CreatePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	userID := middleware.UserID(c)

	post := &models.Post{
		Author:     userID,
		Content:    req.Content,
		Images:     req.Images,
		Type:       models.PostTypeText,
		Visibility: req.Visibility,
		Tags:       req.Tags,
		Location:   req.Location,
	}
	if len(req.Images) > 0 {
		post.Type = models.PostTypeImage
	}
	if post.Visibility == "" {
		post.Visibility = models.VisibilityPublic
	}

	if req.Group != "" {
		groupID, err := primitive.ObjectIDFromHex(req.Group)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid group ID format")
		}
		group, err := h.groupRepository.GetGroupByID(ctx, groupID)
		if err != nil {
			if errors.Is(err, repositories.ErrGroupNotFound) {
				return echo.NewHTTPError(http.StatusNotFound, "Group not found")
			}
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		if !group.IsMember(userID) {
			return echo.NewHTTPError(http.StatusForbidden, "You must be a member to post in this group")
		}
		post.Group = &groupID
	}

	if err := h.postRepository.CreatePost(ctx, post); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, post)
}

// GetFeed returns the caller's paginated home feed.
func (h *PostHandler) GetFeed(c echo.Context) error {
	page := queryInt64(c, "page", 1)
	limit := queryInt64(c, "limit", 10)

	ctx := c.Request().Context()
	user, err := h.userRepository.GetUserByID(ctx, middleware.UserID(c))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	skip := (page - 1) * limit
	posts, total, err := h.postRepository.GetFeed(ctx, user.ID, user.Friends, skip, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"posts":      posts,
		"pagination": models.NewPagination(page, limit, total),
	})
}

// GetUserPosts returns one user's posts, filtered to what the caller may see.
func (h *PostHandler) GetUserPosts(c echo.Context) error {
	authorID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID format")
	}
	page := queryInt64(c, "page", 1)
	limit := queryInt64(c, "limit", 10)

	ctx := c.Request().Context()
	viewerID := middleware.UserID(c)

	var visibilities []string
	if viewerID != authorID {
		author, err := h.userRepository.GetUserByID(ctx, authorID)
		if err != nil {
			if errors.Is(err, repositories.ErrUserNotFound) {
				return echo.NewHTTPError(http.StatusNotFound, "User not found")
			}
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		if author.HasBlocked(viewerID) {
			return echo.NewHTTPError(http.StatusForbidden, "You cannot view this user's posts")
		}
		visibilities = []string{models.VisibilityPublic}
		if author.IsFriend(viewerID) {
			visibilities = append(visibilities, models.VisibilityFriends)
		}
	}

	skip := (page - 1) * limit
	posts, total, err := h.postRepository.GetPostsByAuthor(ctx, authorID, visibilities, skip, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"posts":      posts,
		"pagination": models.NewPagination(page, limit, total),
	})
}

// GetPost returns a single post if the caller is allowed to see it.
func (h *PostHandler) GetPost(c echo.Context) error {
	post, err := h.loadVisiblePost(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, post)
}

// loadVisiblePost fetches the post in the path and enforces its visibility
// against the caller.
func (h *PostHandler) loadVisiblePost(c echo.Context) (*models.Post, error) {
	postID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "Invalid post ID format")
	}

	ctx := c.Request().Context()
	post, err := h.postRepository.GetPostByID(ctx, postID)
	if err != nil {
		if errors.Is(err, repositories.ErrPostNotFound) {
			return nil, echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return nil, echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	viewerID := middleware.UserID(c)
	if post.Author == viewerID {
		return post, nil
	}

	author, err := h.userRepository.GetUserByID(ctx, post.Author)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	viewer, err := h.userRepository.GetUserByID(ctx, viewerID)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if author.HasBlocked(viewerID) || viewer.HasBlocked(post.Author) {
		return nil, echo.NewHTTPError(http.StatusForbidden, "You cannot view this user's posts")
	}

	if post.Group != nil {
		group, err := h.groupRepository.GetGroupByID(ctx, *post.Group)
		if err != nil {
			return nil, echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		if group.Privacy == models.VisibilityPrivate && !group.IsMember(viewerID) {
			return nil, echo.NewHTTPError(http.StatusForbidden, "This post belongs to a private group")
		}
		return post, nil
	}

	switch post.Visibility {
	case models.VisibilityPrivate:
		return nil, echo.NewHTTPError(http.StatusForbidden, "This post is private")
	case models.VisibilityFriends:
		if !author.IsFriend(viewerID) {
			return nil, echo.NewHTTPError(http.StatusForbidden, "This post is visible to friends only")
		}
	}
	return post, nil
}

// UpdatePost edits a post. Only the author may edit; edits are flagged.
func (h *PostHandler) UpdatePost(c echo.Context) error {
	postID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid post ID format")
	}

	var req models.UpdatePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	post, err := h.postRepository.GetPostByID(ctx, postID)
	if err != nil {
		if errors.Is(err, repositories.ErrPostNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if post.Author != middleware.UserID(c) {
		return echo.NewHTTPError(http.StatusForbidden, "Only the author can edit this post")
	}

	now := time.Now()
	fields := bson.M{"isEdited": true, "editedAt": now}
	if req.Content != "" {
		fields["content"] = req.Content
	}
	if req.Images != nil {
		fields["images"] = req.Images
	}
	if req.Visibility != "" {
		fields["visibility"] = req.Visibility
	}
	if req.Tags != nil {
		fields["tags"] = req.Tags
	}

	if err := h.postRepository.UpdatePost(ctx, postID, fields); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	post, err = h.postRepository.GetPostByID(ctx, postID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, post)
}

// DeletePost removes a post with its comments and reaction rows. The author,
// or a manager of the group the post sits in, may delete.
func (h *PostHandler) DeletePost(c echo.Context) error {
	postID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid post ID format")
	}

	ctx := c.Request().Context()
	userID := middleware.UserID(c)
	post, err := h.postRepository.GetPostByID(ctx, postID)
	if err != nil {
		if errors.Is(err, repositories.ErrPostNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if post.Author != userID {
		allowed := false
		if post.Group != nil {
			group, err := h.groupRepository.GetGroupByID(ctx, *post.Group)
			if err == nil && group.CanManage(userID) {
				allowed = true
			}
		}
		if !allowed {
			return echo.NewHTTPError(http.StatusForbidden, "Only the author can delete this post")
		}
	}

	if err := h.postRepository.DeletePost(ctx, postID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if err := h.commentRepository.DeleteCommentsByPost(ctx, postID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if err := h.reactionRepository.DeleteByTarget(postID.Hex(), models.TargetPost); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Post deleted"})
}

// ReactToPost toggles the caller's reaction: a repeated reaction of the same
// type removes it, a different type replaces it.
func (h *PostHandler) ReactToPost(c echo.Context) error {
	var req models.ReactRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	post, err := h.loadVisiblePost(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	userID := middleware.UserID(c)
	current, reacted := post.UserReaction(userID)

	switch {
	case reacted && current == req.Type:
		if err := h.postRepository.RemoveReaction(ctx, post.ID, userID, current); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		if err := h.reactionRepository.DeleteReaction(userID.Hex(), post.ID.Hex(), models.TargetPost); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	case reacted:
		if err := h.postRepository.RemoveReaction(ctx, post.ID, userID, current); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		fallthrough
	default:
		if err := h.postRepository.AddReaction(ctx, post.ID, userID, req.Type); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		if err := h.reactionRepository.SetReaction(userID.Hex(), post.ID.Hex(), models.TargetPost, req.Type); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		if !reacted {
			if sender, err := h.userRepository.GetUserByID(ctx, userID); err == nil {
				h.notifier.Notify(&models.Notification{
					Type:        models.NotificationLike,
					SenderID:    userID.Hex(),
					RecipientID: post.Author.Hex(),
					Message:     fmt.Sprintf("%s reacted to your post", sender.Name),
					RelatedPost: post.ID.Hex(),
				})
			}
		}
	}

	post, err = h.postRepository.GetPostByID(ctx, post.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, post)
}

// UnreactToPost removes the caller's reaction, whatever its type.
func (h *PostHandler) UnreactToPost(c echo.Context) error {
	post, err := h.loadVisiblePost(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	userID := middleware.UserID(c)
	current, reacted := post.UserReaction(userID)
	if !reacted {
		return echo.NewHTTPError(http.StatusNotFound, "You have not reacted to this post")
	}

	if err := h.postRepository.RemoveReaction(ctx, post.ID, userID, current); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if err := h.reactionRepository.DeleteReaction(userID.Hex(), post.ID.Hex(), models.TargetPost); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	post, err = h.postRepository.GetPostByID(ctx, post.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, post)
}

// GetPostReactions returns the per-type breakdown of a post's reactions.
func (h *PostHandler) GetPostReactions(c echo.Context) error {
	post, err := h.loadVisiblePost(c)
	if err != nil {
		return err
	}

	entries, total, err := h.reactionRepository.GetSummary(post.ID.Hex(), models.TargetPost)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"reactions": entries, "total": total})
}

// SharePost creates a new post referencing an existing one. Sharing a share
// points at the original so chains stay one level deep.
func (h *PostHandler) SharePost(c echo.Context) error {
	var req models.SharePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	original, err := h.loadVisiblePost(c)
	if err != nil {
		return err
	}
	if original.Visibility == models.VisibilityPrivate || original.Group != nil {
		return echo.NewHTTPError(http.StatusForbidden, "This post cannot be shared")
	}

	ctx := c.Request().Context()
	userID := middleware.UserID(c)

	// re-shares flatten to the root post; the notification goes to its author
	sharedID := original.ID
	rootAuthor := original.Author
	if original.Type == models.PostTypeShared && original.SharedPost != nil {
		sharedID = *original.SharedPost
		root, err := h.postRepository.GetPostByID(ctx, sharedID)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		rootAuthor = root.Author
	}

	share := &models.Post{
		Author:     userID,
		Content:    req.Content,
		Type:       models.PostTypeShared,
		Visibility: models.VisibilityPublic,
		SharedPost: &sharedID,
	}
	if err := h.postRepository.CreatePost(ctx, share); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if err := h.postRepository.IncrementSharesCount(ctx, sharedID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if sender, err := h.userRepository.GetUserByID(ctx, userID); err == nil {
		h.notifier.Notify(&models.Notification{
			Type:        models.NotificationPostShare,
			SenderID:    userID.Hex(),
			RecipientID: rootAuthor.Hex(),
			Message:     fmt.Sprintf("%s shared your post", sender.Name),
			RelatedPost: sharedID.Hex(),
		})
	}

	return c.JSON(http.StatusCreated, share)
}
