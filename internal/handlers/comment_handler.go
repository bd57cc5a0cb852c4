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

// CommentHandler handles HTTP requests related to comments
type CommentHandler struct {
	commentRepository  repositories.CommentRepository
	postRepository     repositories.PostRepository
	userRepository     repositories.UserRepository
	reactionRepository repositories.ReactionRepository
	notifier           *Notifier
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(commentRepo repositories.CommentRepository, postRepo repositories.PostRepository,
	userRepo repositories.UserRepository, reactionRepo repositories.ReactionRepository, notifier *Notifier) *CommentHandler {
	return &CommentHandler{
		commentRepository:  commentRepo,
		postRepository:     postRepo,
		userRepository:     userRepo,
		reactionRepository: reactionRepo,
		notifier:           notifier,
	}
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.POST("/comments/post/:postId", h.CreateComment)
	g.GET("/comments/post/:postId", h.GetComments)
	g.GET("/comments/:id", h.GetComment)
	g.GET("/comments/:id/replies", h.GetReplies)
	g.PATCH("/comments/:id", h.UpdateComment)
	g.DELETE("/comments/:id", h.DeleteComment)
	g.POST("/comments/:id/react", h.ReactToComment)
	g.DELETE("/comments/:id/react", h.UnreactToComment)
}

// CreateComment adds a comment to a post, optionally as a reply. Replies nest
// one level: replying to a reply attaches to the top-level parent.
func (h *CommentHandler) CreateComment(c echo.Context) error {
	postID, err := primitive.ObjectIDFromHex(c.Param("postId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid post ID format")
	}

	var req models.CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
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

	comment := &models.Comment{
		Author:  userID,
		Post:    postID,
		Content: req.Content,
		Image:   req.Image,
	}
	notifyTarget := post.Author
	if req.ParentComment != "" {
		parentID, err := primitive.ObjectIDFromHex(req.ParentComment)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid parent comment ID format")
		}
		parent, err := h.commentRepository.GetCommentByID(ctx, parentID)
		if err != nil {
			if errors.Is(err, repositories.ErrCommentNotFound) {
				return echo.NewHTTPError(http.StatusNotFound, "Parent comment not found")
			}
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		if parent.Post != postID {
			return echo.NewHTTPError(http.StatusBadRequest, "Parent comment belongs to a different post")
		}
		if parent.ParentComment != nil {
			parentID = *parent.ParentComment
		}
		comment.ParentComment = &parentID
		notifyTarget = parent.Author
	}

	if err := h.commentRepository.CreateComment(ctx, comment); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if err := h.postRepository.IncrementCommentsCount(ctx, postID, 1); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if sender, err := h.userRepository.GetUserByID(ctx, userID); err == nil {
		h.notifier.Notify(&models.Notification{
			Type:           models.NotificationComment,
			SenderID:       userID.Hex(),
			RecipientID:    notifyTarget.Hex(),
			Message:        fmt.Sprintf("%s commented on your post", sender.Name),
			RelatedPost:    postID.Hex(),
			RelatedComment: comment.ID.Hex(),
		})
	}

	return c.JSON(http.StatusCreated, comment)
}

// GetComments returns one page of a post's top-level comments, newest first.
func (h *CommentHandler) GetComments(c echo.Context) error {
	postID, err := primitive.ObjectIDFromHex(c.Param("postId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid post ID format")
	}
	page := queryInt64(c, "page", 1)
	limit := queryInt64(c, "limit", 10)

	skip := (page - 1) * limit
	comments, total, err := h.commentRepository.GetCommentsByPost(c.Request().Context(), postID, skip, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"comments":   comments,
		"pagination": models.NewPagination(page, limit, total),
	})
}

// GetComment returns a single comment.
func (h *CommentHandler) GetComment(c echo.Context) error {
	commentID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid comment ID format")
	}

	comment, err := h.commentRepository.GetCommentByID(c.Request().Context(), commentID)
	if err != nil {
		if errors.Is(err, repositories.ErrCommentNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Comment not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, comment)
}

// GetReplies returns a comment's replies, oldest first.
func (h *CommentHandler) GetReplies(c echo.Context) error {
	commentID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid comment ID format")
	}
	limit := queryInt64(c, "limit", 20)

	replies, err := h.commentRepository.GetReplies(c.Request().Context(), commentID, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, replies)
}

// UpdateComment edits a comment. Only the author may edit.
func (h *CommentHandler) UpdateComment(c echo.Context) error {
	commentID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid comment ID format")
	}

	var req models.UpdateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	comment, err := h.commentRepository.GetCommentByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, repositories.ErrCommentNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Comment not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if comment.Author != middleware.UserID(c) {
		return echo.NewHTTPError(http.StatusForbidden, "Only the author can edit this comment")
	}

	now := time.Now()
	fields := bson.M{"content": req.Content, "isEdited": true, "editedAt": now}
	if err := h.commentRepository.UpdateComment(ctx, commentID, fields); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	comment, err = h.commentRepository.GetCommentByID(ctx, commentID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, comment)
}

// DeleteComment removes a comment (and its replies) when the caller is the
// comment author or the post author, keeping the post counter in sync.
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	commentID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid comment ID format")
	}

	ctx := c.Request().Context()
	userID := middleware.UserID(c)
	comment, err := h.commentRepository.GetCommentByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, repositories.ErrCommentNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Comment not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if comment.Author != userID {
		post, err := h.postRepository.GetPostByID(ctx, comment.Post)
		if err != nil || post.Author != userID {
			return echo.NewHTTPError(http.StatusForbidden, "You cannot delete this comment")
		}
	}

	deleted, err := h.commentRepository.DeleteComment(ctx, commentID)
	if err != nil {
		if errors.Is(err, repositories.ErrCommentNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Comment not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if err := h.postRepository.IncrementCommentsCount(ctx, comment.Post, int(-deleted)); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if comment.ParentComment != nil {
		if err := h.commentRepository.IncrementRepliesCount(ctx, *comment.ParentComment, -1); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}
	if err := h.reactionRepository.DeleteByTarget(commentID.Hex(), models.TargetComment); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Comment deleted", "deleted": deleted})
}

// ReactToComment toggles the caller's reaction on a comment, mirroring the
// post reaction semantics.
func (h *CommentHandler) ReactToComment(c echo.Context) error {
	var req models.ReactRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	commentID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid comment ID format")
	}

	ctx := c.Request().Context()
	userID := middleware.UserID(c)
	comment, err := h.commentRepository.GetCommentByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, repositories.ErrCommentNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Comment not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	current, reacted := comment.UserReaction(userID)
	switch {
	case reacted && current == req.Type:
		if err := h.commentRepository.RemoveReaction(ctx, commentID, userID, current); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		if err := h.reactionRepository.DeleteReaction(userID.Hex(), commentID.Hex(), models.TargetComment); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	case reacted:
		if err := h.commentRepository.RemoveReaction(ctx, commentID, userID, current); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		fallthrough
	default:
		if err := h.commentRepository.AddReaction(ctx, commentID, userID, req.Type); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		if err := h.reactionRepository.SetReaction(userID.Hex(), commentID.Hex(), models.TargetComment, req.Type); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	comment, err = h.commentRepository.GetCommentByID(ctx, commentID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, comment)
}

// UnreactToComment removes the caller's reaction, whatever its type.
func (h *CommentHandler) UnreactToComment(c echo.Context) error {
	commentID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid comment ID format")
	}

	ctx := c.Request().Context()
	userID := middleware.UserID(c)
	comment, err := h.commentRepository.GetCommentByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, repositories.ErrCommentNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Comment not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	current, reacted := comment.UserReaction(userID)
	if !reacted {
		return echo.NewHTTPError(http.StatusNotFound, "You have not reacted to this comment")
	}

	if err := h.commentRepository.RemoveReaction(ctx, commentID, userID, current); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if err := h.reactionRepository.DeleteReaction(userID.Hex(), commentID.Hex(), models.TargetComment); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	comment, err = h.commentRepository.GetCommentByID(ctx, commentID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, comment)
}
