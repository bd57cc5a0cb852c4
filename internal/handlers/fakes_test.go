package handlers

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/arafatr/linkup/backend/internal/models"
	"github.com/arafatr/linkup/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"gorm.io/gorm"
)

// In-memory repository fakes shared by the handler tests.

type fakeUserRepo struct {
	users map[primitive.ObjectID]*models.User
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[primitive.ObjectID]*models.User)}
	for _, u := range users {
		if u.ID.IsZero() {
			u.ID = primitive.NewObjectID()
		}
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) CreateUser(_ context.Context, user *models.User) error {
	for _, u := range r.users {
		if u.Email == user.Email {
			return repositories.ErrDuplicate
		}
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetUserByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) GetUserByFirebaseUID(_ context.Context, uid string) (*models.User, error) {
	for _, u := range r.users {
		if u.FirebaseUID == uid {
			return u, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) UpdateUser(_ context.Context, id primitive.ObjectID, fields bson.M) error {
	u, ok := r.users[id]
	if !ok {
		return repositories.ErrUserNotFound
	}
	if v, ok := fields["name"].(string); ok {
		u.Name = v
	}
	if v, ok := fields["bio"].(string); ok {
		u.Bio = v
	}
	if v, ok := fields["privacy.profileVisibility"].(string); ok {
		u.Privacy.ProfileVisibility = v
	}
	if v, ok := fields["privacy.friendListVisibility"].(string); ok {
		u.Privacy.FriendListVisibility = v
	}
	if v, ok := fields["password"].(string); ok {
		u.Password = v
	}
	return nil
}

func (r *fakeUserRepo) SearchUsers(_ context.Context, term string, limit int64) ([]models.PublicProfile, error) {
	var out []models.PublicProfile
	for _, u := range r.users {
		if strings.Contains(strings.ToLower(u.Name), strings.ToLower(term)) {
			out = append(out, u.Profile())
		}
	}
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeUserRepo) GetProfiles(_ context.Context, ids []primitive.ObjectID) ([]models.PublicProfile, error) {
	out := []models.PublicProfile{}
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out = append(out, u.Profile())
		}
	}
	return out, nil
}

func (r *fakeUserRepo) AddFriends(_ context.Context, a, b primitive.ObjectID) error {
	if u, ok := r.users[a]; ok && !u.IsFriend(b) {
		u.Friends = append(u.Friends, b)
	}
	if u, ok := r.users[b]; ok && !u.IsFriend(a) {
		u.Friends = append(u.Friends, a)
	}
	return nil
}

func removeID(ids []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func (r *fakeUserRepo) RemoveFriends(_ context.Context, a, b primitive.ObjectID) error {
	if u, ok := r.users[a]; ok {
		u.Friends = removeID(u.Friends, b)
	}
	if u, ok := r.users[b]; ok {
		u.Friends = removeID(u.Friends, a)
	}
	return nil
}

func (r *fakeUserRepo) BlockUser(ctx context.Context, blocker, blocked primitive.ObjectID) error {
	if u, ok := r.users[blocker]; ok && !u.HasBlocked(blocked) {
		u.BlockedUsers = append(u.BlockedUsers, blocked)
	}
	return r.RemoveFriends(ctx, blocker, blocked)
}

func (r *fakeUserRepo) UnblockUser(_ context.Context, blocker, blocked primitive.ObjectID) error {
	if u, ok := r.users[blocker]; ok {
		u.BlockedUsers = removeID(u.BlockedUsers, blocked)
	}
	return nil
}

func (r *fakeUserRepo) SetPresence(_ context.Context, id primitive.ObjectID, online bool) error {
	if u, ok := r.users[id]; ok {
		u.IsOnline = online
		if !online {
			u.LastSeen = time.Now()
		}
	}
	return nil
}

func (r *fakeUserRepo) SuggestFriends(_ context.Context, user *models.User, exclude []primitive.ObjectID, limit int64) ([]models.PublicProfile, error) {
	excluded := make(map[primitive.ObjectID]bool, len(exclude))
	for _, id := range exclude {
		excluded[id] = true
	}
	var out []models.PublicProfile
	for _, u := range r.users {
		if excluded[u.ID] || u.HasBlocked(user.ID) {
			continue
		}
		out = append(out, u.Profile())
	}
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeFriendRequestRepo struct {
	requests map[primitive.ObjectID]*models.FriendRequest
}

func newFakeFriendRequestRepo() *fakeFriendRequestRepo {
	return &fakeFriendRequestRepo{requests: make(map[primitive.ObjectID]*models.FriendRequest)}
}

func (r *fakeFriendRequestRepo) CreateRequest(_ context.Context, req *models.FriendRequest) error {
	for _, existing := range r.requests {
		if existing.Sender == req.Sender && existing.Receiver == req.Receiver {
			return repositories.ErrDuplicate
		}
	}
	req.ID = primitive.NewObjectID()
	req.Status = models.FriendRequestPending
	req.CreatedAt = time.Now()
	req.UpdatedAt = req.CreatedAt
	r.requests[req.ID] = req
	return nil
}

func (r *fakeFriendRequestRepo) GetRequestByID(_ context.Context, id primitive.ObjectID) (*models.FriendRequest, error) {
	req, ok := r.requests[id]
	if !ok {
		return nil, repositories.ErrFriendRequestNotFound
	}
	return req, nil
}

func (r *fakeFriendRequestRepo) FindPendingBetween(_ context.Context, a, b primitive.ObjectID) (*models.FriendRequest, error) {
	for _, req := range r.requests {
		if req.Status != models.FriendRequestPending {
			continue
		}
		if (req.Sender == a && req.Receiver == b) || (req.Sender == b && req.Receiver == a) {
			return req, nil
		}
	}
	return nil, repositories.ErrFriendRequestNotFound
}

func (r *fakeFriendRequestRepo) GetPendingForReceiver(_ context.Context, receiver primitive.ObjectID, limit int64) ([]models.FriendRequest, error) {
	out := []models.FriendRequest{}
	for _, req := range r.requests {
		if req.Receiver == receiver && req.Status == models.FriendRequestPending {
			out = append(out, *req)
		}
	}
	return out, nil
}

func (r *fakeFriendRequestRepo) GetPendingBySender(_ context.Context, sender primitive.ObjectID, limit int64) ([]models.FriendRequest, error) {
	out := []models.FriendRequest{}
	for _, req := range r.requests {
		if req.Sender == sender && req.Status == models.FriendRequestPending {
			out = append(out, *req)
		}
	}
	return out, nil
}

func (r *fakeFriendRequestRepo) PendingCounterparts(_ context.Context, user primitive.ObjectID) ([]primitive.ObjectID, error) {
	var out []primitive.ObjectID
	for _, req := range r.requests {
		if req.Status != models.FriendRequestPending {
			continue
		}
		if req.Sender == user {
			out = append(out, req.Receiver)
		} else if req.Receiver == user {
			out = append(out, req.Sender)
		}
	}
	return out, nil
}

func (r *fakeFriendRequestRepo) Respond(_ context.Context, id primitive.ObjectID, status string) (*models.FriendRequest, error) {
	req, ok := r.requests[id]
	if !ok {
		return nil, repositories.ErrFriendRequestNotFound
	}
	if req.Status != models.FriendRequestPending {
		return nil, repositories.ErrAlreadyHandled
	}
	now := time.Now()
	req.Status = status
	req.RespondedAt = &now
	req.UpdatedAt = now
	return req, nil
}

func (r *fakeFriendRequestRepo) DeleteBetween(_ context.Context, a, b primitive.ObjectID) error {
	for id, req := range r.requests {
		if (req.Sender == a && req.Receiver == b) || (req.Sender == b && req.Receiver == a) {
			delete(r.requests, id)
		}
	}
	return nil
}

func bumpReaction(rc *models.ReactionCounts, reactionType string, delta int) {
	switch reactionType {
	case models.ReactionLike:
		rc.Like += delta
	case models.ReactionLove:
		rc.Love += delta
	case models.ReactionHaha:
		rc.Haha += delta
	case models.ReactionWow:
		rc.Wow += delta
	case models.ReactionSad:
		rc.Sad += delta
	case models.ReactionAngry:
		rc.Angry += delta
	}
}

type fakePostRepo struct {
	posts map[primitive.ObjectID]*models.Post
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{posts: make(map[primitive.ObjectID]*models.Post)}
}

func (r *fakePostRepo) CreatePost(_ context.Context, post *models.Post) error {
	post.ID = primitive.NewObjectID()
	post.CreatedAt = time.Now()
	post.UpdatedAt = post.CreatedAt
	if post.ReactedUsers == nil {
		post.ReactedUsers = []models.ReactedUser{}
	}
	r.posts[post.ID] = post
	return nil
}

func (r *fakePostRepo) GetPostByID(_ context.Context, id primitive.ObjectID) (*models.Post, error) {
	p, ok := r.posts[id]
	if !ok {
		return nil, repositories.ErrPostNotFound
	}
	return p, nil
}

func (r *fakePostRepo) GetFeed(_ context.Context, viewer primitive.ObjectID, friends []primitive.ObjectID, skip, limit int64) ([]models.Post, int64, error) {
	friendSet := make(map[primitive.ObjectID]bool, len(friends))
	for _, f := range friends {
		friendSet[f] = true
	}
	var all []models.Post
	for _, p := range r.posts {
		if p.Group != nil {
			continue
		}
		visible := p.Visibility == models.VisibilityPublic ||
			(p.Visibility == models.VisibilityFriends && friendSet[p.Author]) ||
			p.Author == viewer
		if visible {
			all = append(all, *p)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	return pagePosts(all, skip, limit)
}

func pagePosts(all []models.Post, skip, limit int64) ([]models.Post, int64, error) {
	total := int64(len(all))
	if skip >= total {
		return []models.Post{}, total, nil
	}
	end := skip + limit
	if end > total {
		end = total
	}
	return all[skip:end], total, nil
}

func (r *fakePostRepo) GetPostsByAuthor(_ context.Context, author primitive.ObjectID, visibilities []string, skip, limit int64) ([]models.Post, int64, error) {
	allowed := map[string]bool{}
	for _, v := range visibilities {
		allowed[v] = true
	}
	var all []models.Post
	for _, p := range r.posts {
		if p.Author != author {
			continue
		}
		if visibilities != nil && !allowed[p.Visibility] {
			continue
		}
		all = append(all, *p)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	return pagePosts(all, skip, limit)
}

func (r *fakePostRepo) GetGroupPosts(_ context.Context, groupID primitive.ObjectID, limit int64) ([]models.Post, error) {
	out := []models.Post{}
	for _, p := range r.posts {
		if p.Group != nil && *p.Group == groupID {
			out = append(out, *p)
		}
	}
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakePostRepo) UpdatePost(_ context.Context, id primitive.ObjectID, fields bson.M) error {
	p, ok := r.posts[id]
	if !ok {
		return repositories.ErrPostNotFound
	}
	if v, ok := fields["content"].(string); ok {
		p.Content = v
	}
	if v, ok := fields["visibility"].(string); ok {
		p.Visibility = v
	}
	if v, ok := fields["isEdited"].(bool); ok {
		p.IsEdited = v
	}
	p.UpdatedAt = time.Now()
	return nil
}

func (r *fakePostRepo) DeletePost(_ context.Context, id primitive.ObjectID) error {
	if _, ok := r.posts[id]; !ok {
		return repositories.ErrPostNotFound
	}
	delete(r.posts, id)
	return nil
}

func (r *fakePostRepo) AddReaction(_ context.Context, id, userID primitive.ObjectID, reactionType string) error {
	p := r.posts[id]
	for _, ru := range p.ReactedUsers {
		if ru.User == userID {
			return nil
		}
	}
	bumpReaction(&p.Reactions, reactionType, 1)
	p.ReactedUsers = append(p.ReactedUsers, models.ReactedUser{User: userID, ReactionType: reactionType})
	return nil
}

func (r *fakePostRepo) RemoveReaction(_ context.Context, id, userID primitive.ObjectID, reactionType string) error {
	p := r.posts[id]
	bumpReaction(&p.Reactions, reactionType, -1)
	kept := p.ReactedUsers[:0]
	for _, ru := range p.ReactedUsers {
		if ru.User != userID {
			kept = append(kept, ru)
		}
	}
	p.ReactedUsers = kept
	return nil
}

func (r *fakePostRepo) IncrementCommentsCount(_ context.Context, id primitive.ObjectID, delta int) error {
	if p, ok := r.posts[id]; ok {
		p.CommentsCount += delta
	}
	return nil
}

func (r *fakePostRepo) IncrementSharesCount(_ context.Context, id primitive.ObjectID) error {
	if p, ok := r.posts[id]; ok {
		p.SharesCount++
	}
	return nil
}

type fakeCommentRepo struct {
	comments []*models.Comment
}

func newFakeCommentRepo() *fakeCommentRepo { return &fakeCommentRepo{} }

func (r *fakeCommentRepo) find(id primitive.ObjectID) *models.Comment {
	for _, c := range r.comments {
		if c.ID == id {
			return c
		}
	}
	return nil
}

func (r *fakeCommentRepo) CreateComment(ctx context.Context, comment *models.Comment) error {
	comment.ID = primitive.NewObjectID()
	comment.CreatedAt = time.Now()
	comment.UpdatedAt = comment.CreatedAt
	if comment.ReactedUsers == nil {
		comment.ReactedUsers = []models.ReactedUser{}
	}
	r.comments = append(r.comments, comment)
	if comment.ParentComment != nil {
		return r.IncrementRepliesCount(ctx, *comment.ParentComment, 1)
	}
	return nil
}

func (r *fakeCommentRepo) GetCommentByID(_ context.Context, id primitive.ObjectID) (*models.Comment, error) {
	if c := r.find(id); c != nil {
		return c, nil
	}
	return nil, repositories.ErrCommentNotFound
}

func (r *fakeCommentRepo) GetCommentsByPost(_ context.Context, postID primitive.ObjectID, skip, limit int64) ([]models.Comment, int64, error) {
	var all []models.Comment
	for _, c := range r.comments {
		if c.Post == postID && c.ParentComment == nil {
			all = append(all, *c)
		}
	}
	total := int64(len(all))
	if skip >= total {
		return []models.Comment{}, total, nil
	}
	end := skip + limit
	if end > total {
		end = total
	}
	return all[skip:end], total, nil
}

func (r *fakeCommentRepo) GetReplies(_ context.Context, parentID primitive.ObjectID, limit int64) ([]models.Comment, error) {
	out := []models.Comment{}
	for _, c := range r.comments {
		if c.ParentComment != nil && *c.ParentComment == parentID {
			out = append(out, *c)
		}
	}
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeCommentRepo) UpdateComment(_ context.Context, id primitive.ObjectID, fields bson.M) error {
	c := r.find(id)
	if c == nil {
		return repositories.ErrCommentNotFound
	}
	if v, ok := fields["content"].(string); ok {
		c.Content = v
	}
	if v, ok := fields["isEdited"].(bool); ok {
		c.IsEdited = v
	}
	c.UpdatedAt = time.Now()
	return nil
}

func (r *fakeCommentRepo) DeleteComment(_ context.Context, id primitive.ObjectID) (int64, error) {
	var kept []*models.Comment
	var deleted int64
	for _, c := range r.comments {
		if c.ID == id || (c.ParentComment != nil && *c.ParentComment == id) {
			deleted++
			continue
		}
		kept = append(kept, c)
	}
	if deleted == 0 {
		return 0, repositories.ErrCommentNotFound
	}
	r.comments = kept
	return deleted, nil
}

func (r *fakeCommentRepo) DeleteCommentsByPost(_ context.Context, postID primitive.ObjectID) error {
	var kept []*models.Comment
	for _, c := range r.comments {
		if c.Post != postID {
			kept = append(kept, c)
		}
	}
	r.comments = kept
	return nil
}

func (r *fakeCommentRepo) IncrementRepliesCount(_ context.Context, id primitive.ObjectID, delta int) error {
	if c := r.find(id); c != nil {
		c.RepliesCount += delta
	}
	return nil
}

func (r *fakeCommentRepo) AddReaction(_ context.Context, id, userID primitive.ObjectID, reactionType string) error {
	c := r.find(id)
	for _, ru := range c.ReactedUsers {
		if ru.User == userID {
			return nil
		}
	}
	bumpReaction(&c.Reactions, reactionType, 1)
	c.ReactedUsers = append(c.ReactedUsers, models.ReactedUser{User: userID, ReactionType: reactionType})
	return nil
}

func (r *fakeCommentRepo) RemoveReaction(_ context.Context, id, userID primitive.ObjectID, reactionType string) error {
	c := r.find(id)
	bumpReaction(&c.Reactions, reactionType, -1)
	kept := c.ReactedUsers[:0]
	for _, ru := range c.ReactedUsers {
		if ru.User != userID {
			kept = append(kept, ru)
		}
	}
	c.ReactedUsers = kept
	return nil
}

type fakeGroupRepo struct {
	groups map[primitive.ObjectID]*models.Group
}

func newFakeGroupRepo() *fakeGroupRepo {
	return &fakeGroupRepo{groups: make(map[primitive.ObjectID]*models.Group)}
}

func (r *fakeGroupRepo) CreateGroup(_ context.Context, group *models.Group) error {
	group.ID = primitive.NewObjectID()
	group.IsActive = true
	group.CreatedAt = time.Now()
	group.UpdatedAt = group.CreatedAt
	r.groups[group.ID] = group
	return nil
}

func (r *fakeGroupRepo) GetGroupByID(_ context.Context, id primitive.ObjectID) (*models.Group, error) {
	g, ok := r.groups[id]
	if !ok || !g.IsActive {
		return nil, repositories.ErrGroupNotFound
	}
	g.FillCounts()
	return g, nil
}

func (r *fakeGroupRepo) ListGroups(_ context.Context, category, privacy string, skip, limit int64) ([]models.Group, int64, error) {
	var all []models.Group
	for _, g := range r.groups {
		if !g.IsActive {
			continue
		}
		if category != "" && g.Category != category {
			continue
		}
		if privacy != "" && g.Privacy != privacy {
			continue
		}
		g.FillCounts()
		all = append(all, *g)
	}
	total := int64(len(all))
	if skip >= total {
		return []models.Group{}, total, nil
	}
	end := skip + limit
	if end > total {
		end = total
	}
	return all[skip:end], total, nil
}

func (r *fakeGroupRepo) UpdateGroup(_ context.Context, id primitive.ObjectID, fields bson.M) error {
	g, ok := r.groups[id]
	if !ok {
		return repositories.ErrGroupNotFound
	}
	if v, ok := fields["name"].(string); ok {
		g.Name = v
	}
	if v, ok := fields["privacy"].(string); ok {
		g.Privacy = v
	}
	g.UpdatedAt = time.Now()
	return nil
}

func (r *fakeGroupRepo) DeleteGroup(_ context.Context, id primitive.ObjectID) error {
	g, ok := r.groups[id]
	if !ok {
		return repositories.ErrGroupNotFound
	}
	g.IsActive = false
	return nil
}

func (r *fakeGroupRepo) AddMember(_ context.Context, id primitive.ObjectID, member models.GroupMember) error {
	g := r.groups[id]
	g.Members = append(g.Members, member)
	return nil
}

func (r *fakeGroupRepo) RemoveMember(_ context.Context, id, userID primitive.ObjectID) error {
	g := r.groups[id]
	kept := g.Members[:0]
	for _, m := range g.Members {
		if m.User != userID {
			kept = append(kept, m)
		}
	}
	g.Members = kept
	g.Moderators = removeID(g.Moderators, userID)
	return nil
}

func (r *fakeGroupRepo) AddPendingRequest(_ context.Context, id primitive.ObjectID, req models.JoinRequest) error {
	g := r.groups[id]
	g.PendingRequests = append(g.PendingRequests, req)
	return nil
}

func (r *fakeGroupRepo) RemovePendingRequest(_ context.Context, id, userID primitive.ObjectID) error {
	g := r.groups[id]
	kept := g.PendingRequests[:0]
	for _, p := range g.PendingRequests {
		if p.User != userID {
			kept = append(kept, p)
		}
	}
	g.PendingRequests = kept
	return nil
}

func (r *fakeGroupRepo) GetUserGroups(_ context.Context, userID primitive.ObjectID, limit int64) ([]models.Group, error) {
	out := []models.Group{}
	for _, g := range r.groups {
		if g.IsActive && g.IsMember(userID) {
			g.FillCounts()
			out = append(out, *g)
		}
	}
	return out, nil
}

func (r *fakeGroupRepo) SuggestGroups(_ context.Context, userID primitive.ObjectID, limit int64) ([]models.Group, error) {
	out := []models.Group{}
	for _, g := range r.groups {
		if g.IsActive && g.Privacy == models.GroupPrivacyPublic && !g.IsMember(userID) {
			g.FillCounts()
			out = append(out, *g)
		}
	}
	return out, nil
}

type fakeNotificationRepo struct {
	rows   []*models.Notification
	nextID uint
}

func newFakeNotificationRepo() *fakeNotificationRepo { return &fakeNotificationRepo{nextID: 1} }

func (r *fakeNotificationRepo) CreateNotification(n *models.Notification) error {
	n.ID = r.nextID
	r.nextID++
	n.CreatedAt = time.Now()
	r.rows = append(r.rows, n)
	return nil
}

func (r *fakeNotificationRepo) GetByRecipient(recipientID string, page, limit int, isRead *bool) ([]models.Notification, int64, error) {
	var all []models.Notification
	for _, n := range r.rows {
		if n.RecipientID != recipientID {
			continue
		}
		if isRead != nil && n.IsRead != *isRead {
			continue
		}
		all = append(all, *n)
	}
	total := int64(len(all))
	start := (page - 1) * limit
	if start >= len(all) {
		return []models.Notification{}, total, nil
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (r *fakeNotificationRepo) GetUnreadCount(recipientID string) (int64, error) {
	var count int64
	for _, n := range r.rows {
		if n.RecipientID == recipientID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (r *fakeNotificationRepo) MarkAsRead(recipientID string, ids []uint) (int64, error) {
	wanted := make(map[uint]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	var marked int64
	now := time.Now()
	for _, n := range r.rows {
		if n.RecipientID == recipientID && wanted[n.ID] && !n.IsRead {
			n.IsRead = true
			n.ReadAt = &now
			marked++
		}
	}
	return marked, nil
}

func (r *fakeNotificationRepo) MarkAllAsRead(recipientID string) (int64, error) {
	var marked int64
	now := time.Now()
	for _, n := range r.rows {
		if n.RecipientID == recipientID && !n.IsRead {
			n.IsRead = true
			n.ReadAt = &now
			marked++
		}
	}
	return marked, nil
}

func (r *fakeNotificationRepo) DeleteNotification(recipientID string, id uint) error {
	for i, n := range r.rows {
		if n.ID == id && n.RecipientID == recipientID {
			r.rows = append(r.rows[:i], r.rows[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

type fakeReactionRepo struct {
	rows map[string]*models.Reaction
}

func newFakeReactionRepo() *fakeReactionRepo {
	return &fakeReactionRepo{rows: make(map[string]*models.Reaction)}
}

func reactionKey(userID, targetID, targetType string) string {
	return userID + "|" + targetID + "|" + targetType
}

func (r *fakeReactionRepo) GetUserReaction(userID, targetID, targetType string) (*models.Reaction, error) {
	return r.rows[reactionKey(userID, targetID, targetType)], nil
}

func (r *fakeReactionRepo) SetReaction(userID, targetID, targetType, reactionType string) error {
	key := reactionKey(userID, targetID, targetType)
	if existing, ok := r.rows[key]; ok {
		existing.Type = reactionType
		return nil
	}
	r.rows[key] = &models.Reaction{UserID: userID, TargetID: targetID, TargetType: targetType, Type: reactionType}
	return nil
}

func (r *fakeReactionRepo) DeleteReaction(userID, targetID, targetType string) error {
	delete(r.rows, reactionKey(userID, targetID, targetType))
	return nil
}

func (r *fakeReactionRepo) DeleteByTarget(targetID, targetType string) error {
	for key, row := range r.rows {
		if row.TargetID == targetID && row.TargetType == targetType {
			delete(r.rows, key)
		}
	}
	return nil
}

func (r *fakeReactionRepo) GetSummary(targetID, targetType string) ([]models.ReactionSummaryEntry, int64, error) {
	counts := map[string]int64{}
	for _, row := range r.rows {
		if row.TargetID == targetID && row.TargetType == targetType {
			counts[row.Type]++
		}
	}
	var entries []models.ReactionSummaryEntry
	var total int64
	for t, c := range counts {
		entries = append(entries, models.ReactionSummaryEntry{Type: t, Count: c})
		total += c
	}
	return entries, total, nil
}

type fakeMessageRepo struct {
	messages []*models.Message
}

func newFakeMessageRepo() *fakeMessageRepo { return &fakeMessageRepo{} }

func (r *fakeMessageRepo) CreateMessage(_ context.Context, msg *models.Message) error {
	msg.ID = primitive.NewObjectID()
	msg.CreatedAt = time.Now()
	msg.UpdatedAt = msg.CreatedAt
	r.messages = append(r.messages, msg)
	return nil
}

func between(m *models.Message, a, b primitive.ObjectID) bool {
	return (m.Sender == a && m.Receiver == b) || (m.Sender == b && m.Receiver == a)
}

func (r *fakeMessageRepo) GetConversation(_ context.Context, a, b primitive.ObjectID, skip, limit int64) ([]models.Message, int64, error) {
	var all []models.Message
	for _, m := range r.messages {
		if between(m, a, b) {
			all = append(all, *m)
		}
	}
	total := int64(len(all))
	if skip >= total {
		return []models.Message{}, total, nil
	}
	end := skip + limit
	if end > total {
		end = total
	}
	return all[skip:end], total, nil
}

func (r *fakeMessageRepo) MarkConversationRead(_ context.Context, sender, receiver primitive.ObjectID) (int64, error) {
	var marked int64
	now := time.Now()
	for _, m := range r.messages {
		if m.Sender == sender && m.Receiver == receiver && !m.IsRead {
			m.IsRead = true
			m.ReadAt = &now
			marked++
		}
	}
	return marked, nil
}

func (r *fakeMessageRepo) GetConversationPartners(_ context.Context, user primitive.ObjectID, limit int64) ([]primitive.ObjectID, error) {
	seen := map[primitive.ObjectID]bool{}
	var out []primitive.ObjectID
	for i := len(r.messages) - 1; i >= 0; i-- {
		m := r.messages[i]
		var partner primitive.ObjectID
		switch user {
		case m.Sender:
			partner = m.Receiver
		case m.Receiver:
			partner = m.Sender
		default:
			continue
		}
		if !seen[partner] {
			seen[partner] = true
			out = append(out, partner)
		}
	}
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeMessageRepo) GetLastMessage(_ context.Context, a, b primitive.ObjectID) (*models.Message, error) {
	for i := len(r.messages) - 1; i >= 0; i-- {
		if between(r.messages[i], a, b) {
			return r.messages[i], nil
		}
	}
	return nil, repositories.ErrMessageNotFound
}

func (r *fakeMessageRepo) CountUnread(_ context.Context, sender, receiver primitive.ObjectID) (int64, error) {
	var count int64
	for _, m := range r.messages {
		if m.Sender == sender && m.Receiver == receiver && !m.IsRead {
			count++
		}
	}
	return count, nil
}

type fakeListingRepo struct {
	listings map[primitive.ObjectID]*models.Listing
}

func newFakeListingRepo() *fakeListingRepo {
	return &fakeListingRepo{listings: make(map[primitive.ObjectID]*models.Listing)}
}

func (r *fakeListingRepo) CreateListing(_ context.Context, listing *models.Listing) error {
	listing.ID = primitive.NewObjectID()
	listing.Status = models.ListingAvailable
	listing.CreatedAt = time.Now()
	listing.UpdatedAt = listing.CreatedAt
	r.listings[listing.ID] = listing
	return nil
}

func (r *fakeListingRepo) GetListingByID(_ context.Context, id primitive.ObjectID) (*models.Listing, error) {
	l, ok := r.listings[id]
	if !ok {
		return nil, repositories.ErrListingNotFound
	}
	return l, nil
}

func (r *fakeListingRepo) ListListings(_ context.Context, category, status string, skip, limit int64) ([]models.Listing, int64, error) {
	var all []models.Listing
	for _, l := range r.listings {
		if category != "" && l.Category != category {
			continue
		}
		if status != "" && l.Status != status {
			continue
		}
		all = append(all, *l)
	}
	total := int64(len(all))
	if skip >= total {
		return []models.Listing{}, total, nil
	}
	end := skip + limit
	if end > total {
		end = total
	}
	return all[skip:end], total, nil
}

func (r *fakeListingRepo) UpdateListing(_ context.Context, id primitive.ObjectID, fields bson.M) error {
	l, ok := r.listings[id]
	if !ok {
		return repositories.ErrListingNotFound
	}
	if v, ok := fields["title"].(string); ok {
		l.Title = v
	}
	if v, ok := fields["price"].(float64); ok {
		l.Price = v
	}
	l.UpdatedAt = time.Now()
	return nil
}

func (r *fakeListingRepo) MarkSold(_ context.Context, id primitive.ObjectID) error {
	l, ok := r.listings[id]
	if !ok {
		return repositories.ErrListingNotFound
	}
	if l.Status == models.ListingSold {
		return repositories.ErrAlreadyHandled
	}
	now := time.Now()
	l.Status = models.ListingSold
	l.SoldAt = &now
	return nil
}

func (r *fakeListingRepo) DeleteListing(_ context.Context, id primitive.ObjectID) error {
	if _, ok := r.listings[id]; !ok {
		return repositories.ErrListingNotFound
	}
	delete(r.listings, id)
	return nil
}

type fakeEventRepo struct {
	events map[primitive.ObjectID]*models.Event
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{events: make(map[primitive.ObjectID]*models.Event)}
}

func (r *fakeEventRepo) CreateEvent(_ context.Context, event *models.Event) error {
	event.ID = primitive.NewObjectID()
	event.Going = []primitive.ObjectID{}
	event.Interested = []primitive.ObjectID{}
	event.CreatedAt = time.Now()
	event.UpdatedAt = event.CreatedAt
	r.events[event.ID] = event
	return nil
}

func (r *fakeEventRepo) GetEventByID(_ context.Context, id primitive.ObjectID) (*models.Event, error) {
	e, ok := r.events[id]
	if !ok {
		return nil, repositories.ErrEventNotFound
	}
	return e, nil
}

func (r *fakeEventRepo) ListUpcoming(_ context.Context, skip, limit int64) ([]models.Event, int64, error) {
	var all []models.Event
	now := time.Now()
	for _, e := range r.events {
		if e.Date.After(now) {
			all = append(all, *e)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Date.Before(all[j].Date) })
	total := int64(len(all))
	if skip >= total {
		return []models.Event{}, total, nil
	}
	end := skip + limit
	if end > total {
		end = total
	}
	return all[skip:end], total, nil
}

func (r *fakeEventRepo) UpdateEvent(_ context.Context, id primitive.ObjectID, fields bson.M) error {
	e, ok := r.events[id]
	if !ok {
		return repositories.ErrEventNotFound
	}
	if v, ok := fields["title"].(string); ok {
		e.Title = v
	}
	if v, ok := fields["date"].(time.Time); ok {
		e.Date = v
	}
	e.UpdatedAt = time.Now()
	return nil
}

func (r *fakeEventRepo) DeleteEvent(_ context.Context, id primitive.ObjectID) error {
	if _, ok := r.events[id]; !ok {
		return repositories.ErrEventNotFound
	}
	delete(r.events, id)
	return nil
}

func (r *fakeEventRepo) SetRSVP(_ context.Context, id, userID primitive.ObjectID, status string) error {
	e := r.events[id]
	e.Going = removeID(e.Going, userID)
	e.Interested = removeID(e.Interested, userID)
	if status == models.RSVPGoing {
		e.Going = append(e.Going, userID)
	} else {
		e.Interested = append(e.Interested, userID)
	}
	return nil
}

func (r *fakeEventRepo) ClearRSVP(_ context.Context, id, userID primitive.ObjectID) error {
	e := r.events[id]
	e.Going = removeID(e.Going, userID)
	e.Interested = removeID(e.Interested, userID)
	return nil
}
