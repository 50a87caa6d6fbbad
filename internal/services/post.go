package services

import (
	"context"
	"errors"

	"github.com/sbilibin2017/fit-tracker/internal/logger"
	"github.com/sbilibin2017/fit-tracker/internal/models"
)

// Error variables. Get on a private post of another user is ErrPrivatePost
// (401 at the boundary) while update/delete by a non-owner is
// ErrNotPostOwner (403) — the asymmetry is part of the API contract.
var (
	ErrPostNotFound = errors.New("post not found")
	ErrPrivatePost  = errors.New("post is private")
	ErrNotPostOwner = errors.New("post belongs to another user")
)

// PostReader defines read-only operations for posts.
type PostReader interface {
	List(ctx context.Context, viewerID int64, filter models.PostFilter) ([]models.PostDB, error)
	GetByID(ctx context.Context, id int64) (*models.PostDB, error)
}

// PostWriter defines write operations for posts.
type PostWriter interface {
	Save(ctx context.Context, ownerID int64, title, content string, private bool) (*models.PostDB, error)
	Update(ctx context.Context, id int64, title, content string, private bool) (*models.PostDB, error)
	Delete(ctx context.Context, id int64) (int64, error)
}

// PostService applies the ownership and visibility rules over the post store.
// Authorization always compares the acting identity against the stored
// owner_id, never a loaded relation.
type PostService struct {
	reader PostReader
	writer PostWriter
}

// NewPostService creates a new PostService instance.
func NewPostService(reader PostReader, writer PostWriter) *PostService {
	return &PostService{
		reader: reader,
		writer: writer,
	}
}

// List returns the posts visible to the viewer under the filter. No matching
// rows is ErrPostNotFound: this API reports empty result sets as 404.
func (svc *PostService) List(ctx context.Context, viewerID int64, filter models.PostFilter) ([]models.PostDB, error) {
	posts, err := svc.reader.List(ctx, viewerID, filter)
	if err != nil {
		logger.Log.Errorw("failed to list posts", "err", err)
		return nil, err
	}
	if len(posts) == 0 {
		return nil, ErrPostNotFound
	}
	return posts, nil
}

// Get returns a single post. A private post of another user reads as
// ErrPrivatePost, not as missing.
func (svc *PostService) Get(ctx context.Context, viewerID, id int64) (*models.PostDB, error) {
	post, err := svc.reader.GetByID(ctx, id)
	if err != nil {
		logger.Log.Errorw("failed to get post", "post_id", id, "err", err)
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}
	if post.Private && post.OwnerID != viewerID {
		return nil, ErrPrivatePost
	}
	return post, nil
}

// Create stores a post owned by the viewer. The owner is always the acting
// identity regardless of anything the client supplied.
func (svc *PostService) Create(ctx context.Context, viewerID int64, title, content string, private bool) (*models.PostDB, error) {
	post, err := svc.writer.Save(ctx, viewerID, title, content, private)
	if err != nil {
		logger.Log.Errorw("failed to create post", "err", err)
		return nil, err
	}
	return post, nil
}

// Update replaces a post's fields. Missing row wins over wrong owner.
func (svc *PostService) Update(ctx context.Context, viewerID, id int64, title, content string, private bool) (*models.PostDB, error) {
	post, err := svc.reader.GetByID(ctx, id)
	if err != nil {
		logger.Log.Errorw("failed to get post", "post_id", id, "err", err)
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}
	if post.OwnerID != viewerID {
		return nil, ErrNotPostOwner
	}

	updated, err := svc.writer.Update(ctx, id, title, content, private)
	if err != nil {
		logger.Log.Errorw("failed to update post", "post_id", id, "err", err)
		return nil, err
	}
	if updated == nil {
		return nil, ErrPostNotFound
	}
	return updated, nil
}

// Delete removes a post. Same error contract as Update.
func (svc *PostService) Delete(ctx context.Context, viewerID, id int64) error {
	post, err := svc.reader.GetByID(ctx, id)
	if err != nil {
		logger.Log.Errorw("failed to get post", "post_id", id, "err", err)
		return err
	}
	if post == nil {
		return ErrPostNotFound
	}
	if post.OwnerID != viewerID {
		return ErrNotPostOwner
	}

	affected, err := svc.writer.Delete(ctx, id)
	if err != nil {
		logger.Log.Errorw("failed to delete post", "post_id", id, "err", err)
		return err
	}
	if affected == 0 {
		return ErrPostNotFound
	}
	return nil
}
