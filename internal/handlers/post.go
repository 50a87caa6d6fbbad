package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sbilibin2017/fit-tracker/internal/logger"
	"github.com/sbilibin2017/fit-tracker/internal/middlewares"
	"github.com/sbilibin2017/fit-tracker/internal/models"
	"github.com/sbilibin2017/fit-tracker/internal/services"
)

// PostServicer defines the interface that the post service must implement.
type PostServicer interface {
	List(ctx context.Context, viewerID int64, filter models.PostFilter) ([]models.PostDB, error)
	Get(ctx context.Context, viewerID, id int64) (*models.PostDB, error)
	Create(ctx context.Context, viewerID int64, title, content string, private bool) (*models.PostDB, error)
	Update(ctx context.Context, viewerID, id int64, title, content string, private bool) (*models.PostDB, error)
	Delete(ctx context.Context, viewerID, id int64) error
}

// PostRequest represents the JSON body for creating or updating a post
// swagger:model PostRequest
type PostRequest struct {
	// Title
	// required: true
	// default: Morning run
	Title string `json:"title"`

	// Content
	// required: true
	// default: 5k in 25 minutes
	Content string `json:"content"`

	// Visibility, defaults to private when omitted
	// default: true
	Private *bool `json:"private"`
}

// NewListPostsHandler returns an HTTP handler for listing posts visible to
// the caller. An empty result set is reported as 404, not as an empty list.
// @Summary List posts
// @Description Returns the caller's posts and other users' public posts. Supports title search, owner filtering and pagination.
// @Tags posts
// @Produce json
// @Param search query string false "Substring to match in titles"
// @Param owner_id query int false "Restrict to one author (id is accepted as an alias)"
// @Param limit query int false "Page size" default(10)
// @Param offset query int false "Rows to skip" default(0)
// @Success 200 {array} models.PostDB "Matching posts"
// @Failure 401 {object} handlers.ErrorResponse "Not authenticated"
// @Failure 404 {object} handlers.ErrorResponse "No posts matched"
// @Router /posts [get]
// @Security BearerAuth
func NewListPostsHandler(svc PostServicer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewer := middlewares.GetUserFromContext(r.Context())
		if viewer == nil {
			writeDetail(w, http.StatusUnauthorized, "Not authenticated")
			return
		}

		filter := models.PostFilter{
			Search: r.URL.Query().Get("search"),
			Limit:  10,
		}

		if raw := r.URL.Query().Get("limit"); raw != "" {
			limit, err := strconv.Atoi(raw)
			if err != nil {
				writeDetail(w, http.StatusUnprocessableEntity, "Invalid limit")
				return
			}
			filter.Limit = limit
		}
		if raw := r.URL.Query().Get("offset"); raw != "" {
			offset, err := strconv.Atoi(raw)
			if err != nil {
				writeDetail(w, http.StatusUnprocessableEntity, "Invalid offset")
				return
			}
			filter.Offset = offset
		}

		// owner_id with id kept as a legacy alias
		raw := r.URL.Query().Get("owner_id")
		if raw == "" {
			raw = r.URL.Query().Get("id")
		}
		if raw != "" {
			ownerID, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				writeDetail(w, http.StatusUnprocessableEntity, "Invalid owner id")
				return
			}
			filter.OwnerID = &ownerID
		}

		posts, err := svc.List(r.Context(), viewer.ID, filter)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrPostNotFound):
				writeDetail(w, http.StatusNotFound, "No posts with the given criteria found")
			default:
				logger.Log.Errorw("internal server error", "err", err)
				writeDetail(w, http.StatusInternalServerError, "Internal server error")
			}
			return
		}

		writeJSON(w, http.StatusOK, posts)
	}
}

// NewCreatePostHandler returns an HTTP handler for creating a post.
// @Summary Create a post
// @Tags posts
// @Accept json
// @Produce json
// @Param postRequest body handlers.PostRequest true "Post to create"
// @Success 201 {object} models.PostDB "Created post"
// @Failure 401 {object} handlers.ErrorResponse "Not authenticated"
// @Failure 422 {object} handlers.ErrorResponse "Missing or malformed field"
// @Router /posts [post]
// @Security BearerAuth
func NewCreatePostHandler(svc PostServicer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewer := middlewares.GetUserFromContext(r.Context())
		if viewer == nil {
			writeDetail(w, http.StatusUnauthorized, "Not authenticated")
			return
		}

		req, ok := decodePostRequest(w, r)
		if !ok {
			return
		}

		private := true
		if req.Private != nil {
			private = *req.Private
		}

		post, err := svc.Create(r.Context(), viewer.ID, req.Title, req.Content, private)
		if err != nil {
			logger.Log.Errorw("internal server error", "err", err)
			writeDetail(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		writeJSON(w, http.StatusCreated, post)
	}
}

// NewGetPostHandler returns an HTTP handler for fetching a single post.
// A private post of another user reads as 401, a missing post as 404.
// @Summary Get a post by id
// @Tags posts
// @Produce json
// @Param id path int true "Post id"
// @Success 200 {object} models.PostDB "Post"
// @Failure 401 {object} handlers.ErrorResponse "Not authenticated or post is private"
// @Failure 404 {object} handlers.ErrorResponse "Post not found"
// @Router /posts/{id} [get]
// @Security BearerAuth
func NewGetPostHandler(svc PostServicer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewer := middlewares.GetUserFromContext(r.Context())
		if viewer == nil {
			writeDetail(w, http.StatusUnauthorized, "Not authenticated")
			return
		}

		id, ok := postID(w, r)
		if !ok {
			return
		}

		post, err := svc.Get(r.Context(), viewer.ID, id)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrPostNotFound):
				writeDetail(w, http.StatusNotFound, "Post not found")
			case errors.Is(err, services.ErrPrivatePost):
				writeDetail(w, http.StatusUnauthorized, "Post is private")
			default:
				logger.Log.Errorw("internal server error", "err", err)
				writeDetail(w, http.StatusInternalServerError, "Internal server error")
			}
			return
		}

		writeJSON(w, http.StatusOK, post)
	}
}

// NewUpdatePostHandler returns an HTTP handler for updating a post.
// @Summary Update a post
// @Description Replaces title, content and visibility. Only the owner may update a post.
// @Tags posts
// @Accept json
// @Produce json
// @Param id path int true "Post id"
// @Param postRequest body handlers.PostRequest true "New post fields"
// @Success 200 {object} models.PostDB "Updated post"
// @Failure 401 {object} handlers.ErrorResponse "Not authenticated"
// @Failure 403 {object} handlers.ErrorResponse "Post belongs to another user"
// @Failure 404 {object} handlers.ErrorResponse "Post not found"
// @Failure 422 {object} handlers.ErrorResponse "Missing or malformed field"
// @Router /posts/{id} [put]
// @Security BearerAuth
func NewUpdatePostHandler(svc PostServicer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewer := middlewares.GetUserFromContext(r.Context())
		if viewer == nil {
			writeDetail(w, http.StatusUnauthorized, "Not authenticated")
			return
		}

		id, ok := postID(w, r)
		if !ok {
			return
		}
		req, ok := decodePostRequest(w, r)
		if !ok {
			return
		}

		private := true
		if req.Private != nil {
			private = *req.Private
		}

		post, err := svc.Update(r.Context(), viewer.ID, id, req.Title, req.Content, private)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrPostNotFound):
				writeDetail(w, http.StatusNotFound, "Post not found")
			case errors.Is(err, services.ErrNotPostOwner):
				writeDetail(w, http.StatusForbidden, "Not authorized to perform requested action")
			default:
				logger.Log.Errorw("internal server error", "err", err)
				writeDetail(w, http.StatusInternalServerError, "Internal server error")
			}
			return
		}

		writeJSON(w, http.StatusOK, post)
	}
}

// NewDeletePostHandler returns an HTTP handler for deleting a post.
// @Summary Delete a post
// @Tags posts
// @Param id path int true "Post id"
// @Success 204 "Post deleted"
// @Failure 401 {object} handlers.ErrorResponse "Not authenticated"
// @Failure 403 {object} handlers.ErrorResponse "Post belongs to another user"
// @Failure 404 {object} handlers.ErrorResponse "Post not found"
// @Router /posts/{id} [delete]
// @Security BearerAuth
func NewDeletePostHandler(svc PostServicer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewer := middlewares.GetUserFromContext(r.Context())
		if viewer == nil {
			writeDetail(w, http.StatusUnauthorized, "Not authenticated")
			return
		}

		id, ok := postID(w, r)
		if !ok {
			return
		}

		if err := svc.Delete(r.Context(), viewer.ID, id); err != nil {
			switch {
			case errors.Is(err, services.ErrPostNotFound):
				writeDetail(w, http.StatusNotFound, "Post not found")
			case errors.Is(err, services.ErrNotPostOwner):
				writeDetail(w, http.StatusForbidden, "Not authorized to perform requested action")
			default:
				logger.Log.Errorw("internal server error", "err", err)
				writeDetail(w, http.StatusInternalServerError, "Internal server error")
			}
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func postID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "Invalid post id")
		return 0, false
	}
	return id, true
}

func decodePostRequest(w http.ResponseWriter, r *http.Request) (PostRequest, bool) {
	var req PostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "Invalid request body")
		return req, false
	}
	if req.Title == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "Field required: title")
		return req, false
	}
	if req.Content == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "Field required: content")
		return req, false
	}
	return req, true
}
