package controllers

import (
	"net/http"
	"strings"

	"github.com/reviewpromax/reviewpromax-backend/api/responses"
	"github.com/reviewpromax/reviewpromax-backend/api/validators"
	"github.com/reviewpromax/reviewpromax-backend/internal/forum"
	"github.com/reviewpromax/reviewpromax-backend/pkg/logger"
)

// CreateForumPost opens a new discussion thread.
func CreateForumPost(svc forum.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := requireCaller(w, r, logg)
		if !ok {
			return
		}

		var req forum.CreatePostParams
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		post, err := svc.CreatePost(r.Context(), caller, req)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, post)
	}
}

// ListForumPosts pages through threads, newest first.
func ListForumPosts(svc forum.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", 0, 1, 100)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ListPosts(r.Context(), forum.ListPostsParams{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// GetForumThread returns a post with its replies.
func GetForumThread(svc forum.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		postID, ok := uuidParam(w, r, logg, "postID")
		if !ok {
			return
		}

		thread, err := svc.GetThread(r.Context(), postID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, thread)
	}
}

type replyRequest struct {
	Body string `json:"body" validate:"required"`
}

// ReplyToForumPost adds a reply to a thread.
func ReplyToForumPost(svc forum.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := requireCaller(w, r, logg)
		if !ok {
			return
		}
		postID, ok := uuidParam(w, r, logg, "postID")
		if !ok {
			return
		}

		var req replyRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		reply, err := svc.Reply(r.Context(), caller, postID, req.Body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, reply)
	}
}

type voteRequest struct {
	Value int `json:"value" validate:"required"`
}

// VoteForumPost records an up or down vote on a thread.
func VoteForumPost(svc forum.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := requireCaller(w, r, logg)
		if !ok {
			return
		}
		postID, ok := uuidParam(w, r, logg, "postID")
		if !ok {
			return
		}

		var req voteRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		post, err := svc.Vote(r.Context(), caller, postID, req.Value)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, post)
	}
}

// DeleteForumPost removes a thread along with its replies and votes.
func DeleteForumPost(svc forum.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := requireCaller(w, r, logg)
		if !ok {
			return
		}
		postID, ok := uuidParam(w, r, logg, "postID")
		if !ok {
			return
		}

		if err := svc.DeletePost(r.Context(), caller, postID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
