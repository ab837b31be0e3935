package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pulsefeed/backend/internal/model"
	"github.com/pulsefeed/backend/internal/service"
)

const defaultPageLimit = 20

type PostHandler struct{}

func NewPostHandler() *PostHandler {
	return &PostHandler{}
}

// Create godoc
// @Summary Create a post as the authenticated account
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body model.CreatePostRequest true "Post text"
// @Success 201 {object} model.Post
// @Failure 400 {object} model.ErrorResponse
// @Failure 401 {object} model.ErrorResponse
// @Failure 503 {object} model.ErrorResponse
// @Router /api/v1/posts [post]
func (h *PostHandler) Create(c *gin.Context) {
	actor := GetActor(c)
	if actor == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req model.CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	post, err := actor.CreatePost(c.Request.Context(), req.Text)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, post)
}

// List godoc
// @Summary List the authenticated account's posts, newest first
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param offset query int false "Pagination offset" default(0)
// @Param limit query int false "Page size" default(20)
// @Success 200 {array} model.Post
// @Failure 401 {object} model.ErrorResponse
// @Failure 503 {object} model.ErrorResponse
// @Router /api/v1/posts [get]
func (h *PostHandler) List(c *gin.Context) {
	actor := GetActor(c)
	if actor == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	offset := intQuery(c, "offset", 0)
	limit := intQuery(c, "limit", defaultPageLimit)

	posts, err := actor.ListPosts(c.Request.Context(), offset, limit)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, posts)
}

// Get godoc
// @Summary Get one of the authenticated account's posts
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Success 200 {object} model.Post
// @Failure 401 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Failure 503 {object} model.ErrorResponse
// @Router /api/v1/posts/{id} [get]
func (h *PostHandler) Get(c *gin.Context) {
	actor := GetActor(c)
	if actor == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		writeError(c, service.ErrNotFound)
		return
	}

	post, err := actor.GetPost(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, post)
}

func intQuery(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	val, err := strconv.Atoi(raw)
	if err != nil || val < 0 {
		return fallback
	}
	return val
}
