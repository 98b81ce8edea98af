package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-user-directory/internal/application"
	"github.com/oksasatya/go-user-directory/internal/domain/entity"
	"github.com/oksasatya/go-user-directory/pkg/helpers"
	"github.com/oksasatya/go-user-directory/pkg/response"
	"github.com/oksasatya/go-user-directory/pkg/validation"
)

// UserService is the part of application.Service the handlers depend on.
type UserService interface {
	Create(ctx context.Context, f entity.UserFields) (*entity.User, error)
	ListAll(ctx context.Context) ([]entity.User, error)
	GetByID(ctx context.Context, id string) (*entity.User, error)
	UpdateByID(ctx context.Context, id string, f entity.UserFields) (*entity.User, error)
	DeleteByID(ctx context.Context, id string) error
	Search(ctx context.Context, q string, size int) ([]entity.User, error)
}

type UserHandler struct {
	Svc    UserService
	Logger *logrus.Logger
}

func NewUserHandler(svc UserService, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger}
}

const (
	msgUserNotFound = "User not found"
	msgUserDeleted  = "User deleted successfully"
)

// userRequest is the body of create and update.
type userRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required"`
	Age   int    `json:"age" binding:"required,positive,lte=2147483647"`
}

func (r userRequest) fields() entity.UserFields {
	return entity.UserFields{Name: r.Name, Email: r.Email, Age: r.Age}
}

// userResponse is the wire shape of a user record.
type userResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Age   int    `json:"age"`
}

func toResponse(u *entity.User) userResponse {
	return userResponse{ID: u.ID, Name: u.Name, Email: u.Email, Age: u.Age}
}

func toResponses(users []entity.User) []userResponse {
	out := make([]userResponse, 0, len(users))
	for i := range users {
		out = append(out, toResponse(&users[i]))
	}
	return out
}

// bindUser binds and validates the body, answering 422 on failure.
func bindUser(c *gin.Context) (userRequest, bool) {
	var req userRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusUnprocessableEntity, "validation failed", validation.ToDetails(err))
		return req, false
	}
	return req, true
}

// Create POST /users
func (h *UserHandler) Create(c *gin.Context) {
	req, ok := bindUser(c)
	if !ok {
		return
	}
	u, err := h.Svc.Create(c.Request.Context(), req.fields())
	if err != nil {
		h.fail(c, err)
		return
	}
	response.JSON(c, http.StatusOK, toResponse(u))
}

// List GET /users
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.Svc.ListAll(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	response.JSON(c, http.StatusOK, toResponses(users))
}

// Get GET /users/:id
func (h *UserHandler) Get(c *gin.Context) {
	u, err := h.Svc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.JSON(c, http.StatusOK, toResponse(u))
}

// Update PUT /users/:id
func (h *UserHandler) Update(c *gin.Context) {
	req, ok := bindUser(c)
	if !ok {
		return
	}
	u, err := h.Svc.UpdateByID(c.Request.Context(), c.Param("id"), req.fields())
	if err != nil {
		h.fail(c, err)
		return
	}
	response.JSON(c, http.StatusOK, toResponse(u))
}

// Delete DELETE /users/:id
func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.Svc.DeleteByID(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	response.Detail(c, http.StatusOK, msgUserDeleted)
}

// Search GET /users/search?q=&size=
func (h *UserHandler) Search(c *gin.Context) {
	size, _ := strconv.Atoi(c.Query("size"))
	users, err := h.Svc.Search(c.Request.Context(), c.Query("q"), size)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.JSON(c, http.StatusOK, toResponses(users))
}

// fail maps service errors onto status codes.
func (h *UserHandler) fail(c *gin.Context, err error) {
	var verr *application.ValidationError
	switch {
	case errors.As(err, &verr):
		response.Error(c, http.StatusUnprocessableEntity, "validation failed", verr.Fields)
	case errors.Is(err, application.ErrUserNotFound):
		response.Error(c, http.StatusNotFound, msgUserNotFound, nil)
	default:
		_ = c.Error(err)
		if h.Logger != nil {
			helpers.LogError(h.Logger, "user request failed", err, logrus.Fields{
				"request_id": c.GetString("request_id"),
				"route":      c.FullPath(),
			})
		}
		response.Error(c, http.StatusInternalServerError, "internal server error", nil)
	}
}
