package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"guitarworks/api/internal/repository"
)

type adminUserResponse struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type adminSessionResponse struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (h HandlerSet) AdminListUsers(c *gin.Context) {
	users, err := h.admin.ListUsers(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("list users failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database_unavailable"})
		return
	}

	items := make([]adminUserResponse, 0, len(users))
	for _, user := range users {
		items = append(items, adminUserResponse{
			ID:        user.ID,
			Username:  user.Username,
			CreatedAt: user.CreatedAt,
			UpdatedAt: user.UpdatedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"users": items,
	})
}

func (h HandlerSet) AdminDeleteUser(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_user_id"})
		return
	}

	if err := h.admin.DeleteUser(c.Request.Context(), id); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user_not_found"})
			return
		}
		h.log.Error().Err(err).Int64("user_id", id).Msg("delete user failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database_unavailable"})
		return
	}

	c.Status(http.StatusNoContent)
}

func (h HandlerSet) AdminListSessions(c *gin.Context) {
	sessions, err := h.admin.ListSessions(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("list sessions failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database_unavailable"})
		return
	}

	items := make([]adminSessionResponse, 0, len(sessions))
	for _, session := range sessions {
		items = append(items, adminSessionResponse{
			ID:        session.ID,
			UserID:    session.UserID,
			CreatedAt: session.CreatedAt,
			UpdatedAt: session.UpdatedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"sessions": items,
	})
}

func (h HandlerSet) AdminDeleteSession(c *gin.Context) {
	token := c.Param("id")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session id required"})
		return
	}

	if err := h.admin.DeleteSession(c.Request.Context(), token); err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "session_not_found"})
			return
		}
		h.log.Error().Err(err).Msg("delete session failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database_unavailable"})
		return
	}

	c.Status(http.StatusNoContent)
}
