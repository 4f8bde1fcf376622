package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/example/blog-records/internal/service"
)

type AuthorHandler struct {
	service *service.AuthorService
}

func NewAuthorHandler(s *service.AuthorService) *AuthorHandler {
	return &AuthorHandler{service: s}
}

type createAuthorReq struct {
	Name        string  `json:"name"`
	PhoneNumber *string `json:"phone_number"`
}

type updateAuthorReq struct {
	Name             *string `json:"name"`
	PhoneNumber      *string `json:"phone_number"`
	ClearPhoneNumber bool    `json:"clear_phone_number"`
}

func (h *AuthorHandler) CreateAuthor(c *gin.Context) {
	var req createAuthorReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	author, err := h.service.CreateAuthor(c.Request.Context(), service.CreateAuthorInput{Name: req.Name, PhoneNumber: req.PhoneNumber})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, author)
}

func (h *AuthorHandler) ListAuthors(c *gin.Context) {
	authors, err := h.service.ListAuthors(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, authors)
}

func (h *AuthorHandler) GetAuthor(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	author, err := h.service.GetAuthor(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, author)
}

func (h *AuthorHandler) UpdateAuthor(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req updateAuthorReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	author, err := h.service.UpdateAuthor(c.Request.Context(), id, service.UpdateAuthorInput{
		Name:             req.Name,
		PhoneNumber:      req.PhoneNumber,
		ClearPhoneNumber: req.ClearPhoneNumber,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, author)
}

func (h *AuthorHandler) DeleteAuthor(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.service.DeleteAuthor(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
