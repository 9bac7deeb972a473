package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jmartens/shopvault/internal/api/dto"
	"github.com/jmartens/shopvault/internal/core/domain"
	"github.com/jmartens/shopvault/internal/core/repository"
	"github.com/jmartens/shopvault/internal/core/service"
)

type ClientHandler struct {
	clientRepo  repository.ClientRepository
	authService *service.AuthService
}

func NewClientHandler(clientRepo repository.ClientRepository, authService *service.AuthService) *ClientHandler {
	return &ClientHandler{
		clientRepo:  clientRepo,
		authService: authService,
	}
}

// CreateClient handles POST /clients
func (h *ClientHandler) CreateClient(c *gin.Context) {
	var req dto.CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	secret := uuid.New().String()

	hashedSecret, err := h.authService.HashPassword(secret)
	if err != nil {
		respondError(c, err)
		return
	}

	client := domain.NewClient(req.Label, hashedSecret, []string{"all"})
	if err := h.clientRepo.Create(c.Request.Context(), client); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ClientCreateResponse{
		ID:        client.ID,
		Label:     client.Label,
		Secret:    secret, // Only shown on creation!
		Scopes:    client.Scopes,
		CreatedAt: client.CreatedAt,
		UpdatedAt: client.UpdatedAt,
	})
}

// GetClient handles GET /clients/:id
func (h *ClientHandler) GetClient(c *gin.Context) {
	id := c.Param("id")

	client, err := h.clientRepo.FindByID(c.Request.Context(), id)
	if err != nil {
		respondNotFound(c, fmt.Sprintf("Client not found: %s", id))
		return
	}

	c.JSON(http.StatusOK, toClientResponse(client))
}

// ListClients handles GET /clients
func (h *ClientHandler) ListClients(c *gin.Context) {
	clients, err := h.clientRepo.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	total := len(clients)
	response := dto.ClientListResponse{
		Items: make([]dto.ClientResponse, total),
		Pagination: dto.PaginationInfo{
			Total:      total,
			Page:       1,
			PerPage:    total,
			TotalPages: 1,
		},
	}

	for i, client := range clients {
		response.Items[i] = toClientResponse(client)
	}

	c.JSON(http.StatusOK, response)
}

// UpdateClient handles PUT /clients/:id
func (h *ClientHandler) UpdateClient(c *gin.Context) {
	id := c.Param("id")

	client, err := h.clientRepo.FindByID(c.Request.Context(), id)
	if err != nil {
		respondNotFound(c, fmt.Sprintf("Client not found: %s", id))
		return
	}

	var req dto.UpdateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	client.Label = req.Label
	if err := h.clientRepo.Update(c.Request.Context(), client); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toClientResponse(client))
}

// DeleteClient handles DELETE /clients/:id
func (h *ClientHandler) DeleteClient(c *gin.Context) {
	id := c.Param("id")

	if err := h.clientRepo.Delete(c.Request.Context(), id); err != nil {
		respondNotFound(c, fmt.Sprintf("Client not found: %s", id))
		return
	}

	c.Status(http.StatusNoContent)
}

func toClientResponse(client *domain.Client) dto.ClientResponse {
	return dto.ClientResponse{
		ID:        client.ID,
		Label:     client.Label,
		Scopes:    client.Scopes,
		CreatedAt: client.CreatedAt,
		UpdatedAt: client.UpdatedAt,
	}
}
