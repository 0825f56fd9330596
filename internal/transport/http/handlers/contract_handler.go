package handlers

import (
	nethttp "net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/servana/eventrelay/internal/domain/repository"
	"github.com/servana/eventrelay/internal/domain/service"
	"github.com/servana/eventrelay/internal/transport/http/middleware"
	"github.com/servana/eventrelay/internal/transport/http/response"
)

type Handler struct {
	contracts service.ContractService
	store     repository.Store
}

func NewHandler(contracts service.ContractService, store repository.Store) *Handler {
	return &Handler{
		contracts: contracts,
		store:     store,
	}
}

type createContractRequest struct {
	CompanyName string `json:"company_name" binding:"required"`
	Service     string `json:"service" binding:"required"`
}

func (h *Handler) createContract(c *gin.Context) {
	var req createContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, nethttp.StatusBadRequest, err.Error())
		return
	}

	idempotencyKey := c.GetString(middleware.IdempotencyKeyCtx)
	requestHash := c.GetString(middleware.IdempotencyHashCtx)

	contract, alreadyExist, err := h.contracts.Create(c.Request.Context(), req.CompanyName, req.Service, idempotencyKey, requestHash)
	if err != nil {
		if err == repository.ErrIdempotencyKeyConflict {
			response.RespondError(c, nethttp.StatusConflict, "idempotency key conflicts with request")
			return
		}
		response.RespondError(c, nethttp.StatusInternalServerError, "create failed")
		return
	}
	if alreadyExist {
		response.RespondOK(c, nethttp.StatusOK, contract, nil)
		return
	}
	response.RespondOK(c, nethttp.StatusCreated, contract, nil)
}

func (h *Handler) getContract(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, nethttp.StatusBadRequest, "invalid id")
		return
	}

	contract, err := h.contracts.GetByID(c.Request.Context(), id)
	if err != nil {
		response.RespondError(c, nethttp.StatusNotFound, "not found")
		return
	}
	response.RespondOK(c, nethttp.StatusOK, contract, nil)
}

type updateContractRequest struct {
	CompanyName string `json:"company_name" binding:"required"`
	Service     string `json:"service" binding:"required"`
	Status      string `json:"status" binding:"required,oneof=active suspended terminated"`
}

func (h *Handler) updateContract(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, nethttp.StatusBadRequest, "invalid id")
		return
	}
	var req updateContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, nethttp.StatusBadRequest, err.Error())
		return
	}

	contract, err := h.contracts.Update(c.Request.Context(), id, req.CompanyName, req.Service, req.Status)
	if err != nil {
		response.RespondError(c, nethttp.StatusInternalServerError, "update failed")
		return
	}
	response.RespondOK(c, nethttp.StatusOK, contract, nil)
}

func (h *Handler) deleteContract(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, nethttp.StatusBadRequest, "invalid id")
		return
	}

	if err := h.contracts.DeleteByID(c.Request.Context(), id); err != nil {
		response.RespondError(c, nethttp.StatusInternalServerError, "delete failed")
		return
	}
	response.RespondOK(c, nethttp.StatusOK, gin.H{"status": "deleted"}, nil)
}

func (h *Handler) listContracts(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	cursor := c.Query("cursor")

	contracts, nextCursor, err := h.contracts.List(c.Request.Context(), limit, cursor)
	if err != nil {
		if err == repository.ErrInvalidCursor {
			response.RespondError(c, nethttp.StatusBadRequest, "invalid cursor")
			return
		}
		response.RespondError(c, nethttp.StatusInternalServerError, "list failed")
		return
	}
	meta := &response.Meta{NextCursor: nextCursor}
	response.RespondOK(c, nethttp.StatusOK, contracts, meta)
}

func (h *Handler) health(c *gin.Context) {
	if err := h.store.Ping(c.Request.Context()); err != nil {
		response.RespondOK(c, nethttp.StatusServiceUnavailable, gin.H{"status": "down"}, nil)
		return
	}
	response.RespondOK(c, nethttp.StatusOK, gin.H{"status": "ok"}, nil)
}
