package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mamadbah2/hatchery/internal/domain/models"
)

type createMachineRequest struct {
	Name     string `json:"name" binding:"required"`
	Kind     string `json:"kind" binding:"required"`
	Capacity int    `json:"capacity"`
}

type capacityRequest struct {
	Capacity *int `json:"capacity" binding:"required"`
}

// ListMachines returns the machines of the optional ?kind filter.
func (h *PipelineHandler) ListMachines(c *gin.Context) {
	var kind models.MachineKind
	if raw := c.Query("kind"); raw != "" {
		parsed, err := models.ParseMachineKind(raw)
		if err != nil {
			h.fail(c, err)
			return
		}
		kind = parsed
	}
	machines, err := h.svc.ListMachines(c.Request.Context(), kind)
	if err != nil {
		h.fail(c, err)
		return
	}
	if machines == nil {
		machines = []models.Machine{}
	}
	c.JSON(http.StatusOK, machines)
}

// CreateMachine adds a machine to a pool.
func (h *PipelineHandler) CreateMachine(c *gin.Context) {
	var req createMachineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	kind, err := models.ParseMachineKind(req.Kind)
	if err != nil {
		h.fail(c, err)
		return
	}
	machine, err := h.svc.CreateMachine(c.Request.Context(), req.Name, kind, req.Capacity)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, machine)
}

// UpdateMachineCapacity changes the capacity of an unused machine.
func (h *PipelineHandler) UpdateMachineCapacity(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req capacityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	machine, err := h.svc.UpdateMachineCapacity(c.Request.Context(), id, *req.Capacity)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, machine)
}
