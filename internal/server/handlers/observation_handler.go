package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mamadbah2/hatchery/internal/domain/models"
)

// ListBatchObservations returns the observations recorded on a batch.
func (h *PipelineHandler) ListBatchObservations(c *gin.Context) {
	h.listObservations(c, models.BatchOwner)
}

// AddBatchObservation records one observation of the :kind path parameter on a batch.
func (h *PipelineHandler) AddBatchObservation(c *gin.Context) {
	h.addObservation(c, models.BatchOwner)
}

// AddStageObservation records one observation on a stage entry.
func (h *PipelineHandler) AddStageObservation(c *gin.Context) {
	h.addObservation(c, models.StageOwner)
}

func (h *PipelineHandler) listObservations(c *gin.Context, owner func(int64) models.OwnerRef) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	obs, err := h.svc.ListObservations(c.Request.Context(), owner(id))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, obs)
}

func (h *PipelineHandler) addObservation(c *gin.Context, owner func(int64) models.OwnerRef) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	var (
		created any
		err     error
	)
	switch models.ObservationKind(c.Param("kind")) {
	case models.ObservationEquipment:
		var rec models.Equipment
		if err := c.ShouldBindJSON(&rec); err != nil {
			h.badRequest(c, err)
			return
		}
		created, err = h.svc.AddEquipment(ctx, owner(id), rec)
	case models.ObservationMaterial:
		var rec models.Material
		if err := c.ShouldBindJSON(&rec); err != nil {
			h.badRequest(c, err)
			return
		}
		created, err = h.svc.AddMaterial(ctx, owner(id), rec)
	case models.ObservationTemperature:
		var rec models.TemperatureReading
		if err := c.ShouldBindJSON(&rec); err != nil {
			h.badRequest(c, err)
			return
		}
		created, err = h.svc.AddTemperature(ctx, owner(id), rec)
	case models.ObservationSanitation:
		var rec models.SanitationCheck
		if err := c.ShouldBindJSON(&rec); err != nil {
			h.badRequest(c, err)
			return
		}
		created, err = h.svc.AddSanitation(ctx, owner(id), rec)
	default:
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown observation kind"})
		return
	}
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}
