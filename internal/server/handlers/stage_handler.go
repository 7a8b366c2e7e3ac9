package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type locationsRequest struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
}

// GetStage returns a stage entry with its machine and observations.
func (h *PipelineHandler) GetStage(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	detail, err := h.svc.GetStage(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// RecordStageMortality sets the mortality of a stage entry.
func (h *PipelineHandler) RecordStageMortality(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req mortalityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	entry, err := h.svc.RecordStageMortality(c.Request.Context(), id, req.Mortality)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

// MoveStageToHatcher moves one setter entry to a hatcher.
func (h *PipelineHandler) MoveStageToHatcher(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	entry, err := h.svc.MoveStageToHatcher(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

// MoveToPackaging boxes the chicks of a hatcher entry.
func (h *PipelineHandler) MoveToPackaging(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	unit, err := h.svc.MoveToPackaging(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"packaging": unit, "boxes": unit.Boxes()})
}

// StageDone closes a stage entry.
func (h *PipelineHandler) StageDone(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	entry, err := h.svc.StageDone(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

// GetPackaging returns a packaging unit.
func (h *PipelineHandler) GetPackaging(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	unit, err := h.svc.GetPackaging(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"packaging": unit, "boxes": unit.Boxes()})
}

// RecordPackagingMortality sets the chicks lost during packaging.
func (h *PipelineHandler) RecordPackagingMortality(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req mortalityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	unit, err := h.svc.RecordPackagingMortality(c.Request.Context(), id, req.Mortality)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"packaging": unit, "boxes": unit.Boxes()})
}

// ReadyForTransfer closes packaging and drafts the chick transfer.
func (h *PipelineHandler) ReadyForTransfer(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	transfer, err := h.svc.ReadyForTransfer(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	if transfer == nil {
		c.JSON(http.StatusOK, gin.H{"transfer": nil, "message": "no chicks left to transfer"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"transfer": transfer})
}

// PackagingDone closes a packaging unit.
func (h *PipelineHandler) PackagingDone(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	unit, err := h.svc.PackagingDone(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"packaging": unit, "boxes": unit.Boxes()})
}

// GetTransfer returns a transfer.
func (h *PipelineHandler) GetTransfer(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	transfer, err := h.svc.GetTransfer(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, transfer)
}

// SetTransferLocations changes the locations of a draft transfer.
func (h *PipelineHandler) SetTransferLocations(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req locationsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	transfer, err := h.svc.SetTransferLocations(c.Request.Context(), id, req.Source, req.Destination)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, transfer)
}

// TransferDone books the chick movement in the stock ledger.
func (h *PipelineHandler) TransferDone(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	transfer, err := h.svc.TransferDone(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, transfer)
}

// TransferDelivered validates the chick movement.
func (h *PipelineHandler) TransferDelivered(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	transfer, err := h.svc.TransferDelivered(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, transfer)
}
