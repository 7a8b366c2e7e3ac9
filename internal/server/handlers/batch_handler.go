package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mamadbah2/hatchery/internal/domain/models"
	"github.com/mamadbah2/hatchery/internal/service/pipeline"
)

type createBatchRequest struct {
	Lot              string    `json:"lot"`
	QuantityReceived int       `json:"quantity_received"`
	DateReceived     time.Time `json:"date_received"`
	PreStorageWaste  int       `json:"pre_storage_waste"`
	Notes            string    `json:"notes"`
}

type receiptRequest struct {
	Reference string    `json:"reference" binding:"required"`
	Quantity  int       `json:"quantity"`
	Date      time.Time `json:"date"`
}

type quantityRequest struct {
	Quantity int    `json:"quantity"`
	Note     string `json:"note"`
}

type mortalityRequest struct {
	Mortality int `json:"mortality"`
}

// CreateBatch registers a draft batch.
func (h *PipelineHandler) CreateBatch(c *gin.Context) {
	var req createBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	batch, err := h.svc.CreateBatch(c.Request.Context(), pipeline.NewBatch{
		Lot:              req.Lot,
		QuantityReceived: req.QuantityReceived,
		DateReceived:     req.DateReceived,
		PreStorageWaste:  req.PreStorageWaste,
		Notes:            req.Notes,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, batch)
}

// ReceiveFromPicking creates a batch from a validated receipt, once per reference.
func (h *PipelineHandler) ReceiveFromPicking(c *gin.Context) {
	var req receiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	batch, created, err := h.svc.ReceiveFromPicking(c.Request.Context(), pipeline.Receipt{
		Reference: req.Reference,
		Quantity:  req.Quantity,
		Date:      req.Date,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, batch)
}

// ListBatches returns every batch, newest first.
func (h *PipelineHandler) ListBatches(c *gin.Context) {
	batches, err := h.svc.ListBatches(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	if batches == nil {
		batches = []models.Batch{}
	}
	c.JSON(http.StatusOK, batches)
}

// GetBatch returns a batch with its stages and records.
func (h *PipelineHandler) GetBatch(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	detail, err := h.svc.GetBatch(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// DeleteBatch removes a batch and everything it owns.
func (h *PipelineHandler) DeleteBatch(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.svc.DeleteBatch(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SendToSetter loads a draft batch into the setter pool.
func (h *PipelineHandler) SendToSetter(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	entries, err := h.svc.SendToSetter(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// MoveToHatcher merges the setter entries of a batch into one hatcher entry.
func (h *PipelineHandler) MoveToHatcher(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req mortalityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	entry, err := h.svc.MoveToHatcher(c.Request.Context(), id, req.Mortality)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

// BatchDone closes a batch.
func (h *PipelineHandler) BatchDone(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	batch, err := h.svc.BatchDone(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, batch)
}

// DeliverEggs records eggs leaving the batch.
func (h *PipelineHandler) DeliverEggs(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req quantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	batch, err := h.svc.DeliverEggs(c.Request.Context(), id, req.Quantity)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, batch)
}

// AddSelection appends a selection line.
func (h *PipelineHandler) AddSelection(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var line models.SelectionLine
	if err := c.ShouldBindJSON(&line); err != nil {
		h.badRequest(c, err)
		return
	}
	created, err := h.svc.AddSelection(c.Request.Context(), id, line)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// AddBreakLine appends an unprocessed break line.
func (h *PipelineHandler) AddBreakLine(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req quantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	entry, err := h.svc.AddBreakLine(c.Request.Context(), id, req.Quantity, req.Note, actor(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// ProcessBreakLines scraps the pending break lines.
func (h *PipelineHandler) ProcessBreakLines(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	total, err := h.svc.ProcessBreakLines(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"broken": total})
}

// BreakEggs scraps eggs in one step.
func (h *PipelineHandler) BreakEggs(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req quantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	entry, err := h.svc.BreakEggs(c.Request.Context(), id, req.Quantity, req.Note, actor(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}
