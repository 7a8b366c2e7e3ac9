package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/hatchery/internal/server/handlers"
)

// New wires the Gin engine with required routes and middlewares.
func New(handler *handlers.PipelineHandler, metrics http.Handler, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	if metrics != nil {
		r.GET("/metrics", gin.WrapH(metrics))
	}

	machines := r.Group("/machines")
	machines.GET("", handler.ListMachines)
	machines.POST("", handler.CreateMachine)
	machines.PATCH("/:id", handler.UpdateMachineCapacity)

	batches := r.Group("/batches")
	batches.POST("", handler.CreateBatch)
	batches.GET("", handler.ListBatches)
	batches.GET("/:id", handler.GetBatch)
	batches.DELETE("/:id", handler.DeleteBatch)
	batches.POST("/:id/send-to-setter", handler.SendToSetter)
	batches.POST("/:id/move-to-hatcher", handler.MoveToHatcher)
	batches.POST("/:id/done", handler.BatchDone)
	batches.POST("/:id/deliveries", handler.DeliverEggs)
	batches.POST("/:id/selections", handler.AddSelection)
	batches.POST("/:id/break-lines", handler.AddBreakLine)
	batches.POST("/:id/break-lines/process", handler.ProcessBreakLines)
	batches.POST("/:id/break", handler.BreakEggs)
	batches.GET("/:id/observations", handler.ListBatchObservations)
	batches.POST("/:id/observations/:kind", handler.AddBatchObservation)

	stages := r.Group("/stages")
	stages.GET("/:id", handler.GetStage)
	stages.POST("/:id/mortality", handler.RecordStageMortality)
	stages.POST("/:id/move-to-hatcher", handler.MoveStageToHatcher)
	stages.POST("/:id/move-to-packaging", handler.MoveToPackaging)
	stages.POST("/:id/done", handler.StageDone)
	stages.POST("/:id/observations/:kind", handler.AddStageObservation)

	packaging := r.Group("/packaging")
	packaging.GET("/:id", handler.GetPackaging)
	packaging.POST("/:id/mortality", handler.RecordPackagingMortality)
	packaging.POST("/:id/ready-for-transfer", handler.ReadyForTransfer)
	packaging.POST("/:id/done", handler.PackagingDone)

	transfers := r.Group("/transfers")
	transfers.GET("/:id", handler.GetTransfer)
	transfers.POST("/:id/locations", handler.SetTransferLocations)
	transfers.POST("/:id/done", handler.TransferDone)
	transfers.POST("/:id/delivered", handler.TransferDelivered)

	r.POST("/receipts", handler.ReceiveFromPicking)

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.String("actor", c.GetHeader(handlers.ActorHeader)))
	}
}
