// Package api exposes the quest service over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/dailyquest/internal/catalog"
	"github.com/abhisek/dailyquest/internal/logger"
	"github.com/abhisek/dailyquest/internal/quests"
)

// Service is the subset of quests.Service the handlers call.
type Service interface {
	Onboard(ctx context.Context, req quests.OnboardRequest) quests.Result
	LoadToday(ctx context.Context, userID string) quests.Result
	Snapshot(ctx context.Context, userID string) quests.Result
	Complete(ctx context.Context, userID string) quests.Result
	Fail(ctx context.Context, userID string) quests.Result
	Expire(ctx context.Context, userID string) quests.Result
	Refresh(ctx context.Context, userID string) quests.Result
	Allocate(ctx context.Context, userID, stat string, points int) quests.Result
}

var _ Service = (*quests.Service)(nil)

// SetupRouter wires every route onto a new gin engine.
func SetupRouter(svc Service, log *logger.Logger) *gin.Engine {
	if log == nil {
		log = logger.Nop()
	}
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(log))

	r.GET("/healthz", healthHandler)

	v1 := r.Group("/v1")
	{
		v1.POST("/users", OnboardHandler(svc))
		v1.GET("/users/:id/today", userHandler(svc.LoadToday))
		v1.GET("/users/:id/snapshot", userHandler(svc.Snapshot))
		v1.POST("/users/:id/complete", userHandler(svc.Complete))
		v1.POST("/users/:id/fail", userHandler(svc.Fail))
		v1.POST("/users/:id/expire", userHandler(svc.Expire))
		v1.POST("/users/:id/refresh", userHandler(svc.Refresh))
		v1.POST("/users/:id/allocate", AllocateHandler(svc))
	}
	return r
}

// GET /healthz
func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type onboardRequest struct {
	UserID       string `json:"user_id"`
	Gender       string `json:"gender"`
	Class        string `json:"class"`
	Environment  string `json:"environment"`
	TrainingDays int    `json:"training_days"`
}

// POST /v1/users
func OnboardHandler(svc Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req onboardRequest
		if c.Request.ContentLength != 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				badRequest(c, "invalid request body")
				return
			}
		}
		res := svc.Onboard(c.Request.Context(), quests.OnboardRequest{
			UserID: req.UserID,
			Key: catalog.Key{
				Gender:      catalog.Gender(req.Gender),
				Class:       catalog.Class(req.Class),
				Environment: catalog.Environment(req.Environment),
				Frequency:   req.TrainingDays,
			},
		})
		status := StatusFor(res)
		if res.Success {
			status = http.StatusCreated
		}
		c.JSON(status, res)
	}
}

type allocateRequest struct {
	Stat   string `json:"stat" binding:"required"`
	Points int    `json:"points" binding:"required"`
}

// POST /v1/users/:id/allocate
func AllocateHandler(svc Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req allocateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "stat and points are required")
			return
		}
		res := svc.Allocate(c.Request.Context(), c.Param("id"), req.Stat, req.Points)
		c.JSON(StatusFor(res), res)
	}
}

// userHandler adapts a per-user service call to a handler.
func userHandler(op func(ctx context.Context, userID string) quests.Result) gin.HandlerFunc {
	return func(c *gin.Context) {
		res := op(c.Request.Context(), c.Param("id"))
		c.JSON(StatusFor(res), res)
	}
}

// StatusFor maps a result to its HTTP status.
func StatusFor(res quests.Result) int {
	if res.Success {
		return http.StatusOK
	}
	switch res.Code {
	case quests.CodeNotFound:
		return http.StatusNotFound
	case quests.CodeCommitConflict, quests.CodeAlreadyExists:
		return http.StatusConflict
	case quests.CodeCatalogMissing:
		return http.StatusUnprocessableEntity
	case quests.CodeInvalidArgument:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, quests.Result{Error: msg, Code: quests.CodeInvalidArgument})
}

func requestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug("http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start).String(),
		)
	}
}
