package controller

import (
	"time"

	"exam_proctor_backend/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type HealthController struct {
	DB *gorm.DB
}

func NewHealthController(db *gorm.DB) *HealthController {
	return &HealthController{DB: db}
}

// Check godoc
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/health [get]
func (ctl *HealthController) Check(c *gin.Context) {
	status := "ok"
	if sqlDB, err := ctl.DB.DB(); err != nil || sqlDB.Ping() != nil {
		status = "degraded"
	}
	util.Success(c, gin.H{
		"status": status,
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}
