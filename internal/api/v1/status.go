package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"billingest/internal/model"
)

// StatusResponse 系统状态响应
type StatusResponse struct {
	Initialized   bool             `json:"initialized"` // 是否已导入客户
	Clients       int              `json:"clients"`
	Organizations int              `json:"organizations"`
	Bills         int              `json:"bills"`
	LastImport    *model.ImportLog `json:"lastImport"` // 最近一次导入
}

// GetStatus 获取系统状态
// GET /api/status
func (h *Handler) GetStatus(c *gin.Context) {
	counts, err := h.store.GetCounts()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "统计数据失败"})
		return
	}

	// 尚无导入记录时 LastImport 为空
	last, err := h.store.LatestImportLog()
	if err != nil {
		last = nil
	}

	c.JSON(http.StatusOK, StatusResponse{
		Initialized:   counts.Clients > 0,
		Clients:       counts.Clients,
		Organizations: counts.Organizations,
		Bills:         counts.Bills,
		LastImport:    last,
	})
}
