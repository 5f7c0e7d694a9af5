package v1

import (
	"github.com/gin-gonic/gin"

	"billingest/internal/importer"
	"billingest/internal/store"
)

// Handler V1 API 处理器
type Handler struct {
	store          *store.Store
	coordinator    *importer.Coordinator
	maxUploadBytes int64
}

// NewHandler 创建 V1 API 处理器
func NewHandler(store *store.Store, coordinator *importer.Coordinator, maxUploadBytes int64) *Handler {
	return &Handler{
		store:          store,
		coordinator:    coordinator,
		maxUploadBytes: maxUploadBytes,
	}
}

// RegisterRoutes 注册 V1 API 路由
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	// 系统状态
	router.GET("/status", h.GetStatus)

	// 客户与机构导入
	router.POST("/clients/upload", h.UploadClients)

	// 账单导入
	router.POST("/bills/upload", h.UploadBills)
	router.POST("/bills/import", h.ImportBillsStream)
}
