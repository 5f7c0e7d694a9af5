package v1

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"billingest/internal/importer"
	"billingest/internal/model"
)

const (
	uploadField = "file"
	uploadExt   = ".xlsx"
)

// UploadClients 导入客户与机构
// POST /api/clients/upload
func (h *Handler) UploadClients(c *gin.Context) {
	h.upload(c, model.ImportKindClients)
}

// UploadBills 导入账单
// POST /api/bills/upload
func (h *Handler) UploadBills(c *gin.Context) {
	h.upload(c, model.ImportKindBills)
}

func (h *Handler) upload(c *gin.Context, kind model.ImportKind) {
	fileHeader, ok := h.receiveUpload(c)
	if !ok {
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "读取上传文件失败"})
		return
	}
	defer file.Close()

	opts := importer.ImportOptions{
		Kind:     kind,
		Source:   file,
		Filename: fileHeader.Filename,
	}

	var report *importer.ImportReport
	if kind == model.ImportKindClients {
		report, err = h.coordinator.ImportClients(c.Request.Context(), opts)
	} else {
		report, err = h.coordinator.ImportBills(c.Request.Context(), opts)
	}
	if err != nil {
		writeImportError(c, err)
		return
	}

	c.JSON(http.StatusCreated, report)
}

// ImportBillsStream 导入账单 (SSE 流式响应)
// POST /api/bills/import
func (h *Handler) ImportBillsStream(c *gin.Context) {
	fileHeader, ok := h.receiveUpload(c)
	if !ok {
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "读取上传文件失败"})
		return
	}
	defer file.Close()

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "不支持流式响应"})
		return
	}

	// 设置 SSE 响应头
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	progressChan := h.coordinator.Import(c.Request.Context(), importer.ImportOptions{
		Kind:     model.ImportKindBills,
		Source:   file,
		Filename: fileHeader.Filename,
	})

	for event := range progressChan {
		eventData, err := json.Marshal(event)
		if err != nil {
			continue
		}

		// SSE 格式: data: {json}\n\n
		fmt.Fprintf(c.Writer, "data: %s\n\n", eventData)
		flusher.Flush()
	}
}

// receiveUpload 检查上传文件：缺失 400，超限 413，非 xlsx 415
func (h *Handler) receiveUpload(c *gin.Context) (*multipart.FileHeader, bool) {
	if h.maxUploadBytes > 0 {
		if c.Request.ContentLength > h.maxUploadBytes {
			rejectTooLarge(c, h.maxUploadBytes)
			return nil, false
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	}

	fileHeader, err := c.FormFile(uploadField)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			rejectTooLarge(c, h.maxUploadBytes)
			return nil, false
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": `Empty "file" field`})
		return nil, false
	}
	if fileHeader.Size == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": `Empty "file" field`})
		return nil, false
	}
	if !strings.EqualFold(filepath.Ext(fileHeader.Filename), uploadExt) {
		c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": "File must be .xlsx"})
		return nil, false
	}
	return fileHeader, true
}

func rejectTooLarge(c *gin.Context, limit int64) {
	c.JSON(http.StatusRequestEntityTooLarge, gin.H{
		"error": fmt.Sprintf("File must not exceed %d MB", limit>>20),
	})
}

// writeImportError 工作簿结构问题返回 422，其余为 500
func writeImportError(c *gin.Context, err error) {
	if importer.IsWorkbookError(err) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "导入失败"})
}
