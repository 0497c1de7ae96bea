package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/vortechdev/enilai-gateway/internal/service"
	"github.com/vortechdev/enilai-gateway/pkg/response"
)

// ExportHandler streams the score report downloads.
type ExportHandler struct {
	service *service.ExportService
}

// NewExportHandler creates a new handler.
func NewExportHandler(svc *service.ExportService) *ExportHandler {
	return &ExportHandler{service: svc}
}

// Scores godoc
// @Summary Download the score report
// @Description Render the score list as CSV, XLSX or PDF
// @Tags Export
// @Produce octet-stream
// @Param format query string false "csv, xlsx or pdf" default(csv)
// @Success 200 {file} binary
// @Failure 400 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /exports/scores [get]
func (h *ExportHandler) Scores(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}

	format := service.ExportFormat(c.DefaultQuery("format", string(service.ExportFormatCSV)))
	result, err := h.service.Scores(c.Request.Context(), sess, format)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+result.Filename+`"`)
	c.Data(200, result.ContentType, result.Payload)
}
