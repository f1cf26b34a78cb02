package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"github.com/partslink/backend/internal/models"
	"github.com/partslink/backend/internal/service"
	"github.com/partslink/backend/internal/spreadsheet"
)

// maxClientErrors caps the error sample returned in the upload response;
// the persisted upload record keeps the full bounded log.
const maxClientErrors = 10

// @Summary Upload sales spreadsheet
// @Description Ingests a sales .xlsx/.csv file, reshapes rows into invoices and recomputes loyalty
// @Tags upload
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "sales spreadsheet"
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Router /api/admin/upload/sales [post]
func (h *Handler) UploadSales(c *gin.Context) {
	headers, rows, fileName, ok := h.readSpreadsheet(c)
	if !ok {
		return
	}
	if err := service.ValidateSalesHeaders(headers); err != nil {
		writeSchemaError(c, err)
		return
	}

	ctx := c.Request.Context()
	uploadedBy := uploaderName(c)
	uploadID, err := h.Store.CreateUpload(ctx, uploadedBy, "sales", fileName, len(rows))
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to create upload record", err.Error())
		return
	}

	pipeline := &service.SalesPipeline{Store: h.Store, Logger: h.Logger}
	report, err := pipeline.Run(ctx, headers, rows)
	if err != nil {
		h.Logger.Error().Err(err).Int64("upload_id", uploadID).Msg("sales upload failed")
		if finishErr := h.Store.FinishUpload(ctx, uploadID, 0, 0, service.StatusFailed, []byte("[]")); finishErr != nil {
			h.Logger.Error().Err(finishErr).Int64("upload_id", uploadID).Msg("failed to finalize upload record")
		}
		writeError(c, http.StatusInternalServerError, "PROCESSING_ERROR", "Sales upload failed", err.Error())
		return
	}

	h.finalizeUpload(c, uploadID, uploadedBy, "Upload Sales", fileName, report)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Sales data processed.",
		"data": gin.H{
			"rows_processed": report.RowsProcessed,
			"success_count":  report.SuccessCount,
			"failed_count":   report.FailedCount,
			"errors":         report.ClientErrors(maxClientErrors),
		},
	})
}

// @Summary Upload stock spreadsheet
// @Tags upload
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "stock spreadsheet"
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Router /api/admin/upload/stock [post]
func (h *Handler) UploadStock(c *gin.Context) {
	headers, rows, fileName, ok := h.readSpreadsheet(c)
	if !ok {
		return
	}
	if err := service.ValidateStockHeaders(headers); err != nil {
		writeSchemaError(c, err)
		return
	}

	ctx := c.Request.Context()
	uploadedBy := uploaderName(c)
	uploadID, err := h.Store.CreateUpload(ctx, uploadedBy, "stock", fileName, len(rows))
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to create upload record", err.Error())
		return
	}

	pipeline := &service.StockPipeline{Store: h.Store, Logger: h.Logger}
	report, err := pipeline.Run(ctx, headers, rows)
	if err != nil {
		h.Logger.Error().Err(err).Int64("upload_id", uploadID).Msg("stock upload failed")
		if finishErr := h.Store.FinishUpload(ctx, uploadID, 0, 0, service.StatusFailed, []byte("[]")); finishErr != nil {
			h.Logger.Error().Err(finishErr).Int64("upload_id", uploadID).Msg("failed to finalize upload record")
		}
		writeError(c, http.StatusInternalServerError, "PROCESSING_ERROR", "Stock upload failed", err.Error())
		return
	}

	h.finalizeUpload(c, uploadID, uploadedBy, "Upload Stock", fileName, report)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Stock data processed.",
		"data": gin.H{
			"rows_processed": report.RowsProcessed,
			"success_count":  report.SuccessCount,
			"failed_count":   report.FailedCount,
			"errors":         report.ClientErrors(maxClientErrors),
		},
	})
}

func (h *Handler) SalesTemplate(c *gin.Context) {
	f, err := spreadsheet.SalesTemplate()
	if err != nil {
		writeError(c, http.StatusInternalServerError, "TEMPLATE_ERROR", "Failed to build template", err.Error())
		return
	}
	writeWorkbook(c, f, "sales_template.xlsx")
}

func (h *Handler) StockTemplate(c *gin.Context) {
	f, err := spreadsheet.StockTemplate()
	if err != nil {
		writeError(c, http.StatusInternalServerError, "TEMPLATE_ERROR", "Failed to build template", err.Error())
		return
	}
	writeWorkbook(c, f, "stock_template.xlsx")
}

// readSpreadsheet pulls the multipart file out of the request and decodes
// it. On failure it writes the error response and returns ok=false.
func (h *Handler) readSpreadsheet(c *gin.Context) ([]string, []spreadsheet.Row, string, bool) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "file is required", nil)
		return nil, nil, "", false
	}
	f, err := fileHeader.Open()
	if err != nil {
		writeError(c, http.StatusBadRequest, "FILE_UNREADABLE", "File cannot be opened", err.Error())
		return nil, nil, "", false
	}
	defer f.Close()

	headers, rows, err := spreadsheet.Parse(f, fileHeader.Filename)
	if err != nil {
		writeError(c, http.StatusBadRequest, "FILE_UNREADABLE", "File cannot be read. Expected .xlsx or .csv.", err.Error())
		return nil, nil, "", false
	}
	return headers, rows, fileHeader.Filename, true
}

func (h *Handler) finalizeUpload(c *gin.Context, uploadID int64, uploadedBy, action, fileName string, report *service.BatchReport) {
	ctx := c.Request.Context()
	if err := h.Store.FinishUpload(ctx, uploadID, report.SuccessCount, report.FailedCount, report.Status(), report.ErrorLog()); err != nil {
		h.Logger.Error().Err(err).Int64("upload_id", uploadID).Msg("failed to finalize upload record")
	}
	entry := models.ActivityLog{
		UserName:    uploadedBy,
		Action:      action,
		Description: fmt.Sprintf("Processed %s: %d rows succeeded, %d failed", fileName, report.SuccessCount, report.FailedCount),
		IPAddress:   c.ClientIP(),
	}
	if err := h.Store.InsertActivityLog(ctx, entry); err != nil {
		h.Logger.Error().Err(err).Int64("upload_id", uploadID).Msg("failed to write activity log")
	}
}

func writeSchemaError(c *gin.Context, err error) {
	var schemaErr *service.SchemaError
	if errors.As(err, &schemaErr) {
		writeError(c, http.StatusBadRequest, "SCHEMA_ERROR", schemaErr.Error(), schemaErr.Missing)
		return
	}
	writeError(c, http.StatusBadRequest, "SCHEMA_ERROR", err.Error(), nil)
}

func uploaderName(c *gin.Context) string {
	if name := c.GetHeader("X-Admin-User"); name != "" {
		return name
	}
	return "admin"
}

func writeWorkbook(c *gin.Context, f *excelize.File, fileName string) {
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename="+fileName)
	if err := f.Write(c.Writer); err != nil {
		_ = c.Error(err)
	}
}
