package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "pennywise/internal/errors"
	"pennywise/internal/overview"
	"pennywise/internal/services"
)

// ReportHandler serves the monthly overview.
type ReportHandler struct {
	overviewService services.OverviewServicer
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(overviewService services.OverviewServicer) *ReportHandler {
	return &ReportHandler{overviewService: overviewService}
}

// GetOverview returns spending per month and category merged with budget ceilings.
// @Summary     Monthly overview
// @Description Spending per month and category in the canonical currency. Recurring spend is broken down per subcategory and each month's budget ceiling appears under "budget".
// @Tags        reports
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} overview.Overview "Monthly overview"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /reports/overview [get]
func (h *ReportHandler) GetOverview(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.overviewService.GetOverview(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ExportOverview renders the overview as an XLSX workbook.
// @Summary     Export monthly overview
// @Description Download the monthly overview as a spreadsheet with one row per month
// @Tags        reports
// @Produce     application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security    BearerAuth
// @Success     200 {file} file "Overview workbook"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /reports/overview/export [get]
func (h *ReportHandler) ExportOverview(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.overviewService.GetOverview(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := result.WriteXLSX(&buf); err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}

	filename := fmt.Sprintf("overview-%s.xlsx", time.Now().UTC().Format("2006-01-02"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, overview.ExportContentType, buf.Bytes())
}
