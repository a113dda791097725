package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"salesdesk/internal/commission"
	"salesdesk/internal/gateway/middleware"
	"salesdesk/internal/services/commissions/handler"
	"salesdesk/internal/services/commissions/rpc"
)

const (
	maxUploadSize = 10 << 20
	monthsShown   = 6

	contentTypeCSV  = "text/csv; charset=utf-8"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type CommissionsHTTPHandler struct {
	commissionClient rpc.CommissionService
	columns          func() commission.Columns
	timeout          time.Duration
	logger           *zap.Logger
	now              func() time.Time
}

func NewCommissionsHTTPHandler(commissionClient rpc.CommissionService, columns func() commission.Columns, timeout time.Duration, logger *zap.Logger) *CommissionsHTTPHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CommissionsHTTPHandler{
		commissionClient: commissionClient,
		columns:          columns,
		timeout:          timeout,
		logger:           logger,
		now:              time.Now,
	}
}

// --- Request & Query Structs for Binding ---

type PaymentsQuery struct {
	Start string `form:"start" binding:"required"`
	End   string `form:"end" binding:"required"`
}

type ExportQuery struct {
	Format string `form:"format,default=csv" binding:"oneof=csv xlsx"`
}

type MonthOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Meta    interface{} `json:"meta,omitempty"`
}

func successResponse(message string, data interface{}) APIResponse {
	return APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	}
}

func errorResponse(message string) APIResponse {
	return APIResponse{
		Success: false,
		Message: message,
	}
}

func successWithMetaResponse(message string, data interface{}, meta interface{}) APIResponse {
	return APIResponse{
		Success: true,
		Message: message,
		Data:    data,
		Meta:    meta,
	}
}

// --- Helper for handling gRPC errors ---
func handleGRPCError(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}
	if s, ok := status.FromError(err); ok {
		switch s.Code() {
		case codes.InvalidArgument, codes.FailedPrecondition:
			c.JSON(http.StatusBadRequest, errorResponse(s.Message()))
		case codes.NotFound:
			c.JSON(http.StatusNotFound, errorResponse(s.Message()))
		case codes.AlreadyExists:
			c.JSON(http.StatusConflict, errorResponse(s.Message()))
		case codes.Unavailable:
			c.JSON(http.StatusServiceUnavailable, errorResponse(s.Message()))
		case codes.DeadlineExceeded:
			c.JSON(http.StatusGatewayTimeout, errorResponse("Service timed out"))
		default:
			c.JSON(http.StatusInternalServerError, errorResponse("Service error: "+s.Message()))
		}
	} else {
		c.JSON(http.StatusInternalServerError, errorResponse("Unknown service error"))
	}
	c.Abort()
	return true
}

// handleParseError reports file and column problems back to the uploader.
func handleParseError(c *gin.Context, err error) {
	var colErr *commission.ColumnsError
	switch {
	case errors.Is(err, commission.ErrEmptyFile):
		c.JSON(http.StatusBadRequest, errorResponse("Empty or malformed file"))
	case errors.As(err, &colErr):
		c.JSON(http.StatusBadRequest, errorResponse(colErr.Error()))
	default:
		c.JSON(http.StatusBadRequest, errorResponse("Failed to read file: "+err.Error()))
	}
	c.Abort()
}

func (h *CommissionsHTTPHandler) requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), h.timeout)
}

func (h *CommissionsHTTPHandler) readUpload(c *gin.Context) ([]commission.Row, bool) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("A file field named \"file\" is required"))
		return nil, false
	}
	if fh.Size > maxUploadSize {
		c.JSON(http.StatusRequestEntityTooLarge, errorResponse("File is too large"))
		return nil, false
	}
	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Failed to open upload"))
		return nil, false
	}
	defer f.Close()

	content, err := io.ReadAll(io.LimitReader(f, maxUploadSize))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Failed to read upload"))
		return nil, false
	}
	rows, err := commission.ParseFile(fh.Filename, content)
	if err != nil {
		handleParseError(c, err)
		return nil, false
	}
	return rows, true
}

func (h *CommissionsHTTPHandler) uploadMonth(c *gin.Context) (string, bool) {
	month := c.Param("month")
	if !commission.ValidMonth(month) {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid month, expected YYYY-MM"))
		return "", false
	}
	return month, true
}

// --- Month Handlers ---

func (h *CommissionsHTTPHandler) ListMonths(c *gin.Context) {
	months := commission.RecentMonths(h.now(), monthsShown)
	options := make([]MonthOption, 0, len(months))
	for _, m := range months {
		options = append(options, MonthOption{Value: m, Label: commission.FormatMonth(m)})
	}
	c.JSON(http.StatusOK, successResponse("Months retrieved successfully", options))
}

// --- Assignment Handlers ---

func (h *CommissionsHTTPHandler) GetAssignments(c *gin.Context) {
	month, ok := h.uploadMonth(c)
	if !ok {
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	rows, err := h.commissionClient.ListAssignments(ctx, month)
	if handleGRPCError(c, err) {
		return
	}

	c.JSON(http.StatusOK, successWithMetaResponse("Assignments retrieved successfully", rows, gin.H{
		"month":       month,
		"month_label": commission.FormatMonth(month),
		"count":       len(rows),
	}))
}

func (h *CommissionsHTTPHandler) PreviewAssignments(c *gin.Context) {
	month, ok := h.uploadMonth(c)
	if !ok {
		return
	}
	rows, ok := h.readUpload(c)
	if !ok {
		return
	}

	assignments, err := commission.AssignmentsFromRows(rows, month, h.columns())
	if err != nil {
		handleParseError(c, err)
		return
	}

	c.JSON(http.StatusOK, successWithMetaResponse("Assignments parsed successfully", assignments, gin.H{
		"month": month,
		"count": len(assignments),
	}))
}

func (h *CommissionsHTTPHandler) ReplaceAssignments(c *gin.Context) {
	month, ok := h.uploadMonth(c)
	if !ok {
		return
	}
	rows, ok := h.readUpload(c)
	if !ok {
		return
	}

	assignments, err := commission.AssignmentsFromRows(rows, month, h.columns())
	if err != nil {
		handleParseError(c, err)
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	saved, err := h.commissionClient.ReplaceAssignments(ctx, month, assignments, middleware.CurrentUser(c))
	if handleGRPCError(c, err) {
		return
	}

	c.JSON(http.StatusOK, successResponse(
		fmt.Sprintf("%d assignments saved for %s", saved, commission.FormatMonth(month)),
		gin.H{"month": month, "saved": saved},
	))
}

// --- Payment Handlers ---

func (h *CommissionsHTTPHandler) PreviewPayments(c *gin.Context) {
	rows, ok := h.readUpload(c)
	if !ok {
		return
	}

	payments, err := commission.PaymentsFromRows(rows, h.columns())
	if err != nil {
		handleParseError(c, err)
		return
	}

	c.JSON(http.StatusOK, successWithMetaResponse("Payments parsed successfully", payments, gin.H{
		"count": len(payments),
	}))
}

func (h *CommissionsHTTPHandler) ListPayments(c *gin.Context) {
	var query PaymentsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid query parameters: "+err.Error()))
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	payments, err := h.commissionClient.FetchPayments(ctx, query.Start, query.End)
	if handleGRPCError(c, err) {
		return
	}

	c.JSON(http.StatusOK, successWithMetaResponse("Payments retrieved successfully", payments, gin.H{
		"count": len(payments),
		"start": query.Start,
		"end":   query.End,
	}))
}

// --- Calculation Handlers ---

func (h *CommissionsHTTPHandler) calculate(c *gin.Context) (*commission.Report, bool) {
	var req handler.CalculateRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format: "+err.Error()))
		return nil, false
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	report, err := h.commissionClient.Calculate(ctx, req)
	if handleGRPCError(c, err) {
		return nil, false
	}
	return report, true
}

func (h *CommissionsHTTPHandler) Calculate(c *gin.Context) {
	report, ok := h.calculate(c)
	if !ok {
		return
	}

	message := "Commission calculated successfully"
	if report.Warning != "" {
		message = report.Warning
	}
	c.JSON(http.StatusOK, successWithMetaResponse(message, report, gin.H{
		"month_label":            commission.FormatMonth(report.Month),
		"total_amount_formatted": commission.FormatCurrency(&report.TotalAmount),
		"sellers":                len(report.Results),
	}))
}

func (h *CommissionsHTTPHandler) Export(c *gin.Context) {
	var query ExportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Format must be csv or xlsx"))
		return
	}

	report, ok := h.calculate(c)
	if !ok {
		return
	}
	if len(report.Results) == 0 {
		c.JSON(http.StatusBadRequest, errorResponse("Nothing to export: "+commission.NoMatchWarning))
		return
	}

	var (
		buf         bytes.Buffer
		err         error
		contentType string
	)
	switch query.Format {
	case "xlsx":
		err = commission.WriteXLSX(&buf, report.Results)
		contentType = contentTypeXLSX
	default:
		err = commission.WriteCSV(&buf, report.Results)
		contentType = contentTypeCSV
	}
	if err != nil {
		h.logger.Error("Export failed", zap.String("format", query.Format), zap.Error(err))
		c.JSON(http.StatusInternalServerError, errorResponse("Failed to build export"))
		return
	}

	filename := fmt.Sprintf("comissoes-%s.%s", report.Month, query.Format)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, buf.Bytes())
}
