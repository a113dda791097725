package handler

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"gorm.io/gorm"

	"salesdesk/internal/commission"
	"salesdesk/internal/database/models"
)

const (
	COMMISSION_ASSIGNMENTS_CACHE_PREFIX = "commission_assignments:"
	assignmentsCacheTTL                 = 30 * time.Minute
	insertBatchSize                     = 500
)

// PaymentFeed is the source of settled payments for a date range.
type PaymentFeed interface {
	FetchPayments(ctx context.Context, start, end string) ([]commission.Payment, error)
}

// CalculateRequest selects the data a calculation runs on. Payments and
// Assignments sent with the request take precedence over the feed and the
// stored sheet for Month.
type CalculateRequest struct {
	Month       string                  `json:"month"`
	Start       string                  `json:"start,omitempty"`
	End         string                  `json:"end,omitempty"`
	Payments    []commission.Payment    `json:"payments,omitempty"`
	Assignments []commission.Assignment `json:"assignments,omitempty"`
}

// --- Helpers ---
func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func strVal(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func assignmentToModel(a commission.Assignment, month, uploadedBy string, position int) models.SellerAssignment {
	return models.SellerAssignment{
		UploadMonth:   month,
		Position:      position,
		CustomerName:  a.CustomerName,
		CustomerEmail: strPtr(a.CustomerEmail),
		SellerID:      strPtr(a.SellerID),
		SellerName:    a.SellerName,
		Product:       strPtr(a.Product),
		UploadedBy:    strPtr(uploadedBy),
	}
}

func assignmentFromModel(m models.SellerAssignment) commission.Assignment {
	return commission.Assignment{
		ID:            m.ID,
		CustomerName:  m.CustomerName,
		CustomerEmail: strVal(m.CustomerEmail),
		SellerID:      strVal(m.SellerID),
		SellerName:    m.SellerName,
		Product:       strVal(m.Product),
		UploadMonth:   m.UploadMonth,
	}
}

// --- Handler ---
type CommissionHandler struct {
	db       *gorm.DB
	redis    *redis.Client
	feed     PaymentFeed
	validate *validator.Validate
	logger   *zap.Logger
	now      func() time.Time
}

// NewCommissionHandler wires the assignment store. redisClient and feed may be
// nil: the cache is then skipped and payments must come with each request.
func NewCommissionHandler(db *gorm.DB, redisClient *redis.Client, feed PaymentFeed, logger *zap.Logger) *CommissionHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CommissionHandler{
		db:       db,
		redis:    redisClient,
		feed:     feed,
		validate: validator.New(),
		logger:   logger,
		now:      time.Now,
	}
}

func (c *CommissionHandler) InvalidateAssignmentsCache(ctx context.Context, months ...string) {
	if c.redis == nil {
		return
	}
	for _, month := range months {
		cacheKey := COMMISSION_ASSIGNMENTS_CACHE_PREFIX + month
		if err := c.redis.Del(ctx, cacheKey).Err(); err != nil {
			c.logger.Warn("Failed to invalidate cache", zap.String("key", cacheKey), zap.Error(err))
		}
	}
}

// ListAssignments returns the stored sheet for month in upload order.
func (c *CommissionHandler) ListAssignments(ctx context.Context, month string) ([]commission.Assignment, error) {
	if !commission.ValidMonth(month) {
		return nil, status.Errorf(codes.InvalidArgument, "Invalid month %q, expected YYYY-MM", month)
	}

	cacheKey := COMMISSION_ASSIGNMENTS_CACHE_PREFIX + month
	if c.redis != nil {
		val, err := c.redis.Get(ctx, cacheKey).Result()
		if err == nil {
			var cached []commission.Assignment
			if err := json.Unmarshal([]byte(val), &cached); err == nil {
				return cached, nil
			}
		} else if err != redis.Nil {
			c.logger.Warn("Redis error on GET, falling back to DB", zap.String("key", cacheKey), zap.Error(err))
		}
	}

	var rows []models.SellerAssignment
	if err := c.db.WithContext(ctx).
		Where("upload_month = ?", month).
		Order("position asc").
		Order("created_at asc").
		Find(&rows).Error; err != nil {
		return nil, status.Errorf(codes.Internal, "Failed to get assignments: %v", err)
	}

	out := make([]commission.Assignment, 0, len(rows))
	for _, r := range rows {
		out = append(out, assignmentFromModel(r))
	}

	if c.redis != nil {
		if jsonData, err := json.Marshal(out); err == nil {
			if err := c.redis.Set(ctx, cacheKey, jsonData, assignmentsCacheTTL).Err(); err != nil {
				c.logger.Warn("Failed to set cache", zap.String("key", cacheKey), zap.Error(err))
			}
		}
	}
	return out, nil
}

// ReplaceAssignments swaps the whole sheet for month in one transaction.
func (c *CommissionHandler) ReplaceAssignments(ctx context.Context, month string, rows []commission.Assignment, uploadedBy string) (int, error) {
	if !commission.ValidMonth(month) {
		return 0, status.Errorf(codes.InvalidArgument, "Invalid month %q, expected YYYY-MM", month)
	}
	if len(rows) == 0 {
		return 0, status.Errorf(codes.InvalidArgument, "No assignments to save")
	}

	records := make([]models.SellerAssignment, 0, len(rows))
	for i, row := range rows {
		if err := c.validate.Struct(row); err != nil {
			return 0, status.Errorf(codes.InvalidArgument, "Row %d: %v", i+1, err)
		}
		records = append(records, assignmentToModel(row, month, uploadedBy, i))
	}

	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("upload_month = ?", month).Delete(&models.SellerAssignment{}).Error; err != nil {
			return err
		}
		return tx.CreateInBatches(&records, insertBatchSize).Error
	})
	if err != nil {
		return 0, status.Errorf(codes.Internal, "Failed to save assignments: %v", err)
	}

	c.InvalidateAssignmentsCache(ctx, month)
	c.logger.Info("Assignments replaced",
		zap.String("month", month),
		zap.Int("rows", len(records)),
		zap.String("uploaded_by", uploadedBy))
	return len(records), nil
}

func (c *CommissionHandler) FetchPayments(ctx context.Context, start, end string) ([]commission.Payment, error) {
	if c.feed == nil {
		return nil, status.Errorf(codes.Unavailable, "Payments feed is not configured")
	}
	if start == "" || end == "" {
		return nil, status.Errorf(codes.InvalidArgument, "Start and end dates are required")
	}
	payments, err := c.feed.FetchPayments(ctx, start, end)
	if err != nil {
		c.logger.Error("Payments feed failed", zap.String("start", start), zap.String("end", end), zap.Error(err))
		return nil, status.Errorf(codes.Unavailable, "Failed to fetch payments: %v", err)
	}
	if payments == nil {
		payments = []commission.Payment{}
	}
	return payments, nil
}

func (c *CommissionHandler) Calculate(ctx context.Context, req CalculateRequest) (*commission.Report, error) {
	month := req.Month
	if month == "" {
		month = commission.CurrentMonth(c.now())
	}
	start, end, err := commission.MonthRange(month)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "Invalid month %q, expected YYYY-MM", month)
	}
	if req.Start != "" {
		start = req.Start
	}
	if req.End != "" {
		end = req.End
	}

	payments, assignments := req.Payments, req.Assignments
	g, gctx := errgroup.WithContext(ctx)
	if len(payments) == 0 {
		g.Go(func() error {
			var err error
			payments, err = c.FetchPayments(gctx, start, end)
			return err
		})
	}
	if len(assignments) == 0 {
		g.Go(func() error {
			var err error
			assignments, err = c.ListAssignments(gctx, month)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if len(payments) == 0 {
		return nil, status.Errorf(codes.FailedPrecondition, "No payments found between %s and %s", start, end)
	}
	if len(assignments) == 0 {
		return nil, status.Errorf(codes.FailedPrecondition, "No seller assignments uploaded for %s", month)
	}

	report := commission.Calculate(payments, assignments)
	report.Month = month
	report.CalculatedAt = c.now()

	fields := []zap.Field{
		zap.String("month", month),
		zap.Int("payments", report.TotalPayments),
		zap.Int("matched", report.MatchedCount),
		zap.Int("sellers", len(report.Results)),
	}
	if len(report.Ambiguities) > 0 {
		fields = append(fields, zap.Int("ambiguities", len(report.Ambiguities)))
	}
	c.logger.Info("Commission calculated", fields...)
	return &report, nil
}
