package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"storefront-analytics/internal/analytics"
	"storefront-analytics/internal/config"
	"storefront-analytics/internal/db"
	"storefront-analytics/internal/logger"
	"storefront-analytics/internal/metrics"
	"storefront-analytics/internal/order"
	"storefront-analytics/internal/product"
	"storefront-analytics/internal/report"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var initDBFunc = db.InitDB

type options struct {
	report   string
	from     string
	to       string
	year     int
	month    int
	customer uint
	product  uint
	order    uint
	items    string
	days     int
	price    string
	discount string
	tax      string
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func parseFlags(args []string) (*options, error) {
	fs := flag.NewFlagSet("analytics", flag.ContinueOnError)
	opts := &options{}
	now := time.Now().UTC()

	fs.StringVar(&opts.report, "report", "summary", "summary|clv|segments|churn|product|monthly|refund|quote")
	fs.StringVar(&opts.from, "from", "", "summary start date (YYYY-MM-DD)")
	fs.StringVar(&opts.to, "to", "", "summary end date, exclusive (YYYY-MM-DD)")
	fs.IntVar(&opts.year, "year", now.Year(), "monthly report year")
	fs.IntVar(&opts.month, "month", int(now.Month()), "monthly report month")
	fs.UintVar(&opts.customer, "customer", 0, "customer id for clv")
	fs.UintVar(&opts.product, "product", 0, "product id for product report")
	fs.UintVar(&opts.order, "order", 0, "order id for refund quote")
	fs.StringVar(&opts.items, "items", "", "comma separated order item ids to refund, empty for all")
	fs.IntVar(&opts.days, "days", 0, "churn window in days, 0 uses config")
	fs.StringVar(&opts.price, "price", "0", "price for quote")
	fs.StringVar(&opts.discount, "discount", "0", "discount percentage for quote")
	fs.StringVar(&opts.tax, "tax", "0", "tax rate percentage for quote")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return opts, nil
}

func run(args []string, out io.Writer) error {
	opts, err := parseFlags(args)
	if err != nil {
		return err
	}

	cfg := config.LoadConfig()
	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	ctx := logger.WithRunID(context.Background(), uuid.New().String())

	database := initDBFunc(cfg)
	defer database.Close()

	reg := metrics.NewRegistry()
	svc := newService(cfg, database, reg)

	runErr := execute(ctx, svc, opts, out)

	if cfg.MetricsTextfile != "" {
		if err := reg.WriteTextfile(cfg.MetricsTextfile); err != nil {
			logger.FromCtx(ctx).Warn("failed to write metrics textfile",
				zap.String("path", cfg.MetricsTextfile),
				zap.Error(err),
			)
		}
	}

	return runErr
}

func newService(cfg *config.Config, database *sql.DB, reg *metrics.Registry) report.Service {
	return report.NewService(
		order.NewRepository(database),
		product.NewRepository(database),
		reg,
		report.Options{
			TopProductsLimit:    cfg.TopProductsLimit,
			RecommendationLimit: cfg.RecommendationLimit,
			ChurnWindowDays:     cfg.ChurnWindowDays,
		},
	)
}

func execute(ctx context.Context, svc report.Service, opts *options, out io.Writer) error {
	log := logger.FromCtx(ctx).With(zap.String("report", opts.report))
	log.Info("running report")

	var (
		result any
		err    error
	)

	switch opts.report {
	case "summary":
		var input report.SummaryInput
		if input.From, err = parseDate(opts.from); err != nil {
			return err
		}
		if input.To, err = parseDate(opts.to); err != nil {
			return err
		}
		result, err = svc.Summary(ctx, input)
	case "clv":
		var v decimal.Decimal
		v, err = svc.CustomerLifetimeValue(ctx, opts.customer)
		result = map[string]any{"customerId": opts.customer, "lifetimeValue": v}
	case "segments":
		result, err = svc.Segments(ctx)
	case "churn":
		result, err = svc.ChurnRate(ctx, opts.days)
	case "product":
		result, err = svc.ProductReport(ctx, opts.product)
	case "monthly":
		result, err = svc.MonthlyReport(ctx, opts.year, time.Month(opts.month))
	case "refund":
		var ids []uint
		if ids, err = parseIDs(opts.items); err != nil {
			return err
		}
		result, err = svc.RefundQuote(ctx, opts.order, ids)
	case "quote":
		result, err = quote(opts)
	default:
		return fmt.Errorf("unknown report: %s", opts.report)
	}

	if err != nil {
		log.Error("report failed", zap.Error(err))
		return err
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func quote(opts *options) (map[string]decimal.Decimal, error) {
	price, err := decimal.NewFromString(opts.price)
	if err != nil {
		return nil, fmt.Errorf("invalid price: %w", err)
	}
	discount, err := decimal.NewFromString(opts.discount)
	if err != nil {
		return nil, fmt.Errorf("invalid discount: %w", err)
	}
	tax, err := decimal.NewFromString(opts.tax)
	if err != nil {
		return nil, fmt.Errorf("invalid tax: %w", err)
	}

	discounted := price.Sub(analytics.CalculateDiscountAmount(price, discount))
	return map[string]decimal.Decimal{
		"discount":   analytics.CalculateDiscountAmount(price, discount),
		"tax":        analytics.CalculateTax(discounted, tax),
		"finalPrice": analytics.CalculateFinalPrice(price, discount, tax),
	}, nil
}

func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return &t, nil
}

func parseIDs(s string) ([]uint, error) {
	if s == "" {
		return nil, nil
	}
	var ids []uint
	for _, part := range strings.Split(s, ",") {
		id, err := strconv.ParseUint(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid item id %q: %w", part, err)
		}
		ids = append(ids, uint(id))
	}
	return ids, nil
}
