package adminapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/montanaflynn/stats"

	"github.com/nexchakra/showcase/internal/domain"
	"github.com/nexchakra/showcase/internal/webserver"
	"github.com/nexchakra/showcase/pkg/metrics"
)

func registerDashboardRoutes() {
	webserver.ApiGET("/dashboard", getDashboard)
	webserver.ApiGET("/dashboard/metrics/:name", getMetricSeries)
}

// getDashboard aggregates store health: order counts by status, revenue
// statistics over the last 30 days and products running low on stock.
func getDashboard(c echo.Context) error {
	db := GetDB(c)

	statusCounts := map[string]int64{}
	for _, status := range []string{
		domain.OrderPending, domain.OrderPaid, domain.OrderShipped,
		domain.OrderDelivered, domain.OrderCancelled,
	} {
		var n int64
		db.Model(&domain.Order{}).Where("status = ?", status).Count(&n)
		statusCounts[status] = n
	}

	var customerCount, productCount int64
	db.Model(&domain.Customer{}).Where("role = ?", domain.RoleCustomer).Count(&customerCount)
	db.Model(&domain.Product{}).Where("is_active = ?", true).Count(&productCount)

	since := time.Now().AddDate(0, 0, -30)
	var totals []float64
	db.Model(&domain.Order{}).
		Where("payment_status = ? AND created_at >= ?", domain.PaymentSuccess, since).
		Pluck("total_amount", &totals)

	revenue := map[string]float64{}
	if len(totals) > 0 {
		sum, _ := stats.Sum(totals)
		mean, _ := stats.Mean(totals)
		median, _ := stats.Median(totals)
		max, _ := stats.Max(totals)
		revenue["total"] = sum
		revenue["average_order"] = mean
		revenue["median_order"] = median
		revenue["largest_order"] = max
	}

	threshold := GetSettings(c).GetInt("checkout", "low_stock_threshold")
	if threshold <= 0 {
		threshold = 5
	}
	var lowStock []domain.Product
	db.Where("is_active = ? AND stock <= ?", true, threshold).
		Order("stock ASC").Limit(20).Find(&lowStock)

	return ok(c, map[string]interface{}{
		"orders":          statusCounts,
		"customers":       customerCount,
		"products":        productCount,
		"revenue_30d":     revenue,
		"paid_orders_30d": len(totals),
		"low_stock":       lowStock,
	})
}

// getMetricSeries returns a recorded gauge series, e.g. system_cpu_percent or
// websocket_clients, for dashboard charts
func getMetricSeries(c echo.Context) error {
	name := c.Param("name")
	start := time.Now().Add(-24 * time.Hour)
	points := metrics.Range(name, start.Unix(), time.Now().Unix())
	if points == nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "No data for metric", nil)
	}
	return ok(c, map[string]interface{}{
		"name":   name,
		"latest": metrics.GetGauge(name),
		"points": points,
	})
}
