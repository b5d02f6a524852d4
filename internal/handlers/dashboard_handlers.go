package handlers

import (
	"database/sql"
	"net/http"

	"github.com/gildgrove/gildgrove-golang/internal/rules"
	"github.com/gin-gonic/gin"
)

//
// --- Admin Dashboard ---
//

// GetDashboardStats is the handler for GET /v1/admin/dashboard
// One payload for the KPI cards: revenue, order counts, customers,
// pending work.
func (h *Handlers) GetDashboardStats(c *gin.Context) {
	var stats struct {
		TotalRevenue   float64 `json:"totalRevenue"`
		OrdersToday    int     `json:"ordersToday"`
		PendingOrders  int     `json:"pendingOrders"`
		RefundRequests int     `json:"refundRequests"`
		TotalCustomers int     `json:"totalCustomers"`
		ActiveProducts int     `json:"activeProducts"`
		LowStockAlerts int     `json:"lowStockAlerts"`
	}

	// Revenue counts orders where the money stuck: not cancelled, not refunded.
	var revenue sql.NullFloat64
	err := h.DB.QueryRow(
		"SELECT SUM(total) FROM orders WHERE status NOT IN ('cancelled', 'refunded')").Scan(&revenue)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute revenue"})
		return
	}
	stats.TotalRevenue = revenue.Float64

	scalarQueries := []struct {
		dest  *int
		query string
	}{
		{&stats.OrdersToday, "SELECT COUNT(*) FROM orders WHERE DATE(created_at) = CURDATE()"},
		{&stats.PendingOrders, "SELECT COUNT(*) FROM orders WHERE status = 'pending'"},
		{&stats.RefundRequests, "SELECT COUNT(*) FROM orders WHERE refund_requested = 1 AND status = 'completed'"},
		{&stats.TotalCustomers, "SELECT COUNT(*) FROM users WHERE role = 'customer'"},
		{&stats.ActiveProducts, "SELECT COUNT(*) FROM products WHERE status = 'Active'"},
	}
	for _, q := range scalarQueries {
		if err := h.DB.QueryRow(q.query).Scan(q.dest); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load dashboard stats"})
			return
		}
	}

	alerts, err := h.lowStockProducts()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check stock levels"})
		return
	}
	stats.LowStockAlerts = len(alerts)

	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

// GetRevenueChart is the handler for GET /v1/admin/dashboard/revenue
// Monthly revenue buckets for the last 12 months.
func (h *Handlers) GetRevenueChart(c *gin.Context) {
	query := `
		SELECT DATE_FORMAT(created_at, '%Y-%m') AS month, SUM(total)
		FROM orders
		WHERE status NOT IN ('cancelled', 'refunded')
		  AND created_at >= DATE_SUB(CURDATE(), INTERVAL 12 MONTH)
		GROUP BY month
		ORDER BY month ASC`

	rows, err := h.DB.Query(query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load revenue chart"})
		return
	}
	defer rows.Close()

	type monthlyRevenue struct {
		Month   string  `json:"month"`
		Revenue float64 `json:"revenue"`
	}

	var chart []monthlyRevenue
	for rows.Next() {
		var m monthlyRevenue
		if err := rows.Scan(&m.Month, &m.Revenue); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan revenue row"})
			return
		}
		chart = append(chart, m)
	}

	if chart == nil {
		chart = []monthlyRevenue{}
	}
	c.JSON(http.StatusOK, gin.H{"chart": chart})
}

// StockAlert is one product flagged by the stock classifier.
type StockAlert struct {
	ProductID int64  `json:"productId"`
	Name      string `json:"name"`
	Level     string `json:"level"`
	Stock     int    `json:"stock"` // summed across variants for variable products
}

// lowStockProducts classifies every active product and returns those at
// warning severity or worse. Variable products are judged by their
// worst variant.
func (h *Handlers) lowStockProducts() ([]StockAlert, error) {
	query := `
		SELECT p.id, p.name, p.stock, v.stock
		FROM products p
		LEFT JOIN product_variants v ON v.product_id = p.id AND v.status = 'Active'
		WHERE p.status = 'Active'
		ORDER BY p.id`

	rows, err := h.DB.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	type productStock struct {
		name          string
		productStock  *int
		variantStocks []int
	}
	byID := map[int64]*productStock{}
	var order []int64

	for rows.Next() {
		var id int64
		var name string
		var pStock, vStock sql.NullInt64
		if err := rows.Scan(&id, &name, &pStock, &vStock); err != nil {
			return nil, err
		}

		ps, ok := byID[id]
		if !ok {
			ps = &productStock{name: name}
			if pStock.Valid {
				s := int(pStock.Int64)
				ps.productStock = &s
			}
			byID[id] = ps
			order = append(order, id)
		}
		if vStock.Valid {
			ps.variantStocks = append(ps.variantStocks, int(vStock.Int64))
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var alerts []StockAlert
	for _, id := range order {
		ps := byID[id]
		level := rules.ProductLevel(ps.productStock, ps.variantStocks,
			rules.DefaultLowStockThreshold, rules.DefaultWarningStockThreshold)
		if level < rules.LevelWarning {
			continue
		}

		total := 0
		if ps.productStock != nil {
			total = *ps.productStock
		}
		for _, s := range ps.variantStocks {
			total += s
		}
		alerts = append(alerts, StockAlert{
			ProductID: id,
			Name:      ps.name,
			Level:     level.String(),
			Stock:     total,
		})
	}
	return alerts, nil
}

// GetStockAlerts is the handler for GET /v1/admin/dashboard/stock-alerts
func (h *Handlers) GetStockAlerts(c *gin.Context) {
	alerts, err := h.lowStockProducts()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check stock levels"})
		return
	}

	if alerts == nil {
		alerts = []StockAlert{}
	}
	c.JSON(http.StatusOK, gin.H{"alerts": alerts})
}
