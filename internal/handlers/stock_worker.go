package handlers

import (
	"fmt"
	"log"

	"github.com/gildgrove/gildgrove-golang/internal/rules"
)

// ProcessStockAlerts is the background worker body, run on a ticker
// from main. It re-classifies every active product and notifies admins
// when a product crosses INTO critical or out severity. The last
// alerted level is persisted per product so a product sitting at
// critical does not page on every sweep.
func (h *Handlers) ProcessStockAlerts() {
	log.Println("Worker: checking stock levels...")

	alerts, err := h.lowStockProducts()
	if err != nil {
		log.Printf("Worker: stock check failed: %v", err)
		return
	}

	tx, err := h.DB.Begin()
	if err != nil {
		log.Printf("Worker: failed to start transaction: %v", err)
		return
	}
	defer tx.Rollback()

	notified := 0
	for _, alert := range alerts {
		if alert.Level != rules.LevelCritical.String() && alert.Level != rules.LevelOut.String() {
			continue
		}

		var lastLevel string
		err := tx.QueryRow(
			"SELECT COALESCE(last_alerted_level, '') FROM products WHERE id = ? FOR UPDATE",
			alert.ProductID).Scan(&lastLevel)
		if err != nil {
			log.Printf("Worker: failed to read alert state for product %d: %v", alert.ProductID, err)
			return
		}
		if lastLevel == alert.Level {
			continue // already alerted at this severity
		}

		msg := fmt.Sprintf("Stock alert: '%s' is %s (%d left)", alert.Name, alert.Level, alert.Stock)
		link := fmt.Sprintf("/admin/products/%d", alert.ProductID)
		if err := h.notifyAdmins(tx, msg, link); err != nil {
			log.Printf("Worker: failed to notify admins: %v", err)
			return
		}

		if _, err := tx.Exec(
			"UPDATE products SET last_alerted_level = ? WHERE id = ?",
			alert.Level, alert.ProductID); err != nil {
			log.Printf("Worker: failed to record alert state: %v", err)
			return
		}
		notified++
	}

	// Recovered products get their alert state cleared so a later dip
	// alerts again.
	if _, err := tx.Exec(`
		UPDATE products p
		SET p.last_alerted_level = NULL
		WHERE p.last_alerted_level IS NOT NULL
		  AND p.id NOT IN (
			SELECT * FROM (
				SELECT p2.id FROM products p2
				LEFT JOIN product_variants v ON v.product_id = p2.id AND v.status = 'Active'
				WHERE p2.status = 'Active'
				GROUP BY p2.id
				HAVING MIN(COALESCE(v.stock, p2.stock, 0)) <= ?
			) AS still_low
		  )`, rules.DefaultLowStockThreshold); err != nil {
		log.Printf("Worker: failed to clear recovered alerts: %v", err)
		return
	}

	if err := tx.Commit(); err != nil {
		log.Printf("Worker: failed to commit stock alerts: %v", err)
		return
	}

	if notified > 0 {
		log.Printf("Worker: raised %d stock alert(s)", notified)
	}
}
