// Package alert tracks which products are at or below their reorder
// threshold and turns stock transitions into user-facing alerts.
package alert

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/GTDGit/taskify_api/internal/models"
)

// ErrNotFound is returned when dismissing an alert that is not active.
var ErrNotFound = errors.New("alert not found")

// Kind classifies an alert.
type Kind string

const (
	KindLowStock    Kind = "low_stock"
	KindReplenished Kind = "replenished"
	KindGeneral     Kind = "general"
)

// RemovalReason says why an alert left the active set.
type RemovalReason string

const (
	ReasonDismissed RemovalReason = "dismissed"
	ReasonExpired   RemovalReason = "expired"
	ReasonRetracted RemovalReason = "retracted"
	ReasonCleared   RemovalReason = "cleared"
)

// Alert is a derived, in-memory notification. ProductID is a weak reference
// used for lookup and removal; zero means the alert is not about a product.
type Alert struct {
	ID         string        `json:"id"`
	ProductID  int           `json:"productId,omitempty"`
	Kind       Kind          `json:"kind"`
	Title      string        `json:"title"`
	Message    string        `json:"message"`
	AutoExpire time.Duration `json:"-"`
	CreatedAt  time.Time     `json:"createdAt"`
}

// MarshalJSON encodes AutoExpire as whole milliseconds (0 = never).
func (a Alert) MarshalJSON() ([]byte, error) {
	type plain Alert
	return json.Marshal(struct {
		plain
		AutoExpireMs int64 `json:"autoExpireMs"`
	}{plain(a), a.AutoExpire.Milliseconds()})
}

func lowStockMessage(p *models.Product) string {
	return fmt.Sprintf("%s (%s) is running low on stock. Current: %d, Threshold: %d",
		p.Name, p.ModelNumber, p.StockQuantity, p.LowStockThreshold)
}

func replenishedMessage(p *models.Product) string {
	return fmt.Sprintf("%s (%s) stock has been replenished above the threshold. Current: %d, Threshold: %d",
		p.Name, p.ModelNumber, p.StockQuantity, p.LowStockThreshold)
}
