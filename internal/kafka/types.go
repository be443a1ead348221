package kafka

import (
	"time"

	"github.com/nguyentranbao-ct/smart-cart/internal/models"
)

// TurnMessage is one dialog turn submitted through the turns topic. The
// record key is echoed on the reply so callers can correlate by key as well.
type TurnMessage struct {
	ID      string               `json:"id"`
	Request models.DialogRequest `json:"request"`
}

type TurnReply struct {
	ID          string                `json:"id"`
	Response    models.DialogResponse `json:"response"`
	ProcessedAt time.Time             `json:"processed_at"`
}
