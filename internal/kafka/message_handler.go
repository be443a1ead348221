package kafka

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/segmentio/kafka-go"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/nguyentranbao-ct/smart-cart/internal/usecase"
	log "github.com/nguyentranbao-ct/smart-cart/pkg/logger/logctx"
)

type turnHandler struct {
	dialog  usecase.DialogUsecase
	replies ReplyWriter
	now     func() time.Time
}

func NewTurnHandler(dialog usecase.DialogUsecase, replies ReplyWriter) MessageHandler {
	return &turnHandler{
		dialog:  dialog,
		replies: replies,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// HandleMessage runs the turn and publishes the reply. Undecodable records
// are rejected with InvalidArgument and produce no reply.
func (h *turnHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var turn TurnMessage
	if err := json.Unmarshal(msg.Value, &turn); err != nil {
		return status.Errorf(codes.InvalidArgument, "decode turn: %v", err)
	}
	if turn.ID == "" {
		turn.ID = string(msg.Key)
	}
	if turn.ID == "" {
		return status.Error(codes.InvalidArgument, "turn has no id")
	}
	if strings.TrimSpace(turn.Request.UserMessage) == "" && turn.Request.SelectedProduct == nil {
		return status.Error(codes.InvalidArgument, "turn has neither user_message nor selected_product")
	}

	ctx = log.WithFields(ctx, "turn_id", turn.ID)
	resp := h.dialog.Interact(ctx, turn.Request)

	value, err := json.Marshal(TurnReply{ID: turn.ID, Response: resp, ProcessedAt: h.now()})
	if err != nil {
		return fmt.Errorf("encode reply: %w", err)
	}
	if err := h.replies.WriteMessages(ctx, kafka.Message{Key: []byte(turn.ID), Value: value}); err != nil {
		return fmt.Errorf("write reply: %w", err)
	}

	log.Debugw(ctx, "Turn answered", "action", resp.Action.String())
	return nil
}
