package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	catalogapp "github.com/sari-store/storefront/internal/application/catalog"
	"github.com/sari-store/storefront/internal/domain/catalog"
	"github.com/sari-store/storefront/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// SSE event names
const (
	SSEEventConnected = "connected"
	SSEEventProducts  = "products"
	SSEEventHeartbeat = "heartbeat"
)

// CatalogSubscriber delivers the product listing on every catalog change
type CatalogSubscriber interface {
	Subscribe(ctx context.Context, callback func([]catalog.Product)) (unsubscribe func())
}

// SSEClient represents a connected SSE client
type SSEClient struct {
	ID string
	// Products holds at most the latest unsent listing
	Products chan SSEMessage
	// Control carries heartbeats
	Control chan SSEMessage
}

// SSEMessage represents a message to be sent to SSE clients
type SSEMessage struct {
	Event string `json:"event"`
	Data  string `json:"data"`
	ID    string `json:"id,omitempty"`
}

// CatalogStreamHandler pushes the product listing to browsers over
// Server-Sent Events
type CatalogStreamHandler struct {
	BaseHandler
	subscriber CatalogSubscriber
	logger     *zap.Logger
	clients    sync.Map // map[string]*SSEClient
	count      atomic.Int64
	seq        atomic.Uint64
	ctx        context.Context
	cancel     context.CancelFunc
	heartbeat  time.Duration
	started    bool
	startMu    sync.Mutex
	maxClients int
}

// CatalogStreamOption is a functional option for configuring the handler
type CatalogStreamOption func(*CatalogStreamHandler)

// WithSSELogger sets the logger for the handler
func WithSSELogger(logger *zap.Logger) CatalogStreamOption {
	return func(h *CatalogStreamHandler) {
		h.logger = logger
	}
}

// WithSSEHeartbeat sets the heartbeat interval
func WithSSEHeartbeat(interval time.Duration) CatalogStreamOption {
	return func(h *CatalogStreamHandler) {
		if interval > 0 {
			h.heartbeat = interval
		}
	}
}

// WithSSEMaxClients sets the maximum number of concurrent SSE clients; zero
// means unlimited
func WithSSEMaxClients(max int) CatalogStreamOption {
	return func(h *CatalogStreamHandler) {
		h.maxClients = max
	}
}

// NewCatalogStreamHandler creates a new SSE handler for catalog updates
func NewCatalogStreamHandler(subscriber CatalogSubscriber, opts ...CatalogStreamOption) *CatalogStreamHandler {
	ctx, cancel := context.WithCancel(context.Background())
	h := &CatalogStreamHandler{
		subscriber: subscriber,
		logger:     zap.NewNop(),
		ctx:        ctx,
		cancel:     cancel,
		heartbeat:  30 * time.Second,
		maxClients: 1000,
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

// Start begins sending heartbeats to connected clients
func (h *CatalogStreamHandler) Start() error {
	h.startMu.Lock()
	defer h.startMu.Unlock()

	if h.started {
		return fmt.Errorf("SSE handler already started")
	}

	go h.sendHeartbeats()

	h.started = true
	h.logger.Info("Catalog SSE handler started", zap.Duration("heartbeat", h.heartbeat))
	return nil
}

// Stop disconnects every client
func (h *CatalogStreamHandler) Stop() {
	h.cancel()
	h.logger.Info("Catalog SSE handler stopped")
}

// broadcast queues a control message for all connected clients
func (h *CatalogStreamHandler) broadcast(msg SSEMessage) {
	h.clients.Range(func(_, value any) bool {
		client, ok := value.(*SSEClient)
		if !ok {
			return true
		}

		select {
		case client.Control <- msg:
		default:
			h.logger.Warn("Client channel full, dropping message",
				zap.String("client_id", client.ID),
				zap.String("event", msg.Event))
		}
		return true
	})
}

// sendHeartbeats periodically sends heartbeat messages to keep connections alive
func (h *CatalogStreamHandler) sendHeartbeats() {
	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-h.ctx.Done():
			return
		case <-ticker.C:
			h.broadcast(SSEMessage{
				Event: SSEEventHeartbeat,
				Data:  fmt.Sprintf(`{"timestamp":%d}`, time.Now().Unix()),
			})
		}
	}
}

// productsMessage renders a listing as a products event
func (h *CatalogStreamHandler) productsMessage(products []catalog.Product) (SSEMessage, error) {
	data, err := json.Marshal(catalogapp.ToProductResponses(products))
	if err != nil {
		return SSEMessage{}, err
	}
	return SSEMessage{
		Event: SSEEventProducts,
		Data:  string(data),
		ID:    strconv.FormatUint(h.seq.Add(1), 10),
	}, nil
}

// offerLatest puts msg in ch, replacing a listing the client has not read yet
func offerLatest(ch chan SSEMessage, msg SSEMessage) {
	for {
		select {
		case ch <- msg:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

// Stream godoc
// @Summary      Subscribe to catalog updates via SSE
// @Description  Sends the latest-first product listing as a products event on connect and after every catalog change, plus periodic heartbeat events
// @Tags         catalog
// @Produce      text/event-stream
// @Success      200 {string} string "SSE stream"
// @Failure      503 {object} ErrorResponse
// @Router       /catalog/stream [get]
func (h *CatalogStreamHandler) Stream(c *gin.Context) {
	n := h.count.Add(1)
	defer h.count.Add(-1)
	if h.maxClients > 0 && n > int64(h.maxClients) {
		h.ServiceUnavailable(c, dto.ErrCodeMaxConnections, "Maximum number of SSE connections reached")
		return
	}

	// The server write timeout would otherwise cut long-lived streams
	rc := http.NewResponseController(c.Writer)
	if err := rc.SetWriteDeadline(time.Time{}); err != nil && !errors.Is(err, http.ErrNotSupported) {
		h.logger.Warn("Failed to clear SSE write deadline", zap.Error(err))
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")

	const controlBufferSize = 16
	client := &SSEClient{
		ID:       uuid.New().String(),
		Products: make(chan SSEMessage, 1),
		Control:  make(chan SSEMessage, controlBufferSize),
	}

	h.clients.Store(client.ID, client)
	defer h.clients.Delete(client.ID)

	reqCtx := c.Request.Context()
	unsubscribe := h.subscriber.Subscribe(reqCtx, func(products []catalog.Product) {
		msg, err := h.productsMessage(products)
		if err != nil {
			h.logger.Error("Failed to marshal SSE event", zap.Error(err))
			return
		}
		offerLatest(client.Products, msg)
	})
	defer unsubscribe()

	h.logger.Info("SSE client connected", zap.String("client_id", client.ID))

	write := func(msg SSEMessage) bool {
		if err := h.sendEvent(c.Writer, msg); err != nil {
			h.logger.Info("SSE write failed, dropping client",
				zap.String("client_id", client.ID),
				zap.Error(err))
			return false
		}
		c.Writer.Flush()
		return true
	}

	if !write(SSEMessage{
		Event: SSEEventConnected,
		Data:  fmt.Sprintf(`{"client_id":"%s","timestamp":%d}`, client.ID, time.Now().Unix()),
	}) {
		return
	}

	for {
		select {
		case <-reqCtx.Done():
			h.logger.Info("SSE client disconnected", zap.String("client_id", client.ID))
			return
		case <-h.ctx.Done():
			h.logger.Info("SSE handler stopped, disconnecting client", zap.String("client_id", client.ID))
			return
		case msg := <-client.Products:
			if !write(msg) {
				return
			}
		case msg := <-client.Control:
			if !write(msg) {
				return
			}
		}
	}
}

// sendEvent writes an SSE event to the response writer
func (h *CatalogStreamHandler) sendEvent(w io.Writer, msg SSEMessage) error {
	var frame []byte
	if msg.Event != "" {
		frame = fmt.Appendf(frame, "event: %s\n", msg.Event)
	}
	if msg.ID != "" {
		frame = fmt.Appendf(frame, "id: %s\n", msg.ID)
	}
	frame = fmt.Appendf(frame, "data: %s\n\n", msg.Data)
	_, err := w.Write(frame)
	return err
}

// GetClientCount returns the number of connected SSE clients
func (h *CatalogStreamHandler) GetClientCount() int {
	return int(h.count.Load())
}
