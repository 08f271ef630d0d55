// internal/session/conn.go
package session

import (
	"sync"

	"github.com/google/uuid"
	"github.com/jason-s-yu/arcade/internal/models"
	"github.com/sirupsen/logrus"
)

// Close codes the hub asks the transport to use.
const (
	CloseNormal     = 1000
	CloseSuperseded = 3004 // the identity authenticated on a newer connection
	CloseShutdown   = 1001
)

// Conn is a single client connection as seen by the hub. The transport owns
// the socket; the hub only queues frames and asks for the socket to close.
type Conn struct {
	ID         uuid.UUID
	RemoteAddr string

	// OutChan is drained by the transport's write pump.
	OutChan chan models.Message

	logger    logrus.FieldLogger
	done      chan struct{}
	closeOnce sync.Once
	code      int
	reason    string
}

// NewConn returns a connection with an outbox of the given size.
func NewConn(remoteAddr string, outbox int, logger logrus.FieldLogger) *Conn {
	id := uuid.New()
	return &Conn{
		ID:         id,
		RemoteAddr: remoteAddr,
		OutChan:    make(chan models.Message, outbox),
		logger:     logger.WithFields(logrus.Fields{"conn": id, "remote": remoteAddr}),
		done:       make(chan struct{}),
	}
}

// Write pushes a message onto the outbox without blocking. A full outbox
// drops the message; a slow peer never stalls the hub.
func (c *Conn) Write(msg models.Message) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.OutChan <- msg:
		return true
	default:
		c.logger.WithField("type", msg.Type).Warn("outbox full, dropped message")
		return false
	}
}

// WriteError is a convenience to send an error frame.
func (c *Conn) WriteError(code, message string) {
	c.Write(models.Message{
		Type:    models.EventError,
		Payload: models.ErrorPayload{Code: code, Message: message},
	})
}

// Close asks the transport to close the socket. Only the first call counts.
func (c *Conn) Close(code int, reason string) {
	c.closeOnce.Do(func() {
		c.code, c.reason = code, reason
		close(c.done)
	})
}

// Done is closed once Close has been called.
func (c *Conn) Done() <-chan struct{} {
	return c.done
}

// CloseReason returns the code and reason passed to Close. It is only
// meaningful after Done is closed.
func (c *Conn) CloseReason() (int, string) {
	return c.code, c.reason
}
