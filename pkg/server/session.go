package server

import (
	"context"
	stderrors "errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/didact/internal/errors"
	"github.com/vango-dev/didact/pkg/fiber"
	"github.com/vango-dev/didact/pkg/host/idle"
	"github.com/vango-dev/didact/pkg/host/memhost"
	"github.com/vango-dev/didact/pkg/protocol"
)

// Event dispatch outcomes reported to metrics.
const (
	eventOK          = "ok"
	eventBadPayload  = "bad_payload"
	eventUnknownNode = "unknown_node"
)

// Session is one live WebSocket connection rendering its own copy of the
// application.
type Session struct {
	ID string

	server *Server
	conn   *websocket.Conn
	loop   *idle.Loop
	logger *slog.Logger

	// Owned by the loop goroutine.
	doc      *memhost.Document
	rec      *fiber.Reconciler
	seq      uint64
	snapshot bool

	closeOnce sync.Once
}

func newSession(s *Server, conn *websocket.Conn) *Session {
	id := uuid.NewString()
	logger := s.logger.With("session_id", id)
	return &Session{
		ID:       id,
		server:   s,
		conn:     conn,
		logger:   logger,
		snapshot: true,
		loop: idle.NewLoop(
			idle.WithSliceBudget(s.config.SliceBudget()),
			idle.WithLogger(logger),
		),
	}
}

// Run mounts the application and serves the connection until the socket
// closes or the loop fails. It blocks.
func (sess *Session) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		err := sess.loop.Run(ctx)
		var pe *idle.PanicError
		if stderrors.As(err, &pe) {
			sess.logger.Error("session render failed", "panic", pe.Value)
			sess.sendError(pe, errors.CodeRenderPanic, true)
		}
		sess.Close()
	}()

	if err := sess.loop.Submit(sess.mount); err != nil {
		sess.Close()
	}
	sess.readLoop()

	shutdownCtx, stop := context.WithTimeout(context.Background(), time.Second)
	defer stop()
	sess.loop.Shutdown(shutdownCtx)
	<-loopDone
}

// Close closes the socket, which ends the read loop and the session.
func (sess *Session) Close() {
	sess.closeOnce.Do(func() {
		deadline := time.Now().Add(time.Second)
		sess.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
		sess.conn.Close()
	})
}

// mount runs on the loop goroutine.
func (sess *Session) mount() {
	sess.doc = memhost.New()
	sess.rec = fiber.New(sess.doc, sess.loop,
		sess.server.reconcilerOptions(fiber.WithCommitHook(sess.flush))...)
	sess.rec.Render(sess.server.app(), sess.doc.Root())
}

// flush sends the mutations of the pass that just committed. Runs on the
// loop goroutine.
func (sess *Session) flush(stats fiber.CommitStats) {
	muts := sess.doc.TakeMutations()
	if len(muts) == 0 {
		return
	}
	batch := &protocol.Batch{Seq: sess.seq, Mutations: muts}
	sess.seq++

	frame := protocol.NewFrame(protocol.FrameMutations, protocol.EncodeBatch(batch))
	if sess.snapshot {
		frame.Flags |= protocol.FlagSnapshot
		sess.snapshot = false
	}
	sess.logger.Debug("mutations",
		"seq", batch.Seq,
		"pass", stats.Pass,
		"count", len(muts),
		"bytes", len(frame.Payload))
	sess.write(frame)
}

func (sess *Session) write(frame *protocol.Frame) {
	data := frame.Encode()
	if frame.Type == protocol.FrameMutations {
		sess.server.metrics.FrameSent(len(data))
	}
	sess.conn.SetWriteDeadline(time.Now().Add(sess.server.writeTimeout))
	if err := sess.conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
		werr := errors.New(errors.CodeSessionWrite).Wrap(err)
		sess.logger.Warn("write failed", "error", werr.FormatCompact())
		sess.Close()
	}
}

func (sess *Session) sendError(err error, fallback string, fatal bool) {
	sess.logger.Debug("error frame",
		"error", errors.FromError(err, fallback).FormatCompact(),
		"fatal", fatal)
	em := protocol.NewErrorMessage(err, fallback, fatal)
	sess.write(protocol.NewFrame(protocol.FrameError, protocol.EncodeErrorMessage(em)))
}

// reportError queues an error frame from outside the loop goroutine.
func (sess *Session) reportError(err error, fallback string) {
	sess.loop.Submit(func() {
		sess.sendError(err, fallback, false)
	})
}

func (sess *Session) readLoop() {
	sess.conn.SetReadLimit(protocol.FrameHeaderSize + protocol.MaxPayloadSize)
	for {
		_, msg, err := sess.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				sess.logger.Error("read error", "error", err)
			}
			return
		}

		frame, err := protocol.DecodeFrame(msg)
		if err != nil {
			sess.reportError(errors.New(errors.CodeFrameTruncated).Wrap(err), errors.CodeFrameTruncated)
			continue
		}

		switch frame.Type {
		case protocol.FrameEvent:
			ev, err := protocol.DecodeEvent(frame.Payload)
			if err != nil {
				sess.server.metrics.Event(eventBadPayload)
				sess.reportError(errors.New(errors.CodeBadPayload).Wrap(err), errors.CodeBadPayload)
				continue
			}
			if err := sess.loop.Submit(func() { sess.dispatch(ev) }); err != nil {
				return
			}
		default:
			sess.reportError(errors.New(errors.CodeUnknownFrame).
				WithDetailf("frame type 0x%02x", byte(frame.Type)), errors.CodeUnknownFrame)
		}
	}
}

// dispatch delivers a client event. Runs on the loop goroutine.
func (sess *Session) dispatch(ev *protocol.Event) {
	if sess.doc == nil {
		return
	}
	_, span := sess.server.tracer.Start(context.Background(), "didact."+ev.Type,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("didact.session_id", sess.ID),
			attribute.String("didact.event_type", ev.Type),
			attribute.Int64("didact.event_target", int64(ev.Node)),
		))
	defer span.End()

	n, err := sess.doc.Dispatch(ev.Node, ev.Element())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		sess.server.metrics.Event(eventUnknownNode)
		sess.sendError(err, errors.CodeUnknownNode, false)
		return
	}
	span.SetAttributes(attribute.Int("didact.listeners", n))
	sess.server.metrics.Event(eventOK)
	sess.logger.Debug("event", "node", ev.Node, "type", ev.Type, "listeners", n)
}
