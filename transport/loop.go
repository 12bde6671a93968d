// Package transport owns the UDP socket and drives the single-threaded
// cooperative event loop described in spec.md §5: receive one datagram,
// dispatch it to completion, optionally send a response, flush any due
// retransmits and standalone ACKs, purge closed state, then block for the
// next datagram.
package transport

import (
	"errors"
	"net"
	"time"

	"github.com/ossmatter/matterd/buf"
	"github.com/ossmatter/matterd/config"
	"github.com/ossmatter/matterd/exchange"
	"github.com/ossmatter/matterd/log"
	"github.com/ossmatter/matterd/message"
	"github.com/ossmatter/matterd/protocol"
	"github.com/ossmatter/matterd/session"
)

// rxBufSize bounds a single inbound datagram. Matter messages fit well
// inside the UDP MTU; this is generous headroom.
const rxBufSize = 64 * 1024

// mrpStandaloneAckOpcode is the Secure Channel MRP Standalone Acknowledgement
// opcode (Matter spec v1.0 §4.12.2), used when no reliable response is
// available to piggyback the ACK on.
const mrpStandaloneAckOpcode uint8 = 0x10

// pollInterval bounds how long a read blocks with no due retransmit,
// since the socket read is the loop's only blocking point (spec.md §5).
const pollInterval = 200 * time.Millisecond

// Loop is the device's entire core runtime: the session table, the
// exchange table, and the protocol registry, driven by one goroutine
// reading one UDP socket (spec.md §5). It holds no internal lock; all of
// its state is mutated only from Run/RunOnce.
type Loop struct {
	conn *net.UDPConn

	Sessions  *session.Manager
	Exchanges *exchange.Manager
	Registry  *protocol.Registry
	Log       *log.KVLogger

	// replayWindow tracks, per session, the highest message counter
	// accepted so far (spec.md §5 ordering guarantee ii). A session with
	// no entry yet accepts any counter on its first datagram.
	replayWindow map[*session.Session]uint32
}

// New binds a UDP socket at cfg.Global.Listen_Addr and constructs a Loop
// sized from cfg. SO_RCVBUF is tuned from cfg.Global.Rx_Buf_Bytes via
// setRcvBuf, best-effort: a failure to raise the buffer is logged, not
// fatal (spec.md §7: only bind failure is a fatal transport error).
func New(cfg *config.Config, registry *protocol.Registry, logger *log.KVLogger) (*Loop, error) {
	addr, err := net.ResolveUDPAddr("udp", cfg.Global.Listen_Addr)
	if err != nil {
		return nil, err
	}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return nil, err
	}
	if err := setRcvBuf(conn, cfg.Global.Rx_Buf_Bytes); err != nil {
		logger.Warn("could not set SO_RCVBUF", log.KVErr(err))
	}

	rc := exchange.RetransmitConfig{
		InitialBackoff: cfg.MrpInitialBackoff(),
		MaxRetries:     cfg.Global.Mrp_Max_Retries,
	}
	return &Loop{
		conn:         conn,
		Sessions:     session.NewManager(cfg.Global.Max_Sessions),
		Exchanges:    exchange.NewManager(cfg.Global.Max_Sessions*4, rc),
		Registry:     registry,
		Log:          logger,
		replayWindow: make(map[*session.Session]uint32),
	}, nil
}

// Close releases the transport socket.
func (l *Loop) Close() error { return l.conn.Close() }

// LocalAddr returns the socket's bound address, useful when Listen_Addr
// asks for an ephemeral port (e.g. in tests).
func (l *Loop) LocalAddr() net.Addr { return l.conn.LocalAddr() }

// Run blocks the calling goroutine, servicing datagrams until stop is
// closed or the socket errors. It is the device's single core thread
// (spec.md §5); callers needing concurrent subsystems (e.g. a debug
// listener) run those on separate goroutines that never touch Loop.
func (l *Loop) Run(stop <-chan struct{}) error {
	for {
		select {
		case <-stop:
			return nil
		default:
		}

		if err := l.conn.SetReadDeadline(time.Now().Add(pollInterval)); err != nil {
			return err
		}
		if err := l.RunOnce(); err != nil {
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				continue
			}
			return err
		}
	}
}

// RunOnce services exactly one datagram to completion: receive, decode,
// session lookup, protocol dispatch, optional send, retransmit/ACK flush,
// purge (spec.md §5). A read timeout is returned unwrapped so Run can
// tell it apart from a fatal socket error, after still running the
// flush/purge pass so retransmits make progress even when idle.
func (l *Loop) RunOnce() error {
	raw := make([]byte, rxBufSize)
	n, addr, err := l.conn.ReadFromUDP(raw)
	if err == nil {
		l.handleDatagram(raw[:n], addr)
	}
	l.flushDueRetransmits()
	l.flushStandaloneAcks()
	l.Exchanges.Purge()
	l.Sessions.Purge()
	l.pruneReplayWindow()
	return err
}

// pruneReplayWindow drops replay-window entries for sessions Purge just
// removed, so the map does not grow unbounded across session churn.
func (l *Loop) pruneReplayWindow() {
	live := make(map[*session.Session]struct{})
	for _, s := range l.Sessions.All() {
		live[s] = struct{}{}
	}
	for s := range l.replayWindow {
		if _, ok := live[s]; !ok {
			delete(l.replayWindow, s)
		}
	}
}

func (l *Loop) handleDatagram(raw []byte, addr net.Addr) {
	p := buf.NewParseBuf(raw)
	header, err := message.Decode(p)
	if err != nil {
		l.Log.Debug("dropping datagram: header decode failed", log.KVErr(err))
		return
	}
	aad := raw[:p.Offset()]
	ciphertext := p.Tail()

	sess, err := l.Sessions.GetOrAdd(header.SessionID, addr, header.Encrypted)
	if err != nil {
		l.Log.Debug("dropping datagram: no matching session", log.KVErr(err))
		return
	}

	nonce := message.Nonce(header, sess.PeerNodeID())
	payload, err := sess.Decrypt(nil, nonce[:], ciphertext, aad)
	if err != nil {
		l.Log.Debug("dropping datagram: decrypt failed", log.KVErr(err))
		return
	}

	if !l.acceptCounter(sess, header.MessageCounter) {
		l.Log.Debug("dropping datagram: replayed or stale counter")
		return
	}

	pp := buf.NewParseBuf(payload)
	proto, err := message.DecodeProto(pp)
	if err != nil {
		l.Log.Debug("dropping datagram: proto header decode failed", log.KVErr(err))
		return
	}
	body := pp.Tail()

	ex, err := l.Exchanges.GetOrCreateResponder(sess.LocalSessID, proto.ExchangeID)
	if err != nil {
		l.Log.Debug("dropping datagram: no exchange capacity", log.KVErr(err))
		return
	}
	if proto.AckPresent {
		ex.OnReceiveAck(proto.AckCounter)
	}
	if proto.Reliable {
		ex.OnReceiveReliable(header.MessageCounter)
	}

	rx := &protocol.Rx{Session: sess, Exchange: ex, Header: proto, Payload: body}
	var tx protocol.Tx
	required, err := l.Registry.Dispatch(rx, &tx)
	if err != nil {
		l.Log.Debug("protocol handler error", log.KVErr(err))
		return
	}
	if required == protocol.Yes {
		l.send(sess, ex, proto.ProtocolID, tx)
	}
}

// acceptCounter enforces spec.md §5 ordering guarantee (ii): message
// counters on a session are strictly increasing.
func (l *Loop) acceptCounter(sess *session.Session, counter uint32) bool {
	last, seen := l.replayWindow[sess]
	if seen && counter <= last {
		return false
	}
	l.replayWindow[sess] = counter
	return true
}

// send builds and transmits a handler's response, arming MRP retransmit
// when the response itself is reliable (spec.md §4.5 ordering guarantee
// iii: a piggybacked ACK preempts a standalone one, so any owed ACK is
// consumed here rather than flushed separately).
func (l *Loop) send(sess *session.Session, ex *exchange.Exchange, protocolID uint16, tx protocol.Tx) {
	ackCounter, hasAck := ex.PendingAck()
	counter := sess.NextCounter()
	wire, err := l.buildDatagram(sess, ex, protocolID, tx.Opcode, tx.Payload, tx.Reliable, hasAck, ackCounter, counter)
	if err != nil {
		l.Log.Error("encode failed", log.KVErr(err))
		return
	}
	ex.PrepareSend(tx.Reliable, counter, wire, l.Exchanges.Config(), time.Now())
	l.transmit(sess, wire)
}

// flushStandaloneAcks sends a bare MRP ack for every exchange whose
// inbound reliable message was never piggybacked a response (spec.md
// §4.5).
func (l *Loop) flushStandaloneAcks() {
	for _, ex := range l.Exchanges.PendingAcks() {
		sess, err := l.Sessions.GetWithID(ex.SessionLocalID)
		if err != nil {
			ex.ClearPendingAck()
			continue
		}
		ackCounter, _ := ex.PendingAck()
		counter := sess.NextCounter()
		wire, err := l.buildDatagram(sess, ex, protocol.SecureChannel, mrpStandaloneAckOpcode, nil, false, true, ackCounter, counter)
		if err != nil {
			l.Log.Error("encode failed", log.KVErr(err))
			ex.ClearPendingAck()
			continue
		}
		ex.ClearPendingAck()
		l.transmit(sess, wire)
	}
}

// flushDueRetransmits resends every armed retransmit whose deadline has
// elapsed (spec.md §5 suspension/blocking: retransmits are polled, not
// interrupt-driven).
func (l *Loop) flushDueRetransmits() {
	for _, due := range l.Exchanges.PollRetransmits(time.Now()) {
		sess, err := l.Sessions.GetWithID(due.Exchange.SessionLocalID)
		if err != nil {
			continue
		}
		l.transmit(sess, due.Payload)
	}
}

func (l *Loop) buildDatagram(sess *session.Session, ex *exchange.Exchange, protocolID uint16, opcode uint8, payload []byte, reliable, hasAck bool, ackCounter, counter uint32) ([]byte, error) {
	proto := message.ProtoHeader{
		Reliable:   reliable,
		Opcode:     opcode,
		ExchangeID: ex.ExchangeID,
		ProtocolID: protocolID,
		AckPresent: hasAck,
		AckCounter: ackCounter,
	}
	protoBuf := buf.NewWriteBuf(make([]byte, proto.Size()))
	if err := protoBuf.Reserve(0); err != nil {
		return nil, err
	}
	if err := proto.Encode(protoBuf); err != nil {
		return nil, err
	}
	plaintext := append(protoBuf.Bytes(), payload...)

	plainHeader := message.PlainHeader{
		Encrypted:      sess.IsEncrypted(),
		SessionID:      sess.LocalSessID,
		MessageCounter: counter,
	}
	out := buf.NewWriteBuf(make([]byte, plainHeader.Size()+len(plaintext)+32))
	if err := out.Reserve(0); err != nil {
		return nil, err
	}
	if err := plainHeader.Encode(out); err != nil {
		return nil, err
	}
	aad := out.Bytes()

	nonce := message.Nonce(plainHeader, sess.SourceNodeID())
	sealed, err := sess.Encrypt(nil, nonce[:], plaintext, aad)
	if err != nil {
		return nil, err
	}
	if err := out.Append(sealed); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func (l *Loop) transmit(sess *session.Session, wire []byte) {
	addr, ok := sess.PeerAddr.(*net.UDPAddr)
	if !ok {
		l.Log.Error("send failed: session has no UDP peer address")
		return
	}
	if _, err := l.conn.WriteToUDP(wire, addr); err != nil {
		l.Log.Error("send failed", log.KVErr(err))
	}
}
