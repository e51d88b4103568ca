package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"
)

var errLinkClosed = errors.New("link closed")

type outMessage struct {
	kind int
	data []byte
}

// Link is the client end of a websocket: the lobby connection or a world
// connection. On a world connection it is the local Invoker.
type Link struct {
	conn *websocket.Conn
	send chan outMessage
	done chan struct{}
	once sync.Once

	seqMu sync.Mutex
	seq   *sequencer
}

// DialLink connects to a websocket URL
func DialLink(ctx context.Context, url string) (*Link, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	return &Link{
		conn: conn,
		send: make(chan outMessage, sendBufSize),
		done: make(chan struct{}),
		seq:  newSequencer(),
	}, nil
}

// Run pumps the connection until it fails, Close is called or ctx ends.
// handle is called on the read goroutine for every message.
func (l *Link) Run(ctx context.Context, handle func(kind int, data []byte)) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer l.Close()
		for {
			kind, data, err := l.conn.ReadMessage()
			if err != nil {
				select {
				case <-l.done:
					return nil
				default:
				}
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					return nil
				}
				return err
			}
			handle(kind, data)
		}
	})
	g.Go(func() error {
		defer l.conn.Close()
		for {
			select {
			case msg := <-l.send:
				l.conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := l.conn.WriteMessage(msg.kind, msg.data); err != nil {
					l.Close()
					return err
				}
			case <-l.done:
				l.conn.SetWriteDeadline(time.Now().Add(writeWait))
				l.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return nil
			case <-ctx.Done():
				l.Close()
			}
		}
	})
	return g.Wait()
}

// Close shuts the link down; Run returns shortly after
func (l *Link) Close() {
	l.once.Do(func() { close(l.done) })
}

// Done is closed when the link shuts down
func (l *Link) Done() <-chan struct{} { return l.done }

// enqueue waits up to writeWait for buffer space
func (l *Link) enqueue(msg outMessage) error {
	select {
	case <-l.done:
		return errLinkClosed
	default:
	}
	t := time.NewTimer(writeWait)
	defer t.Stop()
	select {
	case l.send <- msg:
		return nil
	case <-l.done:
		return errLinkClosed
	case <-t.C:
		l.Close()
		return fmt.Errorf("send: %w", errPeerBacklogged)
	}
}

// SendJSON sends a lobby message
func (l *Link) SendJSON(v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return l.enqueue(outMessage{kind: websocket.TextMessage, data: data})
}

// SendFrame sends a world frame reliably
func (l *Link) SendFrame(f Frame) error {
	data, err := EncodeFrame(f)
	if err != nil {
		return err
	}
	return l.enqueue(outMessage{kind: websocket.BinaryMessage, data: data})
}

// SendInput sends movement intents. Input is superseded by the next batch,
// so it is dropped rather than queued behind a slow connection.
func (l *Link) SendInput(in InputFrame) error {
	data, err := EncodeFrame(Frame{Kind: FrameInput, Input: &in})
	if err != nil {
		return err
	}
	select {
	case l.send <- outMessage{kind: websocket.BinaryMessage, data: data}:
	case <-l.done:
		return errLinkClosed
	default:
		log.Printf("link: input dropped")
	}
	return nil
}

// SendToAuthority stamps rpc with the next sequence number for its source
// and sends it reliably
func (l *Link) SendToAuthority(rpc RPC) error {
	if !rpc.Kind.ToAuthority() {
		return fmt.Errorf("%w: %s", ErrWrongDirection, rpc.Kind)
	}
	l.seqMu.Lock()
	rpc = l.seq.stamp(rpc)
	l.seqMu.Unlock()
	return l.SendFrame(Frame{Kind: FrameRPC, RPC: &rpc})
}

// BroadcastToObservers is never allowed from a client
func (l *Link) BroadcastToObservers(rpc RPC) error {
	return ErrNotAuthority
}
