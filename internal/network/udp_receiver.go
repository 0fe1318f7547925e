package network

import (
	"log"
	"net"
	"time"

	"keyemu/internal/protocol"
	"keyemu/internal/vk"
)

// UDPReceiver is the daemon-side UDP listener that receives binary key
// events from remote controllers with minimal latency.
type UDPReceiver struct {
	port int
	conn *net.UDPConn
	done chan struct{}

	// OnKey is called for each received key event.
	OnKey func(code vk.Code, pressed bool, timestamp int64)

	// dedup ring buffer for redundant packets
	dedup seqDedup
}

// seqDedup tracks recently seen sequence numbers to discard redundant packets.
// Uses a fixed-size ring buffer, no allocation, O(1) lookup.
type seqDedup struct {
	ring [512]uint32
	pos  int
	seen map[uint32]struct{}
}

func newSeqDedup() seqDedup {
	return seqDedup{seen: make(map[uint32]struct{}, 512)}
}

func (d *seqDedup) isDuplicate(seq uint32) bool {
	if _, ok := d.seen[seq]; ok {
		return true
	}
	// Evict oldest entry
	old := d.ring[d.pos]
	if old != 0 {
		delete(d.seen, old)
	}
	d.ring[d.pos] = seq
	d.seen[seq] = struct{}{}
	d.pos = (d.pos + 1) % len(d.ring)
	return false
}

// NewUDPReceiver creates a receiver listening on port (shared with the API's
// TCP port number).
func NewUDPReceiver(port int) *UDPReceiver {
	return &UDPReceiver{
		port:  port,
		done:  make(chan struct{}),
		dedup: newSeqDedup(),
	}
}

// Start binds the UDP socket and begins receiving key events. Register and
// heartbeat packets are answered with an Ack so controllers can verify the
// UDP path is open.
func (r *UDPReceiver) Start() error {
	conn, err := net.ListenUDP("udp", &net.UDPAddr{Port: r.port})
	if err != nil {
		return err
	}
	r.conn = conn

	// 1 MB read buffer for burst receives
	conn.SetReadBuffer(1 << 20)

	log.Printf("UDP Receiver: Listening on :%d", r.port)

	go r.readLoop()
	return nil
}

// readLoop reads and dispatches incoming binary key packets.
func (r *UDPReceiver) readLoop() {
	buf := make([]byte, 64)
	for {
		n, remoteAddr, err := r.conn.ReadFromUDP(buf)
		if err != nil {
			select {
			case <-r.done:
				return
			default:
				continue
			}
		}

		pkt, err := protocol.DecodeUDPPacket(buf[:n])
		if err != nil {
			continue
		}

		switch pkt.Type {
		case protocol.UDPPacketRegister, protocol.UDPPacketHeartbeat:
			r.sendAck(remoteAddr)

		case protocol.UDPPacketKeyEvent:
			// Deduplicate redundant packets (same seq number)
			if r.dedup.isDuplicate(pkt.Seq) {
				continue
			}
			if r.OnKey != nil {
				r.OnKey(vk.Code(pkt.KeyCode), pkt.Pressed == 1, pkt.Timestamp)
			}
		}
	}
}

// sendAck replies with a header-only Ack packet.
func (r *UDPReceiver) sendAck(addr *net.UDPAddr) {
	pkt := &protocol.UDPPacket{
		Type:      protocol.UDPPacketAck,
		Timestamp: time.Now().UnixMilli(),
	}
	r.conn.WriteToUDP(protocol.EncodeUDPPacket(pkt), addr)
}

// Stop shuts down the UDP receiver.
func (r *UDPReceiver) Stop() {
	close(r.done)
	if r.conn != nil {
		r.conn.Close()
	}
}
