package network

import (
	"fmt"
	"log"
	"net"
	"sync/atomic"
	"time"

	"keyemu/internal/protocol"
	"keyemu/internal/vk"
)

// UDPSender is the controller-side client that streams binary key events to
// a remote daemon.
type UDPSender struct {
	daemonAddr string // daemon address in "ip:port" format
	remote     *net.UDPAddr
	conn       *net.UDPConn
	seq        uint32 // atomic, monotonically increasing
	done       chan struct{}
}

// NewUDPSender creates a sender for the daemon at addr ("ip:port", matching
// the daemon's API port).
func NewUDPSender(addr string) *UDPSender {
	return &UDPSender{
		daemonAddr: addr,
		done:       make(chan struct{}),
	}
}

// Probe tests whether UDP connectivity to the daemon is available. It sends
// register packets and waits for an Ack; returns true if the daemon replied
// within the timeout.
func (s *UDPSender) Probe() bool {
	remote, err := net.ResolveUDPAddr("udp", s.daemonAddr)
	if err != nil {
		log.Printf("UDP Probe: failed to resolve daemon: %v", err)
		return false
	}

	conn, err := net.ListenUDP("udp", &net.UDPAddr{Port: 0})
	if err != nil {
		log.Printf("UDP Probe: failed to bind: %v", err)
		return false
	}
	defer conn.Close()

	// Try up to 3 times with 500ms timeout each
	buf := make([]byte, 64)
	for attempt := 0; attempt < 3; attempt++ {
		pkt := &protocol.UDPPacket{
			Type:      protocol.UDPPacketRegister,
			Timestamp: time.Now().UnixMilli(),
		}
		conn.WriteToUDP(protocol.EncodeUDPPacket(pkt), remote)

		conn.SetReadDeadline(time.Now().Add(500 * time.Millisecond))
		n, _, err := conn.ReadFromUDP(buf)
		if err != nil {
			continue // timeout or error, retry
		}
		resp, err := protocol.DecodeUDPPacket(buf[:n])
		if err != nil {
			continue
		}
		if resp.Type == protocol.UDPPacketAck {
			log.Printf("UDP Probe: daemon replied with Ack (attempt %d), UDP path is open", attempt+1)
			return true
		}
	}

	log.Printf("UDP Probe: no Ack received after 3 attempts, UDP path blocked")
	return false
}

// Start binds a local socket, registers with the daemon, and begins the
// heartbeat loop.
func (s *UDPSender) Start() error {
	remote, err := net.ResolveUDPAddr("udp", s.daemonAddr)
	if err != nil {
		return err
	}
	s.remote = remote

	conn, err := net.ListenUDP("udp", &net.UDPAddr{Port: 0})
	if err != nil {
		return err
	}
	s.conn = conn

	// 1 MB write buffer for burst writes
	conn.SetWriteBuffer(1 << 20)

	log.Printf("UDP Sender: streaming to %s", s.daemonAddr)

	s.sendControl(protocol.UDPPacketRegister)
	go s.heartbeatLoop()

	return nil
}

// heartbeatLoop keeps the registration alive.
func (s *UDPSender) heartbeatLoop() {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.sendControl(protocol.UDPPacketHeartbeat)
		case <-s.done:
			return
		}
	}
}

// sendControl sends a register or heartbeat packet (header-only, no payload).
func (s *UDPSender) sendControl(pktType uint8) {
	pkt := &protocol.UDPPacket{
		Type:      pktType,
		Timestamp: time.Now().UnixMilli(),
	}
	s.conn.WriteToUDP(protocol.EncodeUDPPacket(pkt), s.remote)
}

// SendKey streams one key event to the daemon.
func (s *UDPSender) SendKey(code vk.Code, pressed bool) error {
	if s.conn == nil {
		return fmt.Errorf("UDP sender not started")
	}

	var pressedByte uint8
	if pressed {
		pressedByte = 1
	}
	pkt := &protocol.UDPPacket{
		Type:      protocol.UDPPacketKeyEvent,
		Seq:       atomic.AddUint32(&s.seq, 1),
		Timestamp: time.Now().UnixMilli(),
		KeyCode:   uint16(code),
		Pressed:   pressedByte,
	}

	_, err := s.conn.WriteToUDP(protocol.EncodeUDPPacket(pkt), s.remote)
	return err
}

// Stop shuts down the sender.
func (s *UDPSender) Stop() {
	close(s.done)
	if s.conn != nil {
		s.conn.Close()
	}
}
