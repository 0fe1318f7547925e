package protocol

import (
	"encoding/binary"
	"errors"
)

// UDP packet types
const (
	UDPPacketKeyEvent  uint8 = 0x01
	UDPPacketRegister  uint8 = 0x10
	UDPPacketHeartbeat uint8 = 0x11
	UDPPacketAck       uint8 = 0x12 // daemon -> client: confirms UDP path is open
)

// Header: [type(1)] [seq(4)] [timestamp(8)] = 13 bytes
const UDPHeaderSize = 13

// UDPPacket represents a binary-encoded key event for low-latency UDP
// transport.
//
// Wire format per type:
//
//	KeyEvent  (0x01): header + keyCode(uint16) + pressed(uint8) = 16 bytes
//	Register  (0x10): header only                               = 13 bytes
//	Heartbeat (0x11): header only                               = 13 bytes
//	Ack       (0x12): header only                               = 13 bytes
type UDPPacket struct {
	Type      uint8
	Seq       uint32
	Timestamp int64
	KeyCode   uint16 // key event
	Pressed   uint8  // 1=pressed, 0=released
}

// EncodeUDPPacket serializes a UDPPacket to wire format.
func EncodeUDPPacket(pkt *UDPPacket) []byte {
	size := UDPHeaderSize
	if pkt.Type == UDPPacketKeyEvent {
		size += 3 // keyCode(2) + pressed(1)
	}

	buf := make([]byte, size)
	buf[0] = pkt.Type
	binary.BigEndian.PutUint32(buf[1:5], pkt.Seq)
	binary.BigEndian.PutUint64(buf[5:13], uint64(pkt.Timestamp))

	if pkt.Type == UDPPacketKeyEvent {
		binary.BigEndian.PutUint16(buf[13:15], pkt.KeyCode)
		buf[15] = pkt.Pressed
	}
	return buf
}

// DecodeUDPPacket parses a wire-format packet.
func DecodeUDPPacket(data []byte) (*UDPPacket, error) {
	if len(data) < UDPHeaderSize {
		return nil, errors.New("packet too short")
	}

	pkt := &UDPPacket{
		Type:      data[0],
		Seq:       binary.BigEndian.Uint32(data[1:5]),
		Timestamp: int64(binary.BigEndian.Uint64(data[5:13])),
	}

	switch pkt.Type {
	case UDPPacketKeyEvent:
		if len(data) < UDPHeaderSize+3 {
			return nil, errors.New("key event packet truncated")
		}
		pkt.KeyCode = binary.BigEndian.Uint16(data[13:15])
		pkt.Pressed = data[15]
	case UDPPacketRegister, UDPPacketHeartbeat, UDPPacketAck:
		// header only
	default:
		return nil, errors.New("unknown packet type")
	}
	return pkt, nil
}
