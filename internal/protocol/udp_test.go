package protocol

import "testing"

func TestKeyEventRoundTrip(t *testing.T) {
	pkt := &UDPPacket{
		Type:      UDPPacketKeyEvent,
		Seq:       42,
		Timestamp: 1700000000123,
		KeyCode:   0x41,
		Pressed:   1,
	}

	data := EncodeUDPPacket(pkt)
	if len(data) != UDPHeaderSize+3 {
		t.Fatalf("encoded key event is %d bytes, want %d", len(data), UDPHeaderSize+3)
	}

	got, err := DecodeUDPPacket(data)
	if err != nil {
		t.Fatalf("DecodeUDPPacket: %v", err)
	}
	if *got != *pkt {
		t.Errorf("round trip = %+v, want %+v", got, pkt)
	}
}

func TestControlPacketsHeaderOnly(t *testing.T) {
	for _, typ := range []uint8{UDPPacketRegister, UDPPacketHeartbeat, UDPPacketAck} {
		pkt := &UDPPacket{Type: typ, Timestamp: 12345}
		data := EncodeUDPPacket(pkt)
		if len(data) != UDPHeaderSize {
			t.Errorf("type 0x%02X encoded to %d bytes, want %d", typ, len(data), UDPHeaderSize)
		}

		got, err := DecodeUDPPacket(data)
		if err != nil {
			t.Errorf("DecodeUDPPacket(type 0x%02X): %v", typ, err)
			continue
		}
		if got.Type != typ || got.Timestamp != 12345 {
			t.Errorf("decoded %+v, want type 0x%02X ts 12345", got, typ)
		}
	}
}

func TestDecodeTooShort(t *testing.T) {
	if _, err := DecodeUDPPacket(nil); err == nil {
		t.Error("decoding nil: expected error")
	}
	if _, err := DecodeUDPPacket(make([]byte, UDPHeaderSize-1)); err == nil {
		t.Error("decoding short header: expected error")
	}
}

func TestDecodeTruncatedKeyEvent(t *testing.T) {
	full := EncodeUDPPacket(&UDPPacket{Type: UDPPacketKeyEvent, KeyCode: 0x41})
	if _, err := DecodeUDPPacket(full[:UDPHeaderSize+1]); err == nil {
		t.Error("decoding truncated key event: expected error")
	}
}

func TestDecodeUnknownType(t *testing.T) {
	data := make([]byte, UDPHeaderSize)
	data[0] = 0x7F
	if _, err := DecodeUDPPacket(data); err == nil {
		t.Error("decoding unknown type: expected error")
	}
}
