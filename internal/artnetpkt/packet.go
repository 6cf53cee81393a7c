// Package artnetpkt builds Art-Net protocol packets for DMX512 output.
package artnetpkt

import (
	"encoding/binary"
)

const (
	// OpCodeDMX is the Art-Net operation code for ArtDmx.
	OpCodeDMX uint16 = 0x5000
	// OpCodePoll is the Art-Net operation code for ArtPoll.
	OpCodePoll uint16 = 0x2000
	// ProtocolVersion is the Art-Net protocol version.
	ProtocolVersion uint16 = 14
	// DMXDataLength is the number of DMX channels per universe.
	DMXDataLength uint16 = 512
	// DMXPacketSize is the total size of an ArtDmx packet.
	DMXPacketSize = 18 + DMXDataLength
	// PollPacketSize is the total size of an ArtPoll packet.
	PollPacketSize = 14
	// DefaultPort is the standard Art-Net UDP port.
	DefaultPort = 6454
)

// id is the Art-Net packet identifier, "Art-Net\0".
var id = []byte{'A', 'r', 't', '-', 'N', 'e', 't', 0x00}

// BuildDMX creates an ArtDmx packet for the given 15-bit universe.
// channels must be exactly 512 bytes; sequence is normally 0 (sequencing
// disabled) but accepted as a parameter for callers that want it.
func BuildDMX(universe uint16, channels []byte, sequence byte) []byte {
	packet := make([]byte, DMXPacketSize)

	copy(packet[0:8], id)
	binary.LittleEndian.PutUint16(packet[8:10], OpCodeDMX)
	packet[10] = byte(ProtocolVersion >> 8)
	packet[11] = byte(ProtocolVersion)
	packet[12] = sequence
	packet[13] = 0 // physical input port
	binary.LittleEndian.PutUint16(packet[14:16], universe&0x7fff)
	packet[16] = byte(DMXDataLength >> 8)
	packet[17] = byte(DMXDataLength)

	if len(channels) >= int(DMXDataLength) {
		copy(packet[18:18+DMXDataLength], channels[:DMXDataLength])
	} else {
		copy(packet[18:18+len(channels)], channels)
	}

	return packet
}

// BuildPoll creates an ArtPoll packet, sent once by a worker at start-up.
func BuildPoll() []byte {
	packet := make([]byte, PollPacketSize)

	copy(packet[0:8], id)
	binary.LittleEndian.PutUint16(packet[8:10], OpCodePoll)
	packet[10] = byte(ProtocolVersion >> 8)
	packet[11] = byte(ProtocolVersion)
	packet[12] = 0x00 // TalkToMe: no diagnostics
	packet[13] = 0x00 // Priority: all

	return packet
}
