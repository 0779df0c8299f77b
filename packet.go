package ddc

import "fmt"

// DDC/CI addressing, fixed by the protocol.
const (
	// DisplayAddress is the 7-bit I²C address displays listen on.
	DisplayAddress = 0x37

	// DataAddress is the host's source/data address.
	DataAddress = 0x51
)

const (
	// replyLen is the size of a reply frame after the platform strips the
	// destination address and the trailing undocumented byte.
	replyLen = 11

	// replySeed is the checksum seed for validating replies.
	replySeed = 0x50
)

// Capability request/reply opcodes.
const (
	capRequest = 0xf3
	capReply   = 0xe3
)

// capsFragLen is the data capacity of one capability reply fragment: the
// fixed reply frame minus header, offset echo and checksum.
const capsFragLen = replyLen - 6

// encodePacket builds the wire frame for payload: a length marker with the
// high bit set, the payload length, the payload bytes and a checksum.
//
// The checksum seed depends on the payload size: 1-byte (read) payloads
// seed with the shifted display address, longer (write) payloads fold the
// data address in as well.
func encodePacket(payload []byte) []byte {
	packet := make([]byte, 0, len(payload)+3)
	packet = append(packet, 0x80|byte(len(payload)+1), byte(len(payload)))
	packet = append(packet, payload...)

	seed := byte(DisplayAddress << 1)
	if len(payload) > 1 {
		seed ^= DataAddress
	}
	return append(packet, fold(seed, packet))
}

// fold XORs every byte of data into seed.
func fold(seed byte, data []byte) byte {
	for _, b := range data {
		seed ^= b
	}
	return seed
}

// validReply recomputes the checksum fold over all but the final byte of
// reply and compares it to the final byte.
func validReply(reply []byte) bool {
	if len(reply) < 2 {
		return false
	}
	return fold(replySeed, reply[:len(reply)-1]) == reply[len(reply)-1]
}

// decodeFeature extracts the maximum and current values from a validated
// feature reply.
func decodeFeature(reply []byte) (current, max uint16) {
	if len(reply) < 10 {
		return 0, 0
	}
	max = uint16(reply[6])<<8 | uint16(reply[7])
	current = uint16(reply[8])<<8 | uint16(reply[9])
	return current, max
}

// decodeCapsFragment extracts the data bytes and the echoed offset of one
// capability reply fragment.
func decodeCapsFragment(reply []byte) (data []byte, offset int, err error) {
	if len(reply) < 6 {
		return nil, 0, fmt.Errorf("%w: capability reply too short", ErrCommunication)
	}
	if reply[2] != capReply {
		return nil, 0, fmt.Errorf("%w: unexpected capability opcode %#02x", ErrCommunication, reply[2])
	}

	// Payload length covers the opcode and the two offset bytes.
	n := int(reply[1]&0x7f) - 3
	if n < 0 {
		n = 0
	}
	if max := len(reply) - 6; n > max {
		n = max
	}

	offset = int(reply[3])<<8 | int(reply[4])
	return reply[5 : 5+n], offset, nil
}
