package cbtable

import "encoding/binary"

// Checksum calculates the 16-bit one's complement checksum used by the table
// header and payload. Data is summed as 16-bit words in the given byte order
// with end-around carry; an odd trailing byte is padded with a zero byte.
func Checksum(data []byte, order binary.ByteOrder) uint16 {
	var sum uint32

	for ; len(data) > 1; data = data[2:] {
		sum += uint32(order.Uint16(data))
		sum = (sum & 0xffff) + (sum >> 16)
	}

	if len(data) == 1 {
		sum += uint32(order.Uint16([]byte{data[0], 0}))
		sum = (sum & 0xffff) + (sum >> 16)
	}

	return ^uint16(sum)
}
