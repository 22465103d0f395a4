// SPDX-License-Identifier: MIT
package udp

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

/*
Packet layout, big endian:

|<---- 4 Bytes ---->|<------ 8 Bytes ------>|<-- 2 Bytes -->|<----- N * 4 Bytes ----->|
+-------------------+-----------------------+---------------+-------------------------+
|  Sequence Number  |       Timestamp       |   Bin Count   |          Bins           |
|      (uint32)     |  (int64, unix nanos)  |    (uint16)   |      (N * float32)      |
+-------------------+-----------------------+---------------+-------------------------+
*/

// HeaderSize is the number of bytes ahead of the bin values.
const HeaderSize = 4 + 8 + 2

// MaxDatagram is the largest UDP payload over IPv4.
const MaxDatagram = 65507

// MaxBins is the largest bin count that fits in one datagram.
const MaxBins = (MaxDatagram - HeaderSize) / 4

// ErrShortPacket is returned by DecodePacket for truncated input.
var ErrShortPacket = errors.New("udp packet is truncated")

// Packet is one decoded datagram.
type Packet struct {
	Seq       uint32
	Timestamp int64
	Bins      []float32
}

// EncodePacket resets buf and writes one packet into it. Bins beyond MaxBins
// are not sent.
func EncodePacket(buf *bytes.Buffer, seq uint32, timestamp int64, bins []float32) {
	if len(bins) > MaxBins {
		bins = bins[:MaxBins]
	}

	buf.Reset()
	buf.Grow(HeaderSize + 4*len(bins))

	var header [HeaderSize]byte
	binary.BigEndian.PutUint32(header[0:4], seq)
	binary.BigEndian.PutUint64(header[4:12], uint64(timestamp))
	binary.BigEndian.PutUint16(header[12:14], uint16(len(bins)))
	buf.Write(header[:])

	var word [4]byte
	for _, v := range bins {
		binary.BigEndian.PutUint32(word[:], math.Float32bits(v))
		buf.Write(word[:])
	}
}

// DecodePacket parses a datagram produced by EncodePacket.
func DecodePacket(b []byte) (Packet, error) {
	if len(b) < HeaderSize {
		return Packet{}, ErrShortPacket
	}

	p := Packet{
		Seq:       binary.BigEndian.Uint32(b[0:4]),
		Timestamp: int64(binary.BigEndian.Uint64(b[4:12])),
	}
	count := int(binary.BigEndian.Uint16(b[12:14]))
	if len(b) != HeaderSize+4*count {
		return Packet{}, fmt.Errorf("%w: header says %d bins, payload has %d bytes", ErrShortPacket, count, len(b)-HeaderSize)
	}

	p.Bins = make([]float32, count)
	for i := range p.Bins {
		off := HeaderSize + 4*i
		p.Bins[i] = math.Float32frombits(binary.BigEndian.Uint32(b[off : off+4]))
	}
	return p, nil
}
