package ping

import (
	"encoding/binary"
	"fmt"
)

// encodeFrame builds a complete wire frame for the given message id.
func encodeFrame(id uint16, payload []byte) []byte {
	frame := make([]byte, headerLen+len(payload)+checksumLen)
	frame[0] = 'B'
	frame[1] = 'R'
	binary.LittleEndian.PutUint16(frame[2:4], uint16(len(payload)))
	binary.LittleEndian.PutUint16(frame[4:6], id)
	frame[6] = 0 // src: host
	frame[7] = 1 // dst: device
	copy(frame[headerLen:], payload)
	binary.LittleEndian.PutUint16(frame[len(frame)-2:], checksum(frame[:len(frame)-2]))
	return frame
}

// requestPayload is the general_request payload: the id being requested.
func requestPayload(requestedID uint16) []byte {
	p := make([]byte, 2)
	binary.LittleEndian.PutUint16(p, requestedID)
	return p
}

// checksum is the additive sum of all frame bytes before the checksum field.
func checksum(b []byte) uint16 {
	var sum uint16
	for _, v := range b {
		sum += uint16(v)
	}
	return sum
}

// scanFrame extracts the first complete, checksum-valid frame from buf,
// consuming it (and any garbage before it). ok is false when no complete
// frame is buffered yet.
func scanFrame(buf *[]byte) (id uint16, payload []byte, ok bool) {
	b := *buf
	for {
		// Sync to the 'B' 'R' header.
		start := -1
		for i := 0; i+1 < len(b); i++ {
			if b[i] == 'B' && b[i+1] == 'R' {
				start = i
				break
			}
		}
		if start < 0 {
			// Keep at most one trailing byte in case it is a split 'B'.
			if len(b) > 1 {
				b = b[len(b)-1:]
			}
			*buf = b
			return 0, nil, false
		}
		b = b[start:]

		if len(b) < headerLen {
			*buf = b
			return 0, nil, false
		}
		payloadLen := int(binary.LittleEndian.Uint16(b[2:4]))
		total := headerLen + payloadLen + checksumLen
		if len(b) < total {
			*buf = b
			return 0, nil, false
		}

		want := binary.LittleEndian.Uint16(b[total-2 : total])
		if checksum(b[:total-2]) != want {
			// Bad frame; skip the header and resync.
			b = b[2:]
			continue
		}

		id = binary.LittleEndian.Uint16(b[4:6])
		payload = append([]byte(nil), b[headerLen:headerLen+payloadLen]...)
		*buf = b[total:]
		return id, payload, true
	}
}

// parseDistanceSimple decodes a distance_simple payload: u32 LE distance in
// millimeters followed by a confidence percentage.
func parseDistanceSimple(payload []byte) (mm uint32, confidencePct int, err error) {
	if len(payload) < distanceSimplePayloadLen {
		return 0, 0, fmt.Errorf("ping: distance_simple payload too short (%d)", len(payload))
	}
	mm = binary.LittleEndian.Uint32(payload[0:4])
	confidencePct = int(payload[4])
	if confidencePct > 100 {
		confidencePct = 100
	}
	return mm, confidencePct, nil
}
