package network

import (
	"fmt"
	"math"

	"nearshare/protocol/connections"
)

// Payload is a fully reassembled payload.
type Payload struct {
	ID   int64
	Type connections.PayloadHeader_PayloadType
	Data []byte
}

// SendPayload returns the frames that carry data as a BYTES payload: the
// whole body at offset 0, then an empty terminal chunk at offset len(data).
func SendPayload(id int64, data []byte) []*connections.V1Frame {
	header := &connections.PayloadHeader{
		Id:        id,
		Type:      connections.PayloadHeader_BYTES,
		TotalSize: int64(len(data)),
	}
	return []*connections.V1Frame{
		dataFrame(header, 0, data, false),
		dataFrame(header, int64(len(data)), nil, true),
	}
}

func dataFrame(header *connections.PayloadHeader, offset int64, body []byte, last bool) *connections.V1Frame {
	chunk := &connections.PayloadChunk{Offset: offset, Body: body}
	if last {
		chunk.Flags = connections.PayloadChunk_LAST_CHUNK
	}
	return &connections.V1Frame{
		Type: connections.V1Frame_PAYLOAD_TRANSFER,
		PayloadTransfer: &connections.PayloadTransferFrame{
			PacketType:    connections.PayloadTransferFrame_DATA,
			PayloadHeader: header,
			PayloadChunk:  chunk,
		},
	}
}

// DefaultMaxPayloadSize bounds the bytes a Reassembler buffers for payloads
// still in flight.
const DefaultMaxPayloadSize int64 = 1 << 30

type pendingPayload struct {
	header    *connections.PayloadHeader
	buffer    []byte
	remaining int64
	written   map[int64]int
	finished  bool
}

// Reassembler rebuilds payloads from PayloadTransfer frames. Chunks are keyed
// by payload id and written at their offset; a retransmitted chunk at an
// offset already written overwrites the bytes without counting them twice.
// Reassembler is not safe for concurrent use.
type Reassembler struct {
	pending   map[int64]*pendingPayload
	completed map[int64]struct{}
	order     []int64

	maxBuffered int64
	buffered    int64
}

// NewReassembler returns an empty reassembler that buffers at most maxSize
// bytes across unfinished payloads. maxSize <= 0 means DefaultMaxPayloadSize.
func NewReassembler(maxSize int64) *Reassembler {
	if maxSize <= 0 {
		maxSize = DefaultMaxPayloadSize
	}
	return &Reassembler{
		pending:     make(map[int64]*pendingPayload),
		completed:   make(map[int64]struct{}),
		maxBuffered: min(maxSize, math.MaxInt),
	}
}

// Push applies one PayloadTransfer frame. Control messages are ignored.
func (r *Reassembler) Push(frame *connections.PayloadTransferFrame) error {
	if frame == nil || frame.PayloadHeader == nil {
		return fmt.Errorf("%w: payload transfer without header", ErrDecode)
	}
	if frame.PacketType != connections.PayloadTransferFrame_DATA {
		return nil
	}

	header := frame.PayloadHeader
	if _, done := r.completed[header.Id]; done {
		return nil
	}

	payload, ok := r.pending[header.Id]
	if !ok {
		if header.TotalSize < 0 {
			return fmt.Errorf("%w: payload %d has negative size %d", ErrDecode, header.Id, header.TotalSize)
		}
		if header.TotalSize > r.maxBuffered-r.buffered {
			return fmt.Errorf("%w: payload %d of %d bytes exceeds the %d byte buffer limit", ErrDecode, header.Id, header.TotalSize, r.maxBuffered)
		}
		r.buffered += header.TotalSize
		payload = &pendingPayload{
			header:    header,
			buffer:    make([]byte, header.TotalSize),
			remaining: header.TotalSize,
			written:   make(map[int64]int),
		}
		r.pending[header.Id] = payload
		r.order = append(r.order, header.Id)
	}

	chunk := frame.PayloadChunk
	if chunk == nil {
		return nil
	}
	if len(chunk.Body) > 0 {
		end := chunk.Offset + int64(len(chunk.Body))
		if chunk.Offset < 0 || end > int64(len(payload.buffer)) {
			return fmt.Errorf("%w: payload %d chunk [%d,%d) outside %d bytes", ErrDecode, header.Id, chunk.Offset, end, len(payload.buffer))
		}
		copy(payload.buffer[chunk.Offset:], chunk.Body)
		if prev, seen := payload.written[chunk.Offset]; !seen || prev != len(chunk.Body) {
			if seen {
				payload.remaining += int64(prev)
			}
			payload.written[chunk.Offset] = len(chunk.Body)
			payload.remaining -= int64(len(chunk.Body))
		}
	}
	if chunk.IsLast() && payload.remaining == 0 {
		payload.finished = true
	}
	return nil
}

// DrainFinished removes and returns every finished payload in the order the
// payloads were first seen.
func (r *Reassembler) DrainFinished() []Payload {
	var out []Payload
	kept := r.order[:0]
	for _, id := range r.order {
		payload := r.pending[id]
		if !payload.finished {
			kept = append(kept, id)
			continue
		}
		out = append(out, Payload{ID: id, Type: payload.header.Type, Data: payload.buffer})
		delete(r.pending, id)
		r.completed[id] = struct{}{}
		r.buffered -= int64(len(payload.buffer))
	}
	r.order = kept
	return out
}

// Pending reports how many payloads are partially received.
func (r *Reassembler) Pending() int {
	return len(r.pending)
}
