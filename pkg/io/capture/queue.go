package capture

import (
	"encoding/binary"
	"errors"
	"math"
	"sync/atomic"
	"time"

	"github.com/smallnest/ringbuffer"
)

var (
	ErrQueueFull     = errors.New("capture: queue full")
	ErrBlockTooLarge = errors.New("capture: block too large for queue")
)

// Block is one device callback worth of interleaved samples.
type Block struct {
	Samples  []float32
	Captured time.Time
}

func (b *Block) MarshalBinary() ([]byte, error) {
	// timestamp(8) + count(4) + samples
	buf := make([]byte, 12+4*len(b.Samples))
	binary.LittleEndian.PutUint64(buf[0:], uint64(b.Captured.UnixNano()))
	binary.LittleEndian.PutUint32(buf[8:], uint32(len(b.Samples)))
	for i, s := range b.Samples {
		binary.LittleEndian.PutUint32(buf[12+4*i:], math.Float32bits(s))
	}
	return buf, nil
}

func (b *Block) UnmarshalBinary(data []byte) error {
	if len(data) < 12 {
		return errors.New("capture: short block")
	}
	b.Captured = time.Unix(0, int64(binary.LittleEndian.Uint64(data[0:])))
	n := int(binary.LittleEndian.Uint32(data[8:]))
	if len(data[12:]) < 4*n {
		return errors.New("capture: truncated block")
	}
	b.Samples = make([]float32, n)
	for i := range b.Samples {
		b.Samples[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[12+4*i:]))
	}
	return nil
}

// BlockQueue is a non-blocking, length-prefixed block FIFO for one producer
// (the audio callback) and one consumer. A push that does not fit is
// dropped and counted; queued audio is never overwritten.
type BlockQueue struct {
	rb      *ringbuffer.RingBuffer
	dropped atomic.Uint64
}

func NewBlockQueue(size int) *BlockQueue {
	return &BlockQueue{rb: ringbuffer.New(size)}
}

func (q *BlockQueue) Push(b Block) error {
	data, err := b.MarshalBinary()
	if err != nil {
		return err
	}
	record := make([]byte, 4+len(data))
	binary.LittleEndian.PutUint32(record, uint32(len(data)))
	copy(record[4:], data)

	if len(record) > q.rb.Capacity() {
		q.dropped.Add(1)
		return ErrBlockTooLarge
	}
	if q.rb.Free() < len(record) {
		q.dropped.Add(1)
		return ErrQueueFull
	}
	// one write per record so the reader never sees half of it
	if _, err := q.rb.Write(record); err != nil {
		q.dropped.Add(1)
		return err
	}
	return nil
}

func (q *BlockQueue) Pop() (Block, bool) {
	if q.rb.Length() < 4 {
		return Block{}, false
	}
	prefix := make([]byte, 4)
	if n, err := q.rb.Read(prefix); err != nil || n != 4 {
		return Block{}, false
	}
	size := int(binary.LittleEndian.Uint32(prefix))
	data := make([]byte, size)
	if n, err := q.rb.Read(data); err != nil || n != size {
		return Block{}, false
	}

	var b Block
	if err := b.UnmarshalBinary(data); err != nil {
		return Block{}, false
	}
	return b, true
}

func (q *BlockQueue) Empty() bool {
	return q.rb.IsEmpty()
}

func (q *BlockQueue) Dropped() uint64 {
	return q.dropped.Load()
}

func (q *BlockQueue) Reset() {
	q.rb.Reset()
	q.dropped.Store(0)
}
