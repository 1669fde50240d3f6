package dataset

import (
	"bufio"
	"encoding/binary"
	"errors"
	"io"
	"math"
)

// maxFvecsDim bounds the per-record dimension to reject garbage headers early.
const maxFvecsDim = 1 << 16

// ReadFvecs decodes the fvecs format used by the SIFT/GIST benchmark sets.
func ReadFvecs(r io.Reader) (*Dataset, error) {
	br := bufio.NewReaderSize(r, 1<<16)
	ds := &Dataset{}

	var head [4]byte
	var buf []byte

	for i := 0; ; i++ {
		if _, err := io.ReadFull(br, head[:]); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, malformed("record %d: header: %v", i, err)
		}

		dim := int(int32(binary.LittleEndian.Uint32(head[:])))
		if dim <= 0 || dim > maxFvecsDim {
			return nil, malformed("record %d: dimension %d", i, dim)
		}
		if ds.Dim == 0 {
			ds.Dim = dim
			buf = make([]byte, 4*dim)
		} else if dim != ds.Dim {
			return nil, malformed("record %d: dimension %d, want %d", i, dim, ds.Dim)
		}

		if _, err := io.ReadFull(br, buf); err != nil {
			return nil, malformed("record %d: truncated: %v", i, err)
		}

		p := make([]float32, dim)
		for j := range p {
			p[j] = math.Float32frombits(binary.LittleEndian.Uint32(buf[4*j:]))
		}
		ds.Points = append(ds.Points, p)
	}

	if len(ds.Points) == 0 {
		return nil, ErrEmpty
	}
	return ds, nil
}

// WriteFvecs encodes points in the fvecs format.
func WriteFvecs(w io.Writer, points [][]float32) error {
	bw := bufio.NewWriter(w)
	var word [4]byte

	for _, p := range points {
		binary.LittleEndian.PutUint32(word[:], uint32(len(p)))
		if _, err := bw.Write(word[:]); err != nil {
			return err
		}
		for _, v := range p {
			binary.LittleEndian.PutUint32(word[:], math.Float32bits(v))
			if _, err := bw.Write(word[:]); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

func encodeFloat32s(p []float32) []byte {
	buf := make([]byte, 4*len(p))
	for i, v := range p {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(v))
	}
	return buf
}

func decodeFloat32s(b []byte) ([]float32, error) {
	if len(b)%4 != 0 {
		return nil, malformed("blob length %d is not a multiple of 4", len(b))
	}
	p := make([]float32, len(b)/4)
	for i := range p {
		p[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:]))
	}
	return p, nil
}
