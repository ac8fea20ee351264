package store

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// encodePix packs texels as little-endian float32 and gzips the result.
func encodePix(pix []float32) ([]byte, error) {
	raw := make([]byte, len(pix)*4)
	for i, v := range pix {
		binary.LittleEndian.PutUint32(raw[i*4:], math.Float32bits(v))
	}

	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	if _, err := gw.Write(raw); err != nil {
		gw.Close()
		return nil, err
	}
	if err := gw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// decodePix inverts encodePix into dst, which must have the stored length.
func decodePix(data []byte, dst []float32) error {
	gr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return err
	}
	defer gr.Close()

	raw, err := io.ReadAll(gr)
	if err != nil {
		return err
	}
	if len(raw) != len(dst)*4 {
		return fmt.Errorf("payload holds %d bytes, want %d", len(raw), len(dst)*4)
	}
	for i := range dst {
		dst[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
	}
	return nil
}
