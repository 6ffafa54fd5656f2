package fileIndex

import (
	"bufio"
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

const (
	formatVersion uint32 = 1
	metricL2      uint32 = 0
	headerSize           = 8 + 4 + 4 + 4 + 8 + sha256.Size

	maxDim    = 1 << 16
	maxChunks = 1 << 26
)

var magic = [8]byte{'L', 'R', 'A', 'G', 'I', 'D', 'X', 0}

// header is the fixed prefix of a .index file. Digest is the sha256 of the
// chunk file written in the same Save, which ties the pair together.
type header struct {
	Magic   [8]byte
	Version uint32
	Metric  uint32
	Dim     uint32
	Count   uint64
	Digest  [sha256.Size]byte
}

type chunkLine struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

func encodeChunks(chunks []string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	for i, c := range chunks {
		if err := enc.Encode(chunkLine{Index: i, Text: c}); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

func decodeChunks(data []byte, want int) ([]string, error) {
	out := make([]string, 0, want)
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 64*1024), len(data)+1)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var c chunkLine
		if err := json.Unmarshal(line, &c); err != nil {
			return nil, fmt.Errorf("invalid chunk line %d: %w", len(out), err)
		}
		if c.Index != len(out) {
			return nil, fmt.Errorf("chunk line %d carries index %d", len(out), c.Index)
		}
		out = append(out, c.Text)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(out) != want {
		return nil, fmt.Errorf("chunk file has %d chunks, index has %d vectors", len(out), want)
	}
	return out, nil
}

func writeIndex(w io.Writer, vectors [][]float32, digest [sha256.Size]byte) error {
	bw := bufio.NewWriter(w)
	h := header{
		Magic:   magic,
		Version: formatVersion,
		Metric:  metricL2,
		Dim:     uint32(len(vectors[0])),
		Count:   uint64(len(vectors)),
		Digest:  digest,
	}
	if err := binary.Write(bw, binary.LittleEndian, h); err != nil {
		return err
	}
	for _, v := range vectors {
		if err := binary.Write(bw, binary.LittleEndian, v); err != nil {
			return err
		}
	}
	return bw.Flush()
}

var errBadHeader = errors.New("bad index header")

// readIndex decodes a whole .index file of the given size.
func readIndex(r io.Reader, size int64) (header, []float32, error) {
	var h header
	if size < headerSize {
		return h, nil, fmt.Errorf("%w: file is %d bytes", errBadHeader, size)
	}
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return h, nil, fmt.Errorf("%w: %v", errBadHeader, err)
	}
	switch {
	case h.Magic != magic:
		return h, nil, fmt.Errorf("%w: wrong magic", errBadHeader)
	case h.Version != formatVersion:
		return h, nil, fmt.Errorf("%w: unsupported version %d", errBadHeader, h.Version)
	case h.Metric != metricL2:
		return h, nil, fmt.Errorf("%w: unsupported metric %d", errBadHeader, h.Metric)
	case h.Dim == 0 || h.Dim > maxDim || h.Count == 0 || h.Count > maxChunks:
		return h, nil, fmt.Errorf("%w: dim=%d count=%d", errBadHeader, h.Dim, h.Count)
	}

	n := int(h.Count) * int(h.Dim)
	if want := int64(headerSize) + int64(n)*4; size != want {
		return h, nil, fmt.Errorf("vector payload is %d bytes, want %d", size-headerSize, want-headerSize)
	}
	data := make([]float32, n)
	if err := binary.Read(r, binary.LittleEndian, data); err != nil {
		return h, nil, fmt.Errorf("cannot read vectors: %w", err)
	}
	return h, data, nil
}
