package persistence

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/google/uuid"

	"github.com/hupe1980/nodefinder/codec"
)

// fixed part of the header: magic, version, kind, compression, codec-name-len
const preambleSize = 4 + 2 + 1 + 1 + 1

// maxBodyLen bounds the allocation made for a declared body length.
const maxBodyLen = 1 << 34

// Options configures how a checkpoint is encoded.
type Options struct {
	Codec       codec.Codec // defaults to codec.Default
	Compression Compression
	RunID       uuid.UUID
}

// Encode writes doc as a checkpoint of the given kind to w and returns the
// number of bytes written.
func Encode(w io.Writer, kind Kind, doc *Document, opts Options) (int64, error) {
	if kind != KindState && kind != KindResult {
		return 0, fmt.Errorf("%w: %d", ErrInvalidKind, kind)
	}
	if err := doc.Validate(kind); err != nil {
		return 0, err
	}
	if !opts.Compression.valid() {
		return 0, fmt.Errorf("%w: %d", ErrUnknownCompression, opts.Compression)
	}
	c := opts.Codec
	if c == nil {
		c = codec.Default
	}
	name := c.Name()
	if len(name) == 0 || len(name) > math.MaxUint8 {
		return 0, fmt.Errorf("%w: name %q", ErrUnknownCodec, name)
	}

	encoded, err := c.Marshal(doc)
	if err != nil {
		return 0, fmt.Errorf("persistence: encode document: %w", err)
	}
	body, err := compress(encoded, opts.Compression)
	if err != nil {
		return 0, fmt.Errorf("persistence: compress document: %w", err)
	}

	var hdr bytes.Buffer
	hdr.Grow(preambleSize + len(name) + 16 + 8 + 4)
	hdr.WriteString(Magic)
	_ = binary.Write(&hdr, binary.LittleEndian, Version)
	hdr.WriteByte(byte(kind))
	hdr.WriteByte(byte(opts.Compression))
	hdr.WriteByte(byte(len(name)))
	hdr.WriteString(name)
	hdr.Write(opts.RunID[:])
	_ = binary.Write(&hdr, binary.LittleEndian, uint64(len(body)))
	_ = binary.Write(&hdr, binary.LittleEndian, CalculateChecksum(body))

	n, err := hdr.WriteTo(w)
	if err != nil {
		return n, err
	}
	m, err := w.Write(body)
	return n + int64(m), err
}

// ReadHeader reads and validates the checkpoint header from r.
func ReadHeader(r io.Reader) (*Header, error) {
	var pre [preambleSize]byte
	if _, err := io.ReadFull(r, pre[:]); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: truncated header", ErrInvalidMagic)
		}
		return nil, err
	}
	if string(pre[:4]) != Magic {
		return nil, ErrInvalidMagic
	}

	h := &Header{
		Version:     binary.LittleEndian.Uint16(pre[4:6]),
		Kind:        Kind(pre[6]),
		Compression: Compression(pre[7]),
	}
	if h.Version != Version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, h.Version)
	}
	if h.Kind != KindState && h.Kind != KindResult {
		return nil, fmt.Errorf("%w: %d", ErrInvalidKind, h.Kind)
	}
	if !h.Compression.valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownCompression, h.Compression)
	}

	rest := make([]byte, int(pre[8])+16+8+4)
	if _, err := io.ReadFull(r, rest); err != nil {
		return nil, fmt.Errorf("persistence: read header: %w", err)
	}
	nameLen := int(pre[8])
	h.Codec = string(rest[:nameLen])
	copy(h.RunID[:], rest[nameLen:nameLen+16])
	h.BodyLen = binary.LittleEndian.Uint64(rest[nameLen+16:])
	h.Checksum = binary.LittleEndian.Uint32(rest[nameLen+24:])
	if h.BodyLen > maxBodyLen {
		return nil, fmt.Errorf("%w: body length %d", ErrCorruptBody, h.BodyLen)
	}
	return h, nil
}

// Decode reads a checkpoint from r.
func Decode(r io.Reader) (*Header, *Document, error) {
	h, err := ReadHeader(r)
	if err != nil {
		return nil, nil, err
	}
	c, ok := codec.ByName(h.Codec)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownCodec, h.Codec)
	}

	// The declared length is untrusted until the checksum matches, so the
	// body buffer grows with the bytes actually present.
	cr := NewChecksumReader(r)
	var body bytes.Buffer
	n, err := body.ReadFrom(io.LimitReader(cr, int64(h.BodyLen)))
	if err != nil {
		return nil, nil, fmt.Errorf("persistence: read body: %w", err)
	}
	if uint64(n) != h.BodyLen {
		return nil, nil, fmt.Errorf("%w: body has %d of %d bytes", ErrCorruptBody, n, h.BodyLen)
	}
	if err := cr.Verify(h.Checksum); err != nil {
		return nil, nil, err
	}

	raw, err := decompress(body.Bytes(), h.Compression)
	if err != nil {
		return nil, nil, err
	}
	doc := new(Document)
	if err := c.Unmarshal(raw, doc); err != nil {
		return nil, nil, errors.Join(ErrCorruptBody, err)
	}
	if err := doc.Validate(h.Kind); err != nil {
		return nil, nil, err
	}
	return h, doc, nil
}
