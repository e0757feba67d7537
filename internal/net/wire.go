package net

import (
	"encoding/binary"
	"errors"
)

// Writer builds an outbound frame payload. The first byte is the message
// type; the rest is little-endian fields. Frames are length-prefixed on the
// wire by the session writer.
type Writer struct {
	buf []byte
}

func NewWriter(msgType byte) *Writer {
	return &Writer{buf: []byte{msgType}}
}

func (w *Writer) WriteUint8(v byte) *Writer {
	w.buf = append(w.buf, v)
	return w
}

func (w *Writer) WriteUint16(v uint16) *Writer {
	w.buf = binary.LittleEndian.AppendUint16(w.buf, v)
	return w
}

func (w *Writer) WriteUint32(v uint32) *Writer {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, v)
	return w
}

// WriteString appends a length-prefixed UTF-8 string.
func (w *Writer) WriteString(s string) *Writer {
	w.buf = binary.LittleEndian.AppendUint16(w.buf, uint16(len(s)))
	w.buf = append(w.buf, s...)
	return w
}

func (w *Writer) Bytes() []byte {
	return w.buf
}

var errShortFrame = errors.New("short frame")

// Reader decodes an inbound frame payload.
type Reader struct {
	buf []byte
	off int
}

func NewReader(payload []byte) *Reader {
	return &Reader{buf: payload}
}

func (r *Reader) ReadByte() (byte, error) {
	if r.off+1 > len(r.buf) {
		return 0, errShortFrame
	}
	v := r.buf[r.off]
	r.off++
	return v, nil
}

func (r *Reader) ReadUint16() (uint16, error) {
	if r.off+2 > len(r.buf) {
		return 0, errShortFrame
	}
	v := binary.LittleEndian.Uint16(r.buf[r.off:])
	r.off += 2
	return v, nil
}

func (r *Reader) ReadUint32() (uint32, error) {
	if r.off+4 > len(r.buf) {
		return 0, errShortFrame
	}
	v := binary.LittleEndian.Uint32(r.buf[r.off:])
	r.off += 4
	return v, nil
}

func (r *Reader) ReadString() (string, error) {
	n, err := r.ReadUint16()
	if err != nil {
		return "", err
	}
	if r.off+int(n) > len(r.buf) {
		return "", errShortFrame
	}
	s := string(r.buf[r.off : r.off+int(n)])
	r.off += int(n)
	return s, nil
}
