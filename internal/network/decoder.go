package network

import "unicode/utf8"

// LineDecoder incrementally decodes a stream of bytes into framed message
// texts. It keeps a backlog of an incomplete trailing UTF-8 sequence and of
// decoded text that does not contain a message end yet.
//
// There must be only one LineDecoder per stream.
type LineDecoder struct {
	bytes []byte
	text  string
}

// Decode appends the bytes to the stream and returns all newly completed
// message texts with the message end unescaped and stripped.
func (d *LineDecoder) Decode(data []byte) ([]string, error) {
	d.bytes = append(d.bytes, data...)

	valid, ok := validUtf8Prefix(d.bytes)
	if !ok {
		return nil, newError(InvalidUtf8)
	}

	d.text += string(d.bytes[:valid])
	d.bytes = d.bytes[valid:]

	var frames []string
	offset := 0

	for {
		i := find(d.text[offset:], MessageEnd, EscapeChar)
		if i < 0 {
			// message is incomplete
			if len(d.text)-offset > MaxMessageLength {
				return nil, newError(MessageLengthExceeded)
			}
			break
		}

		frame := d.text[offset : offset+i]
		offset += i + 1

		frames = append(frames, Unescape(frame, []rune{MessageEnd}, EscapeChar))
	}

	d.text = d.text[offset:]

	return frames, nil
}

// validUtf8Prefix returns the length of the longest valid UTF-8 prefix of b.
// The remainder may only be an incomplete trailing sequence; ok is false when
// the bytes contain an invalid sequence.
func validUtf8Prefix(b []byte) (n int, ok bool) {
	i := 0
	for i < len(b) {
		if b[i] < utf8.RuneSelf {
			i++
			continue
		}

		r, size := utf8.DecodeRune(b[i:])
		if r != utf8.RuneError || size > 1 {
			i += size
			continue
		}

		need := utf8SeqLen(b[i])
		if need == 0 || len(b)-i >= need {
			// invalid sequence in the middle of the stream
			return 0, false
		}

		// possibly an incomplete trailing sequence
		for j := i + 1; j < len(b); j++ {
			if b[j]&0xC0 != 0x80 {
				return 0, false
			}
		}

		return i, true
	}

	return i, true
}

// utf8SeqLen returns the expected length of a UTF-8 sequence starting with
// the given byte, or 0 if the byte can't start a sequence.
func utf8SeqLen(b byte) int {
	switch {
	case b&0xE0 == 0xC0:
		return 2
	case b&0xF0 == 0xE0:
		return 3
	case b&0xF8 == 0xF0:
		return 4
	}
	return 0
}

// Encoder serializes messages into a stream of bytes in an internal buffer
// which is drained by the writer.
type Encoder struct {
	buf []byte
}

// Append serializes the message, escapes message end characters within it,
// terminates it and appends the bytes to the internal buffer.
func (e *Encoder) Append(m Message) {
	s := Escape(m.Serialize(), []rune{MessageEnd}, EscapeChar)
	e.buf = append(e.buf, s...)
	e.buf = append(e.buf, MessageEnd)
}

// HasBytes reports whether any serialized bytes are waiting in the buffer.
func (e *Encoder) HasBytes() bool {
	return len(e.buf) > 0
}

// Bytes returns all available serialized bytes.
func (e *Encoder) Bytes() []byte {
	return e.buf
}

// Discard drops the first n bytes from the buffer.
func (e *Encoder) Discard(n int) {
	if n > len(e.buf) {
		n = len(e.buf)
	}
	e.buf = e.buf[n:]
}
