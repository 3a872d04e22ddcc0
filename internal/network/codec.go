package network

import "strconv"

// MessageEnd is the character denoting a message end.
const MessageEnd = '\n'

// PayloadStart is the character denoting that a payload follows the header.
const PayloadStart = ':'

// ItemSeparator is the character separating two payload items.
const ItemSeparator = ';'

// EscapeChar is the escape character.
const EscapeChar = '\\'

// MaxMessageLength is the maximum length of buffered text without a message
// end after which the stream is considered invalid.
const MaxMessageLength = 1024

// split splits the string by the separator characters that are not
// escaped by the escape character.
func split(s string, separator, escape rune) []string {
	var tokens []string
	var token []rune

	isEscaped := false

	for _, c := range s {
		if isEscaped {
			isEscaped = false
		} else if c == escape {
			isEscaped = true
		} else if c == separator {
			tokens = append(tokens, string(token))
			token = token[:0]
			continue
		}

		token = append(token, c)
	}

	return append(tokens, string(token))
}

// find returns the byte position of the first occurrence of the character
// which is not escaped by the escape character, or -1.
func find(s string, toFind, escape rune) int {
	isEscaped := false

	for i, c := range s {
		if isEscaped {
			isEscaped = false

			if c == escape && toFind == escape {
				return i
			}

			continue
		}

		if c == escape {
			isEscaped = true
			continue
		}

		if c == toFind {
			return i
		}
	}

	return -1
}

// Escape prefixes every occurrence of the given characters with the
// escape character.
func Escape(s string, chars []rune, escape rune) string {
	var escaped []rune

	for _, sc := range s {
		for _, ec := range chars {
			if sc == ec {
				escaped = append(escaped, escape)
				break
			}
		}

		escaped = append(escaped, sc)
	}

	return string(escaped)
}

// Unescape removes the escape character before every escaped occurrence
// of the given characters. An escape before any other character is kept.
func Unescape(s string, chars []rune, escape rune) string {
	var unescaped []rune
	isEscape := false

	for _, sc := range s {
		if isEscape {
			isEscape = false

			shouldUnescape := false
			for _, uc := range chars {
				if sc == uc {
					shouldUnescape = true
					break
				}
			}
			if !shouldUnescape {
				unescaped = append(unescaped, escape)
			}
		} else if sc == escape {
			isEscape = true
			continue
		}

		unescaped = append(unescaped, sc)
	}

	return string(unescaped)
}

// Payload is a FIFO of message payload items. Items can be appended to the
// back and taken from the front.
type Payload struct {
	items []string
}

// EmptyPayload creates a payload with no items.
func EmptyPayload() *Payload {
	return &Payload{}
}

// parsePayload deserializes payload items from a string. Even an empty
// string is a non-empty payload consisting of one empty string item.
func parsePayload(serialized string) *Payload {
	parts := split(serialized, ItemSeparator, EscapeChar)

	items := make([]string, len(parts))
	for i, part := range parts {
		items[i] = Unescape(part, []rune{EscapeChar, ItemSeparator}, EscapeChar)
	}

	return &Payload{items: items}
}

// Serialize joins the escaped payload items into a string.
// Returns false if the payload has no items.
func (p *Payload) Serialize() (string, bool) {
	if len(p.items) == 0 {
		return "", false
	}

	serialized := ""
	for i, item := range p.items {
		if i > 0 {
			serialized += string(ItemSeparator)
		}
		serialized += Escape(item, []rune{EscapeChar, ItemSeparator}, EscapeChar)
	}

	return serialized, true
}

// PutString puts a string item into the payload.
func (p *Payload) PutString(s string) {
	p.items = append(p.items, s)
}

// PutInt puts an int item, which is serialized into a string.
func (p *Payload) PutInt(i int) {
	p.items = append(p.items, strconv.Itoa(i))
}

func (p *Payload) takeItem() (string, error) {
	if len(p.items) == 0 {
		return "", newError(NoMorePayloadItems)
	}

	item := p.items[0]
	p.items = p.items[1:]
	return item, nil
}

// TakeString takes the next string item from the front of the payload.
func (p *Payload) TakeString() (string, error) {
	return p.takeItem()
}

// TakeUint8 takes the next item and deserializes it as a decimal integer.
// The item is taken from the payload even if the deserialization fails.
func (p *Payload) TakeUint8() (uint8, error) {
	item, err := p.takeItem()
	if err != nil {
		return 0, err
	}

	i, err := strconv.ParseUint(item, 10, 8)
	if err != nil {
		return 0, parseIntError(err)
	}

	return uint8(i), nil
}
