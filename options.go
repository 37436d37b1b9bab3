package iso8583

import "log/slog"

// MessageOption represents a functional option for message configuration
type MessageOption func(*Message) error

// WithRegistry binds the message to a custom schema table. It must come
// before any option that sets a field.
func WithRegistry(r *Registry) MessageOption {
	return func(m *Message) error {
		m.registry = r
		return nil
	}
}

// WithMTI sets the Message Type Indicator
func WithMTI(mti string) MessageOption {
	return func(m *Message) error {
		return m.SetMTI(mti)
	}
}

// WithField sets a field value during message creation
func WithField(fieldNum int, v Value) MessageOption {
	return func(m *Message) error {
		return m.Set(fieldNum, v)
	}
}

// WithFields sets multiple fields during message creation
func WithFields(fields map[int]Value) MessageOption {
	return func(m *Message) error {
		for fieldNum, v := range fields {
			if err := m.Set(fieldNum, v); err != nil {
				return err
			}
		}
		return nil
	}
}

// CodecOption represents a functional option for codec configuration
type CodecOption func(*Codec)

// WithCodecRegistry sets the schema table used to encode and decode.
func WithCodecRegistry(r *Registry) CodecOption {
	return func(c *Codec) {
		c.registry = r
	}
}

// WithBitmapEncoding selects binary (default) or hex bitmaps on the wire.
func WithBitmapEncoding(enc BitmapEncoding) CodecOption {
	return func(c *Codec) {
		c.bitmapEncoding = enc
	}
}

// WithLogger sets the logger the codec reports decode failures to.
func WithLogger(l *slog.Logger) CodecOption {
	return func(c *Codec) {
		c.logger = l
	}
}
