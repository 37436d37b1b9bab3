package iso8583

import (
	"sync"
	"time"
)

// Builder pool for reuse
var builderPool = sync.Pool{
	New: func() any {
		return &Builder{
			errors: make([]error, 0, 4),
		}
	},
}

// Builder assembles a Message through chained calls. Errors are collected
// and the first one is reported by Build.
type Builder struct {
	msg    *Message
	errors []error
}

func NewBuilder(opts ...MessageOption) *Builder {
	b := builderPool.Get().(*Builder)
	b.errors = b.errors[:0]

	msg, err := NewMessage(opts...)
	if err != nil {
		b.errors = append(b.errors, err)
		msg, _ = NewMessage()
	}
	b.msg = msg
	return b
}

// Release returns the builder to the pool
func (b *Builder) Release() {
	b.msg = nil
	b.errors = b.errors[:0]
	builderPool.Put(b)
}

func (b *Builder) record(err error) *Builder {
	if err != nil {
		b.errors = append(b.errors, err)
	}
	return b
}

func (b *Builder) MTI(mti string) *Builder {
	return b.record(b.msg.SetMTI(mti))
}

func (b *Builder) Field(fieldNum int, v Value) *Builder {
	return b.record(b.msg.Set(fieldNum, v))
}

// Named sets a field by its schema name, e.g. "SystemTraceAuditNumber".
func (b *Builder) Named(name string, v Value) *Builder {
	s, err := b.msg.registry.Lookup(name)
	if err != nil {
		return b.record(err)
	}
	return b.Field(s.Number, v)
}

func (b *Builder) PAN(pan string) *Builder {
	return b.record(b.msg.SetString(2, pan))
}

func (b *Builder) ProcessingCode(code string) *Builder {
	return b.record(b.msg.SetString(3, code))
}

// Amount sets the transaction amount in minor units.
func (b *Builder) Amount(minor int64) *Builder {
	return b.record(b.msg.SetInt(4, minor))
}

func (b *Builder) TransmissionTime(t time.Time) *Builder {
	return b.record(b.msg.SetTime(7, t))
}

func (b *Builder) STAN(stan int64) *Builder {
	return b.record(b.msg.SetInt(11, stan))
}

func (b *Builder) ResponseCode(code string) *Builder {
	return b.record(b.msg.SetString(39, code))
}

func (b *Builder) Build() (*Message, error) {
	if len(b.errors) > 0 {
		return nil, b.errors[0]
	}
	msg := b.msg
	b.msg = nil // Transfer ownership
	return msg, nil
}

func (b *Builder) MustBuild() *Message {
	msg, err := b.Build()
	if err != nil {
		panic(err)
	}
	return msg
}
