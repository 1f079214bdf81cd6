package reflection

import (
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// ErrorPolicy decides whether a raised error is handled. Handled errors are
// logged at warn level and the walk continues; unhandled errors stop it.
type ErrorPolicy func(*Error) bool

// DefaultDeserializePolicy handles only unknown properties in the incoming
// data, which keeps old data files loadable after a field is removed.
func DefaultDeserializePolicy(e *Error) bool {
	return e.Kind == ErrUndefinedProperty
}

// DefaultSerializePolicy handles nothing.
func DefaultSerializePolicy(*Error) bool { return false }

const (
	frameProp = iota
	frameIndex
	frameKey
)

type frame struct {
	kind int
	name string
	idx  int
}

// Context carries the state of one serialization walk: the scope path used
// in error messages, the error policy, and every failure raised so far.
type Context struct {
	root     string
	frames   []frame
	policy   ErrorPolicy
	log      *zap.Logger
	errs     []*Error
	fatal    *Error
	skipPost bool
}

// ContextOption configures a Context.
type ContextOption func(*Context)

// WithRoot names the walk's origin in error paths, typically a file name.
func WithRoot(name string) ContextOption {
	return func(c *Context) { c.root = name }
}

// WithPolicy overrides the error policy.
func WithPolicy(p ErrorPolicy) ContextOption {
	return func(c *Context) { c.policy = p }
}

// WithLogger routes handled-error warnings and failure reports to l.
func WithLogger(l *zap.Logger) ContextOption {
	return func(c *Context) { c.log = l }
}

// WithoutPostHooks suppresses the PostSerializeType hook on the root object
// of the walk. Nested objects still run theirs.
func WithoutPostHooks() ContextOption {
	return func(c *Context) { c.skipPost = true }
}

// NewContext builds a Context. Without options it has no root, a nop logger,
// and no policy; Serialize and Deserialize install their default policy when
// none is set.
func NewContext(opts ...ContextOption) *Context {
	c := &Context{}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = zap.NewNop()
	}
	return c
}

// Path renders the current scope, e.g. "units.json.Squad.Members[2].Name".
func (c *Context) Path() string {
	var b strings.Builder
	b.WriteString(c.root)
	for _, f := range c.frames {
		switch f.kind {
		case frameProp:
			if b.Len() > 0 {
				b.WriteByte('.')
			}
			b.WriteString(f.name)
		case frameIndex:
			b.WriteByte('[')
			b.WriteString(strconv.Itoa(f.idx))
			b.WriteByte(']')
		case frameKey:
			b.WriteString("['")
			b.WriteString(f.name)
			b.WriteString("']")
		}
	}
	return b.String()
}

// Errors returns every error raised during the walk, handled ones included.
func (c *Context) Errors() []*Error { return c.errs }

// Err returns the first unhandled error, or nil when the walk succeeded.
func (c *Context) Err() error {
	if c.fatal == nil {
		return nil
	}
	return c.fatal
}

func (c *Context) pushProp(name string) { c.frames = append(c.frames, frame{kind: frameProp, name: name}) }
func (c *Context) pushIndex(i int)      { c.frames = append(c.frames, frame{kind: frameIndex, idx: i}) }
func (c *Context) pushKey(key string)   { c.frames = append(c.frames, frame{kind: frameKey, name: key}) }
func (c *Context) pop()                 { c.frames = c.frames[:len(c.frames)-1] }

// raise records an error and asks the policy whether to continue. The return
// value is true when the walk may proceed.
func (c *Context) raise(kind ErrorKind, typeName, prop, detail string) bool {
	e := &Error{
		Kind:     kind,
		Path:     c.Path(),
		TypeName: typeName,
		Property: prop,
		Detail:   detail,
	}
	c.errs = append(c.errs, e)

	fields := []zap.Field{
		zap.String("path", e.Path),
		zap.String("type", e.TypeName),
	}
	if e.Property != "" {
		fields = append(fields, zap.String("property", e.Property))
	}
	if e.Detail != "" {
		fields = append(fields, zap.String("detail", e.Detail))
	}

	if c.policy != nil && c.policy(e) {
		c.log.Warn(e.Kind.String(), fields...)
		return true
	}
	if c.fatal == nil {
		c.fatal = e
	}
	c.log.Error(e.Kind.String(), fields...)
	return false
}
