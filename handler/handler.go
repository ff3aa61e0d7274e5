package handler

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"

	"github.com/nerrad567/graylogging/gelf"
	"github.com/nerrad567/graylogging/transport"
)

// Extension fields attached to every record.
const (
	fieldFile      = "_file"
	fieldLine      = "_line"
	fieldModule    = "_module"
	fieldFunction  = "_function"
	fieldName      = "_name"
	fieldPath      = "_path"
	fieldProcess   = "_process"
	fieldThread    = "_thread"
	fieldExcInfo   = "_exc_info"
	fieldExcText   = "_exc_text"
	fieldPriority  = "_priority"
	threadName     = "goroutine"
	errorReportTag = "--- Logging error ---"
)

// Handler is a slog.Handler that sends each record to Graylog.
//
// A Handler is immutable once built; WithAttrs and WithGroup return copies.
// It is safe for concurrent use.
type Handler struct {
	kind         transport.Kind
	cfg          transport.Config
	facility     gelf.Facility
	hostname     string
	appName      string
	loggerName   string
	process      string
	level        slog.Leveler
	closeOnError bool
	addStack     bool
	onError      func(error, slog.Record)
	stderr       io.Writer

	// attrs holds fields from WithAttrs, already prefixed with their groups.
	attrs  map[string]any
	groups []string
}

var _ slog.Handler = (*Handler)(nil)

// New validates opts and returns a Handler.
//
// Returns:
//   - *Handler: ready for slog.New
//   - error: ErrInvalidOptions for a missing host,
//     transport.ErrUnsupportedTransport for an unknown Kind,
//     transport.ErrUnsupportedCompression, or gelf.ErrInvalidFacility
func New(opts Options) (*Handler, error) {
	if strings.TrimSpace(opts.Host) == "" {
		return nil, fmt.Errorf("%w: host is required", ErrInvalidOptions)
	}

	if opts.Transport == 0 {
		opts.Transport = DefaultTransport
	}
	if !opts.Transport.Valid() {
		return nil, fmt.Errorf("%w: %v", transport.ErrUnsupportedTransport, opts.Transport)
	}

	compression, err := transport.ParseCompression(string(opts.Compression))
	if err != nil {
		return nil, err
	}
	opts.Compression = compression

	facility := gelf.DefaultFacility
	if opts.Facility != nil {
		facility, err = gelf.ParseFacility(opts.Facility)
		if err != nil {
			return nil, err
		}
	}

	level := opts.Level
	if level == nil {
		level = slog.LevelInfo
	}

	h := &Handler{
		kind:         opts.Transport,
		cfg:          opts.transportConfig(),
		facility:     facility,
		hostname:     opts.Hostname,
		appName:      opts.AppName,
		loggerName:   opts.LoggerName,
		process:      filepath.Base(os.Args[0]),
		level:        level,
		closeOnError: opts.CloseOnError,
		addStack:     opts.AddStack,
		onError:      opts.OnError,
		stderr:       os.Stderr,
	}

	return h, nil
}

// Enabled reports whether l meets the configured minimum level.
func (h *Handler) Enabled(_ context.Context, l slog.Level) bool {
	return l >= h.level.Level()
}

// Handle formats r and sends it. Failures go to the error path; Handle
// itself always returns nil so logging never fails the caller.
func (h *Handler) Handle(ctx context.Context, r slog.Record) error {
	p, err := h.Payload(r)
	if err == nil {
		_, err = h.Send(ctx, p)
	}
	if err != nil {
		h.handleError(err, r)
	}
	return nil
}

// Payload builds the GELF payload for r without sending it.
func (h *Handler) Payload(r slog.Record) (gelf.Payload, error) {
	level := gelfLevel(r.Level)

	priority, err := gelf.EncodePriority(h.facility, level)
	if err != nil {
		return nil, err
	}

	extra := make(map[string]any, len(h.attrs)+r.NumAttrs()+12)
	maps.Copy(extra, h.attrs)
	var recordErr error
	r.Attrs(func(a slog.Attr) bool {
		if e, ok := a.Value.Resolve().Any().(error); ok && recordErr == nil {
			recordErr = e
		}
		addAttr(extra, h.groups, a)
		return true
	})

	extra[fieldPriority] = priority
	extra[fieldProcess] = h.process
	extra[fieldThread] = threadName
	if h.loggerName != "" {
		extra[fieldName] = h.loggerName
	}
	addSource(extra, r.PC)
	if recordErr != nil {
		extra[fieldExcInfo] = fmt.Sprintf("%T", recordErr)
		extra[fieldExcText] = recordErr.Error()
	}

	var full string
	if h.addStack && r.Level >= slog.LevelError {
		full = string(debug.Stack())
	}

	return gelf.Format(gelf.Message{
		ShortMessage: r.Message,
		Host:         h.hostname,
		FullMessage:  full,
		Timestamp:    r.Time,
		Level:        level,
		AppName:      h.appName,
		Extra:        extra,
	})
}

// Send delivers p on a client built for this call and returns its outcome.
// Unlike Handle, errors are returned.
func (h *Handler) Send(ctx context.Context, p gelf.Payload) (transport.Result, error) {
	client, err := transport.New(h.kind, h.cfg)
	if err != nil {
		return nil, err
	}
	if c, ok := client.(io.Closer); ok {
		defer c.Close()
	}
	return client.Send(ctx, p)
}

// WithAttrs returns a handler whose records also carry attrs.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	h2 := *h
	h2.attrs = make(map[string]any, len(h.attrs)+len(attrs))
	maps.Copy(h2.attrs, h.attrs)
	for _, a := range attrs {
		addAttr(h2.attrs, h.groups, a)
	}
	return &h2
}

// WithGroup returns a handler that prefixes later attributes with name.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	h2 := *h
	h2.groups = append(h.groups[:len(h.groups):len(h.groups)], name)
	return &h2
}

// handleError is the single place a failed record ends up.
func (h *Handler) handleError(err error, r slog.Record) {
	if h.closeOnError {
		return
	}
	if h.onError != nil {
		h.onError(err, r)
		return
	}
	fmt.Fprintf(h.stderr, "%s\n%v\nMessage: %q\nLevel: %v\n", errorReportTag, err, r.Message, r.Level)
}
