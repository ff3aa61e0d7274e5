package handler

import (
	"encoding"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"
)

// addAttr flattens a into dst as "_<group>_..._<key>". Empty keys and empty
// groups follow the slog.Handler rules: they are dropped or inlined.
func addAttr(dst map[string]any, groups []string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}

	if a.Value.Kind() == slog.KindGroup {
		members := a.Value.Group()
		if len(members) == 0 {
			return
		}
		if a.Key != "" {
			groups = append(groups[:len(groups):len(groups)], a.Key)
		}
		for _, m := range members {
			addAttr(dst, groups, m)
		}
		return
	}

	if a.Key == "" {
		return
	}
	dst[fieldKey(groups, a.Key)] = attrValue(a.Value)
}

// fieldKey joins groups and key into an extension field name. A bare "id"
// becomes "__id" because "_id" is reserved by Graylog.
func fieldKey(groups []string, key string) string {
	var b strings.Builder
	b.WriteByte('_')
	for _, g := range groups {
		b.WriteString(g)
		b.WriteByte('_')
	}
	b.WriteString(key)

	name := b.String()
	if name == "_id" {
		return "__id"
	}
	return name
}

// attrValue converts v into something encoding/json renders usefully.
// Values the encoder would reject are rendered as text so the record is
// still delivered.
func attrValue(v slog.Value) any {
	switch v.Kind() {
	case slog.KindString:
		return v.String()
	case slog.KindInt64:
		return v.Int64()
	case slog.KindUint64:
		return v.Uint64()
	case slog.KindFloat64:
		return finite(v.Float64())
	case slog.KindBool:
		return v.Bool()
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindTime:
		return v.Time().Format(time.RFC3339Nano)
	}

	switch x := v.Any().(type) {
	case error:
		return x.Error()
	case encoding.TextMarshaler:
		text, err := x.MarshalText()
		if err != nil {
			return fmt.Sprintf("!ERROR:%v", err)
		}
		return string(text)
	case fmt.Stringer:
		return x.String()
	case float64:
		return finite(x)
	case float32:
		if f := float64(x); math.IsNaN(f) || math.IsInf(f, 0) {
			return finite(f)
		}
		return x
	case nil, string, bool, int, int64, uint64:
		return x
	default:
		if _, err := json.Marshal(x); err != nil {
			return fmt.Sprint(x)
		}
		return x
	}
}

// finite keeps f as a number unless it is NaN or infinite, which JSON cannot
// represent; those become "NaN", "+Inf" and "-Inf".
func finite(f float64) any {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return f
}

// addSource attaches the caller's file, line, package and function.
// Nothing is added when pc is zero.
func addSource(dst map[string]any, pc uintptr) {
	if pc == 0 {
		return
	}
	frame, _ := runtime.CallersFrames([]uintptr{pc}).Next()
	if frame.File != "" {
		dst[fieldPath] = frame.File
		dst[fieldFile] = filepath.Base(frame.File)
		dst[fieldLine] = frame.Line
	}

	module, function := splitFunction(frame.Function)
	if module != "" {
		dst[fieldModule] = module
	}
	if function != "" {
		dst[fieldFunction] = function
	}
}

// splitFunction splits a runtime function name such as
// "example.com/app/billing.(*Service).Charge" into its package path and the
// rest.
func splitFunction(name string) (module, function string) {
	if name == "" {
		return "", ""
	}
	slash := strings.LastIndexByte(name, '/') + 1
	dot := strings.IndexByte(name[slash:], '.')
	if dot < 0 {
		return name, ""
	}
	return name[:slash+dot], name[slash+dot+1:]
}
