package logsvc

import (
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"

	"github.com/trezcool/absentee/core"
)

type RollbarLogger struct {
	std       *log.Logger
	debug     bool
	canReport bool
}

var (
	_ core.Logger = (*RollbarLogger)(nil)

	setEnabled = rollbar.SetEnabled // mockable
)

// NewRollbarLogger logs to std and reports to rollbar; reporting is off without a token.
func NewRollbarLogger(std *log.Logger, conf *core.Config) *RollbarLogger {
	rollbar.SetToken(conf.RollbarToken)
	rollbar.SetEnvironment(conf.Env)
	rollbar.SetServerHost(conf.Server.Host)
	rollbar.SetCodeVersion(conf.Build)
	rollbar.SetStackTracer(errors.StackTracer)
	canReport := conf.RollbarToken != "" && !conf.TestMode
	setEnabled(canReport)
	return &RollbarLogger{std: std, debug: conf.Debug, canReport: canReport}
}

// Enable toggles reporting. It never turns reporting on without a token or in test mode.
func (l RollbarLogger) Enable(enabled bool) {
	setEnabled(enabled && l.canReport)
}

// Close waits for queued reports to be sent.
func (l RollbarLogger) Close() {
	rollbar.Close()
}

// expected fmt: msg | error, map[string]interface{}
// rollbar takes at most one error and one map of extras; further maps are merged.
func (l RollbarLogger) prepare(msg string, args []interface{}) []interface{} {
	var (
		extras map[string]interface{}
		errSet bool
	)
	newArgs := make([]interface{}, 0, len(args)+1)
	newArgs = append(newArgs, msg)
	for _, arg := range args {
		switch v := arg.(type) {
		case map[string]interface{}:
			if extras == nil {
				extras = make(map[string]interface{}, len(v))
			}
			for key, val := range v {
				extras[key] = val
			}
		case error:
			if !errSet {
				newArgs = append(newArgs, v)
				errSet = true
			}
		default:
			if extras == nil {
				extras = make(map[string]interface{})
			}
			extras[fmt.Sprintf("arg%d", len(extras))] = fmt.Sprintf("%+v", v)
		}
	}
	if extras != nil {
		newArgs = append(newArgs, extras)
	}
	return newArgs
}

func (l RollbarLogger) print(level, msg string, args []interface{}) {
	var b strings.Builder
	b.WriteString(level + ": " + msg)
	for _, arg := range args {
		switch v := arg.(type) {
		case map[string]interface{}:
			keys := make([]string, 0, len(v))
			for k := range v {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				_, _ = fmt.Fprintf(&b, " %s=%v", k, v[k])
			}
		case error:
			if l.debug {
				_, _ = fmt.Fprintf(&b, "\n%+v", v)
			} else {
				_, _ = fmt.Fprintf(&b, " error=%q", v.Error())
			}
		default:
			_, _ = fmt.Fprintf(&b, " %+v", v)
		}
	}
	l.std.Println(b.String())
}

func (l RollbarLogger) Debug(msg string, args ...interface{}) {
	if !l.debug {
		return
	}
	rollbar.Debug(l.prepare(msg, args)...)
	l.print("DEBUG", msg, args)
}

func (l RollbarLogger) Info(msg string, args ...interface{}) {
	rollbar.Info(l.prepare(msg, args)...)
	l.print("INFO", msg, args)
}

func (l RollbarLogger) Warn(msg string, args ...interface{}) {
	rollbar.Warning(l.prepare(msg, args)...)
	l.print("WARN", msg, args)
}

func (l RollbarLogger) Error(msg string, args ...interface{}) {
	rollbar.Error(l.prepare(msg, args)...)
	l.print("ERROR", msg, args)
}

func (l RollbarLogger) Fatal(msg string, args ...interface{}) {
	rollbar.Critical(l.prepare(msg, args)...)
	l.print("FATAL", msg, args)
	rollbar.Close()
	l.std.Fatal(msg)
}
