package logsvc

import (
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"

	"github.com/trezcool/coursehub/core"
	"github.com/trezcool/coursehub/core/user"
)

// RollbarLogger writes to std and reports to Rollbar (when enabled).
type RollbarLogger struct {
	std *log.Logger
}

var _ core.Logger = (*RollbarLogger)(nil)

func NewRollbarLogger(std *log.Logger, conf *core.Config) *RollbarLogger {
	rollbar.SetToken(conf.RollbarToken)
	rollbar.SetEnvironment(conf.Env)
	rollbar.SetServerHost(conf.Server.Host)
	rollbar.SetCodeVersion(conf.Build)
	rollbar.SetStackTracer(errors.StackTracer)
	return &RollbarLogger{std: std}
}

func (l RollbarLogger) Enable(enabled bool) {
	rollbar.SetEnabled(enabled)
}

// entry is a log call sorted out of its variadic args.
type entry struct {
	err    error
	extras map[string]interface{} // every map arg, merged
	actor  *user.User             // first non anonymous user
	other  []interface{}
}

func newEntry(args []interface{}) entry {
	var e entry
	for _, arg := range args {
		switch a := arg.(type) {
		case user.User:
			if e.actor == nil && a.ID != 0 {
				usr := a
				e.actor = &usr
			}
		case error:
			if e.err == nil {
				e.err = a
			} else {
				e.other = append(e.other, a)
			}
		case map[string]interface{}:
			if e.extras == nil {
				e.extras = make(map[string]interface{}, len(a))
			}
			for k, v := range a {
				e.extras[k] = v
			}
		case nil:
		default:
			e.other = append(e.other, a)
		}
	}
	if e.actor != nil {
		if e.extras == nil {
			e.extras = make(map[string]interface{}, 2)
		}
		e.extras["user_id"] = e.actor.ID
		e.extras["user_superuser"] = e.actor.IsSuperuser
	}
	return e
}

// rollbarArgs is the arg list of the rollbar calls: msg | error, extras.
func (e entry) rollbarArgs(msg string) []interface{} {
	if e.actor != nil {
		rollbar.SetPerson(strconv.Itoa(e.actor.ID), e.actor.FullName(), e.actor.Email)
	} else {
		rollbar.ClearPerson()
	}

	args := []interface{}{msg}
	if e.err != nil {
		args = append(args, e.err)
	}
	if e.extras != nil {
		args = append(args, e.extras)
	}
	return args
}

// line formats the entry as one std log line: msg key=value... err.
func (e entry) line(msg string) string {
	var b strings.Builder
	b.WriteString(msg)

	keys := make([]string, 0, len(e.extras))
	for k := range e.extras {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, e.extras[k])
	}
	for _, o := range e.other {
		fmt.Fprintf(&b, " %+v", o)
	}
	if e.err != nil {
		fmt.Fprintf(&b, "\n%+v", e.err)
	}
	return b.String()
}

func (l RollbarLogger) Debug(msg string, args ...interface{}) {
	e := newEntry(args)
	rollbar.Debug(e.rollbarArgs(msg)...)
	l.std.Println(e.line(msg))
}

func (l RollbarLogger) Info(msg string, args ...interface{}) {
	e := newEntry(args)
	rollbar.Info(e.rollbarArgs(msg)...)
	l.std.Println(e.line(msg))
}

func (l RollbarLogger) Warn(msg string, args ...interface{}) {
	e := newEntry(args)
	rollbar.Warning(e.rollbarArgs(msg)...)
	l.std.Println(e.line(msg))
}

func (l RollbarLogger) Error(msg string, args ...interface{}) {
	e := newEntry(args)
	rollbar.Error(e.rollbarArgs(msg)...)
	l.std.Println(e.line(msg))
}

func (l RollbarLogger) Fatal(msg string, args ...interface{}) {
	e := newEntry(args)
	rollbar.Critical(e.rollbarArgs(msg)...)
	l.std.Fatal(e.line(msg))
}
