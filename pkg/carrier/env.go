package carrier

import (
	"context"
	"os"
	"slices"
	"strings"

	"go.opentelemetry.io/otel/propagation"
)

var (
	_ propagation.TextMapCarrier = Env{}
	_ propagation.TextMapCarrier = (*Environ)(nil)
)

// Env is a carrier backed by the environment of the current process.
// Setting an empty value unsets the variable.
type Env struct{}

func (Env) Get(key string) string {
	return os.Getenv(key)
}

func (Env) Set(key, value string) {
	if value == "" {
		_ = os.Unsetenv(key)
		return
	}
	_ = os.Setenv(key, value)
}

func (Env) Keys() []string {
	return environKeys(os.Environ())
}

// Environ is a carrier over an explicit "KEY=value" list, the shape taken by
// exec.Cmd.Env. Later entries win over earlier ones, as in the process environment.
type Environ []string

func (e *Environ) Get(key string) string {
	prefix := key + "="
	for i := len(*e) - 1; i >= 0; i-- {
		if v, ok := strings.CutPrefix((*e)[i], prefix); ok {
			return v
		}
	}
	return ""
}

func (e *Environ) Set(key, value string) {
	prefix := key + "="
	*e = slices.DeleteFunc(*e, func(kv string) bool {
		return strings.HasPrefix(kv, prefix)
	})
	if value != "" {
		*e = append(*e, prefix+value)
	}
}

func (e *Environ) Keys() []string {
	return environKeys(*e)
}

func environKeys(environ []string) []string {
	keys := make([]string, 0, len(environ))
	for _, kv := range environ {
		if k, _, ok := strings.Cut(kv, "="); ok && k != "" && !slices.Contains(keys, k) {
			keys = append(keys, k)
		}
	}
	return keys
}

// AppendEnv returns a copy of environ with the trace context of ctx encoded
// into it, ready to be handed to a subprocess. A nil environ starts from the
// current process environment.
func AppendEnv(ctx context.Context, environ []string) []string {
	if environ == nil {
		environ = os.Environ()
	}
	env := Environ(slices.Clone(environ))
	Codec{}.Encode(ctx, &env)
	return env
}
