package hooks

import (
	"context"
	"fmt"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Hook names understood by the Manager.
const (
	TaskStart                = "task_start"
	TaskStop                 = "task_stop"
	TaskPulpFlush            = "task_pulp_flush"
	GetCertKeyPaths          = "get_cert_key_paths"
	OtelExporter             = "otel_exporter"
	PulpRepositoryPrePublish = "pulp_repository_pre_publish"
	PulpRepositoryPublished  = "pulp_repository_published"
	QuayRepositoriesCleared  = "quay_repositories_cleared"
	QuayRepositoriesRemoved  = "quay_repositories_removed"
	QuayImagesTagged         = "quay_images_tagged"
	QuayImagesUntagged       = "quay_images_untagged"
)

// TaskStarter is called when a task begins.
type TaskStarter interface {
	TaskStart(ctx context.Context) error
}

// TaskStopper is called when a task ends; failed reports whether the task
// ended unsuccessfully.
type TaskStopper interface {
	TaskStop(ctx context.Context, failed bool) error
}

// PulpFlusher is called when a task needs pending Pulp operations to complete.
type PulpFlusher interface {
	TaskPulpFlush(ctx context.Context) error
}

// CertKeyPaths locates a client certificate and key.
type CertKeyPaths struct {
	Cert string
	Key  string
}

// CertKeyPathProvider returns the certificate and key to use for serverURL,
// or nil when it has no answer. The first non-nil answer wins.
type CertKeyPathProvider interface {
	GetCertKeyPaths(ctx context.Context, serverURL string) (*CertKeyPaths, error)
}

// ExporterProvider returns the span exporter used for tracing, or nil when it
// has no answer. The first non-nil answer wins.
type ExporterProvider interface {
	OtelExporter(ctx context.Context) (sdktrace.SpanExporter, error)
}

// PulpPrePublisher is called before a Pulp repository is published. A non-nil
// result replaces the repository to publish; the first one wins.
type PulpPrePublisher interface {
	PulpRepositoryPrePublish(ctx context.Context, client, repository any) (any, error)
}

// PulpPublishedObserver is called after a Pulp repository was published.
type PulpPublishedObserver interface {
	PulpRepositoryPublished(ctx context.Context, client, repository any) error
}

// QuayRepositoriesClearedObserver is called after Quay repositories were emptied.
type QuayRepositoriesClearedObserver interface {
	QuayRepositoriesCleared(ctx context.Context, repositoryIDs []string) error
}

// QuayRepositoriesRemovedObserver is called after Quay repositories were deleted.
type QuayRepositoriesRemovedObserver interface {
	QuayRepositoriesRemoved(ctx context.Context, repositoryIDs []string) error
}

// QuayImagesTaggedObserver is called after sourceRef was copied to destRefs.
type QuayImagesTaggedObserver interface {
	QuayImagesTagged(ctx context.Context, sourceRef string, destRefs []string) error
}

// QuayImagesUntaggedObserver is called after untagRefs were removed; lostRefs
// are the digests no longer reachable through any tag.
type QuayImagesUntaggedObserver interface {
	QuayImagesUntagged(ctx context.Context, untagRefs, lostRefs []string) error
}

// Args holds the named arguments of a hook call.
type Args map[string]any

// Spec describes a hook: its name, its parameters and whether the call stops
// at the first non-nil result.
type Spec struct {
	Name        string
	Params      []string
	FirstResult bool

	provides func(plugin any) bool

	// call runs impl for this hook. implemented is false when impl does not
	// provide the hook.
	call func(ctx context.Context, impl any, args Args) (result any, implemented bool, err error)
}

var specs = map[string]*Spec{
	TaskStart: {
		Name:     TaskStart,
		provides: provides[TaskStarter],
		call: func(ctx context.Context, impl any, _ Args) (any, bool, error) {
			h, ok := impl.(TaskStarter)
			if !ok {
				return nil, false, nil
			}
			return nil, true, h.TaskStart(ctx)
		},
	},
	TaskStop: {
		Name:     TaskStop,
		provides: provides[TaskStopper],
		Params:   []string{"failed"},
		call: func(ctx context.Context, impl any, args Args) (any, bool, error) {
			h, ok := impl.(TaskStopper)
			if !ok {
				return nil, false, nil
			}
			failed, err := arg[bool](args, "failed")
			if err != nil {
				return nil, true, err
			}
			return nil, true, h.TaskStop(ctx, failed)
		},
	},
	TaskPulpFlush: {
		Name:     TaskPulpFlush,
		provides: provides[PulpFlusher],
		call: func(ctx context.Context, impl any, _ Args) (any, bool, error) {
			h, ok := impl.(PulpFlusher)
			if !ok {
				return nil, false, nil
			}
			return nil, true, h.TaskPulpFlush(ctx)
		},
	},
	GetCertKeyPaths: {
		Name:        GetCertKeyPaths,
		provides:    provides[CertKeyPathProvider],
		Params:      []string{"server_url"},
		FirstResult: true,
		call: func(ctx context.Context, impl any, args Args) (any, bool, error) {
			h, ok := impl.(CertKeyPathProvider)
			if !ok {
				return nil, false, nil
			}
			serverURL, err := arg[string](args, "server_url")
			if err != nil {
				return nil, true, err
			}
			paths, err := h.GetCertKeyPaths(ctx, serverURL)
			return paths, true, err
		},
	},
	OtelExporter: {
		Name:        OtelExporter,
		provides:    provides[ExporterProvider],
		FirstResult: true,
		call: func(ctx context.Context, impl any, _ Args) (any, bool, error) {
			h, ok := impl.(ExporterProvider)
			if !ok {
				return nil, false, nil
			}
			exporter, err := h.OtelExporter(ctx)
			return exporter, true, err
		},
	},
	PulpRepositoryPrePublish: {
		Name:        PulpRepositoryPrePublish,
		provides:    provides[PulpPrePublisher],
		Params:      []string{"client", "repository"},
		FirstResult: true,
		call: func(ctx context.Context, impl any, args Args) (any, bool, error) {
			h, ok := impl.(PulpPrePublisher)
			if !ok {
				return nil, false, nil
			}
			res, err := h.PulpRepositoryPrePublish(ctx, args["client"], args["repository"])
			return res, true, err
		},
	},
	PulpRepositoryPublished: {
		Name:     PulpRepositoryPublished,
		provides: provides[PulpPublishedObserver],
		Params:   []string{"client", "repository"},
		call: func(ctx context.Context, impl any, args Args) (any, bool, error) {
			h, ok := impl.(PulpPublishedObserver)
			if !ok {
				return nil, false, nil
			}
			return nil, true, h.PulpRepositoryPublished(ctx, args["client"], args["repository"])
		},
	},
	QuayRepositoriesCleared: {
		Name:     QuayRepositoriesCleared,
		provides: provides[QuayRepositoriesClearedObserver],
		Params:   []string{"repository_ids"},
		call: func(ctx context.Context, impl any, args Args) (any, bool, error) {
			h, ok := impl.(QuayRepositoriesClearedObserver)
			if !ok {
				return nil, false, nil
			}
			ids, err := arg[[]string](args, "repository_ids")
			if err != nil {
				return nil, true, err
			}
			return nil, true, h.QuayRepositoriesCleared(ctx, ids)
		},
	},
	QuayRepositoriesRemoved: {
		Name:     QuayRepositoriesRemoved,
		provides: provides[QuayRepositoriesRemovedObserver],
		Params:   []string{"repository_ids"},
		call: func(ctx context.Context, impl any, args Args) (any, bool, error) {
			h, ok := impl.(QuayRepositoriesRemovedObserver)
			if !ok {
				return nil, false, nil
			}
			ids, err := arg[[]string](args, "repository_ids")
			if err != nil {
				return nil, true, err
			}
			return nil, true, h.QuayRepositoriesRemoved(ctx, ids)
		},
	},
	QuayImagesTagged: {
		Name:     QuayImagesTagged,
		provides: provides[QuayImagesTaggedObserver],
		Params:   []string{"source_ref", "dest_refs"},
		call: func(ctx context.Context, impl any, args Args) (any, bool, error) {
			h, ok := impl.(QuayImagesTaggedObserver)
			if !ok {
				return nil, false, nil
			}
			source, err := arg[string](args, "source_ref")
			if err != nil {
				return nil, true, err
			}
			dest, err := arg[[]string](args, "dest_refs")
			if err != nil {
				return nil, true, err
			}
			return nil, true, h.QuayImagesTagged(ctx, source, dest)
		},
	},
	QuayImagesUntagged: {
		Name:     QuayImagesUntagged,
		provides: provides[QuayImagesUntaggedObserver],
		Params:   []string{"untag_refs", "lost_refs"},
		call: func(ctx context.Context, impl any, args Args) (any, bool, error) {
			h, ok := impl.(QuayImagesUntaggedObserver)
			if !ok {
				return nil, false, nil
			}
			untag, err := arg[[]string](args, "untag_refs")
			if err != nil {
				return nil, true, err
			}
			lost, err := arg[[]string](args, "lost_refs")
			if err != nil {
				return nil, true, err
			}
			return nil, true, h.QuayImagesUntagged(ctx, untag, lost)
		},
	},
}

// Lookup returns the spec registered for name.
func Lookup(name string) (*Spec, bool) {
	s, ok := specs[name]
	return s, ok
}

func provides[T any](plugin any) bool {
	_, ok := plugin.(T)
	return ok
}

// arg reads a typed argument. A missing argument yields the zero value.
func arg[T any](args Args, name string) (T, error) {
	var zero T
	raw, ok := args[name]
	if !ok || raw == nil {
		return zero, nil
	}
	v, ok := raw.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %s is %T, want %T", ErrInvalidArgument, name, raw, zero)
	}
	return v, nil
}
