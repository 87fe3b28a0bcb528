package hooks

import (
	"context"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// StartTask invokes task_start.
func (m *Manager) StartTask(ctx context.Context) error {
	_, err := m.Invoke(ctx, TaskStart, nil)
	return err
}

// StopTask invokes task_stop.
func (m *Manager) StopTask(ctx context.Context, failed bool) error {
	_, err := m.Invoke(ctx, TaskStop, Args{"failed": failed})
	return err
}

// FlushPulp invokes task_pulp_flush.
func (m *Manager) FlushPulp(ctx context.Context) error {
	_, err := m.Invoke(ctx, TaskPulpFlush, nil)
	return err
}

// CertKeyPaths invokes get_cert_key_paths and returns nil when no plugin answered.
func (m *Manager) CertKeyPaths(ctx context.Context, serverURL string) (*CertKeyPaths, error) {
	res, err := m.Invoke(ctx, GetCertKeyPaths, Args{"server_url": serverURL})
	if err != nil || len(res) == 0 {
		return nil, err
	}
	return res[0].(*CertKeyPaths), nil
}

// Exporter invokes otel_exporter and returns nil when no plugin answered.
func (m *Manager) Exporter(ctx context.Context) (sdktrace.SpanExporter, error) {
	res, err := m.Invoke(ctx, OtelExporter, nil)
	if err != nil || len(res) == 0 {
		return nil, err
	}
	return res[0].(sdktrace.SpanExporter), nil
}

// PrePublish invokes pulp_repository_pre_publish. It returns repository
// itself when no plugin replaced it.
func (m *Manager) PrePublish(ctx context.Context, client, repository any) (any, error) {
	res, err := m.Invoke(ctx, PulpRepositoryPrePublish, Args{"client": client, "repository": repository})
	if err != nil {
		return nil, err
	}
	if len(res) == 0 {
		return repository, nil
	}
	return res[0], nil
}

// Published invokes pulp_repository_published.
func (m *Manager) Published(ctx context.Context, client, repository any) error {
	_, err := m.Invoke(ctx, PulpRepositoryPublished, Args{"client": client, "repository": repository})
	return err
}

// RepositoriesCleared invokes quay_repositories_cleared.
func (m *Manager) RepositoriesCleared(ctx context.Context, repositoryIDs []string) error {
	_, err := m.Invoke(ctx, QuayRepositoriesCleared, Args{"repository_ids": repositoryIDs})
	return err
}

// RepositoriesRemoved invokes quay_repositories_removed.
func (m *Manager) RepositoriesRemoved(ctx context.Context, repositoryIDs []string) error {
	_, err := m.Invoke(ctx, QuayRepositoriesRemoved, Args{"repository_ids": repositoryIDs})
	return err
}

// ImagesTagged invokes quay_images_tagged.
func (m *Manager) ImagesTagged(ctx context.Context, sourceRef string, destRefs []string) error {
	_, err := m.Invoke(ctx, QuayImagesTagged, Args{"source_ref": sourceRef, "dest_refs": destRefs})
	return err
}

// ImagesUntagged invokes quay_images_untagged.
func (m *Manager) ImagesUntagged(ctx context.Context, untagRefs, lostRefs []string) error {
	_, err := m.Invoke(ctx, QuayImagesUntagged, Args{"untag_refs": untagRefs, "lost_refs": lostRefs})
	return err
}
