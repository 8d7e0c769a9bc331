package manifest

import (
	"fmt"
	"os"

	"k8s.io/klog/v2"
	"sigs.k8s.io/yaml"
	workerv1 "totalsoft.ro/platform-workers/pkg/apis/worker/v1alpha1"
)

func Load(path string) (*workerv1.WorkerManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("invalid manifest %s: %w", path, err)
	}
	klog.V(4).InfoS("Loaded manifest", "path", path, "project", m.Project, "workers", len(m.Workers), "links", len(m.Links))
	return m, nil
}

func Parse(data []byte) (*workerv1.WorkerManifest, error) {
	var m workerv1.WorkerManifest
	if err := yaml.UnmarshalStrict(data, &m); err != nil {
		return nil, err
	}
	if err := Validate(&m); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks names are unique, links only refer to earlier declarations
// and each worker exports to a domain at most once.
func Validate(m *workerv1.WorkerManifest) error {
	if m.Project == "" {
		return fmt.Errorf("project is required")
	}
	known := map[string]bool{}
	for _, l := range m.Links {
		if l.Name == "" {
			return fmt.Errorf("link name is required")
		}
		if known[l.Name] {
			return fmt.Errorf("duplicate name %q", l.Name)
		}
		known[l.Name] = true
	}
	for _, w := range m.Workers {
		if w.Name == "" {
			return fmt.Errorf("worker name is required")
		}
		if w.Handler == "" {
			return fmt.Errorf("worker %s: handler is required", w.Name)
		}
		if known[w.Name] {
			return fmt.Errorf("duplicate name %q", w.Name)
		}
		for _, l := range w.Link {
			if !known[l] {
				return fmt.Errorf("worker %s: unknown link %q", w.Name, l)
			}
		}
		domains := map[string]bool{}
		for _, e := range w.Exports {
			if domains[e.Domain] {
				return fmt.Errorf("worker %s: duplicate export domain %q", w.Name, e.Domain)
			}
			domains[e.Domain] = true
		}
		known[w.Name] = true
	}
	return nil
}
