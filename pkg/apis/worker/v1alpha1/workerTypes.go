package v1alpha1

// WorkerManifest declares the workers and link values of a single stack.
type WorkerManifest struct {
	// Project is the Pulumi project name.
	Project string `json:"project"`
	// Links are standalone values that workers can link by name.
	// +optional
	Links []LinkSpec `json:"links,omitempty"`
	// Workers are provisioned in order; a worker can link any worker declared before it.
	Workers []WorkerSpec `json:"workers"`
}

type WorkerSpec struct {
	Name string `json:"name"`
	// Path to the handler file, relative to the working directory.
	Handler string `json:"handler"`
	// Enable the workers.dev endpoint.
	// +optional
	Url *bool `json:"url,omitempty"`
	// Custom domain hosted on Cloudflare.
	// +optional
	Domain string `json:"domain,omitempty"`
	// +optional
	Build *BuildSpec `json:"build,omitempty"`
	// Names of links or previously declared workers.
	// +optional
	Link []string `json:"link,omitempty"`
	// Environment values are rendered as templates; see TemplateContext.
	// +optional
	Environment map[string]string `json:"environment,omitempty"`
	// +optional
	AccountId string `json:"accountId,omitempty"`
	// +optional
	IgnoreCodeChanges bool `json:"ignoreCodeChanges,omitempty"`
	// +optional
	Exports []WorkerExportsSpec `json:"exports,omitempty"`
}

type BuildSpec struct {
	// +optional
	Loader map[string]string `json:"loader,omitempty"`
	// +optional
	Banner string `json:"banner,omitempty"`
	// Defaults to true.
	// +optional
	Minify *bool `json:"minify,omitempty"`
	// +optional
	Define map[string]string `json:"define,omitempty"`
	// +optional
	External []string `json:"external,omitempty"`
}

type LinkSpec struct {
	Name string `json:"name"`
	// Arbitrary link data, injected as a secret text binding unless Binding is set.
	// +optional
	Properties map[string]interface{} `json:"properties,omitempty"`
	// +optional
	Binding *BindingSpec `json:"binding,omitempty"`
	// +optional
	Permissions []PermissionSpec `json:"permissions,omitempty"`
}

type BindingSpec struct {
	// One of serviceBindings, plainTextBindings, secretTextBindings, kvNamespaceBindings,
	// r2BucketBindings, queueBindings, d1DatabaseBindings, analyticsEngineBindings.
	Type       string            `json:"type"`
	Properties map[string]string `json:"properties"`
}

type PermissionSpec struct {
	Actions   []string `json:"actions"`
	Resources []string `json:"resources"`
}
