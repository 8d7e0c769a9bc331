package v1alpha1

type ValueExport struct {
	// +optional
	ToConfigMap ConfigMapTemplate `json:"toConfigMap,omitempty"`
	// +optional
	ToVault VaultSecretTemplate `json:"toVault,omitempty"`
}

type ConfigMapTemplate struct {
	KeyTemplate string `json:"keyTemplate"`
	// Namespace of the config map. Defaults to "default".
	// +optional
	Namespace string `json:"namespace,omitempty"`
}

type VaultSecretTemplate struct {
	KeyTemplate string `json:"keyTemplate"`
}

type WorkerExportsSpec struct {
	// The domain or bounded-context in which this worker will be used.
	Domain string `json:"domain"`
	// +optional
	Url ValueExport `json:"url,omitempty"`
	// +optional
	ScriptName ValueExport `json:"scriptName,omitempty"`
}
