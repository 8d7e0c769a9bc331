package provisioners

import (
	workerv1 "totalsoft.ro/platform-workers/pkg/apis/worker/v1alpha1"
)

type CreateInfrastructureFunc func(stackName string, manifest *workerv1.WorkerManifest) ProvisioningResult

type ProvisioningResult struct {
	Error      error
	HasChanges bool
	Outputs    map[string]string
}
