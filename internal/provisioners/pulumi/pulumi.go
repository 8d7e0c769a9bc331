// https://github.com/pulumi/pulumi/tree/master/sdk/go/auto

package pulumi

import (
	"context"
	"fmt"
	"os"

	"github.com/pulumi/pulumi/sdk/v3/go/auto"
	"github.com/pulumi/pulumi/sdk/v3/go/auto/optdestroy"
	"github.com/pulumi/pulumi/sdk/v3/go/auto/optpreview"
	"github.com/pulumi/pulumi/sdk/v3/go/auto/optup"
	"github.com/pulumi/pulumi/sdk/v3/go/common/apitype"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
	"k8s.io/klog/v2"
	"totalsoft.ro/platform-workers/internal/config"
	"totalsoft.ro/platform-workers/internal/provisioners"
	workerv1 "totalsoft.ro/platform-workers/pkg/apis/worker/v1alpha1"
)

// Create brings the stack in line with the manifest. A manifest without workers
// destroys and removes the stack.
func Create(stackName string, manifest *workerv1.WorkerManifest) provisioners.ProvisioningResult {
	result := provisioners.ProvisioningResult{}
	emptyDeployFunc := func(ctx *pulumi.Context) error { return nil }

	if len(manifest.Workers) > 0 {
		upRes, err := updateStack(stackName, manifest.Project, deployFunc(manifest))
		if err != nil {
			result.Error = err
			return result
		}
		result.HasChanges = hasChanges(upRes.Summary)
		result.Outputs = outputValues(upRes.Outputs)
	} else {
		destroyRes, err := tryDestroyAndDeleteStack(stackName, manifest.Project, emptyDeployFunc)
		if err != nil {
			result.Error = err
			return result
		}
		result.HasChanges = hasChanges(destroyRes.Summary)
	}

	return result
}

func Destroy(stackName string, manifest *workerv1.WorkerManifest) provisioners.ProvisioningResult {
	result := provisioners.ProvisioningResult{}
	destroyRes, err := tryDestroyAndDeleteStack(stackName, manifest.Project, deployFunc(manifest))
	if err != nil {
		result.Error = err
		return result
	}
	result.HasChanges = hasChanges(destroyRes.Summary)
	return result
}

func Preview(stackName string, manifest *workerv1.WorkerManifest) provisioners.ProvisioningResult {
	result := provisioners.ProvisioningResult{}
	ctx := context.Background()

	s, err := createOrSelectStack(ctx, stackName, manifest.Project, deployFunc(manifest))
	if err != nil {
		result.Error = err
		return result
	}
	klog.V(4).InfoS("Starting stack preview", "name", stackName)
	res, err := s.Preview(ctx, optpreview.ProgressStreams(os.Stdout))
	if err != nil {
		klog.ErrorS(err, "Failed to preview stack", "name", stackName)
		result.Error = err
		return result
	}
	for op, count := range res.ChangeSummary {
		if op != apitype.OpSame && count > 0 {
			result.HasChanges = true
		}
	}
	return result
}

func hasChanges(summary auto.UpdateSummary) bool {
	if summary.ResourceChanges == nil {
		return false
	}
	for key, count := range *summary.ResourceChanges {
		if apitype.OpType(key) != apitype.OpSame && count > 0 {
			return true
		}
	}
	return false
}

func outputValues(outputs auto.OutputMap) map[string]string {
	result := map[string]string{}
	for key, output := range outputs {
		if output.Secret {
			result[key] = "[secret]"
			continue
		}
		result[key] = fmt.Sprintf("%v", output.Value)
	}
	return result
}

func updateStack(stackName, projectName string, deployFunc pulumi.RunFunc) (auto.UpResult, error) {
	ctx := context.Background()

	s, err := createOrSelectStack(ctx, stackName, projectName, deployFunc)
	if err != nil {
		klog.ErrorS(err, "Failed to create or select stack", "name", stackName)
		return auto.UpResult{}, err
	}
	klog.V(4).InfoS("Starting stack update", "name", stackName)

	// wire up our update to stream progress to stdout
	stdoutStreamer := optup.ProgressStreams(os.Stdout)
	res, err := s.Up(ctx, stdoutStreamer)
	if err != nil {
		klog.ErrorS(err, "Failed to update stack", "name", stackName)
		return auto.UpResult{}, err
	}
	klog.V(4).InfoS("Stack update succeeded!", "name", stackName)
	klog.V(4).InfoS("Stack results", "name", stackName, "Outputs", res.Outputs)

	return res, err
}

func tryDestroyAndDeleteStack(stackName, projectName string, deployFunc pulumi.RunFunc) (auto.DestroyResult, error) {
	ctx := context.Background()
	s, err := auto.SelectStackInlineSource(ctx, stackName, projectName, deployFunc)
	if err != nil {
		// ignore if stack is not found
		if auto.IsSelectStack404Error(err) {
			klog.V(4).InfoS("Skipping destroy because stack was not found", "name", stackName)
			return auto.DestroyResult{}, nil
		}
		klog.ErrorS(err, "Failed to select stack", "name", stackName)
		return auto.DestroyResult{}, err
	}
	klog.V(4).InfoS("Starting destroy", "name", stackName)
	stdoutStreamer := optdestroy.ProgressStreams(os.Stdout)
	res, err := s.Destroy(ctx, stdoutStreamer)
	if err != nil {
		klog.ErrorS(err, "Failed to destroy stack", "name", stackName)
		return auto.DestroyResult{}, err
	}
	klog.V(4).InfoS("Destroy succeeded!", "name", stackName)

	err = s.Workspace().RemoveStack(ctx, stackName)
	if err != nil {
		klog.ErrorS(err, "Failed to remove stack", "name", stackName)
		return res, err
	}
	klog.V(4).InfoS("Remove stack succeeded!", "name", stackName)

	return res, nil
}

func createOrSelectStack(ctx context.Context, stackName, projectName string, deployFunc pulumi.RunFunc) (auto.Stack, error) {
	cfg, err := config.Get()
	if err != nil {
		return auto.Stack{}, err
	}

	s, err := auto.UpsertStackInlineSource(ctx, stackName, projectName, deployFunc)
	if err != nil {
		klog.ErrorS(err, "Failed to create or select stack", "name", stackName)
		return auto.Stack{}, err
	}

	klog.V(4).Info("Installing plugins")
	w := s.Workspace()

	// for inline source programs, we must manage plugins ourselves
	plugins := []struct{ name, version string }{
		{"cloudflare", cfg.Plugins.Cloudflare},
		{"aws", cfg.Plugins.Aws},
		{"command", cfg.Plugins.Command},
		{"vault", cfg.Plugins.Vault},
		{"kubernetes", cfg.Plugins.Kubernetes},
	}
	for _, p := range plugins {
		if err = w.InstallPlugin(ctx, p.name, p.version); err != nil {
			klog.ErrorS(err, "Failed to install plugin", "plugin", p.name, "version", p.version)
			return auto.Stack{}, err
		}
	}
	klog.V(4).Info("Successfully installed plugins")

	err = s.SetAllConfig(ctx, stackConfig(cfg))
	if err != nil {
		klog.ErrorS(err, "Failed to set stack config", "name", stackName)
		return auto.Stack{}, err
	}
	klog.V(4).Info("Successfully set config")
	klog.V(4).Info("Starting refresh")

	_, err = s.Refresh(ctx)
	if err != nil {
		klog.ErrorS(err, "Failed to refresh stack", "name", stackName)
		return auto.Stack{}, err
	}

	klog.V(4).Info("Refresh succeeded!")
	return s, nil
}

func stackConfig(cfg *config.Config) auto.ConfigMap {
	result := auto.ConfigMap{}
	if cfg.ApiToken != "" {
		result["cloudflare:apiToken"] = auto.ConfigValue{Value: cfg.ApiToken, Secret: true}
	}
	if cfg.AwsRegion != "" {
		result["aws:region"] = auto.ConfigValue{Value: cfg.AwsRegion}
	}
	return result
}
