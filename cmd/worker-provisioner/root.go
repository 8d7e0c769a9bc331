package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"k8s.io/klog/v2"
	"totalsoft.ro/platform-workers/internal/manifest"
	messaging "totalsoft.ro/platform-workers/internal/messaging"
	"totalsoft.ro/platform-workers/internal/provisioners"
	"totalsoft.ro/platform-workers/internal/provisioners/pulumi"
)

const (
	stackProvisionedSuccessfullyTopic = "PlatformWorkers.WorkerProvisioner.StackProvisionedSuccessfully"
	stackProvisioningFailedTopic      = "PlatformWorkers.WorkerProvisioner.StackProvisioningFailed"
)

type options struct {
	manifestPath string
	stack        string
}

type stackEvent struct {
	Stack      string            `json:"stack"`
	Operation  string            `json:"operation"`
	HasChanges bool              `json:"hasChanges"`
	Outputs    map[string]string `json:"outputs,omitempty"`
	Error      string            `json:"error,omitempty"`
}

func newRootCommand() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "worker-provisioner",
		Short:         "Provision Cloudflare Workers from a manifest",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&opts.manifestPath, "manifest", "f", "workers.yaml", "path to the workers manifest")
	root.PersistentFlags().StringVarP(&opts.stack, "stack", "s", "dev", "name of the stack")

	root.AddCommand(
		newOperationCommand("up", "Create or update the workers of the manifest", opts, pulumi.Create),
		newOperationCommand("preview", "Show the changes an update would make", opts, pulumi.Preview),
		newOperationCommand("destroy", "Destroy every resource of the stack", opts, pulumi.Destroy),
	)
	return root
}

func newOperationCommand(name, short string, opts *options, op provisioners.CreateInfrastructureFunc) *cobra.Command {
	return &cobra.Command{
		Use:   name,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), name, opts, op, messaging.DefaultMessagingPublisher())
		},
	}
}

func run(ctx context.Context, operation string, opts *options, op provisioners.CreateInfrastructureFunc,
	publish messaging.MessagingPublisher) error {

	m, err := manifest.Load(opts.manifestPath)
	if err != nil {
		klog.ErrorS(err, "Failed to load manifest", "path", opts.manifestPath)
		return err
	}

	klog.InfoS("Running operation", "operation", operation, "stack", opts.stack, "project", m.Project)
	result := op(opts.stack, m)

	event := stackEvent{
		Stack:      opts.stack,
		Operation:  operation,
		HasChanges: result.HasChanges,
		Outputs:    result.Outputs,
	}
	topic := stackProvisionedSuccessfullyTopic
	if result.Error != nil {
		topic = stackProvisioningFailedTopic
		event.Error = result.Error.Error()
	}
	if err = publish(ctx, topic, event, m.Project); err != nil {
		klog.ErrorS(err, "Failed to publish event", "topic", topic)
	}

	if result.Error != nil {
		return fmt.Errorf("%s failed for stack %s: %w", operation, opts.stack, result.Error)
	}
	klog.InfoS("Operation succeeded", "operation", operation, "stack", opts.stack, "hasChanges", result.HasChanges)
	for key, value := range result.Outputs {
		klog.InfoS("Stack output", "key", key, "value", value)
	}
	return nil
}
