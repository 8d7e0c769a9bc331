package pulumi

import (
	"fmt"

	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
	"k8s.io/klog/v2"
	"totalsoft.ro/platform-workers/internal/build"
	"totalsoft.ro/platform-workers/internal/link"
	"totalsoft.ro/platform-workers/internal/template"
	workerv1 "totalsoft.ro/platform-workers/pkg/apis/worker/v1alpha1"
)

func deployFunc(manifest *workerv1.WorkerManifest) pulumi.RunFunc {
	return func(ctx *pulumi.Context) error {
		linkables := map[string]link.Linkable{}

		for _, spec := range manifest.Links {
			value, err := deployLinkValue(ctx, spec)
			if err != nil {
				return err
			}
			linkables[spec.Name] = value
		}

		for _, spec := range manifest.Workers {
			tc := template.Context{Project: manifest.Project, Stack: ctx.Stack(), Worker: spec.Name}
			worker, err := deployWorker(ctx, tc, spec, linkables)
			if err != nil {
				return err
			}
			linkables[spec.Name] = worker

			err = exportWorker(ctx, tc, worker, spec.Exports)
			if err != nil {
				return err
			}
			ctx.Export(fmt.Sprintf("worker:%s", spec.Name), worker.Url)
		}
		return nil
	}
}

func deployLinkValue(ctx *pulumi.Context, spec workerv1.LinkSpec) (*link.Value, error) {
	args := &link.ValueArgs{}
	if spec.Properties != nil {
		args.Properties = pulumi.ToMap(spec.Properties)
	}
	if spec.Binding != nil {
		binding, err := link.ParseBinding(spec.Binding.Type, spec.Binding.Properties)
		if err != nil {
			return nil, fmt.Errorf("link %s: %w", spec.Name, err)
		}
		args.Binding = binding
	}
	for _, p := range spec.Permissions {
		args.Permissions = append(args.Permissions, link.Permission{
			Actions:   p.Actions,
			Resources: pulumi.ToStringArray(p.Resources),
		})
	}
	return link.NewValue(ctx, spec.Name, args)
}

func deployWorker(ctx *pulumi.Context, tc template.Context, spec workerv1.WorkerSpec,
	linkables map[string]link.Linkable) (*Worker, error) {

	environment, err := template.ParseValues(spec.Environment, tc)
	if err != nil {
		return nil, fmt.Errorf("worker %s: %w", spec.Name, err)
	}

	args := &WorkerArgs{
		Handler:           spec.Handler,
		Environment:       pulumi.ToStringMap(environment),
		IgnoreCodeChanges: spec.IgnoreCodeChanges,
	}
	if spec.Url != nil {
		args.Url = pulumi.BoolPtr(*spec.Url)
	}
	if spec.Domain != "" {
		args.Domain = pulumi.String(spec.Domain)
	}
	if spec.AccountId != "" {
		args.AccountId = pulumi.String(spec.AccountId)
	}
	if spec.Build != nil {
		args.Build = &build.Options{
			Loader:   spec.Build.Loader,
			Banner:   spec.Build.Banner,
			Minify:   spec.Build.Minify,
			Define:   spec.Build.Define,
			External: spec.Build.External,
		}
	}
	for _, name := range spec.Link {
		l, ok := linkables[name]
		if !ok {
			return nil, fmt.Errorf("worker %s: unknown link %q", spec.Name, name)
		}
		args.Link = append(args.Link, l)
	}

	klog.V(4).InfoS("Declaring worker", "name", spec.Name, "handler", spec.Handler, "links", len(args.Link))
	return NewWorker(ctx, spec.Name, args)
}
