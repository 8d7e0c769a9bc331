package pulumi

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/pulumi/pulumi-aws/sdk/v6/go/aws/iam"
	"github.com/pulumi/pulumi-cloudflare/sdk/v5/go/cloudflare"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
	"k8s.io/klog/v2"
	"totalsoft.ro/platform-workers/internal/build"
	"totalsoft.ro/platform-workers/internal/config"
	"totalsoft.ro/platform-workers/internal/link"
)

const workerType = "platform:cloudflare:Worker"

// Worker provisions a Cloudflare Worker script with its optional workers.dev
// endpoint, custom domain and AWS credentials for linked resources.
type Worker struct {
	pulumi.ResourceState

	// Url is https://<domain> when a domain is set, otherwise the workers.dev
	// url when enabled, otherwise empty.
	Url pulumi.StringOutput `pulumi:"url"`

	Script    *cloudflare.WorkerScript
	WorkerUrl *WorkerUrl
	Domain    *cloudflare.WorkerDomain
}

type WorkerArgs struct {
	// Handler is the path of the worker entry point.
	Handler string
	// Url enables the workers.dev endpoint. Defaults to false.
	Url pulumi.BoolPtrInput
	// Domain is a custom domain hosted on Cloudflare.
	Domain      pulumi.StringInput
	Build       *build.Options
	Link        []link.Linkable
	Environment pulumi.StringMap
	Transform   *WorkerTransform

	// AccountId defaults to the configured Cloudflare account.
	AccountId pulumi.StringInput
	// Builder defaults to esbuild writing into the configured build directory.
	Builder           build.Builder
	IgnoreCodeChanges bool
}

type WorkerTransform struct {
	Worker func(args *cloudflare.WorkerScriptArgs, opts *[]pulumi.ResourceOption)
}

func NewWorker(ctx *pulumi.Context, name string, args *WorkerArgs, opts ...pulumi.ResourceOption) (*Worker, error) {
	if args == nil || args.Handler == "" {
		return nil, errors.New("missing required argument 'Handler'")
	}
	cfg, err := config.Get()
	if err != nil {
		return nil, err
	}

	content, err := buildHandler(name, args, cfg)
	if err != nil {
		return nil, err
	}

	worker := &Worker{}
	err = ctx.RegisterComponentResource(workerType, name, worker, opts...)
	if err != nil {
		return nil, err
	}
	parent := pulumi.Parent(worker)

	accountId := args.AccountId
	if accountId == nil {
		accountId = pulumi.String(cfg.AccountId)
	}

	urlEnabled := normalizeUrl(args.Url)
	bindings := buildBindings(args.Link)

	credentials, err := createAwsCredentials(ctx, name, args.Link, worker)
	if err != nil {
		return nil, err
	}

	worker.Script, err = createScript(ctx, name, args, cfg, accountId, content, bindings, credentials, parent)
	if err != nil {
		return nil, err
	}

	worker.WorkerUrl, err = NewWorkerUrl(ctx, fmt.Sprintf("%sUrl", name), &WorkerUrlArgs{
		AccountId:  accountId,
		ScriptName: worker.Script.Name,
		Enabled:    urlEnabled,
	}, parent)
	if err != nil {
		return nil, err
	}

	if args.Domain != nil {
		worker.Domain, err = createDomain(ctx, name, args.Domain, accountId, worker.Script, parent)
		if err != nil {
			return nil, err
		}
		worker.Url = pulumi.Sprintf("https://%s", worker.Domain.Hostname)
	} else {
		worker.Url = worker.WorkerUrl.Url.ApplyT(func(url string) string {
			if url == "" {
				return url
			}
			return "https://" + url
		}).(pulumi.StringOutput)
	}

	err = ctx.RegisterResourceOutputs(worker, pulumi.Map{
		"url":     worker.Url,
		"handler": pulumi.String(args.Handler),
		"links":   bindings.Names(),
	})
	if err != nil {
		return nil, err
	}
	return worker, nil
}

// Link exposes the worker as a service binding and its url as link data.
func (w *Worker) Link() link.Definition {
	return link.Definition{
		Cloudflare: link.ServiceBinding{Service: w.Script.ID().ToStringOutput()},
		Properties: pulumi.Map{"url": w.Url},
	}
}

func normalizeUrl(url pulumi.BoolPtrInput) pulumi.BoolOutput {
	if url == nil {
		return pulumi.Bool(false).ToBoolOutput()
	}
	return url.ToBoolPtrOutput().ApplyT(func(v *bool) bool {
		return v != nil && *v
	}).(pulumi.BoolOutput)
}

func buildHandler(name string, args *WorkerArgs, cfg *config.Config) (string, error) {
	builder := args.Builder
	if builder == nil {
		builder = build.Esbuild{OutDir: cfg.BuildDir}
	}
	opts := build.Options{}
	if args.Build != nil {
		opts = *args.Build
	}

	result := builder.Build(name, args.Handler, opts)
	if result.Failed() {
		err := errors.New(strings.Join(result.Errors, "\n"))
		klog.ErrorS(err, "Failed to build worker", "name", name, "handler", args.Handler)
		return "", err
	}

	content, err := os.ReadFile(result.Handler)
	if err != nil {
		return "", fmt.Errorf("failed to read bundle for %s: %w", name, err)
	}
	return string(content), nil
}

func createScript(ctx *pulumi.Context, name string, args *WorkerArgs, cfg *config.Config,
	accountId pulumi.StringInput, content string, bindings Bindings, credentials *iam.AccessKey,
	parent pulumi.ResourceOption) (*cloudflare.WorkerScript, error) {

	linked, err := bindings.scriptBindings()
	if err != nil {
		return nil, err
	}

	plainTexts := cloudflare.WorkerScriptPlainTextBindingArray{}
	secretTexts := cloudflare.WorkerScriptSecretTextBindingArray{}
	if credentials != nil {
		plainTexts = append(plainTexts, cloudflare.WorkerScriptPlainTextBindingArgs{
			Name: pulumi.String("AWS_ACCESS_KEY_ID"),
			Text: credentials.ID().ToStringOutput(),
		})
		secretTexts = append(secretTexts, cloudflare.WorkerScriptSecretTextBindingArgs{
			Name: pulumi.String("AWS_SECRET_ACCESS_KEY"),
			Text: credentials.Secret,
		})
	}

	keys := make([]string, 0, len(args.Environment))
	for key := range args.Environment {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		plainTexts = append(plainTexts, cloudflare.WorkerScriptPlainTextBindingArgs{
			Name: pulumi.String(key),
			Text: args.Environment[key],
		})
	}

	scriptArgs := &cloudflare.WorkerScriptArgs{
		Name:               pulumi.String(name),
		AccountId:          accountId,
		Content:            pulumi.String(content),
		Module:             pulumi.BoolPtr(true),
		CompatibilityDate:  pulumi.StringPtr(cfg.CompatibilityDate),
		CompatibilityFlags: pulumi.ToStringArray(cfg.CompatibilityFlags),
		PlainTextBindings:  append(plainTexts, linked.plainTexts...),
		SecretTextBindings: append(secretTexts, linked.secretTexts...),
	}
	if len(linked.services) > 0 {
		scriptArgs.ServiceBindings = linked.services
	}
	if len(linked.kvNamespaces) > 0 {
		scriptArgs.KvNamespaceBindings = linked.kvNamespaces
	}
	if len(linked.r2Buckets) > 0 {
		scriptArgs.R2BucketBindings = linked.r2Buckets
	}
	if len(linked.queues) > 0 {
		scriptArgs.QueueBindings = linked.queues
	}
	if len(linked.d1Databases) > 0 {
		scriptArgs.D1DatabaseBindings = linked.d1Databases
	}
	if len(linked.analyticsEngine) > 0 {
		scriptArgs.AnalyticsEngineBindings = linked.analyticsEngine
	}

	opts := []pulumi.ResourceOption{parent}
	if args.IgnoreCodeChanges {
		opts = append(opts, pulumi.IgnoreChanges([]string{"content"}))
	}
	if args.Transform != nil && args.Transform.Worker != nil {
		args.Transform.Worker(scriptArgs, &opts)
	}

	return cloudflare.NewWorkerScript(ctx, fmt.Sprintf("%sScript", name), scriptArgs, opts...)
}

func createDomain(ctx *pulumi.Context, name string, domain, accountId pulumi.StringInput,
	script *cloudflare.WorkerScript, parent pulumi.ResourceOption) (*cloudflare.WorkerDomain, error) {

	zone, err := NewZoneLookup(ctx, fmt.Sprintf("%sZoneLookup", name), &ZoneLookupArgs{
		AccountId: accountId,
		Domain:    domain,
	}, parent)
	if err != nil {
		return nil, err
	}

	return cloudflare.NewWorkerDomain(ctx, fmt.Sprintf("%sDomain", name), &cloudflare.WorkerDomainArgs{
		AccountId: accountId,
		Service:   script.Name,
		Hostname:  domain,
		ZoneId:    zone.ZoneId,
	}, parent)
}
