package pulumi

import (
	"fmt"
	"sort"

	"github.com/pulumi/pulumi-cloudflare/sdk/v5/go/cloudflare"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
	"totalsoft.ro/platform-workers/internal/link"
	"totalsoft.ro/platform-workers/internal/tuple"
)

type BindingEntry struct {
	Name    pulumi.StringOutput
	Binding link.Binding
}

// Bindings groups linked resources by the Cloudflare binding kind they declare.
type Bindings map[link.Kind][]BindingEntry

type scriptBindings struct {
	services        cloudflare.WorkerScriptServiceBindingArray
	plainTexts      cloudflare.WorkerScriptPlainTextBindingArray
	secretTexts     cloudflare.WorkerScriptSecretTextBindingArray
	kvNamespaces    cloudflare.WorkerScriptKvNamespaceBindingArray
	r2Buckets       cloudflare.WorkerScriptR2BucketBindingArray
	queues          cloudflare.WorkerScriptQueueBindingArray
	d1Databases     cloudflare.WorkerScriptD1DatabaseBindingArray
	analyticsEngine cloudflare.WorkerScriptAnalyticsEngineBindingArray
}

func buildBindings(links []link.Linkable) Bindings {
	result := Bindings{}
	for _, l := range links {
		def := l.Link()
		switch {
		case def.Cloudflare != nil:
			kind := def.Cloudflare.Kind()
			result[kind] = append(result[kind], BindingEntry{Name: link.Name(l), Binding: def.Cloudflare})
		case def.Properties != nil:
			result[link.KindSecretTextBindings] = append(result[link.KindSecretTextBindings], BindingEntry{
				Name:    link.Name(l),
				Binding: link.SecretTextBinding{Text: pulumi.JSONMarshal(def.Properties)},
			})
		}
	}
	return result
}

// entries flattens the groups ordered by kind, keeping link order inside a kind.
func (b Bindings) entries() []tuple.T2[pulumi.StringOutput, link.Binding] {
	kinds := make([]string, 0, len(b))
	for kind := range b {
		kinds = append(kinds, string(kind))
	}
	sort.Strings(kinds)

	result := []tuple.T2[pulumi.StringOutput, link.Binding]{}
	for _, kind := range kinds {
		for _, e := range b[link.Kind(kind)] {
			result = append(result, tuple.New2(e.Name, e.Binding))
		}
	}
	return result
}

func (b Bindings) Names() pulumi.StringArray {
	names := pulumi.StringArray{}
	for _, name := range tuple.Firsts(b.entries()) {
		names = append(names, name)
	}
	return names
}

func (b Bindings) scriptBindings() (scriptBindings, error) {
	result := scriptBindings{}
	for _, e := range b.entries() {
		name, binding := e.Values()
		switch v := binding.(type) {
		case link.ServiceBinding:
			result.services = append(result.services, cloudflare.WorkerScriptServiceBindingArgs{
				Name:        name,
				Service:     v.Service,
				Environment: v.Environment,
			})
		case link.PlainTextBinding:
			result.plainTexts = append(result.plainTexts, cloudflare.WorkerScriptPlainTextBindingArgs{Name: name, Text: v.Text})
		case link.SecretTextBinding:
			result.secretTexts = append(result.secretTexts, cloudflare.WorkerScriptSecretTextBindingArgs{Name: name, Text: v.Text})
		case link.KvNamespaceBinding:
			result.kvNamespaces = append(result.kvNamespaces, cloudflare.WorkerScriptKvNamespaceBindingArgs{Name: name, NamespaceId: v.NamespaceId})
		case link.R2BucketBinding:
			result.r2Buckets = append(result.r2Buckets, cloudflare.WorkerScriptR2BucketBindingArgs{Name: name, BucketName: v.BucketName})
		case link.QueueBinding:
			result.queues = append(result.queues, cloudflare.WorkerScriptQueueBindingArgs{Binding: name, Queue: v.Queue})
		case link.D1DatabaseBinding:
			result.d1Databases = append(result.d1Databases, cloudflare.WorkerScriptD1DatabaseBindingArgs{Name: name, DatabaseId: v.DatabaseId})
		case link.AnalyticsEngineBinding:
			result.analyticsEngine = append(result.analyticsEngine, cloudflare.WorkerScriptAnalyticsEngineBindingArgs{Name: name, Dataset: v.Dataset})
		default:
			return scriptBindings{}, fmt.Errorf("unsupported binding: '%T'", binding)
		}
	}
	return result, nil
}
