package link

import (
	"fmt"
	"strings"

	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
)

// Kind is the Cloudflare binding group a binding is injected under.
type Kind string

const (
	KindServiceBindings         Kind = "serviceBindings"
	KindPlainTextBindings       Kind = "plainTextBindings"
	KindSecretTextBindings      Kind = "secretTextBindings"
	KindKvNamespaceBindings     Kind = "kvNamespaceBindings"
	KindR2BucketBindings        Kind = "r2BucketBindings"
	KindQueueBindings           Kind = "queueBindings"
	KindD1DatabaseBindings      Kind = "d1DatabaseBindings"
	KindAnalyticsEngineBindings Kind = "analyticsEngineBindings"
)

// Binding is a Cloudflare-native handle. The set of implementations is closed.
type Binding interface {
	Kind() Kind
	isBinding()
}

type ServiceBinding struct {
	Service     pulumi.StringInput
	Environment pulumi.StringPtrInput
}

type PlainTextBinding struct {
	Text pulumi.StringInput
}

type SecretTextBinding struct {
	Text pulumi.StringInput
}

type KvNamespaceBinding struct {
	NamespaceId pulumi.StringInput
}

type R2BucketBinding struct {
	BucketName pulumi.StringInput
}

type QueueBinding struct {
	Queue pulumi.StringInput
}

type D1DatabaseBinding struct {
	DatabaseId pulumi.StringInput
}

type AnalyticsEngineBinding struct {
	Dataset pulumi.StringInput
}

func (ServiceBinding) Kind() Kind         { return KindServiceBindings }
func (PlainTextBinding) Kind() Kind       { return KindPlainTextBindings }
func (SecretTextBinding) Kind() Kind      { return KindSecretTextBindings }
func (KvNamespaceBinding) Kind() Kind     { return KindKvNamespaceBindings }
func (R2BucketBinding) Kind() Kind        { return KindR2BucketBindings }
func (QueueBinding) Kind() Kind           { return KindQueueBindings }
func (D1DatabaseBinding) Kind() Kind      { return KindD1DatabaseBindings }
func (AnalyticsEngineBinding) Kind() Kind { return KindAnalyticsEngineBindings }

func (ServiceBinding) isBinding()         {}
func (PlainTextBinding) isBinding()       {}
func (SecretTextBinding) isBinding()      {}
func (KvNamespaceBinding) isBinding()     {}
func (R2BucketBinding) isBinding()        {}
func (QueueBinding) isBinding()           {}
func (D1DatabaseBinding) isBinding()      {}
func (AnalyticsEngineBinding) isBinding() {}

// Permission is an IAM statement the linking worker must be granted on AWS.
type Permission struct {
	Actions   []string
	Resources pulumi.StringArray
}

// Definition lists the capabilities a linked resource exposes. A nil Cloudflare
// binding, nil Properties or empty AWS slice means the capability is absent.
type Definition struct {
	Cloudflare Binding
	Properties pulumi.Map
	AWS        []Permission
}

type Linkable interface {
	pulumi.Resource
	Link() Definition
}

// Name derives the binding name from the last segment of the resource URN.
func Name(res pulumi.Resource) pulumi.StringOutput {
	return res.URN().ApplyT(func(urn pulumi.URN) string {
		parts := strings.Split(string(urn), "::")
		return parts[len(parts)-1]
	}).(pulumi.StringOutput)
}

// ParseBinding builds a binding from its kind name and flat string properties.
func ParseBinding(kind string, props map[string]string) (Binding, error) {
	str := func(key string) (pulumi.StringInput, error) {
		v, ok := props[key]
		if !ok {
			return nil, fmt.Errorf("binding %s requires property %q", kind, key)
		}
		return pulumi.String(v), nil
	}

	var (
		value pulumi.StringInput
		err   error
	)
	switch Kind(kind) {
	case KindServiceBindings:
		if value, err = str("service"); err != nil {
			return nil, err
		}
		b := ServiceBinding{Service: value}
		if env, ok := props["environment"]; ok {
			b.Environment = pulumi.StringPtr(env)
		}
		return b, nil
	case KindPlainTextBindings:
		if value, err = str("text"); err != nil {
			return nil, err
		}
		return PlainTextBinding{Text: value}, nil
	case KindSecretTextBindings:
		if value, err = str("text"); err != nil {
			return nil, err
		}
		return SecretTextBinding{Text: value}, nil
	case KindKvNamespaceBindings:
		if value, err = str("namespaceId"); err != nil {
			return nil, err
		}
		return KvNamespaceBinding{NamespaceId: value}, nil
	case KindR2BucketBindings:
		if value, err = str("bucketName"); err != nil {
			return nil, err
		}
		return R2BucketBinding{BucketName: value}, nil
	case KindQueueBindings:
		if value, err = str("queue"); err != nil {
			return nil, err
		}
		return QueueBinding{Queue: value}, nil
	case KindD1DatabaseBindings:
		if value, err = str("databaseId"); err != nil {
			return nil, err
		}
		return D1DatabaseBinding{DatabaseId: value}, nil
	case KindAnalyticsEngineBindings:
		if value, err = str("dataset"); err != nil {
			return nil, err
		}
		return AnalyticsEngineBinding{Dataset: value}, nil
	default:
		return nil, fmt.Errorf("unsupported binding type: '%s'", kind)
	}
}
