package link

import (
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
)

const valueType = "platform:link:Value"

// Value is a standalone linkable resource carrying arbitrary link data.
type Value struct {
	pulumi.ResourceState

	// Properties is the link data as a secret output, nil when the value has none.
	Properties pulumi.Output `pulumi:"properties"`

	definition Definition
}

type ValueArgs struct {
	Properties  pulumi.Map
	Binding     Binding
	Permissions []Permission
}

func NewValue(ctx *pulumi.Context, name string, args *ValueArgs, opts ...pulumi.ResourceOption) (*Value, error) {
	if args == nil {
		args = &ValueArgs{}
	}
	value := &Value{
		definition: Definition{
			Cloudflare: args.Binding,
			Properties: args.Properties,
			AWS:        args.Permissions,
		},
	}
	err := ctx.RegisterComponentResource(valueType, name, value, opts...)
	if err != nil {
		return nil, err
	}

	outputs := pulumi.Map{}
	if args.Properties != nil {
		value.Properties = pulumi.ToSecret(args.Properties)
		outputs["properties"] = value.Properties
	}
	if err = ctx.RegisterResourceOutputs(value, outputs); err != nil {
		return nil, err
	}
	return value, nil
}

func (v *Value) Link() Definition {
	return v.definition
}
