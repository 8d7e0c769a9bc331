package pulumi

import (
	"fmt"

	"github.com/pulumi/pulumi-aws/sdk/v6/go/aws/iam"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
	"k8s.io/klog/v2"
	"totalsoft.ro/platform-workers/internal/link"
)

func awsPermissions(links []link.Linkable) []link.Permission {
	var permissions []link.Permission
	for _, l := range links {
		permissions = append(permissions, l.Link().AWS...)
	}
	return permissions
}

func awsPolicy(permissions []link.Permission) pulumi.StringOutput {
	statements := pulumi.Array{}
	for _, p := range permissions {
		statements = append(statements, pulumi.Map{
			"Effect":   pulumi.String("Allow"),
			"Action":   pulumi.ToStringArray(p.Actions),
			"Resource": p.Resources,
		})
	}
	return pulumi.JSONMarshal(pulumi.Map{
		"Version":   pulumi.String("2012-10-17"),
		"Statement": statements,
	})
}

// createAwsCredentials returns nil when no linked resource needs AWS access.
func createAwsCredentials(ctx *pulumi.Context, name string, links []link.Linkable,
	parent pulumi.Resource) (*iam.AccessKey, error) {

	permissions := awsPermissions(links)
	if len(permissions) == 0 {
		return nil, nil
	}
	klog.V(4).InfoS("Creating AWS credentials", "name", name, "statements", len(permissions))

	user, err := iam.NewUser(ctx, fmt.Sprintf("%sAwsUser", name), &iam.UserArgs{
		ForceDestroy: pulumi.BoolPtr(true),
	}, pulumi.Parent(parent))
	if err != nil {
		return nil, err
	}

	_, err = iam.NewUserPolicy(ctx, fmt.Sprintf("%sAwsPolicy", name), &iam.UserPolicyArgs{
		User:   user.Name,
		Policy: awsPolicy(permissions),
	}, pulumi.Parent(parent))
	if err != nil {
		return nil, err
	}

	return iam.NewAccessKey(ctx, fmt.Sprintf("%sAwsCredentials", name), &iam.AccessKeyArgs{
		User: user.Name,
	}, pulumi.Parent(parent))
}
