package pulumi

import (
	"fmt"
	"strconv"

	"github.com/pulumi/pulumi-command/sdk/go/command/local"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
)

const workerUrlType = "platform:cloudflare:WorkerUrl"

const cloudflareApi = "https://api.cloudflare.com/client/v4"

// toggles the workers.dev route of the script and prints the resulting host
const enableSubdomainScript = `set -e
curl -sSf -X POST \
  -H "Authorization: Bearer $CLOUDFLARE_API_TOKEN" \
  -H "Content-Type: application/json" \
  --data "{\"enabled\":$WORKER_URL_ENABLED}" \
  "$CLOUDFLARE_API/accounts/$CLOUDFLARE_ACCOUNT_ID/workers/scripts/$WORKER_SCRIPT_NAME/subdomain" > /dev/null
if [ "$WORKER_URL_ENABLED" = "true" ]; then
  resp=$(curl -sSf \
    -H "Authorization: Bearer $CLOUDFLARE_API_TOKEN" \
    "$CLOUDFLARE_API/accounts/$CLOUDFLARE_ACCOUNT_ID/workers/subdomain")
  subdomain=$(printf '%s' "$resp" | sed -n 's/.*"subdomain":"\([^"]*\)".*/\1/p')
  [ -n "$subdomain" ] || { echo "no workers.dev subdomain for account $CLOUDFLARE_ACCOUNT_ID" >&2; exit 1; }
  printf '%s.%s.workers.dev' "$WORKER_SCRIPT_NAME" "$subdomain"
fi
`

const disableSubdomainScript = `curl -sS -X POST \
  -H "Authorization: Bearer $CLOUDFLARE_API_TOKEN" \
  -H "Content-Type: application/json" \
  --data '{"enabled":false}' \
  "$CLOUDFLARE_API/accounts/$CLOUDFLARE_ACCOUNT_ID/workers/scripts/$WORKER_SCRIPT_NAME/subdomain" > /dev/null || true
`

// WorkerUrl enables or disables the workers.dev endpoint of a script.
type WorkerUrl struct {
	pulumi.ResourceState

	// Url is the workers.dev host, empty when disabled.
	Url pulumi.StringOutput `pulumi:"url"`
}

type WorkerUrlArgs struct {
	AccountId  pulumi.StringInput
	ScriptName pulumi.StringInput
	Enabled    pulumi.BoolInput
}

func NewWorkerUrl(ctx *pulumi.Context, name string, args *WorkerUrlArgs, opts ...pulumi.ResourceOption) (*WorkerUrl, error) {
	if args == nil || args.ScriptName == nil {
		return nil, fmt.Errorf("missing required argument 'ScriptName'")
	}
	workerUrl := &WorkerUrl{}
	err := ctx.RegisterComponentResource(workerUrlType, name, workerUrl, opts...)
	if err != nil {
		return nil, err
	}

	enabled := pulumi.Bool(false).ToBoolOutput()
	if args.Enabled != nil {
		enabled = args.Enabled.ToBoolOutput()
	}
	accountId := pulumi.String("").ToStringOutput()
	if args.AccountId != nil {
		accountId = args.AccountId.ToStringOutput()
	}

	cmd, err := local.NewCommand(ctx, fmt.Sprintf("%sSubdomain", name), &local.CommandArgs{
		Create: pulumi.String(enableSubdomainScript),
		Update: pulumi.String(enableSubdomainScript),
		Delete: pulumi.String(disableSubdomainScript),
		Environment: pulumi.StringMap{
			"CLOUDFLARE_API":        pulumi.String(cloudflareApi),
			"CLOUDFLARE_ACCOUNT_ID": accountId,
			"WORKER_SCRIPT_NAME":    args.ScriptName,
			"WORKER_URL_ENABLED": enabled.ApplyT(func(v bool) string {
				return strconv.FormatBool(v)
			}).(pulumi.StringOutput),
		},
		Interpreter: pulumi.ToStringArray([]string{"sh", "-c"}),
	}, pulumi.Parent(workerUrl))
	if err != nil {
		return nil, err
	}

	workerUrl.Url = pulumi.All(enabled, cmd.Stdout).ApplyT(func(all []interface{}) string {
		if !all[0].(bool) {
			return ""
		}
		return all[1].(string)
	}).(pulumi.StringOutput)

	if err = ctx.RegisterResourceOutputs(workerUrl, pulumi.Map{"url": workerUrl.Url}); err != nil {
		return nil, err
	}
	return workerUrl, nil
}
