package pulumi

import (
	"fmt"
	"strings"

	"github.com/pulumi/pulumi-cloudflare/sdk/v5/go/cloudflare"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
)

const zoneLookupType = "platform:cloudflare:ZoneLookup"

// ZoneLookup resolves a hostname to the id of the Cloudflare zone serving it.
type ZoneLookup struct {
	pulumi.ResourceState

	ZoneId pulumi.StringOutput `pulumi:"zoneId"`
}

type ZoneLookupArgs struct {
	AccountId pulumi.StringInput
	Domain    pulumi.StringInput
}

func NewZoneLookup(ctx *pulumi.Context, name string, args *ZoneLookupArgs, opts ...pulumi.ResourceOption) (*ZoneLookup, error) {
	if args == nil || args.Domain == nil {
		return nil, fmt.Errorf("missing required argument 'Domain'")
	}
	lookup := &ZoneLookup{}
	err := ctx.RegisterComponentResource(zoneLookupType, name, lookup, opts...)
	if err != nil {
		return nil, err
	}

	filter := cloudflare.GetZonesFilterArgs{}
	if args.AccountId != nil {
		filter.AccountId = args.AccountId.ToStringOutput().ToStringPtrOutput()
	}
	zones := cloudflare.GetZonesOutput(ctx, cloudflare.GetZonesOutputArgs{Filter: filter}, pulumi.Parent(lookup))

	lookup.ZoneId = pulumi.All(args.Domain, zones.Zones()).ApplyT(func(all []interface{}) (string, error) {
		domain := all[0].(string)
		found := map[string]string{}
		for _, z := range all[1].([]cloudflare.GetZonesZone) {
			if z.Name != nil && z.Id != nil {
				found[*z.Name] = *z.Id
			}
		}
		return matchZone(domain, found)
	}).(pulumi.StringOutput)

	if err = ctx.RegisterResourceOutputs(lookup, pulumi.Map{"zoneId": lookup.ZoneId}); err != nil {
		return nil, err
	}
	return lookup, nil
}

// matchZone picks the most specific zone name the domain belongs to.
func matchZone(domain string, zones map[string]string) (string, error) {
	parts := strings.Split(strings.TrimSuffix(domain, "."), ".")
	for i := 0; i <= len(parts)-2; i++ {
		if id, ok := zones[strings.Join(parts[i:], ".")]; ok {
			return id, nil
		}
	}
	return "", fmt.Errorf("could not find hosted zone for domain %s", domain)
}
