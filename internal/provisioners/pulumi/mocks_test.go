package pulumi

import (
	"sync"

	"github.com/pulumi/pulumi/sdk/v3/go/common/resource"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
)

const (
	workerScriptToken = "cloudflare:index/workerScript:WorkerScript"
	workerDomainToken = "cloudflare:index/workerDomain:WorkerDomain"
	getZonesToken     = "cloudflare:index/getZones:getZones"
	iamUserToken      = "aws:iam/user:User"
	iamPolicyToken    = "aws:iam/userPolicy:UserPolicy"
	iamAccessKeyToken = "aws:iam/accessKey:AccessKey"
	commandToken      = "command:local:Command"
	vaultSecretToken  = "vault:generic/secret:Secret"
	configMapToken    = "kubernetes:core/v1:ConfigMap"
)

// mocks records every registered resource and invoke.
type mocks struct {
	mu        sync.Mutex
	resources []pulumi.MockResourceArgs
	calls     []pulumi.MockCallArgs
}

func newMocks() *mocks {
	return &mocks{}
}

func (m *mocks) NewResource(args pulumi.MockResourceArgs) (string, resource.PropertyMap, error) {
	m.mu.Lock()
	m.resources = append(m.resources, args)
	m.mu.Unlock()

	outputs := args.Inputs.Copy()
	switch args.TypeToken {
	case iamUserToken:
		outputs["name"] = resource.NewStringProperty(args.Name)
	case iamAccessKeyToken:
		outputs["secret"] = resource.NewStringProperty("secret-" + args.Name)
	case commandToken:
		outputs["stdout"] = resource.NewStringProperty("api.my-account.workers.dev")
	}
	return args.Name + "_id", outputs, nil
}

func (m *mocks) Call(args pulumi.MockCallArgs) (resource.PropertyMap, error) {
	m.mu.Lock()
	m.calls = append(m.calls, args)
	m.mu.Unlock()

	if args.Token == getZonesToken {
		return resource.NewPropertyMapFromMap(map[string]interface{}{
			"filter": map[string]interface{}{},
			"id":     "zones",
			"zones": []interface{}{
				map[string]interface{}{"id": "zone-123", "name": "example.com"},
				map[string]interface{}{"id": "zone-456", "name": "other.com"},
			},
		}), nil
	}
	return args.Args, nil
}

func (m *mocks) ofType(token string) []pulumi.MockResourceArgs {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []pulumi.MockResourceArgs
	for _, r := range m.resources {
		if r.TypeToken == token {
			result = append(result, r)
		}
	}
	return result
}

func (m *mocks) indexOf(token string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, r := range m.resources {
		if r.TypeToken == token {
			return i
		}
	}
	return -1
}

func (m *mocks) callsOf(token string) []pulumi.MockCallArgs {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []pulumi.MockCallArgs
	for _, c := range m.calls {
		if c.Token == token {
			result = append(result, c)
		}
	}
	return result
}
