package pulumi

import (
	"encoding/json"
	"strings"

	pulumiKube "github.com/pulumi/pulumi-kubernetes/sdk/v4/go/kubernetes/core/v1"
	pulumiKubeMetav1 "github.com/pulumi/pulumi-kubernetes/sdk/v4/go/kubernetes/meta/v1"
	vault "github.com/pulumi/pulumi-vault/sdk/v6/go/vault/generic"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
	"totalsoft.ro/platform-workers/internal/template"
	workerv1 "totalsoft.ro/platform-workers/pkg/apis/worker/v1alpha1"
)

const (
	ConfigMapDomainLabel  = "platform.totalsoft.ro/domain"
	ConfigMapProjectLabel = "platform.totalsoft.ro/project"
)

type ValueExporterFunc func(exportContext ExportContext, values map[string]exportTemplateWithValue, opts ...pulumi.ResourceOption) error

type exportTemplateWithValue struct {
	valueExport workerv1.ValueExport
	value       pulumi.StringInput
}

type ExportContext struct {
	pulumiContext *pulumi.Context
	domain        string
	objectName    string
}

func newExportContext(pulumiContext *pulumi.Context, domain, objectName string) ExportContext {
	return ExportContext{
		pulumiContext: pulumiContext,
		domain:        domain,
		objectName:    objectName,
	}
}

func handleValueExport(templateContext template.Context) ValueExporterFunc {
	return func(exportContext ExportContext, values map[string]exportTemplateWithValue, opts ...pulumi.ResourceOption) error {
		v := onlyVaultValues(values)
		if len(v) > 0 {
			path := strings.Join([]string{templateContext.Project, templateContext.Stack, exportContext.domain, exportContext.objectName}, "/")
			err := exportToVault(exportContext.pulumiContext, path, templateContext, v, opts...)
			if err != nil {
				return err
			}
		}

		for namespace, v := range onlyConfigMapValues(values) {
			name := strings.ToLower(strings.Join([]string{exportContext.domain, templateContext.Stack, exportContext.objectName}, "-"))
			err := exportToConfigMap(exportContext, name, namespace, templateContext, v, opts...)
			if err != nil {
				return err
			}
		}
		return nil
	}
}

func exportToVault(ctx *pulumi.Context, secretPath string, templateContext interface{},
	values map[string]exportTemplateWithValue, opts ...pulumi.ResourceOption) error {

	var parsedKeys = map[string]string{}
	for k, v := range values {
		secretKey, err := template.ParseTemplate(v.valueExport.ToVault.KeyTemplate, templateContext)
		if err != nil {
			return err
		}
		parsedKeys[k] = secretKey
	}

	var pulumiValues = pulumi.StringMap{}
	for k, v := range values {
		pulumiValues[k] = v.value
	}

	dataJson := pulumiValues.ToStringMapOutput().ApplyT(func(vs map[string]string) (string, error) {
		var m = map[string]string{}
		for k, v := range vs {
			m[parsedKeys[k]] = v
		}
		result, err := json.Marshal(m)
		return string(result), err
	}).(pulumi.StringOutput)

	_, err := vault.NewSecret(ctx, secretPath, &vault.SecretArgs{
		DataJson:          dataJson,
		Path:              pulumi.String(secretPath),
		DeleteAllVersions: pulumi.Bool(true),
	}, opts...)
	return err
}

func exportToConfigMap(exportContext ExportContext, configMapName, namespace string,
	templateContext template.Context, values map[string]exportTemplateWithValue, opts ...pulumi.ResourceOption) error {

	var parsedKeys = map[string]string{}
	for k, v := range values {
		key, err := template.ParseTemplate(v.valueExport.ToConfigMap.KeyTemplate, templateContext)
		if err != nil {
			return err
		}
		parsedKeys[k] = key
	}

	var pulumiValues = pulumi.StringMap{}
	for k, v := range values {
		pulumiValues[k] = v.value
	}

	data := pulumiValues.ToStringMapOutput().ApplyT(func(vs map[string]string) map[string]string {
		var m = map[string]string{}
		for k, v := range vs {
			m[parsedKeys[k]] = v
		}
		return m
	}).(pulumi.StringMapOutput)

	_, err := pulumiKube.NewConfigMap(exportContext.pulumiContext, strings.Join([]string{namespace, configMapName}, "/"), &pulumiKube.ConfigMapArgs{
		Metadata: pulumiKubeMetav1.ObjectMetaArgs{
			Name:      pulumi.String(configMapName),
			Namespace: pulumi.String(namespace),
			Labels: pulumi.ToStringMap(map[string]string{
				ConfigMapDomainLabel:  exportContext.domain,
				ConfigMapProjectLabel: templateContext.Project,
			}),
		},
		Immutable: pulumi.Bool(true),
		Data:      data,
	}, opts...)
	return err
}

func onlyVaultValues(values map[string]exportTemplateWithValue) map[string]exportTemplateWithValue {
	var output = map[string]exportTemplateWithValue{}
	for k, v := range values {
		if v.valueExport.ToVault != (workerv1.VaultSecretTemplate{}) {
			output[k] = v
		}
	}
	return output
}

// onlyConfigMapValues groups the config map exports by target namespace.
func onlyConfigMapValues(values map[string]exportTemplateWithValue) map[string]map[string]exportTemplateWithValue {
	var output = map[string]map[string]exportTemplateWithValue{}
	for k, v := range values {
		if v.valueExport.ToConfigMap == (workerv1.ConfigMapTemplate{}) {
			continue
		}
		namespace := v.valueExport.ToConfigMap.Namespace
		if namespace == "" {
			namespace = "default"
		}
		if output[namespace] == nil {
			output[namespace] = map[string]exportTemplateWithValue{}
		}
		output[namespace][k] = v
	}
	return output
}

func exportWorker(ctx *pulumi.Context, tc template.Context, worker *Worker,
	exports []workerv1.WorkerExportsSpec) error {

	valueExporter := handleValueExport(tc)
	for _, exp := range exports {
		err := valueExporter(newExportContext(ctx, exp.Domain, tc.Worker),
			map[string]exportTemplateWithValue{
				"url":        {exp.Url, worker.Url},
				"scriptName": {exp.ScriptName, worker.Script.Name},
			}, pulumi.Parent(worker))
		if err != nil {
			return err
		}
	}
	return nil
}
