// https://pkg.go.dev/github.com/evanw/esbuild/pkg/api

package build

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/evanw/esbuild/pkg/api"
	"k8s.io/klog/v2"
)

// Options customizes how a worker handler is bundled.
type Options struct {
	// Loader maps a file extension (".png") to an esbuild loader name ("file").
	Loader map[string]string
	// Banner is inserted at the beginning of the generated file.
	Banner string
	// Minify defaults to true.
	Minify   *bool
	Define   map[string]string
	External []string
	// Esbuild is applied last and may override any generated option.
	Esbuild func(*api.BuildOptions)
}

// Result is either a bundled artifact path or the list of build errors.
type Result struct {
	Handler string
	Errors  []string
}

func (r Result) Failed() bool {
	return len(r.Errors) > 0
}

type Builder interface {
	Build(name, handler string, opts Options) Result
}

// Esbuild bundles worker handlers in process.
type Esbuild struct {
	OutDir string
}

var loaders = map[string]api.Loader{
	"base64":     api.LoaderBase64,
	"binary":     api.LoaderBinary,
	"copy":       api.LoaderCopy,
	"css":        api.LoaderCSS,
	"dataurl":    api.LoaderDataURL,
	"default":    api.LoaderDefault,
	"empty":      api.LoaderEmpty,
	"file":       api.LoaderFile,
	"global-css": api.LoaderGlobalCSS,
	"js":         api.LoaderJS,
	"json":       api.LoaderJSON,
	"jsx":        api.LoaderJSX,
	"local-css":  api.LoaderLocalCSS,
	"text":       api.LoaderText,
	"ts":         api.LoaderTS,
	"tsx":        api.LoaderTSX,
}

func (b Esbuild) Build(name, handler string, opts Options) Result {
	out := filepath.Join(b.OutDir, name, "index.mjs")

	loader, errs := parseLoaders(opts.Loader)
	if len(errs) > 0 {
		return Result{Errors: errs}
	}

	minify := true
	if opts.Minify != nil {
		minify = *opts.Minify
	}

	buildOptions := api.BuildOptions{
		EntryPoints:       []string{handler},
		Outfile:           out,
		Bundle:            true,
		Write:             true,
		Format:            api.FormatESModule,
		Platform:          api.PlatformBrowser,
		Target:            api.ESNext,
		Conditions:        []string{"worker", "browser"},
		MainFields:        []string{"module", "main"},
		External:          append([]string{"node:*", "cloudflare:*"}, opts.External...),
		Loader:            loader,
		Define:            opts.Define,
		MinifyWhitespace:  minify,
		MinifyIdentifiers: minify,
		MinifySyntax:      minify,
		LogLevel:          api.LogLevelSilent,
	}
	if opts.Banner != "" {
		buildOptions.Banner = map[string]string{"js": opts.Banner}
	}
	if opts.Esbuild != nil {
		opts.Esbuild(&buildOptions)
	}

	klog.V(4).InfoS("Bundling worker", "name", name, "handler", handler, "out", out)
	res := api.Build(buildOptions)
	if len(res.Errors) > 0 {
		result := Result{}
		for _, msg := range res.Errors {
			result.Errors = append(result.Errors, formatMessage(msg))
		}
		klog.V(4).InfoS("Bundling failed", "name", name, "errors", len(result.Errors))
		return result
	}
	for _, msg := range res.Warnings {
		klog.V(4).InfoS("Bundler warning", "name", name, "warning", formatMessage(msg))
	}

	return Result{Handler: out}
}

func parseLoaders(in map[string]string) (map[string]api.Loader, []string) {
	if len(in) == 0 {
		return nil, nil
	}
	exts := make([]string, 0, len(in))
	for ext := range in {
		exts = append(exts, ext)
	}
	sort.Strings(exts)

	var errs []string
	result := map[string]api.Loader{}
	for _, ext := range exts {
		l, ok := loaders[in[ext]]
		if !ok {
			errs = append(errs, fmt.Sprintf("unknown loader %q for extension %q", in[ext], ext))
			continue
		}
		result[ext] = l
	}
	return result, errs
}

func formatMessage(msg api.Message) string {
	if msg.Location == nil {
		return msg.Text
	}
	return fmt.Sprintf("%s:%d:%d: %s", msg.Location.File, msg.Location.Line, msg.Location.Column, msg.Text)
}
