package main

import (
	"flag"
	"os"

	"k8s.io/klog/v2"
)

func main() {
	klogFlags := flag.NewFlagSet("klog", flag.ExitOnError)
	klog.InitFlags(klogFlags)
	_ = klogFlags.Set("alsologtostderr", "true")

	root := newRootCommand()
	root.PersistentFlags().AddGoFlagSet(klogFlags)

	if err := root.Execute(); err != nil {
		klog.Flush()
		os.Exit(1)
	}
	klog.Flush()
}
