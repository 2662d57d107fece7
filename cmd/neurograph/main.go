package main

import (
	"flag"

	"github.com/plan-systems/klog"
)

func main() {
	fset := flag.NewFlagSet("", flag.ContinueOnError)
	klog.InitFlags(fset)
	fset.Set("logtostderr", "true")
	fset.Set("v", "1")
	klog.SetFormatter(&klog.FmtConstWidth{
		FileNameCharWidth: 16,
		UseColor:          true,
	})

	root := newRootCmd()
	root.PersistentFlags().AddGoFlagSet(fset)

	if err := root.Execute(); err != nil {
		klog.Exitf("neurograph: %v", err)
	}
	klog.Flush()
}
