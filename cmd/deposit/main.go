package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/docopt/docopt-go"
	"github.com/golang/glog"
)

const DepositVersion = "0.1.0"

const usage = `Deposit record tool.

Pages carry editable regions (class "jsondeposit") holding base64 encoded
records, and a session node ("deposit-records") naming the record endpoint.

Usage:
    deposit encode [<json>]
    deposit decode [<blob>]
    deposit edit <page> [--out=<file>] [--region=<id>] [--config=<file>] [--verbose=<level>]
    deposit save <page> [--region=<id>] [--config=<file>] [--verbose=<level>]
    deposit delete <page> [--config=<file>] [--verbose=<level>]
    deposit -h | --help
    deposit --version

Options:
    -h --help            Show this screen.
    --version            Show version.
    --out=<file>         Write the edited page here instead of stdout.
    --region=<id>        Only edit, or save the record held by, this region.
    --config=<file>      YAML configuration file.
    --verbose=<level>    glog verbosity; 2 logs requests [default: 0].`

func main() {
	opts, err := docopt.ParseArgs(usage, os.Args[1:], DepositVersion)
	if err != nil {
		panic(err)
	}
	initGlog(opts)
	defer glog.Flush()

	var cmdErr error
	if encode_, _ := opts.Bool("encode"); encode_ {
		cmdErr = encode(opts)
	} else if decode_, _ := opts.Bool("decode"); decode_ {
		cmdErr = decode(opts)
	} else if edit_, _ := opts.Bool("edit"); edit_ {
		cmdErr = edit(opts)
	} else if save_, _ := opts.Bool("save"); save_ {
		cmdErr = save(opts)
	} else if delete_, _ := opts.Bool("delete"); delete_ {
		cmdErr = remove(opts)
	}
	if cmdErr != nil {
		glog.Flush()
		fmt.Fprintln(os.Stderr, cmdErr)
		os.Exit(1)
	}
}

func initGlog(opts docopt.Opts) {
	verbose, _ := opts.String("--verbose")
	if verbose == "" {
		verbose = "0"
	}
	flag.Set("logtostderr", "true")
	flag.Set("stderrthreshold", "ERROR")
	flag.Set("v", verbose)
	flag.CommandLine.Parse(nil)
}
