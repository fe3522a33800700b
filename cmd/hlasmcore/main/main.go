// Command hlasmcore is the CLI entry point for the hlasmcore analyzer
// demonstration front-end.
package main

import "github.com/hlasm-tools/hlasmcore/cmd/hlasmcore"

func main() {
	hlasmcore.Execute()
}
