// Command amanmcp-flat is a local-first code and document search engine:
// index configured folders and git repos, keep them current with a watch
// loop, and serve lexical/semantic search over MCP and HTTP.
package main

import (
	"fmt"
	"os"

	"github.com/amanmcp/amanmcp-flat/cmd/amanmcp-flat/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
