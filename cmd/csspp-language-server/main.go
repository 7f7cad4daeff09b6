// csspp-language-server speaks the language server protocol over stdio,
// pushing csspp compile diagnostics to the editor as documents change.
package main

import (
	"os"

	"github.com/WebWorksCollection/csspp/internal/log"
	"github.com/WebWorksCollection/csspp/internal/lsp"
)

func main() {
	if err := lsp.NewServer().RunStdio(); err != nil {
		log.Error("server error: %v", err)
		os.Exit(1)
	}
}
