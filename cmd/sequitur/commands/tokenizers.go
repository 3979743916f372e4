/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: tokenizers.go
Description: Lists the tokenizers available to the induce command.
*/

package commands

import (
	"fmt"

	"github.com/kleascm/sequitur/pkg/tokenize"
	"github.com/spf13/cobra"
)

// ListTokenizers prints every registered tokenizer
func ListTokenizers(cmd *cobra.Command, args []string) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "🔤 Sequitur - Available Tokenizers")
	fmt.Fprintln(out, "==================================")
	fmt.Fprintln(out)

	for i, t := range tokenize.All() {
		fmt.Fprintf(out, "%d. %s\n", i+1, t.Name())
		fmt.Fprintf(out, "   Description: %s\n", t.Description())
		fmt.Fprintln(out)
	}

	fmt.Fprintln(out, "✨ Use --tokenizer with the induce command to pick one")
}
