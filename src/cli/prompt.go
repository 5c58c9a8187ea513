package cli

import (
	"os"

	"github.com/manifoldco/promptui"
)

// StdInIsATerminal is true if the process' stdin is an interactive TTY.
var StdInIsATerminal = IsATerminal(os.Stdin)

// PromptPassword asks the user for a password, without echoing it.
func PromptPassword(msg string) (string, error) {
	prompt := promptui.Prompt{
		Label: msg,
		Mask:  '*',
	}
	return prompt.Run()
}
