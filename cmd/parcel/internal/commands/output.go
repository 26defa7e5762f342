package commands

import (
	"bufio"
	"encoding/json"
	"fmt"
	"strings"
)

// Result is the machine-readable envelope emitted in --json-output mode for
// commands whose payload is a message or a single value.
type Result struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Result  any    `json:"result,omitempty"`
}

// success prints a confirmation message, as the JSON envelope when
// --json-output is set.
func (g *Globals) success(message string) error {
	if g.JSONOutput {
		return g.printJSON(Result{Status: "success", Message: message})
	}
	_, err := fmt.Fprintln(g.out(), message)
	return err
}

// printJSON writes v as a single JSON document.
func (g *Globals) printJSON(v any) error {
	enc := json.NewEncoder(g.out())
	return enc.Encode(v)
}

// confirm prompts for a destructive operation. Anything but y/Y declines.
func (g *Globals) confirm(prompt string) (bool, error) {
	if _, err := fmt.Fprintf(g.out(), "%s [y/N]: ", prompt); err != nil {
		return false, err
	}
	line, err := bufio.NewReader(g.in()).ReadString('\n')
	if err != nil && line == "" {
		return false, nil
	}
	answer := strings.TrimSpace(line)
	return answer == "y" || answer == "Y", nil
}
