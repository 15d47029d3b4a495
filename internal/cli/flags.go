package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// changedStr returns &v only when the named flag was set on the command
// line, so update commands can distinguish "keep" from "set to empty".
func changedStr(cmd *cobra.Command, name string, v string) *string {
	if cmd.Flags().Changed(name) {
		return &v
	}
	return nil
}

func changedInt(cmd *cobra.Command, name string, v int) *int {
	if cmd.Flags().Changed(name) {
		return &v
	}
	return nil
}

func changedBool(cmd *cobra.Command, name string, v bool) *bool {
	if cmd.Flags().Changed(name) {
		return &v
	}
	return nil
}

func parseIndex(arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("index %q is not an integer", arg)
	}
	return n, nil
}
