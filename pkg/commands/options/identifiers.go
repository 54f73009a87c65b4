package options

import (
	"errors"

	"github.com/spf13/cobra"

	"tableflip.dev/agenda/pkg/entity"
)

// IDOptions
type IDOptions struct {
	ShowID bool
	ID     entity.ID
}

func AddShowIDArgs(cmd *cobra.Command, o *IDOptions) {
	cmd.Flags().BoolVarP(&o.ShowID, "show-id", "k", false,
		"Show the ID of each item.")
}

// ParseID reads the first positional argument as an id.
func (o *IDOptions) ParseID(args []string, what string) error {
	if len(args) < 1 {
		return errors.New("requires a " + what + " id")
	}
	id, err := entity.ParseID(args[0])
	if err != nil {
		return err
	}
	o.ID = id
	return nil
}
