package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"codeberg.org/roomchat/server/roomchat/rooms"
)

func newRoomCmd(a *app) *cobra.Command {
	roomCmd := &cobra.Command{
		Use:   "room",
		Short: "Manage chat rooms",
	}

	roomCmd.AddCommand(newRoomAddCmd(a), newRoomListCmd(a))

	return roomCmd
}

func newRoomAddCmd(a *app) *cobra.Command {
	var id, name, image string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a room",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()

			store, err := a.store(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			room := &rooms.Room{ID: id, Name: name, Image: image}

			err = store.Rooms.Create(ctx, room)
			switch {
			case errors.Is(err, rooms.ErrDuplicateID):
				return fmt.Errorf("room %q already exists", id)
			case err != nil:
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "created room %s (%s)\n", room.ID, room.Name)

			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "room id (generated when empty)")
	cmd.Flags().StringVarP(&name, "name", "n", "", "display name")
	cmd.Flags().StringVar(&image, "image", "", "image url")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newRoomListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List rooms",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()

			store, err := a.store(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			list, err := store.Rooms.List(ctx)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tIMAGE")

			for _, room := range list {
				fmt.Fprintf(w, "%s\t%s\t%s\n", room.ID, room.Name, room.Image)
			}

			return w.Flush()
		},
	}
}
