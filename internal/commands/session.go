package commands

import (
	"context"
	"fmt"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
	"github.com/spf13/cobra"
)

func addSession(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Manage the WhatsApp session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	addSessionConnect(cmd)
	addSessionDisconnect(cmd)
	addSessionStatus(cmd)
	addSessionReset(cmd)

	topLevel.AddCommand(cmd)
}

func addSessionConnect(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "connect",
		Short: "Register a session and print the linking QR code",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			e, closer, err := loadEnv()
			if err != nil {
				return err
			}
			defer closer()
			if err := e.requireOwner(); err != nil {
				return err
			}

			if err := e.store.Connect(context.Background(), e.owner); err != nil {
				return err
			}
			fmt.Printf("session %s registered\n", e.store.UserID())
			if qr := e.store.QRCodeURL(); qr != "" {
				fmt.Println("\nscan with WhatsApp to link:")
				fmt.Println(renderQR(qr))
			}
			return nil
		},
	}
	topLevel.AddCommand(cmd)
}

func addSessionDisconnect(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "disconnect",
		Short: "Tear down the session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			e, closer, err := loadEnv()
			if err != nil {
				return err
			}
			defer closer()
			if err := e.requireOwner(); err != nil {
				return err
			}
			return e.store.Disconnect(context.Background(), e.owner)
		},
	}
	topLevel.AddCommand(cmd)
}

func addSessionStatus(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the session state",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			e, closer, err := loadEnv()
			if err != nil {
				return err
			}
			defer closer()

			fmt.Printf("state:   %s\n", e.store.Connection())
			if id := e.store.UserID(); id != "" {
				fmt.Printf("session: %s\n", id)
			}
			fmt.Printf("account: %s\n", e.owner)
			return nil
		},
	}
	topLevel.AddCommand(cmd)
}

func addSessionReset(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Drop the local session and working state, keeping labels",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			e, closer, err := loadEnv()
			if err != nil {
				return err
			}
			defer closer()
			e.store.Reset()
			return nil
		},
	}
	topLevel.AddCommand(cmd)
}

// renderQR converts a string to a compact ASCII QR code using Unicode
// half-block characters. Two bitmap rows become one terminal line.
func renderQR(content string) string {
	qr, err := qrcode.New(content, qrcode.Low)
	if err != nil {
		return "  (QR generation failed: " + err.Error() + ")"
	}

	bitmap := qr.Bitmap()
	rows := len(bitmap)
	cols := 0
	if rows > 0 {
		cols = len(bitmap[0])
	}

	var sb strings.Builder
	for y := 0; y < rows; y += 2 {
		sb.WriteString("  ")
		for x := 0; x < cols; x++ {
			top := bitmap[y][x]
			bot := false
			if y+1 < rows {
				bot = bitmap[y+1][x]
			}
			switch {
			case top && bot:
				sb.WriteRune('█')
			case top && !bot:
				sb.WriteRune('▀')
			case !top && bot:
				sb.WriteRune('▄')
			default:
				sb.WriteRune(' ')
			}
		}
		sb.WriteRune('\n')
	}
	return sb.String()
}
