// ABOUTME: Devices commands for the inventory-admin CLI
// ABOUTME: Lists registered devices and deletes one by id

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/ptisa/inventory-admin/internal/client"
	"github.com/ptisa/inventory-admin/internal/tui/devices"
	"github.com/ptisa/inventory-admin/internal/tui/menu"
	"github.com/ptisa/inventory-admin/internal/tui/styles"
	"github.com/spf13/cobra"
)

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List and manage devices",
}

var devicesListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List registered devices",
	Long: `List every device with brand, model, status, location, and assigned user.

Exit codes:
  0 - Listed
  1 - Not signed in or session rejected
  2 - Error (connectivity)`,
	Run: func(cmd *cobra.Command, args []string) {
		execute(cmd, logStderr, runDevicesList)
	},
}

var devicesDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a device (ADMIN only)",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		execute(cmd, logStderr, func(ctx context.Context, w io.Writer, rt *runtime) int {
			return runDevicesDelete(ctx, w, rt, args[0])
		})
	},
}

func init() {
	rootCmd.AddCommand(devicesCmd)
	devicesCmd.AddCommand(devicesListCmd)
	devicesCmd.AddCommand(devicesDeleteCmd)
}

// runDevicesList fetches the device list and returns exit code
func runDevicesList(ctx context.Context, w io.Writer, rt *runtime) int {
	if !requireSession(w, rt) {
		return exitAuth
	}

	list, err := rt.client.Devices(ctx)
	if err != nil {
		return reportAPIError(w, rt, err)
	}

	if IsJSONOutput() {
		fmt.Fprintln(w, formatDevicesJSON(list))
	} else {
		fmt.Fprintln(w, formatDevicesHuman(list))
	}
	return exitOK
}

// runDevicesDelete removes one device and returns exit code
func runDevicesDelete(ctx context.Context, w io.Writer, rt *runtime, rawID string) int {
	id, err := strconv.Atoi(rawID)
	if err != nil || id <= 0 {
		fmt.Fprintf(w, "Error: invalid device id %q\n", rawID)
		return exitError
	}
	if !requireSession(w, rt) {
		return exitAuth
	}
	if role := rt.sess.Role(); !menu.CanDelete(role) {
		fmt.Fprintf(w, "Error: role %s cannot delete devices\n", role)
		return exitAuth
	}

	if err := rt.client.DeleteDevice(ctx, id); err != nil {
		return reportAPIError(w, rt, err)
	}
	fmt.Fprintf(w, "Deleted device %d\n", id)
	return exitOK
}

// formatDevicesHuman renders the list as a table
func formatDevicesHuman(list []client.Device) string {
	if len(list) == 0 {
		return "No devices registered."
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(styles.Muted)).
		Headers("ID", "CODE", "BRAND", "MODEL", "SERIAL", "STATUS", "LOCATION", "USER", "PRICE")
	for _, d := range list {
		t.Row(
			strconv.Itoa(d.ID),
			d.Code,
			d.Brand,
			d.Model,
			d.Serial,
			d.Status,
			d.Location,
			d.UserEmail,
			devices.FormatPrice(d.Price),
		)
	}
	return t.String() + fmt.Sprintf("\n%d devices", len(list))
}

// formatDevicesJSON formats the list as JSON
func formatDevicesJSON(list []client.Device) string {
	if list == nil {
		list = []client.Device{}
	}
	data, _ := json.MarshalIndent(list, "", "  ")
	return string(data)
}
