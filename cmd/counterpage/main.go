// Command counterpage serves a page showing this host's name and the
// current value of the counter API.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "counterpage",
	Short:         "Serve the hostname and counter page",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the page server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

var devCmd = &cobra.Command{
	Use:   "dev",
	Short: "Start the page server and reload templates on change",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDev(cmd)
	},
}

func init() {
	for _, cmd := range []*cobra.Command{serveCmd, devCmd} {
		cmd.Flags().String("config", "", "config file (default: counterpage.yaml in . or config/)")
		cmd.Flags().Int("port", 3000, "HTTP server port")
		cmd.Flags().String("api-origin", "", "counter API origin (env API_ORIGIN, default http://127.0.0.1)")
		cmd.Flags().String("hostname", "", "hostname shown on the page (env HOSTNAME)")
		cmd.Flags().String("metrics-addr", "", "address for the Prometheus /metrics listener, empty to disable")
		cmd.Flags().String("log-level", "info", "log level: debug, info, warn or error")
	}
	devCmd.Flags().String("templates", "renderer/templates", "templates directory to serve and watch")

	rootCmd.AddCommand(serveCmd, devCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Stderr.WriteString("counterpage: " + err.Error() + "\n")
		os.Exit(1)
	}
}
