// savelog is the command-line client for the SaveLog HTTP API. It reads the
// log content from a file or stdin and uploads it, logging in first when the
// upload is private.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts uploadOptions

	cmd := &cobra.Command{
		Use:   "savelog",
		Short: "Upload a text log to a SaveLog server",
		Long: `Upload a text log to a SaveLog server.

Content is read from --file, or from stdin when no file is given. Private
uploads require login; public uploads work anonymously.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadClientConfig()
			if err != nil {
				return err
			}
			return runUpload(cfg, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "file to upload (default: read stdin)")
	cmd.Flags().StringVarP(&opts.Filename, "filename", "n", "", "custom filename on the server")
	cmd.Flags().BoolVar(&opts.Private, "private", false, "make the log private (requires login)")
	cmd.Flags().StringVarP(&opts.Expire, "expire", "x", "", "expiry, e.g. 10m, 2h, 1d, 3M, 1Y")
	cmd.Flags().BoolVar(&opts.Login, "login", false, "log in before uploading")
	cmd.Flags().StringVarP(&opts.Username, "username", "u", "", "username for login")
	cmd.Flags().StringVarP(&opts.Password, "password", "p", "", "password for login")

	return cmd
}
