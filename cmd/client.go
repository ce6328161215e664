package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/josephgoksu/taskmate/internal/config"
	"github.com/josephgoksu/taskmate/internal/taskclient"
)

// addServerFlags registers the flags shared by commands that talk to a
// running server.
func addServerFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().String("url", "", "server base URL (default http://localhost:<server.port>)")
	cmd.PersistentFlags().Bool("json", false, "output JSON")
}

// bindServerFlags binds the shared flags at run time; several commands
// define the same names, so binding in init would let the last one win.
func bindServerFlags(cmd *cobra.Command) {
	if f := cmd.Flags().Lookup("url"); f != nil {
		_ = viper.BindPFlag("api.baseURL", f)
	}
	if f := cmd.Flags().Lookup("json"); f != nil {
		_ = viper.BindPFlag("json", f)
	}
}

func isJSON() bool {
	return viper.GetBool("json")
}

func printJSON(w io.Writer, v any) error {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(output))
	return err
}

// newClient returns a task API client for the configured server.
func newClient(cmd *cobra.Command) (*taskclient.Client, error) {
	bindServerFlags(cmd)
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return taskclient.New(config.ResolveBaseURL(cfg)), nil
}
